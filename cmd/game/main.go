// cmd/game/main.go
package main

import (
	"errors"
	"log"
	"os"
	"time"

	"go-td-core/internal/config"
	"go-td-core/internal/defs"
	"go-td-core/internal/observability"
	"go-td-core/internal/state"
	"go-td-core/pkg/render"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

const startFromGame = true // true — начинать с матча, false — с меню

type AppGame struct {
	stateMachine   *state.StateMachine
	lastUpdateTime time.Time
}

func (a *AppGame) Update() error {
	now := time.Now()
	deltaTime := now.Sub(a.lastUpdateTime).Seconds()
	if deltaTime > config.MaxDeltaTime {
		deltaTime = config.MaxDeltaTime
	}
	a.lastUpdateTime = now
	if err := a.stateMachine.Update(deltaTime); err != nil {
		if errors.Is(err, state.ErrQuit) {
			return ebiten.Termination
		}
		return err
	}
	return nil
}

func (a *AppGame) Draw(screen *ebiten.Image) {
	a.stateMachine.Draw(screen)
}

func (a *AppGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.ScreenWidth, config.ScreenHeight
}

func main() {
	settings, err := config.Load(os.Getenv("TD_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}
	logger := observability.NewStdout(settings.Logger)
	defer func() { _ = logger.Sync() }()

	catalog := defs.DefaultCatalog()
	if settings.Catalog != "" {
		if catalog, err = defs.LoadCatalog(settings.Catalog); err != nil {
			logger.Fatal("cannot load catalog", zap.String("path", settings.Catalog), zap.Error(err))
		}
	}

	face, err := render.NewFace(14)
	if err != nil {
		logger.Fatal("font", zap.Error(err))
	}
	title, err := render.NewFace(32)
	if err != nil {
		logger.Fatal("font", zap.Error(err))
	}
	ctx := &state.Context{Settings: settings, Catalog: catalog, Logger: logger, Face: face, Title: title}

	sm := state.NewStateMachine() // Создаём машину состояний
	if startFromGame {
		ms, err := state.NewMatchState(sm, ctx)
		if err != nil {
			logger.Fatal("cannot start match", zap.Error(err))
		}
		sm.SetState(ms)
	} else {
		sm.SetState(state.NewMenuState(sm, ctx, nil))
	}

	app := &AppGame{
		stateMachine:   sm,
		lastUpdateTime: time.Now(),
	}
	ebiten.SetWindowSize(config.ScreenWidth, config.ScreenHeight)
	ebiten.SetWindowTitle("Tower Defense")
	if err := ebiten.RunGame(app); err != nil {
		logger.Error("game stopped", zap.Error(err))
	}
}
