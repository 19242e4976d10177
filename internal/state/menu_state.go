// internal/state/menu_state.go
package state

import (
	"fmt"

	"go-td-core/internal/config"
	"go-td-core/internal/level"
	"go-td-core/internal/match"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"go.uber.org/zap"
)

// MenuState — стартовый экран и экран итогов матча.
type MenuState struct {
	sm   *StateMachine
	ctx  *Context
	last *match.Result
}

func NewMenuState(sm *StateMachine, ctx *Context, last *match.Result) *MenuState {
	return &MenuState{sm: sm, ctx: ctx, last: last}
}

func (m *MenuState) Enter() {}

func (m *MenuState) Update(deltaTime float64) error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ErrQuit
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		ms, err := NewMatchState(m.sm, m.ctx)
		if err != nil {
			m.ctx.Logger.Error("cannot start match", zap.Error(err))
			return err
		}
		m.sm.SetState(ms)
	}
	return nil
}

func (m *MenuState) Draw(screen *ebiten.Image) {
	screen.Fill(config.BackgroundColor)
	cx := config.ScreenWidth/2 - 160
	cy := config.ScreenHeight / 2

	if m.last != nil {
		clr := config.LoseStateColor
		title := "DEFEAT"
		if m.last.Phase == level.Win {
			clr, title = config.WinStateColor, "VICTORY"
		}
		text.Draw(screen, title, m.ctx.Title, cx, cy-80, clr)
		summary := fmt.Sprintf("waves %d/%d   passed %d   destroyed %d   money %d   %.0fs",
			m.last.WavesCompleted, m.last.TotalWaves, m.last.EnemiesPassed, m.last.Destroyed, m.last.Money, m.last.Elapsed)
		text.Draw(screen, summary, m.ctx.Face, cx, cy-40, config.TextLightColor)
	}
	text.Draw(screen, "SPACE - new match, ESC - quit", m.ctx.Face, cx, cy, config.TextLightColor)
}

func (m *MenuState) Exit() {}
