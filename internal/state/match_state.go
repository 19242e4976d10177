// internal/state/match_state.go
package state

import (
	"fmt"
	"image/color"

	"go-td-core/internal/config"
	"go-td-core/internal/defs"
	"go-td-core/internal/event"
	"go-td-core/internal/level"
	"go-td-core/internal/match"
	"go-td-core/internal/ui"
	"go-td-core/pkg/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
)

// Турель, которую игрок ставит кликом. ПКМ по ней улучшает, Shift+ПКМ продаёт.
var playerTurret = defs.TurretDefinition{ID: "PLAYER", Levels: []defs.TurretLevel{
	{Range: 150, FireRate: 2, Damage: 5, Cost: 5, UpgradeCost: 6, SellValue: 2},
	{Range: 170, FireRate: 2.5, Damage: 8, UpgradeCost: 10, SellValue: 5},
	{Range: 190, FireRate: 3, Damage: 12, SellValue: 10},
}}

// MatchState — один матч на экране.
type MatchState struct {
	sm       *StateMachine
	ctx      *Context
	match    *match.Match
	renderer *render.FieldRenderer

	indicator *ui.StateIndicator
	waves     *ui.WaveIndicator
	health    *ui.BaseHealthIndicator
	speed     *ui.SpeedButton

	currentWave int
	subs        []*event.Subscription
}

func NewMatchState(sm *StateMachine, ctx *Context) (*MatchState, error) {
	m, err := match.New(ctx.Settings, ctx.Catalog, ctx.Logger)
	if err != nil {
		return nil, fmt.Errorf("new match: %w", err)
	}

	mapColors := render.MapColors{
		BackgroundColor: config.BackgroundColor,
		PathColor:       config.PathColor,
		EntryColor:      config.EntryColor,
		ExitColor:       config.ExitColor,
		StrokeWidth:     3,
	}
	agentColors := render.AgentColors{
		Ground:  config.EnemyColor,
		Flying:  config.FlyingColor,
		Slowed:  config.SlowedColor,
		Turret:  config.TurretColor,
		Outline: config.TextLightColor,
	}

	s := &MatchState{
		sm:       sm,
		ctx:      ctx,
		match:    m,
		renderer: render.NewFieldRenderer(ctx.Catalog.Paths(), config.ScreenWidth, config.ScreenHeight, mapColors, agentColors, config.AgentRadius, config.TurretRadius),
		indicator: ui.NewStateIndicator(
			float32(config.ScreenWidth-config.IndicatorOffsetX),
			float32(config.IndicatorOffsetX),
			float32(config.IndicatorRadius),
		),
		waves:  ui.NewWaveIndicator(config.ScreenWidth/2, 40, config.TextLightColor),
		health: ui.NewBaseHealthIndicator(20, 30),
		speed: ui.NewSpeedButton(float32(config.ScreenWidth-config.IndicatorOffsetX), float32(config.IndicatorOffsetX)*2+10, 14,
			[]int{1, 2, 4}, []color.Color{config.BuildStateColor, config.WaveStateColor, config.TurretColor}),
	}

	s.subs = append(s.subs,
		m.Dispatcher.Subscribe(event.PhaseChanged, event.ListenerFunc(func(event.Event) { s.indicator.Pulse() })),
		m.Dispatcher.Subscribe(event.WaveStarted, event.ListenerFunc(func(e event.Event) {
			if wd, ok := e.Data.(event.WaveData); ok {
				s.currentWave = wd.Number
			}
		})),
	)
	return s, nil
}

func (s *MatchState) Enter() {
	if s.match.Start() {
		s.ctx.Logger.Info("match started", zap.String("match", s.match.ID.String()))
	}
}

func (s *MatchState) Update(deltaTime float64) error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		s.sm.SetState(NewPauseState(s.sm, s, s.ctx))
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		s.match.Level.RequestLose()
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if s.speed.IsClicked(x, y) {
			s.speed.ToggleState()
		} else {
			s.placeTurret(x, y)
		}
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		x, y := ebiten.CursorPosition()
		s.touchTurret(x, y, ebiten.IsKeyPressed(ebiten.KeyShift))
	}

	for i := 0; i < s.speed.Multiplier(); i++ {
		s.match.Step(deltaTime)
	}

	if s.match.Over() {
		res := s.match.Result()
		s.close()
		s.sm.SetState(NewMenuState(s.sm, s.ctx, &res))
	}
	return nil
}

func (s *MatchState) placeTurret(x, y int) {
	def := playerTurret
	def.Position = defs.Point{X: float64(x), Y: float64(y)}
	if !s.match.PlaceTurret(def) {
		s.ctx.Logger.Debug("turret refused",
			zap.Bool("can_place", s.match.Placement.CanPlace()),
			zap.Int("money", s.match.Wallet.Money()))
	}
}

func (s *MatchState) touchTurret(x, y int, sell bool) {
	idx, ok := s.match.Defense.TurretAt(float64(x), float64(y), config.TurretRadius)
	if !ok {
		return
	}
	if sell {
		refund, _ := s.match.SellTurret(idx)
		s.ctx.Logger.Debug("turret sold", zap.Int("refund", refund))
		return
	}
	if !s.match.UpgradeTurret(idx) {
		s.ctx.Logger.Debug("upgrade refused", zap.Int("money", s.match.Wallet.Money()))
	}
}

func (s *MatchState) Draw(screen *ebiten.Image) {
	s.renderer.Draw(screen, s.match.Agents.Agents(), s.match.Defense.Turrets())

	s.indicator.Draw(screen, phaseColor(s.match.Level.Phase()))
	s.speed.Draw(screen, s.ctx.Face)
	s.waves.Draw(screen, s.ctx.Title, s.currentWave, s.match.Level.TotalWaves())
	s.health.Draw(screen, s.ctx.Face, s.match.Level.EnemiesPassed(), s.match.Level.MaxEnemiesAllowed())

	lvl := s.match.Level
	status := fmt.Sprintf("%s   money %d", lvl.Phase(), s.match.Wallet.Money())
	if lvl.Phase() == level.Building {
		status += fmt.Sprintf("   next wave in %.1fs", lvl.BuildPhaseDuration()-lvl.BuildTimer())
	}
	text.Draw(screen, status, s.ctx.Face, 20, config.ScreenHeight-20, config.TextLightColor)

	if s.match.Placement.CanPlace() {
		x, y := ebiten.CursorPosition()
		vector.StrokeCircle(screen, float32(x), float32(y), float32(playerTurret.Level(0).Range), 1, config.BuildStateColor, true)
	}
}

func (s *MatchState) Exit() {}

func (s *MatchState) close() {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
	s.match.Close()
}

func phaseColor(p level.Phase) color.Color {
	switch p {
	case level.Building:
		return config.BuildStateColor
	case level.SpawningEnemies, level.AllEnemiesSpawned:
		return config.WaveStateColor
	case level.Win:
		return config.WinStateColor
	case level.Lose:
		return config.LoseStateColor
	}
	return config.TextLightColor
}
