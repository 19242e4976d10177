// internal/match/match.go
package match

import (
	"context"
	"errors"
	"fmt"

	"go-td-core/internal/agent"
	"go-td-core/internal/config"
	"go-td-core/internal/defense"
	"go-td-core/internal/defs"
	"go-td-core/internal/economy"
	"go-td-core/internal/event"
	"go-td-core/internal/level"
	"go-td-core/internal/placement"
	"go-td-core/internal/population"
	"go-td-core/internal/schedule"
	"go-td-core/internal/utils"
	"go-td-core/internal/wave"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrTimeout     = errors.New("match did not finish in time")
	ErrInvalidStep = errors.New("step must be positive")
)

// Match holds every component of one match and the shared clock that steps them.
type Match struct {
	ID       uuid.UUID
	Settings config.Settings
	Catalog  *defs.Catalog

	Dispatcher *event.Dispatcher
	Agents     *agent.Registry
	Wallet     *economy.Wallet
	Placement  *placement.Gate
	Tracker    *population.Tracker
	Waves      *wave.Orchestrator
	Level      *level.Machine
	Defense    *defense.System
	Rng        *utils.PRNGService

	logger         *zap.Logger
	elapsed        float64
	wavesCompleted int
	subs           []*event.Subscription
	closed         bool
}

// Result summarises a finished (or abandoned) match.
type Result struct {
	ID             string
	Phase          level.Phase
	WavesCompleted int
	TotalWaves     int
	EnemiesPassed  int
	Spawned        int
	Destroyed      int
	Money          int
	Elapsed        float64
	Seed           int64
}

func (r Result) Won() bool { return r.Phase == level.Win }

// New wires one match. Subscription order is fixed: the wallet hears a
// destroyed agent before the orchestrator, and the level hears a goal-reach
// before both.
func New(settings config.Settings, catalog *defs.Catalog, logger *zap.Logger) (*Match, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if catalog == nil {
		catalog = defs.DefaultCatalog()
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	id := uuid.New()
	logger = logger.With(zap.String("match", id.String()))

	m := &Match{
		ID:         id,
		Settings:   settings,
		Catalog:    catalog,
		Dispatcher: event.NewDispatcher(),
		Tracker:    population.New(),
		Rng:        utils.NewPRNGService(settings.Sim.Seed),
		logger:     logger.Named("match"),
	}
	m.Agents = agent.NewRegistry(catalog, m.Dispatcher, logger)
	m.Wallet = economy.NewWallet(settings.Level.StartingMoney, m.Dispatcher, logger)
	m.Placement = placement.NewGate(m.Dispatcher, logger)
	m.Waves = wave.New(catalog, m.Agents, schedule.New(logger), m.Tracker, m.Dispatcher, logger)
	m.Level = level.New(settings.Level, m.Waves, m.Placement, m.Dispatcher, logger)
	m.Defense = defense.NewSystem(catalog.Turrets(), m.Agents, m.Rng, logger)

	m.subs = append(m.subs, m.Dispatcher.Subscribe(event.WaveCompleted, event.ListenerFunc(func(event.Event) {
		m.wavesCompleted++
	})))

	m.logger.Info("match created",
		zap.Int("waves", catalog.WaveCount()),
		zap.Int("turrets", len(catalog.Turrets())),
		zap.Int64("seed", m.Rng.Seed()))
	return m, nil
}

// Start enters the first build phase.
func (m *Match) Start() bool {
	return m.Level.Start()
}

// Step advances the shared clock by dt, clamped to MaxDeltaTime. A wave
// started during the step begins at its end.
func (m *Match) Step(dt float64) {
	if m.closed || m.Over() {
		return
	}
	if dt < 0 {
		dt = 0
	}
	if dt > m.Settings.Sim.MaxDeltaTime {
		dt = m.Settings.Sim.MaxDeltaTime
	}
	m.elapsed += dt

	waveDt := dt
	if !m.Waves.Active() {
		waveDt = 0
	}
	m.Level.Update(dt)
	m.Waves.Update(waveDt)
	m.Agents.Update(dt)
	m.Defense.Update(dt)
}

// Over reports whether the level reached Win or Lose.
func (m *Match) Over() bool {
	return m.Level.Phase().Terminal()
}

// PlaceTurret buys and places a turret at its first level when the level
// allows building. The price comes from the definition.
func (m *Match) PlaceTurret(def defs.TurretDefinition) bool {
	if err := def.Validate(); err != nil {
		m.logger.Warn("refusing turret", zap.Error(err))
		return false
	}
	if !m.Placement.TryPlace(def.PurchaseCost(), m.Wallet) {
		return false
	}
	m.Defense.AddTurret(def)
	return true
}

// UpgradeTurret raises turret idx by one level, paying from the wallet.
func (m *Match) UpgradeTurret(idx int) bool {
	return m.Defense.TryUpgrade(idx, m.Wallet)
}

// SellTurret removes turret idx and refunds its sell value.
func (m *Match) SellTurret(idx int) (int, bool) {
	return m.Defense.Sell(idx, m.Wallet)
}

// Run steps the match with a fixed dt until it ends, maxTime of simulated
// time passes, or ctx is done.
func (m *Match) Run(ctx context.Context, dt, maxTime float64) (Result, error) {
	return m.RunPaced(ctx, dt, maxTime, nil)
}

// RunPaced is Run with every step waiting on limiter. A nil limiter runs
// as fast as possible.
func (m *Match) RunPaced(ctx context.Context, dt, maxTime float64, limiter *rate.Limiter) (Result, error) {
	if dt <= 0 {
		return m.Result(), ErrInvalidStep
	}
	m.Start()
	for !m.Over() {
		if err := ctx.Err(); err != nil {
			return m.Result(), err
		}
		if maxTime > 0 && m.elapsed >= maxTime {
			m.logger.Warn("match timed out", zap.Float64("elapsed", m.elapsed), zap.Stringer("phase", m.Level.Phase()))
			return m.Result(), fmt.Errorf("%w: %.1fs", ErrTimeout, m.elapsed)
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return m.Result(), err
			}
		}
		m.Step(dt)
	}

	res := m.Result()
	m.logger.Info("match finished",
		zap.Stringer("phase", res.Phase),
		zap.Int("waves", res.WavesCompleted),
		zap.Int("passed", res.EnemiesPassed),
		zap.Float64("elapsed", res.Elapsed))
	return res, nil
}

func (m *Match) Result() Result {
	return Result{
		ID:             m.ID.String(),
		Phase:          m.Level.Phase(),
		WavesCompleted: m.wavesCompleted,
		TotalWaves:     m.Level.TotalWaves(),
		EnemiesPassed:  m.Level.EnemiesPassed(),
		Spawned:        m.Agents.Spawned(),
		Destroyed:      m.Agents.Destroyed(),
		Money:          m.Wallet.Money(),
		Elapsed:        m.elapsed,
		Seed:           m.Rng.Seed(),
	}
}

func (m *Match) Elapsed() float64 { return m.elapsed }

// Close drops every subscription of the match. Safe to call twice.
func (m *Match) Close() {
	if m.closed {
		return
	}
	m.closed = true
	for _, s := range m.subs {
		s.Unsubscribe()
	}
	m.Level.Close()
	m.Waves.Close()
	m.Wallet.Close()
}
