// internal/level/level.go
package level

import (
	"go-td-core/internal/config"
	"go-td-core/internal/event"

	"go.uber.org/zap"
)

// WaveRunner is the part of the wave orchestrator the level drives.
type WaveRunner interface {
	StartWave(index int) error
	Cancel() bool
	WaveCount() int
}

// PlacementSink receives the "tower placement allowed" flag on every transition.
type PlacementSink interface {
	SetCanPlace(allowed bool)
}

// Machine is the match-level state machine and the only component allowed to
// end a match. Intro -> Building -> SpawningEnemies -> {Building | Win}, with
// Lose reachable from any non-terminal phase.
type Machine struct {
	logger     *zap.Logger
	settings   config.LevelSettings
	waves      WaveRunner
	placement  PlacementSink
	dispatcher *event.Dispatcher

	phase            Phase
	buildTimer       float64
	currentWaveIndex int
	enemiesPassed    int
	totalWaves       int
	subs             []*event.Subscription
}

func New(settings config.LevelSettings, waves WaveRunner, placement PlacementSink, dispatcher *event.Dispatcher, logger *zap.Logger) *Machine {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Machine{
		logger:     logger.Named("level"),
		settings:   settings,
		waves:      waves,
		placement:  placement,
		dispatcher: dispatcher,
		phase:      Intro,
		totalWaves: waves.WaveCount(),
	}
	m.subs = append(m.subs,
		dispatcher.Subscribe(event.WaveStarted, m),
		dispatcher.Subscribe(event.WaveCompleted, m),
		dispatcher.Subscribe(event.AllWavesCompleted, m),
		// до того, как волна учтёт удаление: поражение должно отменить волну
		// раньше, чем она успеет объявить себя завершённой
		dispatcher.SubscribeWithPriority(event.AgentReachedGoal, m, event.PriorityHigh),
	)
	placement.SetCanPlace(false)
	return m
}

// Close drops all subscriptions.
func (m *Machine) Close() {
	for _, s := range m.subs {
		s.Unsubscribe()
	}
	m.subs = nil
}

func (m *Machine) OnEvent(e event.Event) {
	switch e.Type {
	case event.WaveStarted:
		if wd, ok := e.Data.(event.WaveData); ok && !m.phase.Terminal() {
			m.logger.Debug("wave started", zap.Int("wave", wd.Number))
		}
	case event.WaveCompleted:
		if wd, ok := e.Data.(event.WaveData); ok {
			m.handleWaveCompleted(wd.Number)
		}
	case event.AllWavesCompleted:
		m.handleAllWavesCompleted()
	case event.AgentReachedGoal:
		m.handleAgentReachedGoal()
	}
}

// Start moves Intro -> Building. Only the first call succeeds.
func (m *Machine) Start() bool {
	if m.phase != Intro {
		return false
	}
	if m.totalWaves == 0 {
		m.logger.Warn("wave catalog is empty; the match will be won after the build phase")
	}
	return m.changePhase(Building)
}

// Update accumulates build time and starts the next wave, or wins when none
// remain. Reports whether the phase moved. Negative deltaTime counts as zero.
func (m *Machine) Update(deltaTime float64) bool {
	if m.phase != Building {
		return false
	}
	if deltaTime > 0 {
		m.buildTimer += deltaTime
	}
	if m.buildTimer < m.settings.BuildPhaseDuration {
		return false
	}
	if m.currentWaveIndex >= m.totalWaves {
		return m.changePhase(Win)
	}

	m.changePhase(SpawningEnemies)
	if err := m.waves.StartWave(m.currentWaveIndex); err != nil {
		// волна не запустилась: ещё одна фаза строительства, потом повтор
		m.logger.Error("could not start wave; back to build phase",
			zap.Int("wave", m.currentWaveIndex+1), zap.Error(err))
		m.changePhase(Building)
	}
	return true
}

// RequestLose forces Lose. It fails once the match is already over.
func (m *Machine) RequestLose() bool {
	if m.phase.Terminal() {
		return false
	}
	m.lose("requested")
	return true
}

func (m *Machine) handleWaveCompleted(number int) {
	if m.phase.Terminal() {
		return
	}
	if number != m.currentWaveIndex+1 || m.phase != SpawningEnemies {
		m.logger.DPanic("wave-completed does not match the current wave",
			zap.Int("completed", number),
			zap.Int("current", m.currentWaveIndex+1),
			zap.Stringer("phase", m.phase))
		return
	}

	m.currentWaveIndex++
	if m.currentWaveIndex < m.totalWaves {
		m.changePhase(Building)
		return
	}
	m.logger.Debug("last wave done, waiting for all-waves-completed")
}

func (m *Machine) handleAllWavesCompleted() {
	if m.phase.Terminal() {
		return
	}
	m.changePhase(Win)
}

func (m *Machine) handleAgentReachedGoal() {
	if m.phase.Terminal() {
		return
	}
	m.enemiesPassed++
	m.logger.Debug("agent reached goal", zap.Int("passed", m.enemiesPassed), zap.Int("max", m.settings.MaxEnemiesAllowedToPass))
	if m.enemiesPassed >= m.settings.MaxEnemiesAllowedToPass {
		m.lose("too many enemies reached the goal")
	}
}

func (m *Machine) lose(reason string) {
	m.changePhase(Lose)
	m.waves.Cancel()
	m.logger.Info("game over", zap.String("reason", reason), zap.Int("passed", m.enemiesPassed))
}

// changePhase is the single place where the phase moves. Same-phase
// transitions are refused so PhaseChanged always means a real change.
func (m *Machine) changePhase(next Phase) bool {
	if next == m.phase {
		return false
	}
	if m.phase == Building {
		m.buildTimer = 0
	}
	prev := m.phase
	m.phase = next
	m.placement.SetCanPlace(m.placementAllowed(next))
	m.dispatcher.Dispatch(event.Event{Type: event.PhaseChanged, Data: next})
	m.logger.Info("level phase changed", zap.Stringer("from", prev), zap.Stringer("to", next))
	return true
}

func (m *Machine) placementAllowed(p Phase) bool {
	switch p {
	case Building:
		return true
	case SpawningEnemies:
		return m.settings.AllowBuildingDuringWave
	default:
		return false
	}
}

func (m *Machine) Phase() Phase                { return m.phase }
func (m *Machine) BuildTimer() float64         { return m.buildTimer }
func (m *Machine) BuildPhaseDuration() float64 { return m.settings.BuildPhaseDuration }
func (m *Machine) EnemiesPassed() int          { return m.enemiesPassed }
func (m *Machine) MaxEnemiesAllowed() int      { return m.settings.MaxEnemiesAllowedToPass }
func (m *Machine) CurrentWaveIndex() int       { return m.currentWaveIndex }
func (m *Machine) TotalWaves() int             { return m.totalWaves }
