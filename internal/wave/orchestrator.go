// internal/wave/orchestrator.go
package wave

import (
	"errors"
	"fmt"

	"go-td-core/internal/defs"
	"go-td-core/internal/event"
	"go-td-core/internal/population"
	"go-td-core/internal/schedule"

	"go.uber.org/zap"
)

var (
	ErrWaveInProgress      = errors.New("wave already running")
	ErrWaveIndexOutOfRange = errors.New("wave index out of range")
	ErrInvalidPlan         = errors.New("invalid wave plan")
)

// State — жизненный цикл одной волны.
type State int

const (
	Idle State = iota
	Spawning
	Draining
	Complete
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Spawning:
		return "Spawning"
	case Draining:
		return "Draining"
	case Complete:
		return "Complete"
	case Cancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Catalog is the read-only, ordered wave list.
type Catalog interface {
	WaveCount() int
	Wave(index int) (defs.WavePlan, bool)
}

// Spawner places one agent at the group's origin and starts it moving.
// The returned id is only used for logging; removal arrives as an event.
type Spawner interface {
	Spawn(group defs.SpawnGroup) (uint64, error)
}

// RunState is the mutable per-wave bookkeeping, reset on every StartWave.
type RunState struct {
	WaveIndex        int
	SpawningComplete bool
	StopRequested    bool
	InProgress       bool
}

// Orchestrator runs one wave at a time: Idle -> Spawning -> Draining -> Complete,
// or Cancelled from Spawning/Draining. A wave is complete when its spawn run has
// finished and the population is back to zero.
type Orchestrator struct {
	logger     *zap.Logger
	catalog    Catalog
	spawner    Spawner
	scheduler  *schedule.Scheduler
	tracker    *population.Tracker
	dispatcher *event.Dispatcher

	state State
	run   RunState
	task  *schedule.Run
	subs  []*event.Subscription
}

func New(catalog Catalog, spawner Spawner, scheduler *schedule.Scheduler, tracker *population.Tracker, dispatcher *event.Dispatcher, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &Orchestrator{
		logger:     logger.Named("wave"),
		catalog:    catalog,
		spawner:    spawner,
		scheduler:  scheduler,
		tracker:    tracker,
		dispatcher: dispatcher,
		run:        RunState{WaveIndex: -1},
	}
	o.subs = append(o.subs,
		dispatcher.Subscribe(event.AgentReachedGoal, o),
		dispatcher.Subscribe(event.AgentDestroyed, o),
	)
	return o
}

// Close drops the orchestrator's subscriptions.
func (o *Orchestrator) Close() {
	for _, s := range o.subs {
		s.Unsubscribe()
	}
	o.subs = nil
}

func (o *Orchestrator) OnEvent(e event.Event) {
	switch e.Type {
	case event.AgentReachedGoal, event.AgentDestroyed:
		o.HandleAgentRemoved()
	}
}

// StartWave runs the plan at a 0-based index. It refuses while another wave is
// Spawning or Draining, and for indexes or plans that do not check out.
func (o *Orchestrator) StartWave(index int) error {
	if o.state == Spawning || o.state == Draining {
		o.logger.DPanic("StartWave while a wave is running",
			zap.Int("requested", index+1),
			zap.Int("running", o.run.WaveIndex+1),
			zap.Stringer("state", o.state))
		return fmt.Errorf("%w: wave %d is %s", ErrWaveInProgress, o.run.WaveIndex+1, o.state)
	}
	plan, ok := o.catalog.Wave(index)
	if !ok {
		o.logger.Error("wave index out of range", zap.Int("index", index), zap.Int("waves", o.catalog.WaveCount()))
		return fmt.Errorf("%w: %d (have %d)", ErrWaveIndexOutOfRange, index, o.catalog.WaveCount())
	}
	if err := plan.Validate(); err != nil {
		o.logger.Error("refusing to run invalid wave", zap.Int("wave", index+1), zap.Error(err))
		return fmt.Errorf("%w: wave %d: %w", ErrInvalidPlan, index+1, err)
	}

	// полный сброс: ничего не переносим из прошлой (в т.ч. отменённой) волны
	o.tracker.Reset()
	o.run = RunState{WaveIndex: index, InProgress: true}
	o.state = Spawning
	o.task = o.scheduler.RunWave(plan, o.onGroupSpawn, o.onAllGroupsIssued)

	o.logger.Info("wave started", zap.Int("wave", index+1), zap.String("name", plan.Name), zap.Int("agents", plan.TotalAgents()))
	o.dispatcher.Dispatch(event.Event{Type: event.WaveStarted, Data: event.WaveData{Number: index + 1}})
	return nil
}

// Update advances the active spawn run on the shared clock.
func (o *Orchestrator) Update(deltaTime float64) {
	if o.state == Spawning && o.task != nil {
		o.task.Update(deltaTime)
	}
}

// HandleAgentRemoved is called once per removed agent, for any reason and any wave.
func (o *Orchestrator) HandleAgentRemoved() {
	if err := o.tracker.NotifyRemoved(); err != nil {
		o.logger.DPanic("agent removed with no live population",
			zap.Error(err),
			zap.Int("wave", o.run.WaveIndex+1),
			zap.Stringer("state", o.state))
		return
	}
	o.checkComplete()
}

// Cancel stops spawning and suppresses completion for the current wave.
// It reports whether anything was cancelled; repeated calls are no-ops.
func (o *Orchestrator) Cancel() bool {
	if o.state != Spawning && o.state != Draining {
		return false
	}
	o.run.StopRequested = true
	o.run.InProgress = false
	if o.task != nil {
		o.task.Cancel()
	}
	o.state = Cancelled
	o.logger.Info("wave cancelled", zap.Int("wave", o.run.WaveIndex+1), zap.Int("alive", o.tracker.Count()))
	return true
}

func (o *Orchestrator) onGroupSpawn(sp schedule.Spawn) {
	o.tracker.NotifySpawned()
	id, err := o.spawner.Spawn(sp.Group)
	if err != nil {
		// агент не появился, значит и уведомления об удалении не будет
		o.logger.Error("spawn action failed",
			zap.Int("wave", o.run.WaveIndex+1),
			zap.Int("group", sp.GroupIndex),
			zap.String("archetype", sp.Group.Archetype),
			zap.Error(err))
		if rerr := o.tracker.NotifyRemoved(); rerr != nil {
			o.logger.DPanic("failed to retract spawn", zap.Error(rerr))
		}
		o.checkComplete()
		return
	}
	o.logger.Debug("agent spawned",
		zap.Uint64("agent", id),
		zap.Int("group", sp.GroupIndex),
		zap.Int("ordinal", sp.Ordinal),
		zap.Float64("at", sp.At))
}

func (o *Orchestrator) onAllGroupsIssued() {
	if o.state != Spawning {
		return
	}
	o.run.SpawningComplete = true
	o.state = Draining
	o.logger.Debug("spawning complete", zap.Int("wave", o.run.WaveIndex+1), zap.Int("alive", o.tracker.Count()))
	// волна без врагов должна завершиться сразу, не дожидаясь удалений
	o.checkComplete()
}

// checkComplete runs whenever either side of the condition may have changed.
func (o *Orchestrator) checkComplete() {
	if o.state != Draining || !o.run.SpawningComplete || o.tracker.Count() != 0 {
		return
	}
	o.state = Complete
	o.run.InProgress = false
	number := o.run.WaveIndex + 1

	o.logger.Info("wave completed", zap.Int("wave", number), zap.Int("spawned", o.tracker.Spawned()))
	o.dispatcher.Dispatch(event.Event{Type: event.WaveCompleted, Data: event.WaveData{Number: number}})
	if o.run.WaveIndex == o.catalog.WaveCount()-1 {
		o.logger.Info("all waves completed")
		o.dispatcher.Dispatch(event.Event{Type: event.AllWavesCompleted})
	}
}

func (o *Orchestrator) State() State       { return o.state }
func (o *Orchestrator) RunState() RunState { return o.run }
func (o *Orchestrator) Population() int    { return o.tracker.Count() }
func (o *Orchestrator) WaveCount() int     { return o.catalog.WaveCount() }

// Active reports whether a wave is Spawning or Draining.
func (o *Orchestrator) Active() bool {
	return o.state == Spawning || o.state == Draining
}
