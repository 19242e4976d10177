// internal/schedule/scheduler.go
package schedule

import (
	"go-td-core/internal/defs"

	"go.uber.org/zap"
)

// Spawn is one spawn request issued by a run.
type Spawn struct {
	GroupIndex int
	Group      defs.SpawnGroup
	Ordinal    int     // 0-based position inside the group
	At         float64 // run clock, seconds since RunWave
}

// Scheduler executes wave spawn plans on the caller's clock.
type Scheduler struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger.Named("scheduler")}
}

// RunWave starts executing plan. Nothing is issued until the first Update;
// onGroupSpawn fires for every spawn and onAllGroupsIssued fires exactly once
// after the last group has issued its final spawn and PostWaveDelay has passed.
// Neither fires after Cancel.
func (s *Scheduler) RunWave(plan defs.WavePlan, onGroupSpawn func(Spawn), onAllGroupsIssued func()) *Run {
	r := &Run{
		logger:      s.logger,
		concurrent:  plan.RunGroupsConcurrently,
		postDelay:   plan.PostWaveDelay,
		onSpawn:     onGroupSpawn,
		onAllIssued: onAllGroupsIssued,
		loops:       make([]*groupLoop, len(plan.Groups)),
	}
	for i, g := range plan.Groups {
		r.loops[i] = &groupLoop{index: i, group: g}
	}
	s.logger.Debug("run started",
		zap.String("wave", plan.Name),
		zap.Int("groups", len(plan.Groups)),
		zap.Bool("concurrent", plan.RunGroupsConcurrently))
	return r
}

type stage int

const (
	stageGroups stage = iota
	stagePostDelay
	stageFinished
)

// Run is a cancellable spawn task. All methods must be called from the
// goroutine that owns the match clock.
type Run struct {
	logger      *zap.Logger
	concurrent  bool
	postDelay   float64
	onSpawn     func(Spawn)
	onAllIssued func()

	loops     []*groupLoop
	seqIndex  int // текущая группа в последовательном режиме
	stage     stage
	postWait  float64
	clock     float64
	issued    int
	cancelled bool
}

// groupLoop is one group's spawn loop: spawn, then sleep InterSpawnDelay
// before the next spawn of the same group.
type groupLoop struct {
	index  int
	group  defs.SpawnGroup
	issued int
	wait   float64
	done   bool
}

// Update advances the run by dt seconds. Spawns due inside the step are issued
// in time order; leftover time after a delay carries into the next one.
// Negative dt counts as zero.
func (r *Run) Update(dt float64) {
	remaining := max(dt, 0)
	for !r.cancelled && r.stage != stageFinished {
		r.issueReady()
		if r.cancelled {
			return
		}
		if r.stage == stageGroups && r.allGroupsDone() {
			r.stage = stagePostDelay
			r.postWait = r.postDelay
		}
		if r.stage == stagePostDelay && r.postWait <= 0 {
			r.finish()
			return
		}

		next := r.nextWake()
		if remaining < next {
			r.elapse(remaining)
			return
		}
		r.elapse(next)
		remaining -= next
	}
}

// Cancel sets the cooperative stop flag. Idempotent.
func (r *Run) Cancel() {
	if r.cancelled {
		return
	}
	r.cancelled = true
	r.logger.Debug("run cancelled", zap.Int("issued", r.issued), zap.Float64("at", r.clock))
}

func (r *Run) Cancelled() bool { return r.cancelled }

// Finished reports whether onAllGroupsIssued has fired.
func (r *Run) Finished() bool { return r.stage == stageFinished }

// Issued is the number of spawns issued so far.
func (r *Run) Issued() int { return r.issued }

// Elapsed is the run clock in seconds.
func (r *Run) Elapsed() float64 { return r.clock }

// issueReady lets every active loop with no pending sleep issue spawns until
// it sleeps or runs out of spawns. This is the zero-time part of a step.
func (r *Run) issueReady() {
	if r.concurrent {
		for _, l := range r.loops {
			if !l.done && l.wait <= 0 {
				r.runLoop(l)
				if r.cancelled {
					return
				}
			}
		}
		return
	}
	for r.seqIndex < len(r.loops) {
		l := r.loops[r.seqIndex]
		if l.wait > 0 {
			return
		}
		r.runLoop(l)
		if r.cancelled || !l.done {
			return
		}
		r.seqIndex++
	}
}

func (r *Run) runLoop(l *groupLoop) {
	for {
		if r.cancelled {
			return
		}
		if l.issued >= l.group.Count {
			l.done = true
			return
		}
		sp := Spawn{GroupIndex: l.index, Group: l.group, Ordinal: l.issued, At: r.clock}
		l.issued++
		r.issued++
		if r.onSpawn != nil {
			r.onSpawn(sp)
		}
		if r.cancelled {
			return
		}
		if l.issued < l.group.Count && l.group.InterSpawnDelay > 0 {
			l.wait = l.group.InterSpawnDelay
			return
		}
	}
}

func (r *Run) allGroupsDone() bool {
	for _, l := range r.loops {
		if !l.done {
			return false
		}
	}
	return true
}

// nextWake returns the time until the nearest suspension point expires.
func (r *Run) nextWake() float64 {
	if r.stage == stagePostDelay {
		return r.postWait
	}
	next := -1.0
	for _, l := range r.loops {
		if l.done || l.wait <= 0 {
			continue
		}
		if next < 0 || l.wait < next {
			next = l.wait
		}
	}
	return next
}

func (r *Run) elapse(d float64) {
	r.clock += d
	if r.stage == stagePostDelay {
		r.postWait -= d
		return
	}
	for _, l := range r.loops {
		if !l.done && l.wait > 0 {
			l.wait -= d
		}
	}
}

func (r *Run) finish() {
	r.stage = stageFinished
	r.logger.Debug("all groups issued", zap.Int("issued", r.issued), zap.Float64("at", r.clock))
	if r.onAllIssued != nil {
		r.onAllIssued()
	}
}
