// internal/agent/registry.go
package agent

import (
	"errors"
	"fmt"

	"go-td-core/internal/defs"
	"go-td-core/internal/event"
	"go-td-core/internal/utils"

	"go.uber.org/zap"
)

var ErrUnknownOrigin = errors.New("unknown spawn origin")

// Catalog resolves the references a spawn group carries.
type Catalog interface {
	Archetype(id string) (defs.ArchetypeDefinition, bool)
	Path(id string) (defs.PathDefinition, bool)
}

// Registry owns every live agent of a match. It performs the spawn action and
// reports each removal exactly once: AgentReachedGoal or AgentDestroyed.
type Registry struct {
	logger     *zap.Logger
	catalog    Catalog
	dispatcher *event.Dispatcher

	nextID uint64
	byID   map[uint64]*agent
	order  []*agent // по возрастанию ID, чтобы обход был детерминированным

	spawned   int
	destroyed int
	reached   int
}

func NewRegistry(catalog Catalog, dispatcher *event.Dispatcher, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		logger:     logger.Named("agents"),
		catalog:    catalog,
		dispatcher: dispatcher,
		nextID:     1,
		byID:       make(map[uint64]*agent),
	}
}

// Spawn creates one agent at the start of the group's origin path.
func (r *Registry) Spawn(group defs.SpawnGroup) (uint64, error) {
	def, ok := r.catalog.Archetype(group.Archetype)
	if !ok {
		return 0, fmt.Errorf("%w: %q", defs.ErrUnknownArchetype, group.Archetype)
	}
	path, ok := r.catalog.Path(group.Origin)
	if !ok || len(path.Nodes) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownOrigin, group.Origin)
	}

	nodes := path.Nodes
	if def.Movement == defs.MovementFlying {
		// летающие идут напрямую к цели
		nodes = []defs.Point{path.Start(), path.Goal()}
	}
	start := path.Start()

	a := &agent{
		id:     r.nextID,
		def:    def,
		pos:    Position{X: start.X, Y: start.Y},
		path:   Path{ID: path.ID, Nodes: nodes, CurrentIndex: 1},
		health: def.MaxHealth,
	}
	r.nextID++
	r.byID[a.id] = a
	r.order = append(r.order, a)
	r.spawned++

	r.logger.Debug("agent spawned", zap.Uint64("id", a.id), zap.String("archetype", def.ID), zap.String("path", path.ID))
	r.dispatcher.Dispatch(event.Event{Type: event.AgentSpawned, Data: r.agentData(a)})
	return a.id, nil
}

// Update ticks status effects, then moves agents. Agents that reach the goal
// are removed before the event goes out.
func (r *Registry) Update(deltaTime float64) {
	r.updateStatusEffects(deltaTime)

	var arrived []*agent
	for _, a := range r.order {
		if a.finished {
			continue
		}
		if r.move(a, deltaTime) {
			arrived = append(arrived, a)
		}
	}
	for _, a := range arrived {
		if a.finished {
			continue
		}
		r.remove(a)
		r.reached++
		r.logger.Debug("agent reached goal", zap.Uint64("id", a.id))
		r.dispatcher.Dispatch(event.Event{Type: event.AgentReachedGoal, Data: r.agentData(a)})
	}
	r.compact()
}

// ApplyDamage is the damage service. Non-positive amounts and unknown ids are refused.
func (r *Registry) ApplyDamage(id uint64, amount float64) bool {
	a, ok := r.byID[id]
	if !ok || a.finished || amount <= 0 {
		return false
	}
	a.health -= amount
	if a.health < 0 {
		a.health = 0
	}
	r.dispatcher.Dispatch(event.Event{
		Type: event.AgentHealthChanged,
		Data: event.HealthData{ID: id, Current: a.health, Max: a.def.MaxHealth},
	})
	if a.health > 0 || a.finished {
		return true
	}

	r.remove(a)
	r.destroyed++
	r.logger.Debug("agent destroyed", zap.Uint64("id", id), zap.Int("reward", a.def.Reward))
	r.dispatcher.Dispatch(event.Event{Type: event.AgentDestroyed, Data: r.agentData(a)})
	r.compact()
	return true
}

// ApplyDebuff is the slow service. Slows do not stack: the stronger value and
// the longer remaining time are kept independently.
func (r *Registry) ApplyDebuff(id uint64, strength, duration float64) bool {
	a, ok := r.byID[id]
	if !ok || a.finished || duration <= 0 {
		return false
	}
	strength = utils.Clamp(strength, 0, 1)
	if a.slow == nil {
		a.slow = &SlowEffect{Timer: duration, Strength: strength}
		return true
	}
	if strength > a.slow.Strength {
		a.slow.Strength = strength
	}
	if duration > a.slow.Timer {
		a.slow.Timer = duration
	}
	return true
}

// Agents returns a snapshot of the live agents in spawn order.
func (r *Registry) Agents() []Agent {
	out := make([]Agent, 0, len(r.byID))
	for _, a := range r.order {
		if a.finished {
			continue
		}
		out = append(out, Agent{
			ID:             a.id,
			Archetype:      a.def.ID,
			Movement:       a.def.Movement,
			Position:       a.pos,
			Health:         a.health,
			MaxHealth:      a.def.MaxHealth,
			Speed:          a.speed(),
			Reward:         a.def.Reward,
			Slowed:         a.slow != nil,
			DistanceToGoal: distanceToGoal(a),
		})
	}
	return out
}

// Get returns the snapshot of a single live agent.
func (r *Registry) Get(id uint64) (Agent, bool) {
	if _, ok := r.byID[id]; !ok {
		return Agent{}, false
	}
	for _, a := range r.Agents() {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

func (r *Registry) Live() int      { return len(r.byID) }
func (r *Registry) Spawned() int   { return r.spawned }
func (r *Registry) Destroyed() int { return r.destroyed }
func (r *Registry) Reached() int   { return r.reached }

func (r *Registry) remove(a *agent) {
	a.finished = true
	delete(r.byID, a.id)
}

func (r *Registry) compact() {
	live := r.order[:0]
	for _, a := range r.order {
		if !a.finished {
			live = append(live, a)
		}
	}
	for i := len(live); i < len(r.order); i++ {
		r.order[i] = nil
	}
	r.order = live
}

func (r *Registry) agentData(a *agent) event.AgentData {
	return event.AgentData{ID: a.id, Archetype: a.def.ID, Reward: a.def.Reward}
}
