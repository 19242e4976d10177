// internal/agent/components.go
package agent

import "go-td-core/internal/defs"

// Position — компонент позиции
type Position struct {
	X, Y float64
}

// Path — узлы, по которым идёт агент, и индекс текущей цели.
type Path struct {
	ID           string
	Nodes        []defs.Point
	CurrentIndex int
}

// SlowEffect indicates that an agent is slowed.
type SlowEffect struct {
	Timer    float64 // How much time is left for the effect.
	Strength float64 // Share of speed removed, 0..1 (0.3 = -30%).
}

// Agent is a read-only snapshot of one live agent.
type Agent struct {
	ID             uint64
	Archetype      string
	Movement       defs.MovementType
	Position       Position
	Health         float64
	MaxHealth      float64
	Speed          float64 // effective, with slow applied
	Reward         int
	Slowed         bool
	DistanceToGoal float64
}

type agent struct {
	id       uint64
	def      defs.ArchetypeDefinition
	pos      Position
	path     Path
	health   float64
	slow     *SlowEffect
	finished bool
}

func (a *agent) speed() float64 {
	if a.slow == nil {
		return a.def.Speed
	}
	return a.def.Speed * (1 - a.slow.Strength)
}
