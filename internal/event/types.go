// internal/event/types.go
package event

const (
	WaveStarted        EventType = "WaveStarted"        // Data: WaveData
	WaveCompleted      EventType = "WaveCompleted"      // Data: WaveData
	AllWavesCompleted  EventType = "AllWavesCompleted"  // Data: nil
	PhaseChanged       EventType = "PhaseChanged"       // Data: level.Phase
	AgentSpawned       EventType = "AgentSpawned"       // Data: AgentData
	AgentReachedGoal   EventType = "AgentReachedGoal"   // Data: AgentData
	AgentDestroyed     EventType = "AgentDestroyed"     // Data: AgentData
	AgentHealthChanged EventType = "AgentHealthChanged" // Data: HealthData
	MoneyChanged       EventType = "MoneyChanged"       // Data: int
	PlacementChanged   EventType = "PlacementChanged"   // Data: bool
)

// WaveData carries the 1-based wave number.
type WaveData struct {
	Number int
}

// AgentData describes an agent at the moment of the event.
type AgentData struct {
	ID        uint64
	Archetype string
	Reward    int
}

// HealthData is sent on every damage tick.
type HealthData struct {
	ID      uint64
	Current float64
	Max     float64
}
