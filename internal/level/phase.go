// internal/level/phase.go
package level

import "fmt"

// Phase — фаза матча. Активна ровно одна.
type Phase int

const (
	Intro Phase = iota
	Building
	SpawningEnemies
	// AllEnemiesSpawned is kept for completeness and never entered: a wave that
	// has finished spawning but still has live agents stays in SpawningEnemies.
	AllEnemiesSpawned
	Lose
	Win
)

func (p Phase) String() string {
	switch p {
	case Intro:
		return "Intro"
	case Building:
		return "Building"
	case SpawningEnemies:
		return "SpawningEnemies"
	case AllEnemiesSpawned:
		return "AllEnemiesSpawned"
	case Lose:
		return "Lose"
	case Win:
		return "Win"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Terminal reports whether no further transitions are accepted.
func (p Phase) Terminal() bool {
	return p == Lose || p == Win
}
