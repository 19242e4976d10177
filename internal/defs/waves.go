// internal/defs/waves.go
package defs

import (
	"errors"
	"fmt"
)

var (
	ErrMissingArchetype = errors.New("spawn group has no archetype")
	ErrMissingOrigin    = errors.New("spawn group has no origin")
	ErrInvalidGroup     = errors.New("invalid spawn group")
	ErrInvalidWave      = errors.New("invalid wave plan")
)

// SpawnGroup — однородная пачка врагов внутри волны.
type SpawnGroup struct {
	Archetype       string  `toml:"archetype"`         // ID из [[archetype]]
	Count           int     `toml:"count"`             // Сколько врагов выпустить
	InterSpawnDelay float64 `toml:"inter_spawn_delay"` // Пауза после каждого врага, сек
	Origin          string  `toml:"origin"`            // ID пути, с первой точки которого стартуют
}

// WavePlan описывает одну волну. Не меняется после загрузки.
type WavePlan struct {
	Name                  string       `toml:"name"`
	Groups                []SpawnGroup `toml:"group"`
	RunGroupsConcurrently bool         `toml:"concurrent"`
	PostWaveDelay         float64      `toml:"post_wave_delay"`
}

// Validate checks the group on its own, without resolving references.
func (g SpawnGroup) Validate() error {
	switch {
	case g.Archetype == "":
		return ErrMissingArchetype
	case g.Origin == "":
		return ErrMissingOrigin
	case g.Count < 0:
		return fmt.Errorf("%w: count %d", ErrInvalidGroup, g.Count)
	case g.InterSpawnDelay < 0:
		return fmt.Errorf("%w: inter_spawn_delay %v", ErrInvalidGroup, g.InterSpawnDelay)
	}
	return nil
}

func (p WavePlan) Validate() error {
	if p.PostWaveDelay < 0 {
		return fmt.Errorf("%w: post_wave_delay %v", ErrInvalidWave, p.PostWaveDelay)
	}
	for i, g := range p.Groups {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("group[%d]: %w", i, err)
		}
	}
	return nil
}

// TotalAgents is the number of spawns the plan issues when run to the end.
func (p WavePlan) TotalAgents() int {
	n := 0
	for _, g := range p.Groups {
		n += g.Count
	}
	return n
}
