// internal/defs/towers.go
package defs

import "fmt"

// SlowParams — параметры замедления при попадании.
type SlowParams struct {
	Multiplier float64 `toml:"multiplier"` // доля скорости, которую отнимает (0.3 = -30%)
	Duration   float64 `toml:"duration"`   // сек
}

// TurretLevel — характеристики одного уровня турели.
type TurretLevel struct {
	Damage   float64 `toml:"damage"`
	Range    float64 `toml:"range"`
	FireRate float64 `toml:"fire_rate"` // Shots per second
	// Cost is the build price; only the first level's is ever charged.
	Cost int `toml:"cost"`
	// UpgradeCost is paid to go from this level to the next one.
	UpgradeCost int `toml:"upgrade_cost"`
	SellValue   int `toml:"sell_value"`
}

// TurretDefinition is a fixed auto-turret consuming the apply-damage and
// apply-debuff services. Levels[0] is what gets built.
type TurretDefinition struct {
	ID        string        `toml:"id"`
	Position  Point         `toml:"position"`
	HitChance float64       `toml:"hit_chance"` // 0 means always hit
	Slow      *SlowParams   `toml:"slow,omitempty"`
	Levels    []TurretLevel `toml:"level"`
}

// Validate checks that every level has usable stats.
func (d TurretDefinition) Validate() error {
	if len(d.Levels) == 0 {
		return fmt.Errorf("%w: turret %q has no levels", ErrInvalidCatalog, d.ID)
	}
	if d.HitChance < 0 || d.HitChance > 1 {
		return fmt.Errorf("%w: turret %q hit chance %v", ErrInvalidCatalog, d.ID, d.HitChance)
	}
	for i, l := range d.Levels {
		if l.Range <= 0 || l.FireRate <= 0 || l.Damage < 0 || l.Cost < 0 || l.UpgradeCost < 0 || l.SellValue < 0 {
			return fmt.Errorf("%w: turret %q level %d has invalid stats", ErrInvalidCatalog, d.ID, i+1)
		}
	}
	return nil
}

// Level returns stats for a 0-based level, clamped to the last one.
func (d TurretDefinition) Level(i int) TurretLevel {
	if len(d.Levels) == 0 {
		return TurretLevel{}
	}
	if i < 0 {
		i = 0
	}
	if i >= len(d.Levels) {
		i = len(d.Levels) - 1
	}
	return d.Levels[i]
}

// MaxLevel is the 0-based index of the last level.
func (d TurretDefinition) MaxLevel() int { return len(d.Levels) - 1 }

// PurchaseCost — цена постройки (первый уровень).
func (d TurretDefinition) PurchaseCost() int { return d.Level(0).Cost }
