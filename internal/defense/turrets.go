// internal/defense/turrets.go
package defense

import (
	"math"

	"go-td-core/internal/agent"
	"go-td-core/internal/defs"
	"go-td-core/internal/utils"

	"go.uber.org/zap"
)

// Targets is the agent side of the apply-damage / apply-debuff services.
type Targets interface {
	Agents() []agent.Agent
	ApplyDamage(id uint64, amount float64) bool
	ApplyDebuff(id uint64, strength, duration float64) bool
}

// Purse is the wallet side of upgrades and refunds.
type Purse interface {
	CanAfford(cost int) bool
	Spend(cost int) bool
	AddMoney(amount int)
}

// Turret is the runtime state of one fixed turret.
type Turret struct {
	Def          defs.TurretDefinition
	Level        int     // 0-based
	FireCooldown float64 // Оставшееся время до следующего выстрела
	Shots        int
	Hits         int
}

// Stats returns the current level's numbers.
func (t *Turret) Stats() defs.TurretLevel { return t.Def.Level(t.Level) }

func (t *Turret) AtMaxLevel() bool { return t.Level >= t.Def.MaxLevel() }

// NextLevelCost — цена следующего уровня, -1 если выше некуда.
func (t *Turret) NextLevelCost() int {
	if t.AtMaxLevel() {
		return -1
	}
	return t.Stats().UpgradeCost
}

// System fires fixed turrets at agents. It has no projectiles: a shot lands on
// the tick it is fired.
type System struct {
	logger  *zap.Logger
	targets Targets
	rng     *utils.PRNGService
	turrets []*Turret
}

func NewSystem(turrets []defs.TurretDefinition, targets Targets, rng *utils.PRNGService, logger *zap.Logger) *System {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &System{logger: logger.Named("defense"), targets: targets, rng: rng}
	for _, d := range turrets {
		s.turrets = append(s.turrets, &Turret{Def: d})
	}
	return s
}

// Update ticks cooldowns and fires every ready turret that has a target.
func (s *System) Update(deltaTime float64) {
	for _, t := range s.turrets {
		if t.FireCooldown > 0 {
			t.FireCooldown -= deltaTime
			if t.FireCooldown > 0 {
				continue
			}
		}

		targetID, ok := s.findTarget(t)
		if !ok {
			t.FireCooldown = 0
			continue
		}
		s.fire(t, targetID)
	}
}

func (s *System) fire(t *Turret, targetID uint64) {
	stats := t.Stats()
	t.Shots++
	t.FireCooldown += 1 / stats.FireRate
	if t.Def.HitChance > 0 && !s.rng.Chance(t.Def.HitChance) {
		return
	}
	t.Hits++
	if t.Def.Slow != nil {
		s.targets.ApplyDebuff(targetID, t.Def.Slow.Multiplier, t.Def.Slow.Duration)
	}
	s.targets.ApplyDamage(targetID, stats.Damage)
}

// findTarget picks the agent in range that is closest to its goal.
func (s *System) findTarget(t *Turret) (uint64, bool) {
	var best uint64
	found := false
	bestDist := math.MaxFloat64
	reach := t.Stats().Range
	for _, a := range s.targets.Agents() {
		d := utils.Distance(t.Def.Position.X, t.Def.Position.Y, a.Position.X, a.Position.Y)
		if d > reach {
			continue
		}
		if a.DistanceToGoal < bestDist {
			bestDist = a.DistanceToGoal
			best = a.ID
			found = true
		}
	}
	return best, found
}

// AddTurret puts a new turret on the field, ready to fire.
func (s *System) AddTurret(def defs.TurretDefinition) {
	s.turrets = append(s.turrets, &Turret{Def: def})
	s.logger.Debug("turret added", zap.String("id", def.ID), zap.Float64("x", def.Position.X), zap.Float64("y", def.Position.Y))
}

// TryUpgrade raises turret idx by one level. It refuses at the top level or
// when the purse is short, and spends only on success.
func (s *System) TryUpgrade(idx int, purse Purse) bool {
	if idx < 0 || idx >= len(s.turrets) {
		return false
	}
	t := s.turrets[idx]
	if t.AtMaxLevel() {
		s.logger.Debug("turret already at max level", zap.String("id", t.Def.ID), zap.Int("level", t.Level+1))
		return false
	}
	cost := t.NextLevelCost()
	if !purse.CanAfford(cost) || !purse.Spend(cost) {
		s.logger.Debug("not enough money to upgrade", zap.String("id", t.Def.ID), zap.Int("cost", cost))
		return false
	}
	t.Level++
	s.logger.Info("turret upgraded", zap.String("id", t.Def.ID), zap.Int("level", t.Level+1), zap.Int("cost", cost))
	return true
}

// Sell removes turret idx and refunds its current level's sell value.
// Indexes of later turrets shift down by one.
func (s *System) Sell(idx int, purse Purse) (int, bool) {
	if idx < 0 || idx >= len(s.turrets) {
		return 0, false
	}
	t := s.turrets[idx]
	refund := t.Stats().SellValue
	s.turrets = append(s.turrets[:idx], s.turrets[idx+1:]...)
	if refund > 0 {
		purse.AddMoney(refund)
	}
	s.logger.Info("turret sold", zap.String("id", t.Def.ID), zap.Int("level", t.Level+1), zap.Int("refund", refund))
	return refund, true
}

// TurretAt returns the index of the turret whose centre is within radius of (x, y).
func (s *System) TurretAt(x, y, radius float64) (int, bool) {
	for i, t := range s.turrets {
		if utils.Distance(x, y, t.Def.Position.X, t.Def.Position.Y) <= radius {
			return i, true
		}
	}
	return -1, false
}

// Turrets exposes turret state for rendering and reports.
func (s *System) Turrets() []*Turret { return s.turrets }

// Shots sums fired shots over all turrets.
func (s *System) Shots() int {
	n := 0
	for _, t := range s.turrets {
		n += t.Shots
	}
	return n
}
