// internal/placement/gate.go
package placement

import (
	"go-td-core/internal/event"

	"go.uber.org/zap"
)

// Purse is what TryPlace needs from the wallet.
type Purse interface {
	CanAfford(cost int) bool
	Spend(cost int) bool
}

// Gate holds the "tower placement allowed" flag set by the level. Grid
// validation is someone else's job; the gate only answers "may we build now".
type Gate struct {
	logger     *zap.Logger
	dispatcher *event.Dispatcher
	canPlace   bool
	placed     int
}

func NewGate(dispatcher *event.Dispatcher, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{logger: logger.Named("placement"), dispatcher: dispatcher}
}

// SetCanPlace emits PlacementChanged only when the flag actually flips.
func (g *Gate) SetCanPlace(allowed bool) {
	if g.canPlace == allowed {
		return
	}
	g.canPlace = allowed
	g.logger.Debug("placement changed", zap.Bool("allowed", allowed))
	g.dispatcher.Dispatch(event.Event{Type: event.PlacementChanged, Data: allowed})
}

func (g *Gate) CanPlace() bool { return g.canPlace }

// TryPlace charges cost when placement is open and the purse can pay.
func (g *Gate) TryPlace(cost int, purse Purse) bool {
	if !g.canPlace {
		return false
	}
	if !purse.CanAfford(cost) || !purse.Spend(cost) {
		return false
	}
	g.placed++
	return true
}

// Placed counts successful TryPlace calls.
func (g *Gate) Placed() int { return g.placed }
