// internal/population/tracker.go
package population

import "errors"

// ErrNegativePopulation means a removal arrived with nothing left to remove:
// either a removal was delivered twice or a spawn was never counted.
var ErrNegativePopulation = errors.New("population would go negative")

// Tracker counts live agents of the current wave. It does not decide when a
// wave is over; callers combine Count() == 0 with the scheduler state.
type Tracker struct {
	count   int
	spawned int
	removed int
}

// New — пустой счётчик.
func New() *Tracker {
	return &Tracker{}
}

// Reset zeroes everything. Called once at the start of every wave.
func (t *Tracker) Reset() {
	*t = Tracker{}
}

// NotifySpawned is called the moment a spawn is issued.
func (t *Tracker) NotifySpawned() {
	t.count++
	t.spawned++
}

// NotifyRemoved is called once per removed agent, whatever the reason.
// On an empty population the removal is refused and ErrNegativePopulation returned.
func (t *Tracker) NotifyRemoved() error {
	if t.count == 0 {
		return ErrNegativePopulation
	}
	t.count--
	t.removed++
	return nil
}

// Count — сколько агентов текущей волны ещё живы.
func (t *Tracker) Count() int { return t.count }

// Spawned is the number of spawns counted since the last Reset.
func (t *Tracker) Spawned() int { return t.spawned }

// Removed is the number of accepted removals since the last Reset.
func (t *Tracker) Removed() int { return t.removed }
