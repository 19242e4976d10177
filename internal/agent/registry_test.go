package agent

import (
	"errors"
	"testing"

	"go-td-core/internal/defs"
	"go-td-core/internal/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testCatalog() *defs.Catalog {
	return defs.NewCatalog(
		[]defs.ArchetypeDefinition{
			{ID: "walker", MaxHealth: 10, Speed: 10, Reward: 3},
			{ID: "flyer", MaxHealth: 5, Speed: 10, Reward: 1, Movement: defs.MovementFlying},
		},
		[]defs.PathDefinition{
			// 10 вправо, 10 вниз: по земле 20, по воздуху ~14.14
			{ID: "p", Nodes: []defs.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}},
			{ID: "dot", Nodes: []defs.Point{{X: 5, Y: 5}}},
		},
		nil,
	)
}

type recorder struct {
	reached, destroyed, spawned []event.AgentData
	health                      []event.HealthData
}

func newRegistry(t *testing.T) (*Registry, *event.Dispatcher, *recorder) {
	t.Helper()
	d := event.NewDispatcher()
	rec := &recorder{}
	d.Subscribe(event.AgentReachedGoal, event.ListenerFunc(func(e event.Event) {
		rec.reached = append(rec.reached, e.Data.(event.AgentData))
	}))
	d.Subscribe(event.AgentDestroyed, event.ListenerFunc(func(e event.Event) {
		rec.destroyed = append(rec.destroyed, e.Data.(event.AgentData))
	}))
	d.Subscribe(event.AgentSpawned, event.ListenerFunc(func(e event.Event) {
		rec.spawned = append(rec.spawned, e.Data.(event.AgentData))
	}))
	d.Subscribe(event.AgentHealthChanged, event.ListenerFunc(func(e event.Event) {
		rec.health = append(rec.health, e.Data.(event.HealthData))
	}))
	return NewRegistry(testCatalog(), d, zaptest.NewLogger(t)), d, rec
}

func TestRegistry_SpawnResolvesReferences(t *testing.T) {
	r, _, rec := newRegistry(t)

	id, err := r.Spawn(defs.SpawnGroup{Archetype: "walker", Origin: "p"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, 1, r.Live())
	require.Len(t, rec.spawned, 1)
	assert.Equal(t, "walker", rec.spawned[0].Archetype)

	_, err = r.Spawn(defs.SpawnGroup{Archetype: "ghost", Origin: "p"})
	assert.True(t, errors.Is(err, defs.ErrUnknownArchetype))
	_, err = r.Spawn(defs.SpawnGroup{Archetype: "walker", Origin: "nowhere"})
	assert.True(t, errors.Is(err, ErrUnknownOrigin))
	assert.Equal(t, 1, r.Spawned())
}

func TestRegistry_GroundAgentWalksEveryNode(t *testing.T) {
	r, _, rec := newRegistry(t)
	id, err := r.Spawn(defs.SpawnGroup{Archetype: "walker", Origin: "p"})
	require.NoError(t, err)

	r.Update(1.5) // 15 из 20
	a, ok := r.Get(id)
	require.True(t, ok)
	assert.InDelta(t, 10, a.Position.X, 1e-9)
	assert.InDelta(t, 5, a.Position.Y, 1e-9)
	assert.InDelta(t, 5, a.DistanceToGoal, 1e-9)
	assert.Empty(t, rec.reached)

	r.Update(0.5)
	assert.Zero(t, r.Live())
	require.Len(t, rec.reached, 1)
	assert.Equal(t, id, rec.reached[0].ID)

	r.Update(10)
	assert.Len(t, rec.reached, 1, "goal is reported once")
	assert.Equal(t, 1, r.Reached())
}

func TestRegistry_FlyingAgentGoesStraightToGoal(t *testing.T) {
	r, _, rec := newRegistry(t)
	_, err := r.Spawn(defs.SpawnGroup{Archetype: "flyer", Origin: "p"})
	require.NoError(t, err)

	r.Update(1.4)
	assert.Empty(t, rec.reached)
	r.Update(0.1) // 15 > 14.14
	assert.Len(t, rec.reached, 1)
}

func TestRegistry_SingleNodePathArrivesImmediately(t *testing.T) {
	r, _, rec := newRegistry(t)
	_, err := r.Spawn(defs.SpawnGroup{Archetype: "walker", Origin: "dot"})
	require.NoError(t, err)
	r.Update(0)
	assert.Len(t, rec.reached, 1)
}

func TestRegistry_ApplyDamage(t *testing.T) {
	r, _, rec := newRegistry(t)
	id, _ := r.Spawn(defs.SpawnGroup{Archetype: "walker", Origin: "p"})

	assert.False(t, r.ApplyDamage(id, 0))
	assert.False(t, r.ApplyDamage(99, 5))

	assert.True(t, r.ApplyDamage(id, 4))
	assert.Empty(t, rec.destroyed)
	assert.True(t, r.ApplyDamage(id, 20))
	require.Len(t, rec.destroyed, 1)
	assert.Equal(t, 3, rec.destroyed[0].Reward)
	assert.Equal(t, []event.HealthData{{ID: id, Current: 6, Max: 10}, {ID: id, Current: 0, Max: 10}}, rec.health)

	assert.False(t, r.ApplyDamage(id, 1), "destroyed agents take no more damage")
	r.Update(100)
	assert.Empty(t, rec.reached, "a destroyed agent never reaches the goal")
	assert.Equal(t, 1, r.Destroyed())
}

func TestRegistry_DamageDuringGoalEvent(t *testing.T) {
	r, d, rec := newRegistry(t)
	a, _ := r.Spawn(defs.SpawnGroup{Archetype: "walker", Origin: "dot"})
	b, _ := r.Spawn(defs.SpawnGroup{Archetype: "walker", Origin: "p"})

	// обработчик бьёт уже удалённого и живого агентов
	d.Subscribe(event.AgentReachedGoal, event.ListenerFunc(func(event.Event) {
		assert.False(t, r.ApplyDamage(a, 100))
		r.ApplyDamage(b, 100)
	}))
	r.Update(0.1)

	assert.Len(t, rec.reached, 1)
	assert.Len(t, rec.destroyed, 1)
	assert.Zero(t, r.Live())
	assert.Empty(t, r.Agents())
}

func TestRegistry_SlowDoesNotStack(t *testing.T) {
	r, _, _ := newRegistry(t)
	id, _ := r.Spawn(defs.SpawnGroup{Archetype: "walker", Origin: "p"})

	assert.False(t, r.ApplyDebuff(id, 0.5, 0))
	assert.False(t, r.ApplyDebuff(42, 0.5, 1))

	require.True(t, r.ApplyDebuff(id, 0.5, 1))
	require.True(t, r.ApplyDebuff(id, 0.2, 2.5)) // слабее, но дольше
	a, _ := r.Get(id)
	assert.True(t, a.Slowed)
	assert.InDelta(t, 5, a.Speed, 1e-9)

	r.Update(2)
	a, _ = r.Get(id)
	assert.InDelta(t, 10, a.Position.X, 1e-9, "2s at half speed")
	assert.True(t, a.Slowed)

	r.Update(0.5)
	a, ok := r.Get(id)
	require.True(t, ok)
	assert.False(t, a.Slowed)
	assert.InDelta(t, 5, a.Position.Y, 1e-9)
	assert.InDelta(t, 10, a.Speed, 1e-9)

	require.True(t, r.ApplyDebuff(id, 7, 1))
	a, _ = r.Get(id)
	assert.Zero(t, a.Speed, "strength is clamped to a full stop")
}

func TestRegistry_AgentsSnapshotOrder(t *testing.T) {
	r, _, _ := newRegistry(t)
	for i := 0; i < 3; i++ {
		_, err := r.Spawn(defs.SpawnGroup{Archetype: "walker", Origin: "p"})
		require.NoError(t, err)
	}
	r.ApplyDamage(2, 100)

	ids := []uint64{}
	for _, a := range r.Agents() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []uint64{1, 3}, ids)
	_, ok := r.Get(2)
	assert.False(t, ok)
}
