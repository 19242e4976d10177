package wave

import (
	"errors"
	"fmt"
	"testing"

	"go-td-core/internal/defs"
	"go-td-core/internal/event"
	"go-td-core/internal/population"
	"go-td-core/internal/schedule"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fakeSpawner struct {
	next    uint64
	spawned []defs.SpawnGroup
	fail    map[string]bool
}

func (f *fakeSpawner) Spawn(g defs.SpawnGroup) (uint64, error) {
	if f.fail[g.Archetype] {
		return 0, errors.New("no prefab")
	}
	f.next++
	f.spawned = append(f.spawned, g)
	return f.next, nil
}

type harness struct {
	orch    *Orchestrator
	spawner *fakeSpawner
	d       *event.Dispatcher
	events  []string
}

func newHarness(t *testing.T, waves []defs.WavePlan, opts ...zap.Option) *harness {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(opts...))
	h := &harness{spawner: &fakeSpawner{fail: map[string]bool{}}, d: event.NewDispatcher()}
	for _, et := range []event.EventType{event.WaveStarted, event.WaveCompleted, event.AllWavesCompleted} {
		h.d.Subscribe(et, event.ListenerFunc(func(e event.Event) {
			if wd, ok := e.Data.(event.WaveData); ok {
				h.events = append(h.events, fmt.Sprintf("%s(%d)", e.Type, wd.Number))
				return
			}
			h.events = append(h.events, string(e.Type))
		}))
	}
	catalog := defs.NewCatalog(nil, nil, waves)
	h.orch = New(catalog, h.spawner, schedule.New(logger), population.New(), h.d, logger)
	t.Cleanup(h.orch.Close)
	return h
}

func (h *harness) remove(n int) {
	for i := 0; i < n; i++ {
		h.d.Dispatch(event.Event{Type: event.AgentDestroyed, Data: event.AgentData{}})
	}
}

func plan(concurrent bool, groups ...defs.SpawnGroup) defs.WavePlan {
	return defs.WavePlan{Groups: groups, RunGroupsConcurrently: concurrent}
}

func group(count int, delay float64) defs.SpawnGroup {
	return defs.SpawnGroup{Archetype: "A", Origin: "p", Count: count, InterSpawnDelay: delay}
}

func TestOrchestrator_ZeroAgentWaveCompletes(t *testing.T) {
	for _, p := range []defs.WavePlan{
		plan(false),
		plan(false, group(0, 1), group(0, 0)),
		plan(true, group(0, 1), group(0, 0)),
	} {
		h := newHarness(t, []defs.WavePlan{p})
		require.NoError(t, h.orch.StartWave(0))

		h.orch.Update(0.016)

		assert.Equal(t, Complete, h.orch.State())
		assert.Equal(t, []string{"WaveStarted(1)", "WaveCompleted(1)", "AllWavesCompleted"}, h.events)
	}
}

func TestOrchestrator_DrainsThenCompletes(t *testing.T) {
	h := newHarness(t, []defs.WavePlan{plan(false, group(3, 0)), plan(false, group(1, 0))})
	require.NoError(t, h.orch.StartWave(0))

	h.orch.Update(0.016)
	require.Len(t, h.spawner.spawned, 3)
	assert.Equal(t, Draining, h.orch.State())
	assert.Equal(t, 3, h.orch.Population())
	assert.True(t, h.orch.RunState().SpawningComplete)

	h.remove(2)
	assert.Equal(t, Draining, h.orch.State())
	h.remove(1)

	assert.Equal(t, Complete, h.orch.State())
	assert.False(t, h.orch.RunState().InProgress)
	if diff := cmp.Diff([]string{"WaveStarted(1)", "WaveCompleted(1)"}, h.events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}
}

func TestOrchestrator_LastWaveEmitsAllWavesCompleted(t *testing.T) {
	h := newHarness(t, []defs.WavePlan{plan(false, group(1, 0)), plan(false, group(1, 0))})

	require.NoError(t, h.orch.StartWave(0))
	h.orch.Update(0.1)
	h.remove(1)
	require.NoError(t, h.orch.StartWave(1))
	h.orch.Update(0.1)
	h.remove(1)

	assert.Equal(t, []string{
		"WaveStarted(1)", "WaveCompleted(1)",
		"WaveStarted(2)", "WaveCompleted(2)", "AllWavesCompleted",
	}, h.events)
}

// Популяция обнулилась раньше, чем закончился спавн: завершение должно
// случиться, как только спавн закончится, без новых удалений.
func TestOrchestrator_PopulationEmptiesBeforeSpawningEnds(t *testing.T) {
	p := plan(false, group(1, 0))
	p.PostWaveDelay = 1
	h := newHarness(t, []defs.WavePlan{p})
	require.NoError(t, h.orch.StartWave(0))

	h.orch.Update(0.1)
	h.remove(1)
	assert.Equal(t, Spawning, h.orch.State())
	assert.Zero(t, h.orch.Population())

	h.orch.Update(1)

	assert.Equal(t, Complete, h.orch.State())
}

func TestOrchestrator_StartWaveWhileRunning(t *testing.T) {
	h := newHarness(t, []defs.WavePlan{plan(false, group(2, 1)), plan(false, group(1, 0))})
	require.NoError(t, h.orch.StartWave(0))

	err := h.orch.StartWave(1)

	assert.ErrorIs(t, err, ErrWaveInProgress)
	assert.Equal(t, 0, h.orch.RunState().WaveIndex)
	assert.Equal(t, []string{"WaveStarted(1)"}, h.events)
}

func TestOrchestrator_StartWaveWhileRunning_PanicsInDevelopment(t *testing.T) {
	h := newHarness(t, []defs.WavePlan{plan(false, group(2, 1))}, zap.Development())
	require.NoError(t, h.orch.StartWave(0))

	assert.Panics(t, func() { _ = h.orch.StartWave(0) })
}

func TestOrchestrator_ConfigurationErrors(t *testing.T) {
	bad := plan(false, defs.SpawnGroup{Origin: "p", Count: 1})
	h := newHarness(t, []defs.WavePlan{bad})

	assert.ErrorIs(t, h.orch.StartWave(3), ErrWaveIndexOutOfRange)
	assert.ErrorIs(t, h.orch.StartWave(-1), ErrWaveIndexOutOfRange)

	err := h.orch.StartWave(0)
	assert.ErrorIs(t, err, ErrInvalidPlan)
	assert.ErrorIs(t, err, defs.ErrMissingArchetype)

	assert.Equal(t, Idle, h.orch.State())
	assert.Empty(t, h.events)
}

func TestOrchestrator_CancelIsIdempotent(t *testing.T) {
	h := newHarness(t, []defs.WavePlan{plan(true, group(5, 0.5), group(5, 0.2))})
	require.NoError(t, h.orch.StartWave(0))
	h.orch.Update(0.3)
	spawned := len(h.spawner.spawned)

	assert.True(t, h.orch.Cancel())
	first := h.orch.RunState()
	assert.False(t, h.orch.Cancel())

	assert.Equal(t, first, h.orch.RunState())
	assert.Equal(t, Cancelled, h.orch.State())
	assert.True(t, first.StopRequested)

	h.orch.Update(10)
	assert.Len(t, h.spawner.spawned, spawned)

	// оставшиеся враги уходят, но событий завершения нет
	h.remove(spawned)
	assert.Zero(t, h.orch.Population())
	assert.Equal(t, Cancelled, h.orch.State())
	assert.Equal(t, []string{"WaveStarted(1)"}, h.events)
}

func TestOrchestrator_CancelWhileDraining(t *testing.T) {
	h := newHarness(t, []defs.WavePlan{plan(false, group(2, 0))})
	require.NoError(t, h.orch.StartWave(0))
	h.orch.Update(0.1)
	require.Equal(t, Draining, h.orch.State())

	assert.True(t, h.orch.Cancel())
	h.remove(2)

	assert.Equal(t, Cancelled, h.orch.State())
	assert.NotContains(t, h.events, "WaveCompleted(1)")
}

func TestOrchestrator_CancelWhenIdle(t *testing.T) {
	h := newHarness(t, []defs.WavePlan{plan(false, group(1, 0))})
	assert.False(t, h.orch.Cancel())
	assert.Equal(t, Idle, h.orch.State())
}

func TestOrchestrator_RestartAfterCancelResetsState(t *testing.T) {
	h := newHarness(t, []defs.WavePlan{plan(false, group(3, 0)), plan(false, group(1, 0))})
	require.NoError(t, h.orch.StartWave(0))
	h.orch.Update(0.1)
	h.orch.Cancel()

	require.NoError(t, h.orch.StartWave(1))

	assert.Equal(t, RunState{WaveIndex: 1, InProgress: true}, h.orch.RunState())
	assert.Zero(t, h.orch.Population())
}

func TestOrchestrator_FailedSpawnIsRetracted(t *testing.T) {
	h := newHarness(t, []defs.WavePlan{plan(false, defs.SpawnGroup{Archetype: "broken", Origin: "p", Count: 2}, group(1, 0))})
	h.spawner.fail["broken"] = true
	require.NoError(t, h.orch.StartWave(0))

	h.orch.Update(0.1)
	assert.Equal(t, 1, h.orch.Population())

	h.remove(1)
	assert.Equal(t, Complete, h.orch.State())
}

func TestOrchestrator_NegativePopulationReported(t *testing.T) {
	h := newHarness(t, []defs.WavePlan{plan(false, group(1, 0))})
	require.NoError(t, h.orch.StartWave(0))
	h.orch.Update(0.1)
	h.remove(1)
	require.Equal(t, Complete, h.orch.State())

	// release: logged and ignored
	assert.NotPanics(t, func() { h.remove(1) })
	assert.Zero(t, h.orch.Population())
	assert.Equal(t, Complete, h.orch.State())

	dev := newHarness(t, []defs.WavePlan{plan(false, group(1, 0))}, zap.Development())
	assert.Panics(t, func() { dev.remove(1) })
}
