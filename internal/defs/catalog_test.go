package defs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	require.Equal(t, 4, c.WaveCount())
	w3, ok := c.Wave(2)
	require.True(t, ok)
	assert.True(t, w3.RunGroupsConcurrently)
	assert.Equal(t, 9, w3.TotalAgents())

	flyer, ok := c.Archetype("ENEMY_FLYING")
	require.True(t, ok)
	assert.Equal(t, MovementFlying, flyer.Movement)

	weak, _ := c.Archetype("ENEMY_NORMAL_WEAK")
	assert.Equal(t, MovementGround, weak.Movement, "movement defaults to ground")

	turrets := c.Turrets()
	require.Len(t, turrets, 2)
	assert.Equal(t, 2, turrets[0].MaxLevel())
	assert.Equal(t, 10, turrets[0].PurchaseCost())
	assert.Equal(t, 32.0, turrets[0].Level(5).Damage, "past the top clamps to the last level")
	require.NotNil(t, turrets[1].Slow)
	paths := c.Paths()
	require.Len(t, paths, 2)
	assert.Equal(t, "north", paths[0].ID)
	assert.Equal(t, Point{X: 1100, Y: 450}, paths[0].Goal())
}

func TestLoadCatalog_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.toml")
	body := `
[[archetype]]
id = "A"
max_health = 10.0
speed = 3.0
reward = 1

[[path]]
id = "p"
nodes = [{ x = 0.0, y = 0.0 }, { x = 10.0, y = 0.0 }]

[[wave]]
name = "only"
  [[wave.group]]
  archetype = "A"
  count = 3
  origin = "p"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	plan, ok := c.Wave(0)
	require.True(t, ok)
	assert.Equal(t, 3, plan.Groups[0].Count)
	assert.Zero(t, plan.Groups[0].InterSpawnDelay)
	assert.False(t, plan.RunGroupsConcurrently)
}

func TestCatalogValidate_Errors(t *testing.T) {
	arch := []ArchetypeDefinition{{ID: "A", MaxHealth: 1, Speed: 1}}
	paths := []PathDefinition{{ID: "p", Nodes: []Point{{}}}}

	tests := []struct {
		name  string
		waves []WavePlan
		want  error
	}{
		{"missing archetype", []WavePlan{{Groups: []SpawnGroup{{Origin: "p", Count: 1}}}}, ErrMissingArchetype},
		{"missing origin", []WavePlan{{Groups: []SpawnGroup{{Archetype: "A", Count: 1}}}}, ErrMissingOrigin},
		{"unknown archetype", []WavePlan{{Groups: []SpawnGroup{{Archetype: "B", Origin: "p"}}}}, ErrUnknownArchetype},
		{"unknown path", []WavePlan{{Groups: []SpawnGroup{{Archetype: "A", Origin: "q"}}}}, ErrUnknownPath},
		{"negative count", []WavePlan{{Groups: []SpawnGroup{{Archetype: "A", Origin: "p", Count: -1}}}}, ErrInvalidGroup},
		{"negative delay", []WavePlan{{Groups: []SpawnGroup{{Archetype: "A", Origin: "p", InterSpawnDelay: -1}}}}, ErrInvalidGroup},
		{"negative post delay", []WavePlan{{PostWaveDelay: -0.5}}, ErrInvalidWave},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCatalog(arch, paths, tt.waves).Validate()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCatalogValidate_Turrets(t *testing.T) {
	ok := TurretLevel{Damage: 1, Range: 10, FireRate: 1, Cost: 5}

	tests := []struct {
		name   string
		turret TurretDefinition
		valid  bool
	}{
		{"single level", TurretDefinition{ID: "a", Levels: []TurretLevel{ok}}, true},
		{"no levels", TurretDefinition{ID: "b"}, false},
		{"hit chance above one", TurretDefinition{ID: "c", HitChance: 1.5, Levels: []TurretLevel{ok}}, false},
		{"zero range on level 2", TurretDefinition{ID: "d", Levels: []TurretLevel{ok, {Damage: 1, FireRate: 1}}}, false},
		{"negative upgrade cost", TurretDefinition{ID: "e", Levels: []TurretLevel{{Damage: 1, Range: 1, FireRate: 1, UpgradeCost: -1}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCatalog(nil, nil, nil).WithTurrets(tt.turret).Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestCatalogValidate_EmptyIsValid(t *testing.T) {
	c := NewCatalog(nil, nil, nil)
	assert.NoError(t, c.Validate())
	assert.Zero(t, c.WaveCount())
	_, ok := c.Wave(0)
	assert.False(t, ok)
}

func TestParseCatalog_BadTOML(t *testing.T) {
	_, err := ParseCatalog([]byte("[[wave]\nname="))
	assert.Error(t, err)
}
