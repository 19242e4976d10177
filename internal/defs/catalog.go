// internal/defs/catalog.go
package defs

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

//go:embed data/default_catalog.toml
var defaultCatalog []byte

var (
	ErrUnknownArchetype = errors.New("unknown archetype")
	ErrUnknownPath      = errors.New("unknown path")
	ErrInvalidCatalog   = errors.New("invalid catalog")
)

// Catalog is the read-only level data for one match: archetypes, paths and
// the ordered wave list.
type Catalog struct {
	archetypes map[string]ArchetypeDefinition
	paths      map[string]PathDefinition
	waves      []WavePlan
	turrets    []TurretDefinition
}

type catalogFile struct {
	Archetypes []ArchetypeDefinition `toml:"archetype"`
	Paths      []PathDefinition      `toml:"path"`
	Waves      []WavePlan            `toml:"wave"`
	Turrets    []TurretDefinition    `toml:"turret"`
}

// NewCatalog indexes the given definitions. Later duplicates win.
func NewCatalog(archetypes []ArchetypeDefinition, paths []PathDefinition, waves []WavePlan) *Catalog {
	c := &Catalog{
		archetypes: make(map[string]ArchetypeDefinition, len(archetypes)),
		paths:      make(map[string]PathDefinition, len(paths)),
		waves:      append([]WavePlan(nil), waves...),
	}
	for _, a := range archetypes {
		if a.Movement == "" {
			a.Movement = MovementGround
		}
		c.archetypes[a.ID] = a
	}
	for _, p := range paths {
		c.paths[p.ID] = p
	}
	return c
}

// LoadCatalog reads a TOML catalog file and validates it.
func LoadCatalog(path string) (*Catalog, error) {
	var raw catalogFile
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}
	c := NewCatalog(raw.Archetypes, raw.Paths, raw.Waves).WithTurrets(raw.Turrets...)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes a TOML catalog from memory and validates it.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw catalogFile
	if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	c := NewCatalog(raw.Archetypes, raw.Paths, raw.Waves).WithTurrets(raw.Turrets...)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is broken: %v", err))
	}
	return c
}

// Validate resolves every reference. An empty wave list is valid; the level
// treats it as "nothing to fight".
func (c *Catalog) Validate() error {
	for id, a := range c.archetypes {
		if id == "" {
			return fmt.Errorf("%w: archetype without id", ErrInvalidCatalog)
		}
		if a.MaxHealth <= 0 || a.Speed <= 0 || a.Reward < 0 {
			return fmt.Errorf("%w: archetype %q has non-positive stats", ErrInvalidCatalog, id)
		}
		if a.Movement != MovementGround && a.Movement != MovementFlying {
			return fmt.Errorf("%w: archetype %q movement %q", ErrInvalidCatalog, id, a.Movement)
		}
	}
	for id, p := range c.paths {
		if len(p.Nodes) == 0 {
			return fmt.Errorf("%w: path %q has no nodes", ErrInvalidCatalog, id)
		}
	}
	for _, t := range c.turrets {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for i := range c.waves {
		if err := c.ValidateWave(i); err != nil {
			return err
		}
	}
	return nil
}

// ValidateWave checks one plan and its references.
func (c *Catalog) ValidateWave(index int) error {
	plan, ok := c.Wave(index)
	if !ok {
		return fmt.Errorf("%w: wave index %d out of range", ErrInvalidCatalog, index)
	}
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("wave[%d]: %w", index, err)
	}
	for gi, g := range plan.Groups {
		if _, ok := c.archetypes[g.Archetype]; !ok {
			return fmt.Errorf("wave[%d] group[%d]: %w %q", index, gi, ErrUnknownArchetype, g.Archetype)
		}
		if _, ok := c.paths[g.Origin]; !ok {
			return fmt.Errorf("wave[%d] group[%d]: %w %q", index, gi, ErrUnknownPath, g.Origin)
		}
	}
	return nil
}

func (c *Catalog) WaveCount() int { return len(c.waves) }

// Wave returns the plan at a 0-based index.
func (c *Catalog) Wave(index int) (WavePlan, bool) {
	if index < 0 || index >= len(c.waves) {
		return WavePlan{}, false
	}
	return c.waves[index], true
}

func (c *Catalog) Archetype(id string) (ArchetypeDefinition, bool) {
	a, ok := c.archetypes[id]
	return a, ok
}

func (c *Catalog) Path(id string) (PathDefinition, bool) {
	p, ok := c.paths[id]
	return p, ok
}

// WithTurrets attaches simulation turrets and returns c.
func (c *Catalog) WithTurrets(turrets ...TurretDefinition) *Catalog {
	c.turrets = append(c.turrets, turrets...)
	return c
}

func (c *Catalog) Turrets() []TurretDefinition {
	return append([]TurretDefinition(nil), c.turrets...)
}

// Paths returns every path, for renderers.
func (c *Catalog) Paths() []PathDefinition {
	out := make([]PathDefinition, 0, len(c.paths))
	for _, p := range c.paths {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
