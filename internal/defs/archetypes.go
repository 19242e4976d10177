// internal/defs/archetypes.go
package defs

// MovementType — как враг идёт по пути.
type MovementType string

const (
	MovementGround MovementType = "ground" // по всем узлам пути
	MovementFlying MovementType = "flying" // сразу к последнему узлу
)

// ArchetypeDefinition holds all the static data for a specific type of enemy.
type ArchetypeDefinition struct {
	ID        string       `toml:"id"`
	Name      string       `toml:"name"`
	MaxHealth float64      `toml:"max_health"`
	Speed     float64      `toml:"speed"` // units per second
	Reward    int          `toml:"reward"`
	Movement  MovementType `toml:"movement"`
}

// Point is a position on the level plane.
type Point struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// PathDefinition is a chain of nodes; the first is the spawn origin, the last is the goal.
type PathDefinition struct {
	ID    string  `toml:"id"`
	Nodes []Point `toml:"nodes"`
}

// Start returns the spawn origin of the path.
func (p PathDefinition) Start() Point {
	if len(p.Nodes) == 0 {
		return Point{}
	}
	return p.Nodes[0]
}

// Goal returns the final node.
func (p PathDefinition) Goal() Point {
	if len(p.Nodes) == 0 {
		return Point{}
	}
	return p.Nodes[len(p.Nodes)-1]
}
