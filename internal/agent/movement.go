// internal/agent/movement.go
package agent

import "go-td-core/internal/utils"

// move advances the agent along its nodes by speed*dt, carrying leftover
// distance over reached nodes. Reports whether the last node was reached.
func (r *Registry) move(a *agent, deltaTime float64) bool {
	step := a.speed() * deltaTime
	for a.path.CurrentIndex < len(a.path.Nodes) {
		target := a.path.Nodes[a.path.CurrentIndex]
		var left float64
		a.pos.X, a.pos.Y, left = utils.MoveTowards(a.pos.X, a.pos.Y, target.X, target.Y, step)
		if a.pos.X != target.X || a.pos.Y != target.Y {
			return false
		}
		a.path.CurrentIndex++
		step = left
	}
	return true
}

func distanceToGoal(a *agent) float64 {
	if a.path.CurrentIndex >= len(a.path.Nodes) {
		return 0
	}
	x, y := a.pos.X, a.pos.Y
	total := 0.0
	for _, n := range a.path.Nodes[a.path.CurrentIndex:] {
		total += utils.Distance(x, y, n.X, n.Y)
		x, y = n.X, n.Y
	}
	return total
}
