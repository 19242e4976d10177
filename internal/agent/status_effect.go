// internal/agent/status_effect.go
package agent

// updateStatusEffects управляет жизненным циклом эффектов замедления.
func (r *Registry) updateStatusEffects(deltaTime float64) {
	for _, a := range r.order {
		if a.slow == nil {
			continue
		}
		a.slow.Timer -= deltaTime
		if a.slow.Timer <= 0 {
			a.slow = nil
		}
	}
}
