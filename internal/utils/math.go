// internal/utils/math.go
package utils

import "math"

// Lerp выполняет стандартную линейную интерполяцию
func Lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

// Clamp ограничивает v диапазоном [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Distance — евклидово расстояние между двумя точками.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// MoveTowards moves (x, y) up to step units towards (tx, ty). It returns the new
// position and the part of step left over after reaching the target.
func MoveTowards(x, y, tx, ty, step float64) (nx, ny, leftover float64) {
	dist := Distance(x, y, tx, ty)
	if dist <= step {
		return tx, ty, step - dist
	}
	k := step / dist
	return x + (tx-x)*k, y + (ty-y)*k, 0
}
