// pkg/render/color.go
package render

import (
	"image/color"

	"go-td-core/internal/utils"
)

// MapColors holds all the color definitions needed to render the static field background.
type MapColors struct {
	BackgroundColor color.RGBA
	PathColor       color.RGBA
	EntryColor      color.RGBA
	ExitColor       color.RGBA
	StrokeWidth     float32
}

// AgentColors — цвета агентов по типу и состоянию.
type AgentColors struct {
	Ground  color.RGBA
	Flying  color.RGBA
	Slowed  color.RGBA
	Turret  color.RGBA
	Outline color.RGBA
}

// DarkenColor reduces the brightness of a color.
func DarkenColor(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * 0.5),
		G: uint8(float64(c.G) * 0.5),
		B: uint8(float64(c.B) * 0.5),
		A: c.A,
	}
}

// HealthColor fades from red (empty) to green (full).
func HealthColor(fraction float64) color.RGBA {
	f := utils.Clamp(fraction, 0, 1)
	return color.RGBA{
		R: uint8(utils.Lerp(220, 40, f)),
		G: uint8(utils.Lerp(40, 200, f)),
		B: 40,
		A: 255,
	}
}
