// internal/ui/base_health_indicator.go
package ui

import (
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

const (
	HealthCols          = 5
	HealthCircleRadius  = 6.0
	HealthCircleSpacing = 4.0
)

var (
	healthFullColor  = color.RGBA{60, 110, 230, 255}
	healthLowColor   = color.RGBA{220, 50, 50, 255}
	healthEmptyColor = color.RGBA{0, 0, 0, 255}
)

// BaseHealthIndicator показывает, сколько врагов ещё может пройти до поражения.
type BaseHealthIndicator struct {
	X, Y float32
}

func NewBaseHealthIndicator(x, y float32) *BaseHealthIndicator {
	return &BaseHealthIndicator{X: x, Y: y}
}

// cellColor: оставшиеся ячейки синие, в нижней половине запаса красные, потраченные чёрные.
func cellColor(index, remaining, max int) color.RGBA {
	if index >= remaining {
		return healthEmptyColor
	}
	if remaining <= max/2 {
		return healthLowColor
	}
	return healthFullColor
}

// Draw рисует индикатор в виде сетки кружков.
func (i *BaseHealthIndicator) Draw(screen *ebiten.Image, face font.Face, passed, max int) {
	remaining := max - passed
	if remaining < 0 {
		remaining = 0
	}
	step := float32(HealthCircleRadius*2 + HealthCircleSpacing)
	for j := 0; j < max; j++ {
		cx := i.X + float32(j%HealthCols)*step + HealthCircleRadius
		cy := i.Y + float32(j/HealthCols)*step + HealthCircleRadius
		vector.DrawFilledCircle(screen, cx, cy, HealthCircleRadius, cellColor(j, remaining, max), true)
		vector.StrokeCircle(screen, cx, cy, HealthCircleRadius, 1, color.White, true)
	}

	// Текстовое отображение над сеткой
	label := strconv.Itoa(remaining) + "/" + strconv.Itoa(max)
	text.Draw(screen, label, face, int(i.X), int(i.Y)-6, color.White)
}
