// internal/ui/speed_button.go
package ui

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

// SpeedButton переключает множитель скорости симуляции по кругу.
type SpeedButton struct {
	X, Y          float32
	Size          float32
	LastClickTime time.Time
	Multipliers   []int
	StateColors   []color.Color
	CurrentState  int
}

func NewSpeedButton(x, y, size float32, multipliers []int, stateColors []color.Color) *SpeedButton {
	return &SpeedButton{
		X:           x,
		Y:           y,
		Size:        size,
		Multipliers: multipliers,
		StateColors: stateColors,
	}
}

// Multiplier — сколько шагов симуляции делать за кадр.
func (b *SpeedButton) Multiplier() int {
	if len(b.Multipliers) == 0 {
		return 1
	}
	return b.Multipliers[b.CurrentState]
}

func (b *SpeedButton) ToggleState() {
	if len(b.Multipliers) == 0 {
		return
	}
	b.CurrentState = (b.CurrentState + 1) % len(b.Multipliers)
	b.LastClickTime = time.Now()
}

// IsClicked — попадание в круг радиуса Size.
func (b *SpeedButton) IsClicked(x, y int) bool {
	dx := float32(x) - b.X
	dy := float32(y) - b.Y
	return dx*dx+dy*dy <= b.Size*b.Size
}

func (b *SpeedButton) Draw(screen *ebiten.Image, face font.Face) {
	elapsed := time.Since(b.LastClickTime).Seconds()
	scale := 1.0 + 0.3*math.Exp(-elapsed*8)
	size := b.Size * float32(scale)

	var fill color.Color = color.White
	if len(b.StateColors) > 0 {
		fill = b.StateColors[b.CurrentState%len(b.StateColors)]
	}
	vector.DrawFilledCircle(screen, b.X, b.Y, size, fill, true)
	vector.StrokeCircle(screen, b.X, b.Y, size, 1, color.White, true)

	label := fmt.Sprintf("x%d", b.Multiplier())
	bounds := text.BoundString(face, label)
	text.Draw(screen, label, face, int(b.X)-bounds.Dx()/2, int(b.Y)+bounds.Dy()/2, color.Black)
}
