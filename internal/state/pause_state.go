// internal/state/pause_state.go
package state

import (
	"image/color"

	"go-td-core/internal/config"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Убеждаемся, что PauseState соответствует интерфейсу State
var _ State = (*PauseState)(nil)

// PauseState замораживает матч: предыдущее состояние рисуется, но не обновляется.
type PauseState struct {
	sm            *StateMachine
	previousState State
	ctx           *Context
}

func NewPauseState(sm *StateMachine, prevState State, ctx *Context) *PauseState {
	return &PauseState{sm: sm, previousState: prevState, ctx: ctx}
}

func (s *PauseState) Enter() {}

func (s *PauseState) Update(deltaTime float64) error {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyF9) {
		s.sm.SetState(s.previousState)
	}
	return nil
}

func (s *PauseState) Draw(screen *ebiten.Image) {
	if s.previousState != nil {
		s.previousState.Draw(screen)
	}
	vector.DrawFilledRect(screen, 0, 0, config.ScreenWidth, config.ScreenHeight, color.RGBA{0, 0, 0, 128}, false)

	label := "PAUSED"
	bounds := text.BoundString(s.ctx.Title, label)
	text.Draw(screen, label, s.ctx.Title, (config.ScreenWidth-bounds.Dx())/2, config.ScreenHeight/2, color.White)
}

func (s *PauseState) Exit() {}
