// pkg/render/field_renderer.go
package render

import (
	"go-td-core/internal/agent"
	"go-td-core/internal/defense"
	"go-td-core/internal/defs"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	nodeRadius      = 4
	healthBarWidth  = 18
	healthBarHeight = 3
)

// FieldRenderer draws the level: a pre-rendered path layer plus agents and turrets on top.
type FieldRenderer struct {
	paths       []defs.PathDefinition
	colors      MapColors
	agentColors AgentColors
	agentRadius float32
	turretSize  float32
	mapImage    *ebiten.Image // Поле для предрендеренной карты
}

func NewFieldRenderer(paths []defs.PathDefinition, screenWidth, screenHeight int, colors MapColors, agentColors AgentColors, agentRadius, turretSize float32) *FieldRenderer {
	r := &FieldRenderer{
		paths:       paths,
		colors:      colors,
		agentColors: agentColors,
		agentRadius: agentRadius,
		turretSize:  turretSize,
		mapImage:    ebiten.NewImage(screenWidth, screenHeight),
	}
	// Отрисовываем карту один раз при инициализации
	r.RenderMapImage()
	return r
}

// RenderMapImage создаёт предрендеренное изображение задника
func (r *FieldRenderer) RenderMapImage() {
	r.mapImage.Fill(r.colors.BackgroundColor)
	for _, p := range r.paths {
		for i := 1; i < len(p.Nodes); i++ {
			a, b := p.Nodes[i-1], p.Nodes[i]
			vector.StrokeLine(r.mapImage, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), r.colors.StrokeWidth, r.colors.PathColor, true)
		}
		for _, n := range p.Nodes {
			vector.DrawFilledCircle(r.mapImage, float32(n.X), float32(n.Y), nodeRadius, r.colors.PathColor, true)
		}
		start, goal := p.Start(), p.Goal()
		vector.DrawFilledCircle(r.mapImage, float32(start.X), float32(start.Y), nodeRadius*2, r.colors.EntryColor, true)
		vector.DrawFilledCircle(r.mapImage, float32(goal.X), float32(goal.Y), nodeRadius*2, r.colors.ExitColor, true)
	}
}

func (r *FieldRenderer) Draw(screen *ebiten.Image, agents []agent.Agent, turrets []*defense.Turret) {
	// Рисуем предрендеренную карту одним вызовом
	screen.DrawImage(r.mapImage, nil)

	for _, t := range turrets {
		x, y := float32(t.Def.Position.X), float32(t.Def.Position.Y)
		vector.StrokeCircle(screen, x, y, float32(t.Stats().Range), 1, DarkenColor(r.agentColors.Turret), true)
		vector.DrawFilledRect(screen, x-r.turretSize/2, y-r.turretSize/2, r.turretSize, r.turretSize, r.agentColors.Turret, true)
	}

	for _, a := range agents {
		x, y := float32(a.Position.X), float32(a.Position.Y)
		fill := r.agentColors.Ground
		if a.Movement == defs.MovementFlying {
			fill = r.agentColors.Flying
		}
		vector.DrawFilledCircle(screen, x, y, r.agentRadius, fill, true)
		outline := r.agentColors.Outline
		if a.Slowed {
			outline = r.agentColors.Slowed
		}
		vector.StrokeCircle(screen, x, y, r.agentRadius, 2, outline, true)

		if a.MaxHealth > 0 && a.Health < a.MaxHealth {
			frac := a.Health / a.MaxHealth
			top := y - r.agentRadius - healthBarHeight - 2
			vector.DrawFilledRect(screen, x-healthBarWidth/2, top, healthBarWidth, healthBarHeight, DarkenColor(HealthColor(0)), false)
			vector.DrawFilledRect(screen, x-healthBarWidth/2, top, float32(healthBarWidth*frac), healthBarHeight, HealthColor(frac), false)
		}
	}
}
