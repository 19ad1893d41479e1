// Package bounds keeps moving entities inside a global rectangle.
package bounds

import (
	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/internal/modules/lifetime"
	"github.com/zeusync/zecs/internal/modules/movement"
)

// Rect is an axis-aligned rectangle. Top and Bottom are the numerically
// highest and lowest y, not screen directions.
type Rect struct {
	Left, Right, Top, Bottom float64
}

var Module = newModule()

func newModule() *ecs.Namespace {
	m := ecs.NewModule("Bounds")
	m.DependsOn(movement.Module)
	return m
}

var (
	Bounds = ecs.DefineGlobalComponent[Rect](Module, "Bounds")
	// BounceCoef scales the reflected velocity. Unset means 1.
	BounceCoef = ecs.DefineGlobalComponent[float64](Module, "BoundsBounceCoef")
	// Hitbox is an entity's extent relative to its position.
	Hitbox = ecs.DefineComponent[Rect](Module, "BoundsHitbox")
)

var CheckBounds = ecs.Must(ecs.DefineSystem(Module, lifetime.OnUpdate,
	ecs.With(movement.Position, movement.Velocity, Bounds, Hitbox).After(movement.Movement),
	ecs.Each4(check), "CheckBounds"))

func check(r *ecs.Root, e ecs.Entity, pos, vel *movement.Vec2, area, box Rect) error {
	if pos == nil || vel == nil || !ecs.HasGlobal(r, Bounds) {
		return nil
	}
	bounce := 1.0
	if b, ok := ecs.GetGlobal(r, BounceCoef); ok {
		bounce = b
	}

	if !Clamp(pos, vel, area, box, bounce) {
		return nil
	}
	if err := ecs.ReSet(r, e, movement.Position); err != nil {
		return err
	}
	return ecs.ReSet(r, e, movement.Velocity)
}

// Clamp pushes pos back inside area and reflects the matching velocity
// axis. It reports whether anything changed.
func Clamp(pos, vel *movement.Vec2, area, box Rect, bounce float64) bool {
	hit := false
	switch {
	case pos.X+box.Left < area.Left:
		pos.X = area.Left - box.Left
		vel.X *= -bounce
		hit = true
	case pos.X+box.Right > area.Right:
		pos.X = area.Right - box.Right
		vel.X *= -bounce
		hit = true
	}
	switch {
	case pos.Y+box.Bottom < area.Bottom:
		pos.Y = area.Bottom - box.Bottom
		vel.Y *= -bounce
		hit = true
	case pos.Y+box.Top > area.Top:
		pos.Y = area.Top - box.Top
		vel.Y *= -bounce
		hit = true
	}
	return hit
}

// Square is a hitbox of the given half extent centred on the position.
func Square(half float64) Rect {
	return Rect{Left: -half, Right: half, Top: half, Bottom: -half}
}
