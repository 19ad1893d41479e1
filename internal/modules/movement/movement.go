// Package movement integrates positions from velocities and accelerations.
//
// Vectors are stored by pointer so systems update them in place and then
// re-set the component, which re-fires its triggers.
package movement

import (
	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/internal/modules/lifetime"
)

type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }
func (v Vec2) Dot(o Vec2) float64   { return v.X*o.X + v.Y*o.Y }
func (v *Vec2) AddScaled(o Vec2, f float64) {
	v.X += o.X * f
	v.Y += o.Y * f
}

var Module = newModule()

func newModule() *ecs.Namespace {
	m := ecs.NewModule("Movement")
	m.DependsOn(lifetime.Module)
	return m
}

var (
	Position     = ecs.DefineComponent[*Vec2](Module, "Position")
	Velocity     = ecs.DefineComponent[*Vec2](Module, "Velocity")
	Acceleration = ecs.DefineComponent[*Vec2](Module, "Acceleration")
	// Static entities keep their position.
	Static = ecs.DefineComponent[bool](Module, "Static")
)

// KickAcceleration applies the first half of the acceleration step, before
// positions move.
var KickAcceleration = ecs.Must(ecs.DefineSystem(Module, lifetime.PreUpdate,
	ecs.With(Velocity, Acceleration, lifetime.TimeDelta).After(lifetime.UpdateTime),
	ecs.Each3(kick), "KickAcceleration"))

// Movement moves positions by velocity and applies the second half of the
// acceleration step.
var Movement = ecs.Must(ecs.DefineSystem(Module, lifetime.OnUpdate,
	ecs.With(Position, Velocity, lifetime.TimeDelta).Without(Static),
	ecs.Each3(move), "Movement"))

func kick(r *ecs.Root, e ecs.Entity, vel, acc *Vec2, dt float64) error {
	if vel == nil || acc == nil {
		return nil
	}
	vel.AddScaled(*acc, dt/2)
	return ecs.ReSet(r, e, Velocity)
}

func move(r *ecs.Root, e ecs.Entity, pos, vel *Vec2, dt float64) error {
	if pos == nil || vel == nil {
		return nil
	}
	pos.AddScaled(*vel, dt)
	if err := ecs.ReSet(r, e, Position); err != nil {
		return err
	}

	acc, ok := ecs.Get(r, e, Acceleration)
	if !ok || acc == nil {
		return nil
	}
	vel.AddScaled(*acc, dt/2)
	return ecs.ReSet(r, e, Velocity)
}

// Spawn creates an entity with a position and a velocity.
func Spawn(r *ecs.Root, pos, vel Vec2) (ecs.Entity, error) {
	e := r.CreateEntity()
	if err := ecs.Set(r, e, Position, &pos); err != nil {
		return e, err
	}
	return e, ecs.Set(r, e, Velocity, &vel)
}
