// Package gas is a smoothed-particle gas: each molecule samples the density
// of its neighbouring cells, derives a pressure and accelerates away from
// crowded regions.
package gas

import (
	"errors"
	"math"

	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/internal/modules/bounds"
	"github.com/zeusync/zecs/internal/modules/cellhash"
	"github.com/zeusync/zecs/internal/modules/cellhashmove"
	"github.com/zeusync/zecs/internal/modules/lifetime"
	"github.com/zeusync/zecs/internal/modules/movement"
)

// Config tunes the simulation. SmoothingLength is in simulation units;
// SimulationScale converts world distances into them.
type Config struct {
	StateConstant   float64
	PolytropicIndex float64
	Viscosity       float64
	Gravity         movement.Vec2
	SmoothingLength float64
	SimulationScale float64
}

// DefaultConfig matches the stock demo scene.
func DefaultConfig() Config {
	return Config{
		StateConstant:   10,
		PolytropicIndex: 1,
		Viscosity:       1,
		SmoothingLength: 1,
		SimulationScale: 20,
	}
}

// CellSize is the cell edge that makes a 3x3 neighbourhood cover the
// kernel support.
func (c Config) CellSize() float64 {
	return 2 * c.SmoothingLength * c.SimulationScale
}

var Module = newModule()

func newModule() *ecs.Namespace {
	m := ecs.NewModule("Gas")
	m.DependsOn(lifetime.Module, movement.Module, cellhash.Module, cellhashmove.Module, bounds.Module)
	return m
}

var (
	IsGas               = ecs.DefineComponent[bool](Module, "IsGas")
	MoleculeMass        = ecs.DefineComponent[float64](Module, "MoleculeMass")
	PressureDensityCoef = ecs.DefineComponent[float64](Module, "MoleculePressureDensityCoef")
	GasConfig           = ecs.DefineGlobalComponent(Module, "GasConfig", DefaultConfig())
)

var UpdatePressure = ecs.Must(ecs.DefineSystem(Module, lifetime.OnUpdate,
	ecs.With(movement.Position, cellhash.CellOf, cellhash.ParentCellHash, IsGas, GasConfig).
		Before(movement.Movement),
	updatePressure, "UpdatePressure"))

var ApplyPressure = ecs.Must(ecs.DefineSystem(Module, lifetime.OnUpdate,
	ecs.With(movement.Position, movement.Velocity, PressureDensityCoef, cellhash.CellOf, cellhash.ParentCellHash, IsGas, GasConfig).
		After(UpdatePressure).
		Before(movement.Movement),
	applyPressure, "ApplyPressure"))

const alpha = 7 / (4 * math.Pi)

// Kernel is the smoothing weight at world distance x.
func Kernel(x float64, c Config) float64 {
	x /= c.SimulationScale
	h := c.SmoothingLength
	if x >= 2*h {
		return 0
	}
	ratio := x / h
	return (alpha / h) * math.Pow(1-0.5*ratio, 4) * (1 + 2*ratio)
}

// KernelGradient is the kernel derivative along v, where x is |v|.
func KernelGradient(v movement.Vec2, x float64, c Config) movement.Vec2 {
	x /= c.SimulationScale
	h := c.SmoothingLength
	if x >= 2*h || x <= 0.0001 {
		return movement.Vec2{}
	}
	coef := (5 * alpha * x * math.Pow(2*h-x, 3)) / (8 * math.Pow(h, 7))
	return v.Scale(coef / (x * c.SimulationScale))
}

// Pressure is the polytropic equation of state.
func Pressure(density float64, c Config) float64 {
	return c.StateConstant * math.Pow(density, 1+1/c.PolytropicIndex)
}

func neighbourhood(cell cellhash.Cell) (from, to cellhash.Cell) {
	return cellhash.Cell{X: cell.X - 1, Y: cell.Y - 1}, cellhash.Cell{X: cell.X + 1, Y: cell.Y + 1}
}

func massOf(r *ecs.Root, e ecs.Entity) float64 {
	if m, ok := ecs.Get(r, e, MoleculeMass); ok && m > 0 {
		return m
	}
	return 1
}

func updatePressure(r *ecs.Root, e ecs.Entity, values []any) error {
	pos, _ := values[0].(*movement.Vec2)
	cell, _ := values[1].(cellhash.Cell)
	grid, _ := values[2].(ecs.Entity)
	isGas, _ := values[3].(bool)
	c, _ := values[4].(Config)
	if !isGas || pos == nil {
		return nil
	}

	density := 0.0
	from, to := neighbourhood(cell)
	err := cellhash.ForEachEntityInRange(r, grid, from, to, func(n ecs.Entity) {
		npos, ok := ecs.Get(r, n, movement.Position)
		if !ok || npos == nil {
			return
		}
		dist := math.Hypot(pos.X-npos.X, pos.Y-npos.Y)
		density += massOf(r, n) * Kernel(dist, c)
	})
	if err != nil {
		return err
	}
	if density == 0 {
		return nil
	}
	return ecs.Set(r, e, PressureDensityCoef, Pressure(density, c)/(density*density))
}

func applyPressure(r *ecs.Root, e ecs.Entity, values []any) error {
	pos, _ := values[0].(*movement.Vec2)
	vel, _ := values[1].(*movement.Vec2)
	coef, _ := values[2].(float64)
	cell, _ := values[3].(cellhash.Cell)
	grid, _ := values[4].(ecs.Entity)
	isGas, _ := values[5].(bool)
	c, _ := values[6].(Config)
	if !isGas || pos == nil || vel == nil {
		return nil
	}

	var force movement.Vec2
	from, to := neighbourhood(cell)
	err := cellhash.ForEachEntityInRange(r, grid, from, to, func(n ecs.Entity) {
		if n == e {
			return
		}
		npos, ok := ecs.Get(r, n, movement.Position)
		if !ok || npos == nil {
			return
		}
		ncoef, _ := ecs.Get(r, n, PressureDensityCoef)
		d := pos.Sub(*npos)
		grad := KernelGradient(d, math.Hypot(d.X, d.Y), c)
		force.AddScaled(grad, massOf(r, n)*(coef+ncoef))
	})
	if err != nil {
		return err
	}

	acc := force.Sub(vel.Scale(c.Viscosity)).Add(c.Gravity)
	if area, ok := ecs.GetGlobal(r, bounds.Bounds); ok {
		centre := movement.Vec2{X: (area.Left + area.Right) / 2, Y: (area.Top + area.Bottom) / 2}
		acc = acc.Add(centre.Sub(*pos))
	}

	if cur, ok := ecs.Get(r, e, movement.Acceleration); ok && cur != nil {
		*cur = acc
		return ecs.ReSet(r, e, movement.Acceleration)
	}
	return ecs.Set(r, e, movement.Acceleration, &acc)
}

// NewGrid creates a cell hash sized for c.
func NewGrid(r *ecs.Root, c Config) (ecs.Entity, error) {
	grid, err := cellhash.NewCellHash(r)
	if err != nil {
		return grid, err
	}
	size := c.CellSize()
	return grid, ecs.Set(r, grid, cellhashmove.CellHashDimensions, cellhashmove.Dimensions{Width: size, Height: size})
}

// Molecule describes a gas particle to spawn.
type Molecule struct {
	Position movement.Vec2
	Mass     float64
	Radius   float64
	// Static molecules form walls: they exert pressure but never move.
	Static bool
}

// Spawn creates a molecule and files it in the hash on grid.
func Spawn(r *ecs.Root, grid ecs.Entity, m Molecule) (ecs.Entity, error) {
	e := r.CreateEntity()
	if err := cellhash.AddToCellHash(r, grid, e, cellhash.Cell{}); err != nil {
		return e, err
	}
	pos := m.Position
	err := errors.Join(
		ecs.Set(r, e, movement.Position, &pos),
		ecs.Set(r, e, IsGas, true),
		ecs.Set(r, e, MoleculeMass, m.Mass),
	)
	if m.Static {
		return e, errors.Join(err, ecs.Set(r, e, movement.Static, true))
	}
	return e, errors.Join(err,
		ecs.Set(r, e, movement.Velocity, &movement.Vec2{}),
		ecs.Set(r, e, movement.Acceleration, &movement.Vec2{}),
		ecs.Set(r, e, bounds.Hitbox, bounds.Square(m.Radius)),
	)
}
