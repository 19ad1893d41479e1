package gas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/internal/modules/cellhash"
	"github.com/zeusync/zecs/internal/modules/lifetime"
	"github.com/zeusync/zecs/internal/modules/movement"
)

func TestKernel(t *testing.T) {
	c := DefaultConfig()

	require.InDelta(t, alpha, Kernel(0, c), 1e-12)
	require.Zero(t, Kernel(2*c.SmoothingLength*c.SimulationScale, c))
	require.Greater(t, Kernel(5, c), Kernel(10, c))

	require.Equal(t, movement.Vec2{}, KernelGradient(movement.Vec2{}, 0, c))
	g := KernelGradient(movement.Vec2{X: 10}, 10, c)
	require.Greater(t, g.X, 0.0)
	require.Zero(t, g.Y)

	require.InDelta(t, 10*math.Pow(2, 2), Pressure(2, c), 1e-12)
}

func world(t *testing.T) *ecs.Root {
	t.Helper()
	r := ecs.NewRoot("gas")
	require.NoError(t, r.Import(Module))
	require.NoError(t, ecs.SetGlobal(r, lifetime.FixedDelta, 0.01))
	return r
}

func TestGas_SystemOrder(t *testing.T) {
	r := world(t)

	systems, err := r.HookSystems(lifetime.OnUpdate)
	require.NoError(t, err)
	var names []string
	for _, s := range systems {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{"UpdatePressure", "ApplyPressure", "Movement", "CheckBounds"}, names)
}

func TestGas_Repulsion(t *testing.T) {
	r := world(t)
	c := DefaultConfig()
	grid, err := NewGrid(r, c)
	require.NoError(t, err)

	a, err := Spawn(r, grid, Molecule{Position: movement.Vec2{X: 100, Y: 100}, Mass: 1, Radius: 1})
	require.NoError(t, err)
	b, err := Spawn(r, grid, Molecule{Position: movement.Vec2{X: 110, Y: 100}, Mass: 1, Radius: 1})
	require.NoError(t, err)

	cell, _ := ecs.Get(r, a, cellhash.CellOf)
	require.Equal(t, cellhash.Cell{X: 2, Y: 2}, cell)

	distance := func() float64 {
		pa, _ := ecs.Get(r, a, movement.Position)
		pb, _ := ecs.Get(r, b, movement.Position)
		return math.Hypot(pa.X-pb.X, pa.Y-pb.Y)
	}
	start := distance()
	for range 20 {
		require.NoError(t, lifetime.Loop(r))
	}
	assert.Greater(t, distance(), start)

	coef, ok := ecs.Get(r, a, PressureDensityCoef)
	require.True(t, ok)
	require.Greater(t, coef, 0.0)
}

func TestScene_Build(t *testing.T) {
	r := world(t)
	s := Scene{Width: 100, Height: 100, Columns: 3, Rows: 2, Spacing: 10, WallSpacing: 50, Radius: 2, Mass: 1, WallMass: 5, BounceCoef: 0.3}

	grid, molecules, err := s.Build(r, DefaultConfig())
	require.NoError(t, err)
	require.Len(t, molecules, 6)
	require.True(t, r.Alive(grid))

	// 4 walls of 2 molecules each, the grid entity and the free molecules
	require.Len(t, r.Entities(), 8+1+6)

	walls, err := r.Group(movement.Static)
	require.NoError(t, err)
	require.Nil(t, walls, "no system groups static entities on their own")

	for range 5 {
		require.NoError(t, lifetime.Loop(r))
	}
	for _, e := range molecules {
		p, _ := ecs.Get(r, e, movement.Position)
		require.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y))
	}
}
