package gas

import (
	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/internal/modules/bounds"
	"github.com/zeusync/zecs/internal/modules/movement"
)

// Scene is a box of static wall molecules with a block of free molecules
// in the middle.
type Scene struct {
	Width, Height float64
	Columns, Rows int
	Spacing       float64
	// WallSpacing is the gap between wall molecules; zero means no walls.
	WallSpacing float64
	Radius      float64
	Mass        float64
	WallMass    float64
	BounceCoef  float64
}

func DefaultScene() Scene {
	return Scene{
		Width:       800,
		Height:      600,
		Columns:     25,
		Rows:        25,
		Spacing:     20,
		WallSpacing: 5,
		Radius:      10,
		Mass:        1,
		WallMass:    5,
		BounceCoef:  0.3,
	}
}

// Build populates r, which must have imported Module. It returns the grid
// entity and the free molecules.
func (s Scene) Build(r *ecs.Root, c Config) (ecs.Entity, []ecs.Entity, error) {
	if err := ecs.SetGlobal(r, GasConfig, c); err != nil {
		return 0, nil, err
	}
	if err := ecs.SetGlobal(r, bounds.Bounds, bounds.Rect{Right: s.Width, Top: s.Height}); err != nil {
		return 0, nil, err
	}
	if err := ecs.SetGlobal(r, bounds.BounceCoef, s.BounceCoef); err != nil {
		return 0, nil, err
	}

	grid, err := NewGrid(r, c)
	if err != nil {
		return grid, nil, err
	}

	if s.WallSpacing > 0 {
		wall := func(x, y float64) error {
			_, err := Spawn(r, grid, Molecule{Position: movement.Vec2{X: x, Y: y}, Mass: s.WallMass, Static: true})
			return err
		}
		for x := 0.0; x < s.Width; x += s.WallSpacing {
			if err := wall(x, 0); err != nil {
				return grid, nil, err
			}
			if err := wall(x, s.Height); err != nil {
				return grid, nil, err
			}
		}
		for y := 0.0; y < s.Height; y += s.WallSpacing {
			if err := wall(0, y); err != nil {
				return grid, nil, err
			}
			if err := wall(s.Width, y); err != nil {
				return grid, nil, err
			}
		}
	}

	offset := movement.Vec2{
		X: s.Width/2 - float64(s.Columns)*s.Spacing/2,
		Y: s.Height/2 - float64(s.Rows)*s.Spacing/2,
	}
	molecules := make([]ecs.Entity, 0, s.Columns*s.Rows)
	for x := range s.Columns {
		for y := range s.Rows {
			pos := offset.Add(movement.Vec2{X: float64(x) * s.Spacing, Y: float64(y) * s.Spacing})
			e, err := Spawn(r, grid, Molecule{Position: pos, Mass: s.Mass, Radius: s.Radius})
			if err != nil {
				return grid, molecules, err
			}
			molecules = append(molecules, e)
		}
	}
	return grid, molecules, nil
}
