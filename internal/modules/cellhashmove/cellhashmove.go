// Package cellhashmove keeps the Cell of hashed entities in step with their
// Position.
package cellhashmove

import (
	"math"

	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/internal/modules/cellhash"
	"github.com/zeusync/zecs/internal/modules/movement"
)

// Dimensions is the world size of one cell.
type Dimensions struct {
	Width, Height float64
}

// CellFor maps a position to the cell containing it.
func (d Dimensions) CellFor(p movement.Vec2) cellhash.Cell {
	return cellhash.Cell{
		X: int(math.Floor(p.X / d.Width)),
		Y: int(math.Floor(p.Y / d.Height)),
	}
}

var Module = newModule()

func newModule() *ecs.Namespace {
	m := ecs.NewModule("CellHashMovement")
	m.DependsOn(cellhash.Module, movement.Module)
	return m
}

// CellHashDimensions sits on the hash entity next to its CellHash.
var CellHashDimensions = ecs.DefineComponent[Dimensions](Module, "CellHashDimensions")

var Track = ecs.Must(ecs.DefineTrigger(Module, movement.Position, track, "CellHashMovement"))

func track(r *ecs.Root, e ecs.Entity, ch ecs.Change[*movement.Vec2]) error {
	parent, ok := ecs.Get(r, e, cellhash.ParentCellHash)
	if !ok {
		return nil
	}
	dims, ok := ecs.Get(r, parent, CellHashDimensions)
	if !ok || dims.Width <= 0 || dims.Height <= 0 {
		return nil
	}
	if !ch.HasNew || ch.New == nil {
		return ecs.Remove(r, e, cellhash.CellOf)
	}
	return ecs.Set(r, e, cellhash.CellOf, dims.CellFor(*ch.New))
}
