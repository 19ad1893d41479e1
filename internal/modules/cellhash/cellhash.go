// Package cellhash maintains a uniform-grid spatial hash through triggers.
//
// A hash lives on its own entity as a CellHash component. Member entities
// point at it with ParentCellHash; whenever their Cell changes a trigger
// moves them between buckets.
package cellhash

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zeusync/zecs/internal/core/ecs"
)

type Cell struct {
	X, Y int
}

// Hash buckets entities by cell. Buckets keep insertion order.
type Hash struct {
	cells map[Cell][]ecs.Entity
}

func NewHash() *Hash {
	return &Hash{cells: make(map[Cell][]ecs.Entity)}
}

func (h *Hash) Add(c Cell, e ecs.Entity) {
	h.cells[c] = append(h.cells[c], e)
}

func (h *Hash) Remove(c Cell, e ecs.Entity) {
	bucket := h.cells[c]
	if i := slices.Index(bucket, e); i >= 0 {
		bucket = slices.Delete(bucket, i, i+1)
	}
	if len(bucket) == 0 {
		delete(h.cells, c)
		return
	}
	h.cells[c] = bucket
}

// RemoveAll drops e from every bucket.
func (h *Hash) RemoveAll(e ecs.Entity) {
	for c := range h.cells {
		h.Remove(c, e)
	}
}

// At returns a copy of the bucket for c.
func (h *Hash) At(c Cell) []ecs.Entity {
	return slices.Clone(h.cells[c])
}

// Len is the number of non-empty buckets.
func (h *Hash) Len() int { return len(h.cells) }

var ErrNoHash = errors.New("cellhash: entity holds no cell hash")

var Module = ecs.NewModule("CellHash")

var (
	CellOf         = ecs.DefineComponent[Cell](Module, "Cell")
	ParentCellHash = ecs.DefineComponent[ecs.Entity](Module, "ParentCellHash")
	CellHash       = ecs.DefineComponent[*Hash](Module, "CellHash")
)

var Rehash = ecs.Must(ecs.DefineTrigger(Module, CellOf, rehash, "CellHash"))

func rehash(r *ecs.Root, e ecs.Entity, ch ecs.Change[Cell]) error {
	parent, ok := ecs.Get(r, e, ParentCellHash)
	if !ok {
		return nil
	}
	h, ok := ecs.Get(r, parent, CellHash)
	if !ok || h == nil {
		return nil
	}
	switch {
	case !ch.HadOld && ch.HasNew:
		h.Add(ch.New, e)
	case ch.HadOld && !ch.HasNew:
		h.Remove(ch.Old, e)
	case ch.HadOld && ch.HasNew && ch.Old != ch.New:
		h.Remove(ch.Old, e)
		h.Add(ch.New, e)
	}
	return nil
}

// NewCellHash creates an entity holding an empty hash.
func NewCellHash(r *ecs.Root) (ecs.Entity, error) {
	e := r.CreateEntity()
	return e, ecs.Set(r, e, CellHash, NewHash())
}

// AddToCellHash makes e a member of the hash on hashEntity, placed at cell.
func AddToCellHash(r *ecs.Root, hashEntity, e ecs.Entity, cell Cell) error {
	if err := ecs.Set(r, e, ParentCellHash, hashEntity); err != nil {
		return err
	}
	return ecs.Set(r, e, CellOf, cell)
}

// RemoveFromCellHash detaches e from the hash. Call it before destroying a
// member, since destruction fires no triggers.
func RemoveFromCellHash(r *ecs.Root, hashEntity, e ecs.Entity) error {
	h, err := hashOf(r, hashEntity)
	if err != nil {
		return err
	}
	if r.Alive(e) {
		if err := ecs.Remove(r, e, CellOf); err != nil {
			return err
		}
		if err := ecs.Remove(r, e, ParentCellHash); err != nil {
			return err
		}
	}
	h.RemoveAll(e)
	return nil
}

// EntitiesInCell returns the members currently in cell.
func EntitiesInCell(r *ecs.Root, hashEntity ecs.Entity, cell Cell) ([]ecs.Entity, error) {
	h, err := hashOf(r, hashEntity)
	if err != nil {
		return nil, err
	}
	return h.At(cell), nil
}

// ForEachEntityInRange visits the members of every cell in the inclusive
// rectangle spanned by from and to, column by column. fn must not move
// members between cells.
func ForEachEntityInRange(r *ecs.Root, hashEntity ecs.Entity, from, to Cell, fn func(ecs.Entity)) error {
	h, err := hashOf(r, hashEntity)
	if err != nil {
		return err
	}
	for x := min(from.X, to.X); x <= max(from.X, to.X); x++ {
		for y := min(from.Y, to.Y); y <= max(from.Y, to.Y); y++ {
			for _, e := range h.cells[Cell{x, y}] {
				fn(e)
			}
		}
	}
	return nil
}

func hashOf(r *ecs.Root, hashEntity ecs.Entity) (*Hash, error) {
	h, ok := ecs.Get(r, hashEntity, CellHash)
	if !ok || h == nil {
		return nil, fmt.Errorf("%w: %d", ErrNoHash, hashEntity)
	}
	return h, nil
}
