package ecs

import (
	"maps"
	"slices"
)

// Root is a namespace instantiated with live entity and component storage.
// Exactly one Root backs a running simulation.
type Root struct {
	*Namespace

	// entity -> attached non-global component ids, in attachment order
	entities map[Entity][]ID
	// component id -> entity -> value, for non-global components
	stores map[ID]map[Entity]any
	index  *groupIndex
	// component id -> trigger ids, in registration order
	componentTriggers map[ID][]ID
	// system id -> runner bound to this root
	bound map[ID]*boundSystem
}

// NewRoot creates an empty root namespace.
func NewRoot(name string, opts ...Option) *Root {
	r := &Root{
		Namespace:         NewModule(name, opts...),
		entities:          make(map[Entity][]ID),
		stores:            make(map[ID]map[Entity]any),
		index:             newGroupIndex(),
		componentTriggers: make(map[ID][]ID),
		bound:             make(map[ID]*boundSystem),
	}
	r.root = r
	return r
}

// Import merges from into this root. See Import.
func (r *Root) Import(from *Namespace) error {
	return Import(r.Namespace, from)
}

// allocate sets up storage for a component defined or copied into the root.
func (r *Root) allocate(id ID, global bool) {
	if !global {
		r.stores[id] = make(map[Entity]any)
	}
}

// Stats is a point-in-time summary of a root.
type Stats struct {
	Entities         int
	Components       int
	GlobalComponents int
	Groups           int
	Hooks            int
	Systems          int
	Triggers         int
	Imported         int
}

func (r *Root) Stats() Stats {
	return Stats{
		Entities:         len(r.entities),
		Components:       len(r.componentIDs),
		GlobalComponents: len(r.globalComponentIDs),
		Groups:           len(r.index.groups),
		Hooks:            len(r.hooks),
		Systems:          len(r.systems),
		Triggers:         len(r.triggers),
		Imported:         len(r.imported),
	}
}

// Entities returns the live entities in ascending order.
func (r *Root) Entities() []Entity {
	return slices.Sorted(maps.Keys(r.entities))
}

// Attached returns the non-global component ids attached to e, in
// attachment order.
func (r *Root) Attached(e Entity) ([]ID, bool) {
	ids, ok := r.entities[e]
	return slices.Clone(ids), ok
}

// Group returns a copy of the indexed group for the given components.
// Global components are ignored. The empty key yields every live entity; a
// key no system registered yields nil.
func (r *Root) Group(components ...ComponentRef) ([]Entity, error) {
	key, err := r.groupKeyFor(components)
	if err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return r.Entities(), nil
	}
	g := r.index.lookup(key)
	if g == nil {
		return nil, nil
	}
	return slices.Clone(g.entities), nil
}

// GroupKeys returns the canonical text form of every indexed group key.
func (r *Root) GroupKeys() []string {
	keys := make([]string, 0, len(r.index.groups))
	for _, g := range r.index.groups {
		keys = append(keys, g.key.String())
	}
	return keys
}

// Memberships returns the canonical keys of the groups component c
// participates in.
func (r *Root) Memberships(c ComponentRef) ([]string, error) {
	id, err := r.Resolve(c)
	if err != nil {
		return nil, err
	}
	groups := r.index.memberships[id]
	keys := make([]string, len(groups))
	for i, g := range groups {
		keys[i] = g.key.String()
	}
	return keys, nil
}

func (r *Root) groupKeyFor(components []ComponentRef) (groupKey, error) {
	ids := make([]ID, 0, len(components))
	for _, c := range components {
		ref := c.componentRef()
		if ref.global {
			continue
		}
		id, err := r.resolve(KindComponent, ref.handle)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return newGroupKey(ids), nil
}
