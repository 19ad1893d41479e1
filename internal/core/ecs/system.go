package ecs

import (
	"fmt"
	"slices"

	"github.com/zeusync/zecs/internal/core/observability/log"
)

// SystemFunc runs once per matching entity. values holds the entity's value
// for each With component, in query order; an absent global is nil.
type SystemFunc func(r *Root, e Entity, values []any) error

// GlobalSystemFunc runs once per hook invocation.
type GlobalSystemFunc func(r *Root) error

// systemDef is the registration-time description of a system. Imports copy
// it into other namespaces unchanged; only roots bind it.
type systemDef struct {
	name   string
	hook   Hook
	query  Query
	each   SystemFunc
	global GlobalSystemFunc
}

type resolvedComponent struct {
	id     ID
	global bool
}

// boundSystem is a systemDef resolved against one root.
type boundSystem struct {
	def     *systemDef
	with    []resolvedComponent
	without []resolvedComponent
	// nil for global systems and for queries without per-entity components
	group *group
}

// DefineSystem registers a query-based system on hook. On a root the query
// group is created and backfilled immediately and the system is placed in
// the hook according to the query's ordering constraints.
func DefineSystem(ns *Namespace, hook Hook, q Query, fn SystemFunc, name string) (System, error) {
	if q.kind == QueryNone {
		return System{}, fmt.Errorf("%w: system %q has no query", ErrInvalidQuery, name)
	}
	if fn == nil {
		return System{}, fmt.Errorf("%w: system %q has no callback", ErrInvalidQuery, name)
	}
	return ns.addSystem(&systemDef{name: name, hook: hook, query: q, each: fn})
}

// DefineGlobalSystem registers a system that runs once per hook invocation,
// independent of entities.
func DefineGlobalSystem(ns *Namespace, hook Hook, fn GlobalSystemFunc, name string) (System, error) {
	if fn == nil {
		return System{}, fmt.Errorf("%w: system %q has no callback", ErrInvalidQuery, name)
	}
	return ns.addSystem(&systemDef{name: name, hook: hook, global: fn})
}

func (ns *Namespace) addSystem(def *systemDef) (System, error) {
	r := ns.root
	if r == nil {
		id := ns.counters.next(KindSystem)
		ns.systems[id] = def
		ns.logger.Debug("system defined", log.Uint32("id", uint32(id)), log.String("name", def.name))
		return System{handle{id: id, ns: ns.id, name: def.name}}, nil
	}

	hid, err := r.resolve(KindHook, def.hook.handle)
	if err != nil {
		return System{}, r.setupFailed("system", def.name, err)
	}
	hook := r.hooks[hid]
	at, err := r.insertionIndex(hook.systems, def.query.before, def.query.after)
	if err != nil {
		return System{}, r.setupFailed("system", def.name, err)
	}
	bound, err := r.bind(def)
	if err != nil {
		return System{}, r.setupFailed("system", def.name, err)
	}

	id := r.counters.next(KindSystem)
	r.systems[id] = def
	r.bound[id] = bound
	hook.systems = slices.Insert(hook.systems, at, id)

	r.logger.Debug("system registered",
		log.Uint32("id", uint32(id)),
		log.String("name", def.name),
		log.String("hook", hook.name),
		log.Int("position", at),
	)
	r.publish(EventSystemRegistered, SystemEvent{System: id, Name: def.name, Hook: hook.name})
	return System{handle{id: id, ns: r.id, name: def.name}}, nil
}

func (ns *Namespace) setupFailed(kind, name string, err error) error {
	ns.logger.Error("definition rejected", log.String("kind", kind), log.String("name", name), log.Error(err))
	return err
}

// insertionIndex places a system after every present `after` system and
// before every present `before` system.
func (r *Root) insertionIndex(systems []ID, before, after []System) (int, error) {
	maxIndex := len(systems)
	for _, s := range before {
		sid, err := r.resolve(KindSystem, s.handle)
		if err != nil {
			return 0, err
		}
		if i := slices.Index(systems, sid); i >= 0 && i < maxIndex {
			maxIndex = i
		}
	}
	minIndex := -1
	for _, s := range after {
		sid, err := r.resolve(KindSystem, s.handle)
		if err != nil {
			return 0, err
		}
		if i := slices.Index(systems, sid); i > minIndex {
			minIndex = i
		}
	}
	if minIndex >= maxIndex {
		return 0, ErrUnsatisfiableOrder
	}
	return minIndex + 1, nil
}

// bind resolves a system's components and registers its group.
func (r *Root) bind(def *systemDef) (*boundSystem, error) {
	b := &boundSystem{def: def}
	if def.global != nil {
		return b, nil
	}

	var err error
	if b.with, err = r.resolveAll(def.query.with); err != nil {
		return nil, err
	}
	if b.without, err = r.resolveAll(def.query.without); err != nil {
		return nil, err
	}

	ids := make([]ID, 0, len(b.with))
	for _, c := range b.with {
		if !c.global {
			ids = append(ids, c.id)
		}
	}
	key := newGroupKey(ids)
	if len(key) == 0 {
		return b, nil
	}

	g, created := r.index.register(key)
	if created {
		for e, attached := range r.entities {
			if key.satisfiedBy(attached) {
				g.add(e)
			}
		}
		// map iteration order is random; keep backfilled groups deterministic
		slices.Sort(g.entities)
	}
	b.group = g
	return b, nil
}

func (r *Root) resolveAll(refs []ComponentRef) ([]resolvedComponent, error) {
	out := make([]resolvedComponent, 0, len(refs))
	for _, c := range refs {
		h := c.componentRef()
		id, err := r.resolve(KindComponent, h.handle)
		if err != nil {
			return nil, err
		}
		out = append(out, resolvedComponent{id: id, global: h.global})
	}
	return out, nil
}

func (r *Root) runSystem(b *boundSystem) error {
	if b.def.global != nil {
		return b.def.global(r)
	}

	var entities []Entity
	if b.group != nil {
		entities = slices.Clone(b.group.entities)
	} else {
		entities = r.Entities()
	}

	values := make([]any, len(b.with))
	for _, e := range entities {
		// earlier callbacks may have changed membership
		if b.group != nil && !b.group.has(e) {
			continue
		}
		if b.group == nil && !r.Alive(e) {
			continue
		}
		if r.excluded(e, b.without) {
			continue
		}
		for i, c := range b.with {
			values[i], _ = r.lookup(e, c)
		}
		if err := b.def.each(r, e, values); err != nil {
			return err
		}
	}
	return nil
}

func (r *Root) excluded(e Entity, without []resolvedComponent) bool {
	for _, c := range without {
		if _, ok := r.lookup(e, c); ok {
			return true
		}
	}
	return false
}

func cast[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// Each1 adapts a typed callback over one component to a SystemFunc.
func Each1[A any](fn func(r *Root, e Entity, a A) error) SystemFunc {
	return func(r *Root, e Entity, v []any) error {
		return fn(r, e, cast[A](v[0]))
	}
}

func Each2[A, B any](fn func(r *Root, e Entity, a A, b B) error) SystemFunc {
	return func(r *Root, e Entity, v []any) error {
		return fn(r, e, cast[A](v[0]), cast[B](v[1]))
	}
}

func Each3[A, B, C any](fn func(r *Root, e Entity, a A, b B, c C) error) SystemFunc {
	return func(r *Root, e Entity, v []any) error {
		return fn(r, e, cast[A](v[0]), cast[B](v[1]), cast[C](v[2]))
	}
}

func Each4[A, B, C, D any](fn func(r *Root, e Entity, a A, b B, c C, d D) error) SystemFunc {
	return func(r *Root, e Entity, v []any) error {
		return fn(r, e, cast[A](v[0]), cast[B](v[1]), cast[C](v[2]), cast[D](v[3]))
	}
}
