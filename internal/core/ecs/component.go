package ecs

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/zeusync/zecs/internal/core/observability/log"
)

// componentHandle identifies a component definition. It carries no value.
type componentHandle struct {
	handle
	global bool
}

// ComponentRef is implemented by every Component[T], so heterogeneous lists
// of components can be passed to queries.
type ComponentRef interface {
	componentRef() componentHandle
}

// Component is a typed handle to a component definition. The type parameter
// only exists at compile time; values are stored untyped and cast back at
// the accessor boundary. A handle is only valid against the namespace that
// defines it or a namespace that imported it.
type Component[T any] struct {
	h componentHandle
}

func (c Component[T]) componentRef() componentHandle { return c.h }

func (c Component[T]) ID() ID       { return c.h.id }
func (c Component[T]) Global() bool { return c.h.global }
func (c Component[T]) Name() string { return c.h.name }

func (c Component[T]) String() string {
	if c.h.name != "" {
		return c.h.name
	}
	return fmt.Sprintf("component#%d", c.h.id)
}

// DefineComponent defines a per-entity component.
func DefineComponent[T any](ns *Namespace, name string) Component[T] {
	return DefineComponentOf[T](ns, false, name)
}

// DefineComponentOf defines a component, global or per-entity.
func DefineComponentOf[T any](ns *Namespace, global bool, name string) Component[T] {
	id := ns.addComponent(global, name, nil, false)
	return Component[T]{h: componentHandle{handle: handle{id: id, ns: ns.id, name: name}, global: global}}
}

// DefineGlobalComponent defines a component with a single value per root.
// The optional initial value is copied into every namespace importing it.
func DefineGlobalComponent[T any](ns *Namespace, name string, initial ...T) Component[T] {
	var (
		value any
		has   bool
	)
	if len(initial) > 0 && !isAbsent(initial[0]) {
		value, has = initial[0], true
	}
	id := ns.addComponent(true, name, value, has)
	return Component[T]{h: componentHandle{handle: handle{id: id, ns: ns.id, name: name}, global: true}}
}

func (ns *Namespace) addComponent(global bool, name string, value any, hasValue bool) ID {
	id := ns.counters.next(KindComponent)
	ns.components[id] = componentDef{global: global, name: name}
	if global {
		ns.globalComponentIDs = append(ns.globalComponentIDs, id)
		if hasValue {
			ns.globals[id] = value
		}
	} else {
		ns.componentIDs = append(ns.componentIDs, id)
	}
	if ns.root != nil {
		ns.root.allocate(id, global)
	}
	ns.logger.Debug("component defined", log.Uint32("id", uint32(id)), log.String("name", name), log.Bool("global", global))
	return id
}

// isAbsent reports whether v stands for "no value": nil, or a nil pointer,
// interface, map, slice, func or chan.
func isAbsent(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// mustResolve is used by the read accessors, which have no error return.
func (r *Root) mustResolve(h componentHandle) ID {
	id, err := r.resolve(KindComponent, h.handle)
	if err != nil {
		panic(err)
	}
	return id
}

func (r *Root) value(e Entity, h componentHandle) (any, bool) {
	id := r.mustResolve(h)
	if h.global {
		v, ok := r.globals[id]
		return v, ok
	}
	v, ok := r.stores[id][e]
	return v, ok
}

// lookup reads a resolved component for e; used by bound systems.
func (r *Root) lookup(e Entity, c resolvedComponent) (any, bool) {
	if c.global {
		v, ok := r.globals[c.id]
		return v, ok
	}
	v, ok := r.stores[c.id][e]
	return v, ok
}

func (r *Root) set(e Entity, h componentHandle, v any) error {
	if isAbsent(v) {
		return r.remove(e, h)
	}
	id, err := r.resolve(KindComponent, h.handle)
	if err != nil {
		return err
	}

	if h.global {
		old, had := r.globals[id]
		r.globals[id] = v
		return r.fire(id, e, old, had)
	}

	attached, live := r.entities[e]
	if !live {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, e)
	}
	store := r.stores[id]
	old, had := store[e]
	store[e] = v
	if !had {
		attached = append(attached, id)
		r.entities[e] = attached
		r.index.admit(e, id, attached)
	}
	return r.fire(id, e, old, had)
}

func (r *Root) remove(e Entity, h componentHandle) error {
	id, err := r.resolve(KindComponent, h.handle)
	if err != nil {
		return err
	}

	if h.global {
		old, had := r.globals[id]
		delete(r.globals, id)
		return r.fire(id, e, old, had)
	}

	attached, live := r.entities[e]
	if !live {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, e)
	}
	store := r.stores[id]
	old, had := store[e]
	delete(store, e)
	if had {
		r.index.evict(e, id)
		r.entities[e] = deleteID(attached, id)
	}
	return r.fire(id, e, old, had)
}

func deleteID(ids []ID, id ID) []ID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Get returns e's value for c. For a global component the entity is ignored.
// Get panics with a *RefError if c was never imported into r.
func Get[T any](r *Root, e Entity, c Component[T]) (T, bool) {
	v, ok := r.value(e, c.h)
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Has reports whether e has a value for c. It panics like Get.
func Has[T any](r *Root, e Entity, c Component[T]) bool {
	_, ok := r.value(e, c.h)
	return ok
}

// HasRef is Has for an untyped component reference.
func HasRef(r *Root, e Entity, c ComponentRef) bool {
	_, ok := r.value(e, c.componentRef())
	return ok
}

// Set attaches or updates e's value for c and fires c's triggers. A nil
// pointer or nil interface value removes the component instead.
func Set[T any](r *Root, e Entity, c Component[T], value T) error {
	return r.set(e, c.h, value)
}

// Remove detaches c from e and fires c's triggers with the previous value.
func Remove[T any](r *Root, e Entity, c Component[T]) error {
	return r.remove(e, c.h)
}

// ReSet re-stores the current value of c, re-firing its triggers. Use it
// after mutating a value in place. It is a no-op when e has no value for c.
func ReSet[T any](r *Root, e Entity, c Component[T]) error {
	if _, err := r.resolve(KindComponent, c.h.handle); err != nil {
		return err
	}
	v, ok := r.value(e, c.h)
	if !ok {
		return nil
	}
	return r.set(e, c.h, v)
}

// GetGlobal returns the root-wide value of a global component. It reports
// false for per-entity components.
func GetGlobal[T any](r *Root, c Component[T]) (T, bool) {
	if !c.h.global {
		var zero T
		return zero, false
	}
	return Get(r, 0, c)
}

// HasGlobal reports whether the global component c currently has a value.
func HasGlobal[T any](r *Root, c Component[T]) bool {
	return c.h.global && Has(r, 0, c)
}

func SetGlobal[T any](r *Root, c Component[T], value T) error {
	if !c.h.global {
		return fmt.Errorf("%w: %s", ErrNotGlobal, c)
	}
	return Set(r, 0, c, value)
}

func RemoveGlobal[T any](r *Root, c Component[T]) error {
	if !c.h.global {
		return fmt.Errorf("%w: %s", ErrNotGlobal, c)
	}
	return Remove(r, 0, c)
}

func ReSetGlobal[T any](r *Root, c Component[T]) error {
	if !c.h.global {
		return fmt.Errorf("%w: %s", ErrNotGlobal, c)
	}
	return ReSet(r, 0, c)
}

// SetDefault replaces the value a module hands to its importers for the
// global component c. On a root it behaves like SetGlobal.
func SetDefault[T any](ns *Namespace, c Component[T], value T) error {
	if ns.root != nil {
		return SetGlobal(ns.root, c, value)
	}
	if !c.h.global {
		return fmt.Errorf("%w: %s", ErrNotGlobal, c)
	}
	id, err := ns.resolve(KindComponent, c.h.handle)
	if err != nil {
		return err
	}
	if isAbsent(value) {
		delete(ns.globals, id)
		return nil
	}
	ns.globals[id] = value
	return nil
}

// Default returns the value a namespace holds for a global component.
func Default[T any](ns *Namespace, c Component[T]) (T, bool) {
	var zero T
	id, err := ns.resolve(KindComponent, c.h.handle)
	if err != nil || !c.h.global {
		return zero, false
	}
	v, ok := ns.globals[id]
	if !ok {
		return zero, false
	}
	return v.(T), true
}

// fire dispatches the triggers bound to cid. All triggers run; their errors
// are joined.
func (r *Root) fire(cid ID, e Entity, old any, had bool) error {
	var errs error
	for _, tid := range r.componentTriggers[cid] {
		t := r.triggers[tid]
		if err := t.run(r, e, old, had); err != nil {
			errs = errors.Join(errs, fmt.Errorf("trigger %q: %w", t.name, err))
		}
	}
	return errs
}
