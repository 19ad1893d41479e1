package ecs

import (
	"fmt"

	"github.com/zeusync/zecs/internal/core/observability/log"
)

// Change describes one value transition of a component on an entity.
// HadOld is false on a fresh attachment; HasNew is false on a removal.
type Change[T any] struct {
	Old    T
	New    T
	HadOld bool
	HasNew bool
}

// Attached reports a fresh attachment.
func (c Change[T]) Attached() bool { return !c.HadOld && c.HasNew }

// Removed reports a removal of a previously held value.
func (c Change[T]) Removed() bool { return c.HadOld && !c.HasNew }

type TriggerFunc[T any] func(r *Root, e Entity, ch Change[T]) error

type GlobalTriggerFunc[T any] func(r *Root, ch Change[T]) error

type triggerDef struct {
	name      string
	component componentHandle
	// run reads the new value itself, so it always sees the stored state
	run func(r *Root, e Entity, old any, had bool) error
}

// DefineTrigger registers fn to run after every set or removal of c.
func DefineTrigger[T any](ns *Namespace, c Component[T], fn TriggerFunc[T], name string) (Trigger, error) {
	def := &triggerDef{
		name:      name,
		component: c.h,
		run: func(r *Root, e Entity, old any, had bool) error {
			return fn(r, e, change(r, e, c, old, had))
		},
	}
	return ns.addTrigger(def)
}

// DefineGlobalTrigger is DefineTrigger for global components. It rejects
// per-entity components.
func DefineGlobalTrigger[T any](ns *Namespace, c Component[T], fn GlobalTriggerFunc[T], name string) (Trigger, error) {
	if !c.h.global {
		return Trigger{}, ns.setupFailed("trigger", name, compositionError(ErrGlobalTrigger, "component %s", c))
	}
	def := &triggerDef{
		name:      name,
		component: c.h,
		run: func(r *Root, e Entity, old any, had bool) error {
			return fn(r, change(r, e, c, old, had))
		},
	}
	return ns.addTrigger(def)
}

func change[T any](r *Root, e Entity, c Component[T], old any, had bool) Change[T] {
	ch := Change[T]{HadOld: had}
	if had {
		ch.Old = old.(T)
	}
	ch.New, ch.HasNew = Get(r, e, c)
	return ch
}

func (ns *Namespace) addTrigger(def *triggerDef) (Trigger, error) {
	var cid ID
	if ns.root != nil {
		var err error
		if cid, err = ns.resolve(KindComponent, def.component.handle); err != nil {
			return Trigger{}, ns.setupFailed("trigger", def.name, err)
		}
	}

	id := ns.counters.next(KindTrigger)
	ns.triggers[id] = def
	if r := ns.root; r != nil {
		r.componentTriggers[cid] = append(r.componentTriggers[cid], id)
	}
	ns.logger.Debug("trigger defined", log.Uint32("id", uint32(id)), log.String("name", def.name))
	return Trigger{handle{id: id, ns: ns.id, name: def.name}}, nil
}

// TriggerID resolves t to this namespace's local trigger id.
func (ns *Namespace) TriggerID(t Trigger) (ID, error) {
	return ns.resolve(KindTrigger, t.handle)
}

// Triggers returns the names of the triggers bound to c, in firing order.
func (r *Root) Triggers(c ComponentRef) ([]string, error) {
	cid, err := r.Resolve(c)
	if err != nil {
		return nil, err
	}
	ids := r.componentTriggers[cid]
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = r.triggers[id].name
	}
	return names, nil
}

func (t Trigger) String() string {
	if t.name != "" {
		return t.name
	}
	return fmt.Sprintf("trigger#%d", t.id)
}
