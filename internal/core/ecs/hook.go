package ecs

import (
	"fmt"
	"slices"

	"github.com/zeusync/zecs/internal/core/observability/log"
)

// DefineHook creates an empty, named slot for systems.
func DefineHook(ns *Namespace, name string) Hook {
	id := ns.addHook(name)
	return Hook{handle{id: id, ns: ns.id, name: name}}
}

func (ns *Namespace) addHook(name string) ID {
	id := ns.counters.next(KindHook)
	ns.hooks[id] = &hookDef{name: name}
	ns.logger.Debug("hook defined", log.Uint32("id", uint32(id)), log.String("name", name))
	return id
}

// TriggerHook runs every system of h in the hook's resolved order. It stops
// at the first system that fails.
func (r *Root) TriggerHook(h Hook) error {
	hid, err := r.resolve(KindHook, h.handle)
	if err != nil {
		return err
	}
	for _, sid := range r.hooks[hid].systems {
		b := r.bound[sid]
		if err := r.runSystem(b); err != nil {
			return fmt.Errorf("hook %q: system %q: %w", r.hooks[hid].name, b.def.name, err)
		}
	}
	return nil
}

// Run makes a Hook usable as a program step.
func (h Hook) Run(r *Root) error { return r.TriggerHook(h) }

// HookSystems returns the systems of h in execution order.
func (r *Root) HookSystems(h Hook) ([]System, error) {
	hid, err := r.resolve(KindHook, h.handle)
	if err != nil {
		return nil, err
	}
	ids := r.hooks[hid].systems
	out := make([]System, len(ids))
	for i, sid := range ids {
		out[i] = System{handle{id: sid, ns: r.id, name: r.systems[sid].name}}
	}
	return out, nil
}

// SystemID resolves s to this root's local system id.
func (r *Root) SystemID(s System) (ID, error) {
	return r.resolve(KindSystem, s.handle)
}

// Position returns the index of s within h, or -1 if it is not there.
func (r *Root) Position(h Hook, s System) (int, error) {
	hid, err := r.resolve(KindHook, h.handle)
	if err != nil {
		return -1, err
	}
	sid, err := r.resolve(KindSystem, s.handle)
	if err != nil {
		return -1, err
	}
	return slices.Index(r.hooks[hid].systems, sid), nil
}
