package ecs

import (
	"slices"

	"github.com/google/uuid"

	"github.com/zeusync/zecs/internal/core/observability/log"
)

// Import merges the definitions of from into to. Dependencies of from are
// imported first. Every item is copied at most once per original definition,
// however many import paths lead to it, so importing twice is a no-op.
// Roots can only be import targets.
func Import(to, from *Namespace) error {
	return importInto(to, from, nil)
}

func importInto(to, from *Namespace, chain []uuid.UUID) error {
	if from.root != nil {
		return to.setupFailed("import", from.name, compositionError(ErrImportRoot, "%q into %q", from.name, to.name))
	}
	if from.id == to.id {
		return to.setupFailed("import", from.name, compositionError(ErrImportSelf, "%q", from.name))
	}
	if to.HasImported(from.id) {
		return nil
	}
	if slices.Contains(chain, from.id) {
		return to.setupFailed("import", from.name, compositionError(ErrDependencyCycle, "%q", from.name))
	}
	chain = append(chain, from.id)

	for _, dep := range from.dependencies {
		if err := importInto(to, dep, chain); err != nil {
			return err
		}
	}

	to.tableFor(from.id)

	for _, cid := range from.componentIDs {
		def := from.components[cid]
		err := to.forward(from, KindComponent, cid, func() (ID, error) {
			return to.addComponent(false, def.name, nil, false), nil
		})
		if err != nil {
			return err
		}
	}
	for _, cid := range from.globalComponentIDs {
		def := from.components[cid]
		value, has := from.globals[cid]
		err := to.forward(from, KindComponent, cid, func() (ID, error) {
			return to.addComponent(true, def.name, value, has), nil
		})
		if err != nil {
			return err
		}
	}
	for _, hid := range sortedIDs(from.hooks) {
		name := from.hooks[hid].name
		err := to.forward(from, KindHook, hid, func() (ID, error) {
			return to.addHook(name), nil
		})
		if err != nil {
			return err
		}
	}
	for _, sid := range sortedIDs(from.systems) {
		def := from.systems[sid]
		err := to.forward(from, KindSystem, sid, func() (ID, error) {
			s, err := to.addSystem(def)
			return s.id, err
		})
		if err != nil {
			return err
		}
	}
	for _, tid := range sortedIDs(from.triggers) {
		def := from.triggers[tid]
		err := to.forward(from, KindTrigger, tid, func() (ID, error) {
			t, err := to.addTrigger(def)
			return t.id, err
		})
		if err != nil {
			return err
		}
	}

	to.imported = append(to.imported, from.id)
	for _, id := range from.imported {
		if !slices.Contains(to.imported, id) {
			to.imported = append(to.imported, id)
		}
	}

	to.logger.Debug("namespace imported", log.String("from", from.name), log.String("from_id", from.id.String()))
	to.publish(EventNamespaceImported, ImportEvent{Namespace: from.name, ID: from.id, Into: to.name})
	return nil
}

// forward copies one item of from into to unless to already holds a copy
// of the same original definition.
func (to *Namespace) forward(from *Namespace, k Kind, id ID, create func() (ID, error)) error {
	o := from.originOf(k, id)
	if o.ns == to.id {
		return nil
	}
	t := to.tableFor(o.ns)
	if _, ok := t[k][o.id]; ok {
		return nil
	}
	local, err := create()
	if err != nil {
		return err
	}
	t[k][o.id] = local
	to.origins[k][local] = o
	return nil
}
