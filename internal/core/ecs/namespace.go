package ecs

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/zeusync/zecs/internal/core/events/bus"
	"github.com/zeusync/zecs/internal/core/observability/log"
)

// Namespace is a scope owning id counters and definitions. Plain namespaces
// (modules) hold definitions only; the Root embedding a namespace also holds
// live state.
type Namespace struct {
	id     uuid.UUID
	name   string
	logger log.Log
	events bus.EventBus

	counters counters

	components         map[ID]componentDef
	componentIDs       []ID
	globalComponentIDs []ID
	// global component values: declared defaults on modules, live values on roots
	globals map[ID]any

	systems  map[ID]*systemDef
	hooks    map[ID]*hookDef
	triggers map[ID]*triggerDef

	// foreign namespace -> foreign id -> local id, per kind
	remap map[uuid.UUID]*idTable
	// local id -> where the local copy came from, per kind
	origins [kindCount]map[ID]origin

	dependencies []*Namespace
	imported     []uuid.UUID

	root *Root
}

type componentDef struct {
	global bool
	name   string
}

type hookDef struct {
	name    string
	systems []ID
}

// Option configures a namespace or root at construction.
type Option func(*options)

type options struct {
	logger log.Log
	events bus.EventBus
}

// WithLogger sets the logger used for definition, import and lifecycle logs.
func WithLogger(l log.Log) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEventBus makes the namespace publish lifecycle events on TopicLifecycle.
func WithEventBus(b bus.EventBus) Option {
	return func(o *options) { o.events = b }
}

// NewModule creates a definition-only namespace.
func NewModule(name string, opts ...Option) *Namespace {
	o := options{logger: log.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	ns := &Namespace{
		id:         uuid.New(),
		name:       name,
		events:     o.events,
		components: make(map[ID]componentDef),
		globals:    make(map[ID]any),
		systems:    make(map[ID]*systemDef),
		hooks:      make(map[ID]*hookDef),
		triggers:   make(map[ID]*triggerDef),
		remap:      make(map[uuid.UUID]*idTable),
	}
	for k := range ns.origins {
		ns.origins[k] = make(map[ID]origin)
	}
	ns.logger = o.logger.With(log.String("namespace", name), log.String("namespace_id", ns.id.String()))
	return ns
}

func (ns *Namespace) ID() uuid.UUID { return ns.id }
func (ns *Namespace) Name() string  { return ns.name }
func (ns *Namespace) Logger() log.Log {
	return ns.logger
}

// IsRoot reports whether the namespace owns live storage.
func (ns *Namespace) IsRoot() bool { return ns.root != nil }

// DependsOn declares namespaces that must be imported before this one
// whenever this one is imported.
func (ns *Namespace) DependsOn(deps ...*Namespace) {
	ns.dependencies = append(ns.dependencies, deps...)
}

func (ns *Namespace) Dependencies() []*Namespace { return slices.Clone(ns.dependencies) }

// Imported lists the namespaces already imported, directly or transitively.
func (ns *Namespace) Imported() []uuid.UUID { return slices.Clone(ns.imported) }

// HasImported reports whether the namespace with the given id was imported.
func (ns *Namespace) HasImported(id uuid.UUID) bool { return slices.Contains(ns.imported, id) }

// ComponentIDs returns the non-global component ids defined or copied into
// this namespace, in definition order.
func (ns *Namespace) ComponentIDs() []ID { return slices.Clone(ns.componentIDs) }

// GlobalComponentIDs is the global counterpart of ComponentIDs.
func (ns *Namespace) GlobalComponentIDs() []ID { return slices.Clone(ns.globalComponentIDs) }

// Mapping returns the local id for a foreign (namespace, id) pair.
func (ns *Namespace) Mapping(k Kind, from uuid.UUID, id ID) (ID, bool) {
	t, ok := ns.remap[from]
	if !ok {
		return 0, false
	}
	local, ok := t[k][id]
	return local, ok
}

// remapSnapshot deep-copies the translation tables.
func (ns *Namespace) remapSnapshot() map[uuid.UUID]idTable {
	out := make(map[uuid.UUID]idTable, len(ns.remap))
	for from, t := range ns.remap {
		var c idTable
		for k := range t {
			c[k] = maps.Clone(t[k])
		}
		out[from] = c
	}
	return out
}

func (ns *Namespace) resolve(k Kind, h handle) (ID, error) {
	if h.ns == ns.id {
		return h.id, nil
	}
	if local, ok := ns.Mapping(k, h.ns, h.id); ok {
		return local, nil
	}
	return 0, &RefError{Kind: k, Name: h.name, ID: h.id, Origin: h.ns, Namespace: ns.name}
}

// Resolve returns the local component id for c, or a *RefError.
func (ns *Namespace) Resolve(c ComponentRef) (ID, error) {
	return ns.resolve(KindComponent, c.componentRef().handle)
}

func (ns *Namespace) tableFor(from uuid.UUID) *idTable {
	t, ok := ns.remap[from]
	if !ok {
		t = newIDTable()
		ns.remap[from] = t
	}
	return t
}

// originOf walks this namespace's own import records to find where a local
// definition really came from.
func (ns *Namespace) originOf(k Kind, id ID) origin {
	if o, ok := ns.origins[k][id]; ok {
		return o
	}
	return origin{ns: ns.id, id: id}
}

func (ns *Namespace) publish(eventType string, data any) {
	if ns.events == nil {
		return
	}
	if err := ns.events.PublishToTopic(TopicLifecycle, bus.NewEvent(eventType, ns.name, data, nil)); err != nil {
		ns.logger.Warn("lifecycle handler failed", log.String("event", eventType), log.Error(err))
	}
}

func sortedIDs[V any](m map[ID]V) []ID {
	return slices.Sorted(maps.Keys(m))
}
