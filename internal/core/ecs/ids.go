package ecs

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is a namespace-local identifier. IDs are dense per kind and never
// reused within a namespace.
type ID uint32

// Kind selects one of the per-namespace id counters.
type Kind uint8

const (
	KindEntity Kind = iota
	KindComponent
	KindSystem
	KindHook
	KindTrigger

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindEntity:
		return "entity"
	case KindComponent:
		return "component"
	case KindSystem:
		return "system"
	case KindHook:
		return "hook"
	case KindTrigger:
		return "trigger"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type counters [kindCount]ID

func (c *counters) next(k Kind) ID {
	id := c[k]
	c[k]++
	return id
}

// handle is the identity shared by every definition handle: the id local to
// the defining namespace, that namespace's identity and an optional name.
type handle struct {
	id   ID
	ns   uuid.UUID
	name string
}

func (h handle) ID() ID               { return h.id }
func (h handle) Namespace() uuid.UUID { return h.ns }
func (h handle) Name() string         { return h.name }

// Hook is a named, ordered slot of systems.
type Hook struct{ handle }

// System identifies a registered system.
type System struct{ handle }

// Trigger identifies a registered trigger.
type Trigger struct{ handle }

// origin is the namespace and id an imported copy was made from.
type origin struct {
	ns uuid.UUID
	id ID
}

// idTable maps ids of one foreign namespace to local ids, per kind.
type idTable [kindCount]map[ID]ID

func newIDTable() *idTable {
	var t idTable
	for k := range t {
		t[k] = make(map[ID]ID)
	}
	return &t
}
