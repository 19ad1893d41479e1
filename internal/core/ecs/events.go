package ecs

import "github.com/google/uuid"

// TopicLifecycle is the bus topic lifecycle events are published on.
const TopicLifecycle = "ecs"

const (
	EventEntityCreated     = "entity.created"
	EventEntityDestroyed   = "entity.destroyed"
	EventNamespaceImported = "namespace.imported"
	EventSystemRegistered  = "system.registered"
)

type EntityEvent struct {
	Entity Entity
}

type ImportEvent struct {
	Namespace string
	ID        uuid.UUID
	Into      string
}

type SystemEvent struct {
	System ID
	Name   string
	Hook   string
}
