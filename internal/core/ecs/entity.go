package ecs

import (
	"fmt"

	"github.com/zeusync/zecs/internal/core/observability/log"
)

// Entity is a bare identity, unique among the live entities of a root.
type Entity uint32

// CreateEntity allocates the next free entity id. Allocation starts at the
// entity counter and probes forward past live ids; it only loops forever if
// every id is live at once.
func (r *Root) CreateEntity() Entity {
	e := Entity(r.counters.next(KindEntity))
	for {
		if _, taken := r.entities[e]; !taken {
			break
		}
		e++
	}
	r.entities[e] = nil
	r.publish(EventEntityCreated, EntityEvent{Entity: e})
	return e
}

// Alive reports whether e is a live entity.
func (r *Root) Alive(e Entity) bool {
	_, ok := r.entities[e]
	return ok
}

// DestroyEntity drops every value e holds and removes it from every group.
// Triggers do not fire.
func (r *Root) DestroyEntity(e Entity) error {
	attached, ok := r.entities[e]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, e)
	}
	for _, id := range attached {
		delete(r.stores[id], e)
	}
	r.index.purge(e)
	delete(r.entities, e)

	r.logger.Debug("entity destroyed", log.Uint32("entity", uint32(e)), log.Int("components", len(attached)))
	r.publish(EventEntityDestroyed, EntityEvent{Entity: e})
	return nil
}
