package ecs

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// groupKey is an ascending, duplicate-free list of non-global component ids.
// The ordering is what makes structural equality a plain slice comparison.
type groupKey []ID

func newGroupKey(ids []ID) groupKey {
	k := slices.Clone(ids)
	slices.Sort(k)
	return slices.Compact(k)
}

// String renders the key as colon-joined ids, e.g. "1:3:5".
func (k groupKey) String() string {
	var b strings.Builder
	for i, id := range k {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteString(strconv.FormatUint(uint64(id), 10))
	}
	return b.String()
}

func (k groupKey) hash() uint64 {
	return xxhash.Sum64String(k.String())
}

// satisfiedBy reports whether attached is a superset of k.
func (k groupKey) satisfiedBy(attached []ID) bool {
	for _, id := range k {
		if !slices.Contains(attached, id) {
			return false
		}
	}
	return true
}

// group holds the entities whose attached components are a superset of key,
// in admission order.
type group struct {
	key      groupKey
	entities []Entity
	members  map[Entity]struct{}
}

func (g *group) has(e Entity) bool {
	_, ok := g.members[e]
	return ok
}

func (g *group) add(e Entity) {
	g.members[e] = struct{}{}
	g.entities = append(g.entities, e)
}

func (g *group) remove(e Entity) {
	if _, ok := g.members[e]; !ok {
		return
	}
	delete(g.members, e)
	if i := slices.Index(g.entities, e); i >= 0 {
		g.entities = slices.Delete(g.entities, i, i+1)
	}
}

// groupIndex maps keys to groups and components to the groups whose key
// contains them.
type groupIndex struct {
	// key hash -> groups, compared structurally on collision
	buckets map[uint64][]*group
	// component id -> distinct groups containing it, in registration order
	memberships map[ID][]*group
	groups      []*group
}

func newGroupIndex() *groupIndex {
	return &groupIndex{
		buckets:     make(map[uint64][]*group),
		memberships: make(map[ID][]*group),
	}
}

func (x *groupIndex) lookup(k groupKey) *group {
	for _, g := range x.buckets[k.hash()] {
		if slices.Equal(g.key, k) {
			return g
		}
	}
	return nil
}

// register returns the group for k, creating it and recording it in the
// membership list of every component in k. created is false when a
// structurally identical key was already registered.
func (x *groupIndex) register(k groupKey) (g *group, created bool) {
	if g = x.lookup(k); g != nil {
		return g, false
	}
	g = &group{key: k, members: make(map[Entity]struct{})}
	h := k.hash()
	x.buckets[h] = append(x.buckets[h], g)
	x.groups = append(x.groups, g)
	for _, id := range k {
		if !slices.Contains(x.memberships[id], g) {
			x.memberships[id] = append(x.memberships[id], g)
		}
	}
	return g, true
}

// admit runs after cid was freshly attached to e. Only the groups cid
// belongs to can change.
func (x *groupIndex) admit(e Entity, cid ID, attached []ID) {
	for _, g := range x.memberships[cid] {
		if g.key.satisfiedBy(attached) && !g.has(e) {
			g.add(e)
		}
	}
}

// evict runs after cid was removed from e. Every group in cid's membership
// list contains cid, so e can no longer match any of them.
func (x *groupIndex) evict(e Entity, cid ID) {
	for _, g := range x.memberships[cid] {
		g.remove(e)
	}
}

// purge removes e from every group.
func (x *groupIndex) purge(e Entity) {
	for _, g := range x.groups {
		g.remove(e)
	}
}
