package ecs

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopSystem(*Root, Entity, []any) error { return nil }

func TestGroupKey(t *testing.T) {
	k := newGroupKey([]ID{5, 1, 3, 1})
	require.Equal(t, groupKey{1, 3, 5}, k)
	require.Equal(t, "1:3:5", k.String())
	require.Equal(t, "", newGroupKey(nil).String())

	require.True(t, k.satisfiedBy([]ID{9, 5, 3, 1}))
	require.False(t, k.satisfiedBy([]ID{1, 3}))
	require.Equal(t, k.hash(), newGroupKey([]ID{3, 5, 1}).hash())
}

func TestGroup_AdmissionAfterSecondComponent(t *testing.T) {
	r := NewRoot("test")
	pos := DefineComponent[vec2](r.Namespace, "position")
	vel := DefineComponent[vec2](r.Namespace, "velocity")
	hook := DefineHook(r.Namespace, "update")
	_, err := DefineSystem(r.Namespace, hook, With(pos, vel), noopSystem, "move")
	require.NoError(t, err)

	e := r.CreateEntity()
	require.NoError(t, Set(r, e, pos, vec2{}))

	g, err := r.Group(pos, vel)
	require.NoError(t, err)
	require.Empty(t, g)

	require.NoError(t, Set(r, e, vel, vec2{1, 0}))
	g, err = r.Group(vel, pos)
	require.NoError(t, err)
	require.Equal(t, []Entity{e}, g)

	// an update does not readmit
	require.NoError(t, Set(r, e, vel, vec2{2, 0}))
	g, _ = r.Group(pos, vel)
	require.Equal(t, []Entity{e}, g)

	require.NoError(t, Remove(r, e, pos))
	g, _ = r.Group(pos, vel)
	require.Empty(t, g)
}

func TestGroup_Backfill(t *testing.T) {
	r := NewRoot("test")
	a := DefineComponent[int](r.Namespace, "a")
	b := DefineComponent[int](r.Namespace, "b")
	hook := DefineHook(r.Namespace, "update")

	var both []Entity
	for i := range 10 {
		e := r.CreateEntity()
		require.NoError(t, Set(r, e, a, i))
		if i%2 == 0 {
			require.NoError(t, Set(r, e, b, i))
			both = append(both, e)
		}
	}

	_, err := DefineSystem(r.Namespace, hook, With(a, b), noopSystem, "late")
	require.NoError(t, err)

	g, err := r.Group(a, b)
	require.NoError(t, err)
	require.Equal(t, both, g)
}

func TestGroup_MembershipsAreDeduplicated(t *testing.T) {
	r := NewRoot("test")
	a := DefineComponent[int](r.Namespace, "a")
	b := DefineComponent[int](r.Namespace, "b")
	cfg := DefineGlobalComponent(r.Namespace, "cfg", 1)
	hook := DefineHook(r.Namespace, "update")

	Must(DefineSystem(r.Namespace, hook, With(a, b), noopSystem, "ab"))
	Must(DefineSystem(r.Namespace, hook, With(b, a, cfg), noopSystem, "ba"))
	Must(DefineSystem(r.Namespace, hook, With(a), noopSystem, "a"))

	m, err := r.Memberships(a)
	require.NoError(t, err)
	require.Equal(t, []string{"0:1", "0"}, m)

	m, err = r.Memberships(b)
	require.NoError(t, err)
	require.Equal(t, []string{"0:1"}, m)

	assert.Equal(t, []string{"0:1", "0"}, r.GroupKeys())
	assert.Equal(t, 2, r.Stats().Groups)
}

func TestGroup_EmptyKeyIsEveryEntity(t *testing.T) {
	r := NewRoot("test")
	cfg := DefineGlobalComponent(r.Namespace, "cfg", 1)
	unused := DefineComponent[int](r.Namespace, "unused")

	e1, e2 := r.CreateEntity(), r.CreateEntity()

	g, err := r.Group()
	require.NoError(t, err)
	require.Equal(t, []Entity{e1, e2}, g)

	g, err = r.Group(cfg)
	require.NoError(t, err)
	require.Equal(t, []Entity{e1, e2}, g)

	// no system asked for this key
	g, err = r.Group(unused)
	require.NoError(t, err)
	require.Nil(t, g)
}

func TestGroup_DestroyPurges(t *testing.T) {
	r := NewRoot("test")
	a := DefineComponent[int](r.Namespace, "a")
	hook := DefineHook(r.Namespace, "update")
	Must(DefineSystem(r.Namespace, hook, With(a), noopSystem, "a"))

	e := r.CreateEntity()
	keep := r.CreateEntity()
	require.NoError(t, Set(r, e, a, 1))
	require.NoError(t, Set(r, keep, a, 2))

	require.NoError(t, r.DestroyEntity(e))
	g, _ := r.Group(a)
	require.Equal(t, []Entity{keep}, g)
	require.False(t, r.Alive(e))
	require.Len(t, r.stores[a.ID()], 1)
}

// TestGroup_Differential drives random mutations and compares every indexed
// group with a brute-force scan after each step.
func TestGroup_Differential(t *testing.T) {
	for seed := range uint64(8) {
		rng := rand.New(rand.NewPCG(seed, seed*31+7))

		r := NewRoot("diff")
		comps := make([]Component[int], 6)
		refs := make([]ComponentRef, len(comps))
		for i := range comps {
			comps[i] = DefineComponent[int](r.Namespace, "")
			refs[i] = comps[i]
		}
		hook := DefineHook(r.Namespace, "update")

		var keys [][]ComponentRef
		for i := range 10 {
			n := 1 + rng.IntN(3)
			key := make([]ComponentRef, 0, n)
			for range n {
				key = append(key, refs[rng.IntN(len(refs))])
			}
			keys = append(keys, key)
			Must(DefineSystem(r.Namespace, hook, With(key...), noopSystem, ""))

			if i == 4 {
				// some systems register after entities exist
				for range 5 {
					e := r.CreateEntity()
					require.NoError(t, Set(r, e, comps[rng.IntN(len(comps))], 1))
				}
			}
		}

		for step := range 400 {
			live := r.Entities()
			switch op := rng.IntN(10); {
			case op == 0 || len(live) == 0:
				r.CreateEntity()
			case op == 1:
				require.NoError(t, r.DestroyEntity(live[rng.IntN(len(live))]))
			case op < 6:
				e := live[rng.IntN(len(live))]
				require.NoError(t, Set(r, e, comps[rng.IntN(len(comps))], step))
			default:
				e := live[rng.IntN(len(live))]
				require.NoError(t, Remove(r, e, comps[rng.IntN(len(comps))]))
			}

			for _, key := range keys {
				got, err := r.Group(key...)
				require.NoError(t, err)
				require.ElementsMatch(t, bruteForce(r, key), got, "seed %d step %d key %v", seed, step, key)
				requireUnique(t, got)
			}
		}
	}
}

func bruteForce(r *Root, key []ComponentRef) []Entity {
	var out []Entity
	for _, e := range r.Entities() {
		ok := true
		for _, c := range key {
			if !HasRef(r, e, c) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, e)
		}
	}
	return out
}

func requireUnique(t *testing.T, entities []Entity) {
	t.Helper()
	sorted := slices.Clone(entities)
	slices.Sort(sorted)
	require.Equal(t, len(sorted), len(slices.Compact(sorted)))
}
