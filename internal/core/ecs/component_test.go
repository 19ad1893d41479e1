package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vec2 struct{ X, Y float64 }

type settings struct{ Speed float64 }

func TestComponent_RoundTrip(t *testing.T) {
	r := NewRoot("test")
	pos := DefineComponent[vec2](r.Namespace, "position")
	e := r.CreateEntity()

	_, ok := Get(r, e, pos)
	require.False(t, ok)
	require.False(t, Has(r, e, pos))

	require.NoError(t, Set(r, e, pos, vec2{1, 2}))
	v, ok := Get(r, e, pos)
	require.True(t, ok)
	require.Equal(t, vec2{1, 2}, v)

	require.NoError(t, Set(r, e, pos, vec2{3, 4}))
	v, _ = Get(r, e, pos)
	require.Equal(t, vec2{3, 4}, v)

	attached, ok := r.Attached(e)
	require.True(t, ok)
	require.Equal(t, []ID{pos.ID()}, attached, "an update must not attach twice")

	require.NoError(t, Remove(r, e, pos))
	require.False(t, Has(r, e, pos))
	attached, _ = r.Attached(e)
	require.Empty(t, attached)
}

func TestComponent_NilRemoves(t *testing.T) {
	r := NewRoot("test")
	ptr := DefineComponent[*vec2](r.Namespace, "ptr")
	e := r.CreateEntity()

	require.NoError(t, Set(r, e, ptr, &vec2{1, 1}))
	require.True(t, Has(r, e, ptr))

	require.NoError(t, Set(r, e, ptr, nil))
	require.False(t, Has(r, e, ptr))
}

func TestComponent_NilReferenceKindsRemove(t *testing.T) {
	r := NewRoot("test")
	list := DefineComponent[[]int](r.Namespace, "list")
	table := DefineComponent[map[string]int](r.Namespace, "table")
	callback := DefineComponent[func()](r.Namespace, "callback")
	signal := DefineComponent[chan struct{}](r.Namespace, "signal")
	_, err := DefineSystem(r.Namespace, DefineHook(r.Namespace, "update"), With(list, table), noopSystem, "both")
	require.NoError(t, err)

	e := r.CreateEntity()
	require.NoError(t, Set(r, e, list, []int{1}))
	require.NoError(t, Set(r, e, table, map[string]int{"a": 1}))
	require.NoError(t, Set(r, e, callback, func() {}))
	require.NoError(t, Set(r, e, signal, make(chan struct{})))

	group, err := r.Group(list, table)
	require.NoError(t, err)
	require.Equal(t, []Entity{e}, group)

	require.NoError(t, Set(r, e, list, nil))
	require.NoError(t, Set(r, e, table, nil))
	require.NoError(t, Set(r, e, callback, nil))
	require.NoError(t, Set(r, e, signal, nil))

	require.False(t, Has(r, e, list))
	require.False(t, Has(r, e, table))
	require.False(t, Has(r, e, callback))
	require.False(t, Has(r, e, signal))
	attached, _ := r.Attached(e)
	require.Empty(t, attached)

	group, err = r.Group(list, table)
	require.NoError(t, err)
	require.Empty(t, group)

	// an empty, non-nil slice is a value
	require.NoError(t, Set(r, e, list, []int{}))
	require.True(t, Has(r, e, list))
}

func TestComponent_ZeroValueIsAValue(t *testing.T) {
	r := NewRoot("test")
	n := DefineComponent[int](r.Namespace, "n")
	e := r.CreateEntity()

	require.NoError(t, Set(r, e, n, 0))
	v, ok := Get(r, e, n)
	require.True(t, ok)
	require.Zero(t, v)
}

func TestComponent_Global(t *testing.T) {
	r := NewRoot("test")
	cfg := DefineGlobalComponent(r.Namespace, "config", settings{Speed: 1})
	empty := DefineGlobalComponent[int](r.Namespace, "empty")
	local := DefineComponent[int](r.Namespace, "local")

	v, ok := GetGlobal(r, cfg)
	require.True(t, ok)
	require.Equal(t, 1.0, v.Speed)
	require.False(t, HasGlobal(r, empty))

	require.NoError(t, SetGlobal(r, empty, 0))
	require.True(t, HasGlobal(r, empty))
	require.NoError(t, RemoveGlobal(r, empty))
	require.False(t, HasGlobal(r, empty))

	require.ErrorIs(t, SetGlobal(r, local, 3), ErrNotGlobal)
	_, ok = GetGlobal(r, local)
	require.False(t, ok)

	// globals never enter the attached list
	e := r.CreateEntity()
	require.NoError(t, Set(r, e, cfg, settings{Speed: 2}))
	attached, _ := r.Attached(e)
	require.Empty(t, attached)
	v, _ = GetGlobal(r, cfg)
	require.Equal(t, 2.0, v.Speed)

	assert.Equal(t, 2, r.Stats().GlobalComponents)
	assert.Equal(t, 1, r.Stats().Components)
}

func TestComponent_Defaults(t *testing.T) {
	m := NewModule("defaults")
	cfg := DefineGlobalComponent(m, "config", settings{Speed: 1})

	got, ok := Default(m, cfg)
	require.True(t, ok)
	require.Equal(t, 1.0, got.Speed)

	require.NoError(t, SetDefault(m, cfg, settings{Speed: 5}))
	r := NewRoot("test")
	require.NoError(t, r.Import(m))

	v, ok := GetGlobal(r, cfg)
	require.True(t, ok)
	require.Equal(t, 5.0, v.Speed)

	// the module keeps its own default
	require.NoError(t, SetGlobal(r, cfg, settings{Speed: 9}))
	got, _ = Default(m, cfg)
	require.Equal(t, 5.0, got.Speed)
}

func TestComponent_Errors(t *testing.T) {
	r := NewRoot("test")
	foreign := DefineComponent[int](NewModule("elsewhere"), "foreign")
	n := DefineComponent[int](r.Namespace, "n")

	e := r.CreateEntity()
	err := Set(r, e, foreign, 1)
	require.ErrorIs(t, err, ErrNotImported)

	var ref *RefError
	require.ErrorAs(t, err, &ref)
	require.Equal(t, KindComponent, ref.Kind)
	require.Equal(t, "foreign", ref.Name)
	require.Equal(t, "test", ref.Namespace)
	require.Contains(t, err.Error(), "foreign")

	require.Panics(t, func() { Get(r, e, foreign) })

	require.ErrorIs(t, Set(r, Entity(999), n, 1), ErrUnknownEntity)
	require.ErrorIs(t, Remove(r, Entity(999), n), ErrUnknownEntity)
}

func TestComponent_ReSet(t *testing.T) {
	r := NewRoot("test")
	ptr := DefineComponent[*vec2](r.Namespace, "ptr")
	e := r.CreateEntity()

	var seen []Change[*vec2]
	_, err := DefineTrigger(r.Namespace, ptr, func(_ *Root, _ Entity, ch Change[*vec2]) error {
		seen = append(seen, ch)
		return nil
	}, "watch")
	require.NoError(t, err)

	// absent values are left alone
	require.NoError(t, ReSet(r, e, ptr))
	require.Empty(t, seen)

	p := &vec2{}
	require.NoError(t, Set(r, e, ptr, p))
	p.X = 7
	require.NoError(t, ReSet(r, e, ptr))

	require.Len(t, seen, 2)
	require.True(t, seen[1].HadOld)
	require.Same(t, p, seen[1].Old)
	require.Same(t, p, seen[1].New)
	require.Equal(t, 7.0, seen[1].New.X)
}

func BenchmarkComponent_SetRemove(b *testing.B) {
	r := NewRoot("bench")
	pos := DefineComponent[vec2](r.Namespace, "position")
	vel := DefineComponent[vec2](r.Namespace, "velocity")
	hook := DefineHook(r.Namespace, "update")
	noop := func(*Root, Entity, []any) error { return nil }
	Must(DefineSystem(r.Namespace, hook, With(pos, vel), noop, "a"))
	Must(DefineSystem(r.Namespace, hook, With(pos), noop, "b"))

	entities := make([]Entity, 1024)
	for i := range entities {
		entities[i] = r.CreateEntity()
		_ = Set(r, entities[i], pos, vec2{})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := entities[i%len(entities)]
		_ = Set(r, e, vel, vec2{1, 1})
		_ = Remove(r, e, vel)
	}
}
