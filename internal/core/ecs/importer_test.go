package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shared builds a module declaring a global config, a hook, a component and
// a system using all three.
func shared(t *testing.T) (*Namespace, Component[settings], Component[vec2], Hook) {
	t.Helper()
	m := NewModule("shared")
	cfg := DefineGlobalComponent(m, "config", settings{Speed: 1})
	pos := DefineComponent[vec2](m, "position")
	update := DefineHook(m, "update")
	_, err := DefineSystem(m, update, With(pos, cfg), Each2(func(r *Root, e Entity, p vec2, c settings) error {
		return Set(r, e, pos, vec2{p.X + c.Speed, p.Y})
	}), "advance")
	require.NoError(t, err)
	return m, cfg, pos, update
}

func TestImport_SharedDependencyResolvesOnce(t *testing.T) {
	base, cfg, pos, update := shared(t)

	left := NewModule("left")
	left.DependsOn(base)
	leftTag := DefineComponent[bool](left, "left")

	right := NewModule("right")
	right.DependsOn(base)
	fired := 0
	_, err := DefineGlobalTrigger(right, cfg, func(*Root, Change[settings]) error {
		fired++
		return nil
	}, "watch")
	require.NoError(t, err)

	r := NewRoot("world")
	require.NoError(t, r.Import(left))
	require.NoError(t, r.Import(right))

	require.True(t, r.HasImported(base.ID()))
	require.Equal(t, 2, r.Stats().Components, "position and left tag")
	require.Equal(t, 1, r.Stats().GlobalComponents)
	require.Equal(t, 1, r.Stats().Systems)

	c, ok := GetGlobal(r, cfg)
	require.True(t, ok)
	require.Equal(t, 1.0, c.Speed)

	require.NoError(t, SetGlobal(r, cfg, settings{Speed: 4}))
	require.Equal(t, 1, fired)
	e := r.CreateEntity()
	require.NoError(t, Set(r, e, pos, vec2{}))
	require.NoError(t, Set(r, e, leftTag, true))
	require.NoError(t, r.TriggerHook(update))

	p, _ := Get(r, e, pos)
	require.Equal(t, vec2{4, 0}, p)
}

func TestImport_Idempotent(t *testing.T) {
	base, _, _, _ := shared(t)
	r := NewRoot("world")

	require.NoError(t, r.Import(base))
	before := r.remapSnapshot()
	stats := r.Stats()

	require.NoError(t, r.Import(base))
	require.Equal(t, before, r.remapSnapshot())
	require.Equal(t, stats, r.Stats())
	require.Len(t, r.Imported(), 1)
}

func TestImport_TransitiveOrigin(t *testing.T) {
	base, cfg, pos, update := shared(t)

	// mid copies base eagerly instead of declaring a dependency
	mid := NewModule("mid")
	require.NoError(t, Import(mid, base))
	require.True(t, mid.HasImported(base.ID()))

	r := NewRoot("world")
	require.NoError(t, r.Import(base))
	require.NoError(t, r.Import(mid))

	// mid's copies trace back to base, so nothing is duplicated
	assert.Equal(t, 1, r.Stats().Components)
	assert.Equal(t, 1, r.Stats().GlobalComponents)
	assert.Equal(t, 1, r.Stats().Hooks)
	assert.Equal(t, 1, r.Stats().Systems)

	// importing in the other order gives the same shape
	r2 := NewRoot("world2")
	require.NoError(t, r2.Import(mid))
	require.NoError(t, r2.Import(base))
	assert.Equal(t, r.Stats(), r2.Stats())

	// base handles resolve in r2 although r2 only imported mid directly
	e := r2.CreateEntity()
	require.NoError(t, Set(r2, e, pos, vec2{}))
	require.True(t, HasGlobal(r2, cfg))
	require.NoError(t, r2.TriggerHook(update))
	p, _ := Get(r2, e, pos)
	require.Equal(t, vec2{1, 0}, p)
}

func TestImport_DependencyFirst(t *testing.T) {
	lib := NewModule("lib")
	tick := DefineHook(lib, "tick")
	counter := DefineGlobalComponent(lib, "counter", 0)

	app := NewModule("app")
	app.DependsOn(lib)
	// app refers to lib's handles without importing lib itself
	_, err := DefineGlobalSystem(app, tick, func(r *Root) error {
		n, _ := GetGlobal(r, counter)
		return SetGlobal(r, counter, n+1)
	}, "count")
	require.NoError(t, err)

	r := NewRoot("world")
	require.NoError(t, r.Import(app))
	require.Equal(t, []string{"lib", "app"}, importedNames(r, lib, app))

	require.NoError(t, r.TriggerHook(tick))
	require.NoError(t, r.TriggerHook(tick))
	n, _ := GetGlobal(r, counter)
	require.Equal(t, 2, n)
}

func importedNames(r *Root, mods ...*Namespace) []string {
	var names []string
	for _, id := range r.Imported() {
		for _, m := range mods {
			if m.ID() == id {
				names = append(names, m.Name())
			}
		}
	}
	return names
}

func TestImport_SystemOrderSurvives(t *testing.T) {
	m := NewModule("ordered")
	update := DefineHook(m, "update")
	noop := func(*Root) error { return nil }
	first := Must(DefineGlobalSystem(m, update, noop, "first"))
	Must(DefineSystem(m, update, With().Before(first), noopSystem, "zeroth"))
	Must(DefineSystem(m, update, With().After(first), noopSystem, "second"))

	r := NewRoot("world")
	require.NoError(t, r.Import(m))

	systems, err := r.HookSystems(update)
	require.NoError(t, err)
	var names []string
	for _, s := range systems {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{"zeroth", "first", "second"}, names)

	i, err := r.Position(update, first)
	require.NoError(t, err)
	require.Equal(t, 1, i)
}

func TestImport_Rejections(t *testing.T) {
	r := NewRoot("world")
	other := NewRoot("other")
	m := NewModule("m")

	err := r.Import(other.Namespace)
	require.ErrorIs(t, err, ErrImportRoot)
	require.ErrorIs(t, err, ErrInvalidComposition)

	require.ErrorIs(t, Import(m, r.Namespace), ErrImportRoot)
	require.ErrorIs(t, Import(m, m), ErrImportSelf)

	a, b := NewModule("a"), NewModule("b")
	a.DependsOn(b)
	b.DependsOn(a)
	require.ErrorIs(t, r.Import(a), ErrDependencyCycle)
}

func TestImport_Mapping(t *testing.T) {
	m := NewModule("m")
	DefineComponent[int](m, "a")
	b := DefineComponent[int](m, "b")

	r := NewRoot("world")
	DefineComponent[int](r.Namespace, "own")
	require.NoError(t, r.Import(m))

	local, ok := r.Mapping(KindComponent, m.ID(), b.ID())
	require.True(t, ok)
	require.Equal(t, ID(2), local)

	id, err := r.Resolve(b)
	require.NoError(t, err)
	require.Equal(t, local, id)

	_, ok = r.Mapping(KindHook, m.ID(), 0)
	require.False(t, ok)
}
