package lifetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/zecs/internal/core/ecs"
)

func TestDelta(t *testing.T) {
	now := time.Now()

	require.Equal(t, FirstFrameDelta, Delta(time.Time{}, false, now))
	require.InDelta(t, 0.02, Delta(now.Add(-20*time.Millisecond), true, now), 1e-9)
	require.Equal(t, MaxDelta, Delta(now.Add(-3*time.Second), true, now))
}

func TestLoop(t *testing.T) {
	r := ecs.NewRoot("world")
	require.NoError(t, r.Import(Module))

	var order []string
	for _, h := range []ecs.Hook{PreUpdate, OnUpdate, PostUpdate, PreRender, OnRender} {
		_, err := ecs.DefineGlobalSystem(r.Namespace, h, func(*ecs.Root) error {
			order = append(order, h.Name())
			return nil
		}, "trace-"+h.Name())
		require.NoError(t, err)
	}

	require.NoError(t, Loop(r))
	require.Equal(t, []string{"PreUpdate", "OnUpdate", "PostUpdate", "PreRender", "OnRender"}, order)

	// the first frame has no previous tick
	dt, ok := ecs.GetGlobal(r, TimeDelta)
	require.True(t, ok)
	require.Equal(t, FirstFrameDelta, dt)
	require.True(t, ecs.HasGlobal(r, LastTick))

	require.NoError(t, ecs.SetGlobal(r, FixedDelta, 0.5))
	require.NoError(t, Loop(r))
	dt, _ = ecs.GetGlobal(r, TimeDelta)
	require.Equal(t, 0.5, dt)

	frame, _ := ecs.GetGlobal(r, Frame)
	require.Equal(t, uint64(2), frame)
}

func TestUpdateTimeRunsFirst(t *testing.T) {
	r := ecs.NewRoot("world")
	require.NoError(t, r.Import(Module))

	systems, err := r.HookSystems(PreUpdate)
	require.NoError(t, err)
	require.Len(t, systems, 1)
	require.Equal(t, "UpdateTime", systems[0].Name())
}
