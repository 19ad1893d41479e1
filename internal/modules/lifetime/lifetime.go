// Package lifetime defines the frame hooks every simulation module hangs
// its systems on, and the global clock that feeds them a time delta.
package lifetime

import (
	"time"

	"github.com/zeusync/zecs/internal/core/ecs"
)

const (
	// FirstFrameDelta is the delta reported before any tick was recorded.
	FirstFrameDelta = 0.001
	// MaxDelta caps the delta after stalls, in seconds.
	MaxDelta = 0.1
)

var Module = ecs.NewModule("Lifetime")

var (
	PreUpdate  = ecs.DefineHook(Module, "PreUpdate")
	OnUpdate   = ecs.DefineHook(Module, "OnUpdate")
	PostUpdate = ecs.DefineHook(Module, "PostUpdate")
	PreRender  = ecs.DefineHook(Module, "PreRender")
	OnRender   = ecs.DefineHook(Module, "OnRender")
)

var (
	// LastTick is the wall time UpdateTime ran last.
	LastTick = ecs.DefineGlobalComponent[time.Time](Module, "LastTick")
	// TimeDelta is the seconds elapsed since the previous frame.
	TimeDelta = ecs.DefineGlobalComponent(Module, "TimeDelta", 0.0)
	// FixedDelta, when set, replaces the measured delta. Headless runs and
	// tests use it to stay deterministic.
	FixedDelta = ecs.DefineGlobalComponent[float64](Module, "FixedDelta")
	// Frame counts UpdateTime invocations.
	Frame = ecs.DefineGlobalComponent(Module, "Frame", uint64(0))
)

var UpdateTime = ecs.Must(ecs.DefineGlobalSystem(Module, PreUpdate, updateTime, "UpdateTime"))

// Loop runs one frame: every lifetime hook in order.
var Loop = ecs.Compose(PreUpdate, OnUpdate, PostUpdate, PreRender, OnRender)

func updateTime(r *ecs.Root) error {
	now := time.Now()
	last, had := ecs.GetGlobal(r, LastTick)

	delta := Delta(last, had, now)
	if fixed, ok := ecs.GetGlobal(r, FixedDelta); ok {
		delta = fixed
	}

	frame, _ := ecs.GetGlobal(r, Frame)
	if err := ecs.SetGlobal(r, Frame, frame+1); err != nil {
		return err
	}
	if err := ecs.SetGlobal(r, LastTick, now); err != nil {
		return err
	}
	return ecs.SetGlobal(r, TimeDelta, delta)
}

// Delta is the frame delta for a tick at now, given the previous tick.
func Delta(last time.Time, had bool, now time.Time) float64 {
	if !had {
		return FirstFrameDelta
	}
	return min(now.Sub(last).Seconds(), MaxDelta)
}
