package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/zeusync/zecs/internal/config"
	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/internal/core/events/bus"
	"github.com/zeusync/zecs/internal/core/observability/log"
	"github.com/zeusync/zecs/internal/modules/bounds"
	"github.com/zeusync/zecs/internal/modules/gas"
	"github.com/zeusync/zecs/internal/modules/lifetime"
	"github.com/zeusync/zecs/internal/modules/movement"
)

// world is one independent root. It is only ever touched by the goroutine
// that runs it.
type world struct {
	index  int
	root   *ecs.Root
	logger log.Log
	frames int
}

func newWorld(cfg *config.Config, logger log.Log, events bus.EventBus, index int) (*world, error) {
	logger = logger.With(log.Int("world", index))
	opts := []ecs.Option{ecs.WithLogger(logger)}
	if cfg.Simulation.Events {
		opts = append(opts, ecs.WithEventBus(events))
	}
	w := &world{
		index:  index,
		root:   ecs.NewRoot(fmt.Sprintf("world-%d", index), opts...),
		logger: logger,
	}

	var err error
	switch cfg.Scene.Kind {
	case "gas":
		err = w.buildGas(cfg)
	case "particles":
		err = w.buildParticles(cfg, index)
	default:
		err = fmt.Errorf("%w: scene.kind %q", config.ErrInvalid, cfg.Scene.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("world %d: %w", index, err)
	}

	if dt := cfg.Simulation.FixedDelta; dt > 0 {
		if err := ecs.SetGlobal(w.root, lifetime.FixedDelta, dt); err != nil {
			return nil, fmt.Errorf("world %d: %w", index, err)
		}
	}

	s := w.root.Stats()
	logger.Info("world ready",
		log.String("scene", cfg.Scene.Kind),
		log.Int("entities", s.Entities),
		log.Int("systems", s.Systems),
		log.Int("groups", s.Groups),
	)
	return w, nil
}

func gasConfig(c config.GasConfig) gas.Config {
	return gas.Config{
		StateConstant:   c.StateConstant,
		PolytropicIndex: c.PolytropicIndex,
		Viscosity:       c.Viscosity,
		Gravity:         movement.Vec2{X: c.GravityX, Y: c.GravityY},
		SmoothingLength: c.SmoothingLength,
		SimulationScale: c.SimulationScale,
	}
}

func (w *world) buildGas(cfg *config.Config) error {
	if err := w.root.Import(gas.Module); err != nil {
		return err
	}
	sc := cfg.Scene
	scene := gas.Scene{
		Width:       sc.Width,
		Height:      sc.Height,
		Columns:     sc.Columns,
		Rows:        sc.Rows,
		Spacing:     sc.Spacing,
		WallSpacing: sc.WallSpacing,
		Radius:      sc.Radius,
		Mass:        sc.Mass,
		WallMass:    sc.WallMass,
		BounceCoef:  sc.BounceCoef,
	}
	_, _, err := scene.Build(w.root, gasConfig(cfg.Gas))
	return err
}

// buildParticles scatters free particles that bounce around the scene area.
// Each world seeds its own generator so runs are reproducible.
func (w *world) buildParticles(cfg *config.Config, index int) error {
	if err := w.root.Import(bounds.Module); err != nil {
		return err
	}
	sc := cfg.Scene
	area := bounds.Rect{Right: sc.Width, Top: sc.Height}
	if err := ecs.SetGlobal(w.root, bounds.Bounds, area); err != nil {
		return err
	}
	if err := ecs.SetGlobal(w.root, bounds.BounceCoef, sc.BounceCoef); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(sc.Seed, uint64(index)))
	speed := sc.Spacing * 10
	for range sc.Columns * sc.Rows {
		pos := movement.Vec2{X: rng.Float64() * sc.Width, Y: rng.Float64() * sc.Height}
		vel := movement.Vec2{X: (rng.Float64()*2 - 1) * speed, Y: (rng.Float64()*2 - 1) * speed}
		e, err := movement.Spawn(w.root, pos, vel)
		if err != nil {
			return err
		}
		if err := ecs.Set(w.root, e, bounds.Hitbox, bounds.Square(sc.Radius)); err != nil {
			return err
		}
	}
	return nil
}

// run drives the lifetime loop. frames == 0 runs until ctx is done. A
// non-zero tick paces frames on a ticker.
func (w *world) run(ctx context.Context, frames int, tick time.Duration, statsEvery int) error {
	var pace <-chan time.Time
	if tick > 0 {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		pace = ticker.C
	}

	for frames == 0 || w.frames < frames {
		if pace != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-pace:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := lifetime.Loop(w.root); err != nil {
			return fmt.Errorf("world %d frame %d: %w", w.index, w.frames, err)
		}
		w.frames++

		if statsEvery > 0 && w.frames%statsEvery == 0 {
			w.logStats("world progress")
		}
	}
	return nil
}

func (w *world) logStats(msg string) {
	s := w.root.Stats()
	dt, _ := ecs.GetGlobal(w.root, lifetime.TimeDelta)
	w.logger.Info(msg,
		log.Int("frames", w.frames),
		log.Int("entities", s.Entities),
		log.Int("groups", s.Groups),
		log.Int("systems", s.Systems),
		log.Int("triggers", s.Triggers),
		log.Float64("time_delta", dt),
	)
}
