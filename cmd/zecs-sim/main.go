// Command zecs-sim runs independent simulation worlds built from the
// bundled modules. Each world is single-threaded; worlds run in parallel.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pkg/profile"

	"github.com/zeusync/zecs/internal/config"
	"github.com/zeusync/zecs/internal/core/ecs"
	"github.com/zeusync/zecs/internal/core/events/bus"
	"github.com/zeusync/zecs/internal/core/observability/log"
	"github.com/zeusync/zecs/internal/injector"
	"github.com/zeusync/zecs/pkg/concurrent"
)

func main() {
	configPath := flag.String("config", "", "path to a .toml or .yaml config file")
	worlds := flag.Int("worlds", 0, "override simulation.worlds")
	frames := flag.Int("frames", -1, "override simulation.frames (0 runs until interrupted)")
	profileMode := flag.String("profile", "", "override profile.mode (cpu, mem, block, mutex, goroutine, trace)")
	flag.Parse()

	app, cleanup, err := setup(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "zecs-sim:", err)
		os.Exit(1)
	}
	defer cleanup()

	cfg := app.Config
	if *worlds > 0 {
		cfg.Simulation.Worlds = *worlds
	}
	if *frames >= 0 {
		cfg.Simulation.Frames = *frames
	}
	if *profileMode != "" {
		cfg.Profile.Mode = *profileMode
	}
	if err := cfg.Validate(); err != nil {
		app.Logger.Error("invalid configuration", log.Error(err))
		cleanup()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app); err != nil {
		app.Logger.Error("simulation failed", log.Error(err))
		stop()
		cleanup()
		os.Exit(1)
	}
}

// setup builds the shared services from the config file, or from the
// defaults when no file is given.
func setup(path string) (*injector.App, func(), error) {
	if path != "" {
		return injector.InitializeApp(path)
	}
	cfg := config.Defaults()
	logger, cleanup, err := injector.ProvideLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return &injector.App{Config: cfg, Logger: logger, Bus: injector.ProvideBus()}, cleanup, nil
}

func run(ctx context.Context, app *injector.App) error {
	cfg := app.Config
	logger := app.Logger

	if p := startProfile(cfg.Profile); p != nil {
		defer p.Stop()
	}

	var events *eventCounter
	if cfg.Simulation.Events {
		events = newEventCounter(ecs.EventEntityCreated, ecs.EventEntityDestroyed, ecs.EventNamespaceImported, ecs.EventSystemRegistered)
		app.Bus.AddObserver(events)
		defer app.Bus.RemoveObserver(events)
	}

	indices := make([]int, cfg.Simulation.Worlds)
	for i := range indices {
		indices[i] = i
	}

	logger.Info("simulation starting",
		log.Int("worlds", cfg.Simulation.Worlds),
		log.Int("parallelism", cfg.Simulation.Parallelism),
		log.Int("frames", cfg.Simulation.Frames),
		log.String("scene", cfg.Scene.Kind),
	)
	start := time.Now()

	var total atomic.Int64
	err := concurrent.ForEach(ctx, indices, cfg.Simulation.Parallelism, func(ctx context.Context, i int) error {
		w, err := newWorld(cfg, logger, app.Bus, i)
		if err != nil {
			return err
		}
		err = w.run(ctx, cfg.Simulation.Frames, cfg.Simulation.Tick, cfg.Simulation.StatsEvery)
		total.Add(int64(w.frames))
		w.logStats("world finished")
		return err
	})
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		logger.Warn("simulation interrupted")
		err = nil
	}

	fields := []log.Field{
		log.Int64("frames", total.Load()),
		log.Duration("elapsed", time.Since(start)),
	}
	if events != nil {
		fields = append(fields, events.fields()...)
		fields = append(fields, log.Uint64("published", app.Bus.GetMetrics().Published))
	}
	logger.Info("simulation finished", fields...)
	return err
}

func startProfile(cfg config.ProfileConfig) interface{ Stop() } {
	var mode func(*profile.Profile)
	switch cfg.Mode {
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	case "block":
		mode = profile.BlockProfile
	case "mutex":
		mode = profile.MutexProfile
	case "goroutine":
		mode = profile.GoroutineProfile
	case "trace":
		mode = profile.TraceProfile
	default:
		return nil
	}
	opts := []func(*profile.Profile){mode, profile.NoShutdownHook}
	if cfg.Path != "" {
		opts = append(opts, profile.ProfilePath(cfg.Path))
	}
	return profile.Start(opts...)
}

// eventCounter tallies lifecycle events by type. The set of types is fixed
// at construction so concurrent worlds only touch the atomic counters.
type eventCounter struct {
	types  []string
	counts map[string]*atomic.Int64
}

func newEventCounter(types ...string) *eventCounter {
	c := &eventCounter{types: types, counts: make(map[string]*atomic.Int64, len(types))}
	for _, typ := range types {
		c.counts[typ] = new(atomic.Int64)
	}
	return c
}

func (c *eventCounter) OnPublish(topic, eventType string, _ bus.Event) {
	if topic != ecs.TopicLifecycle {
		return
	}
	if n, ok := c.counts[eventType]; ok {
		n.Add(1)
	}
}

func (c *eventCounter) OnDelivered(string, string, int, error, int64) {}

func (c *eventCounter) count(eventType string) int64 {
	if n, ok := c.counts[eventType]; ok {
		return n.Load()
	}
	return 0
}

func (c *eventCounter) fields() []log.Field {
	fields := make([]log.Field, len(c.types))
	for i, typ := range c.types {
		fields[i] = log.Int64(typ, c.count(typ))
	}
	return fields
}
