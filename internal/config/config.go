package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("config: unsupported format")
	ErrInvalid           = errors.New("config: invalid value")
)

type Config struct {
	Logging    LoggingConfig    `toml:"logging" yaml:"logging"`
	Simulation SimulationConfig `toml:"simulation" yaml:"simulation"`
	Scene      SceneConfig      `toml:"scene" yaml:"scene"`
	Gas        GasConfig        `toml:"gas" yaml:"gas"`
	Profile    ProfileConfig    `toml:"profile" yaml:"profile"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

type SimulationConfig struct {
	Worlds      int           `toml:"worlds" yaml:"worlds"`           // independent roots
	Parallelism int           `toml:"parallelism" yaml:"parallelism"` // 0 = one goroutine per world
	Frames      int           `toml:"frames" yaml:"frames"`
	FixedDelta  float64       `toml:"fixed_delta" yaml:"fixed_delta"` // seconds; 0 = wall clock
	Tick        time.Duration `toml:"tick" yaml:"tick"`               // frame pacing; 0 = free running
	StatsEvery  int           `toml:"stats_every" yaml:"stats_every"` // frames between stats logs; 0 = end only
	Events      bool          `toml:"events" yaml:"events"`           // publish lifecycle events
}

type SceneConfig struct {
	Kind        string  `toml:"kind" yaml:"kind"` // "gas" or "particles"
	Width       float64 `toml:"width" yaml:"width"`
	Height      float64 `toml:"height" yaml:"height"`
	Columns     int     `toml:"columns" yaml:"columns"`
	Rows        int     `toml:"rows" yaml:"rows"`
	Spacing     float64 `toml:"spacing" yaml:"spacing"`
	WallSpacing float64 `toml:"wall_spacing" yaml:"wall_spacing"`
	Radius      float64 `toml:"radius" yaml:"radius"`
	Mass        float64 `toml:"mass" yaml:"mass"`
	WallMass    float64 `toml:"wall_mass" yaml:"wall_mass"`
	BounceCoef  float64 `toml:"bounce_coef" yaml:"bounce_coef"`
	Seed        uint64  `toml:"seed" yaml:"seed"`
}

type GasConfig struct {
	StateConstant   float64 `toml:"state_constant" yaml:"state_constant"`
	PolytropicIndex float64 `toml:"polytropic_index" yaml:"polytropic_index"`
	Viscosity       float64 `toml:"viscosity" yaml:"viscosity"`
	GravityX        float64 `toml:"gravity_x" yaml:"gravity_x"`
	GravityY        float64 `toml:"gravity_y" yaml:"gravity_y"`
	SmoothingLength float64 `toml:"smoothing_length" yaml:"smoothing_length"`
	SimulationScale float64 `toml:"simulation_scale" yaml:"simulation_scale"`
}

type ProfileConfig struct {
	Mode string `toml:"mode" yaml:"mode"` // "", "cpu", "mem", "block", "mutex", "goroutine", "trace"
	Path string `toml:"path" yaml:"path"`
}

// Load reads a TOML or YAML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		cfg, err = LoadTOML(bytes.NewReader(data))
	case ".yaml", ".yml":
		cfg, err = LoadYAML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadTOML decodes TOML over the defaults. Unknown keys are rejected.
func LoadTOML(r io.Reader) (*Config, error) {
	cfg := Defaults()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// LoadYAML decodes YAML over the defaults. Unknown keys are rejected.
func LoadYAML(r io.Reader) (*Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Simulation: SimulationConfig{
			Worlds:     1,
			Frames:     600,
			FixedDelta: 0.01,
			StatsEvery: 100,
		},
		Scene: SceneConfig{
			Kind:        "gas",
			Width:       800,
			Height:      600,
			Columns:     25,
			Rows:        25,
			Spacing:     20,
			WallSpacing: 5,
			Radius:      10,
			Mass:        1,
			WallMass:    5,
			BounceCoef:  0.3,
			Seed:        1,
		},
		Gas: GasConfig{
			StateConstant:   10,
			PolytropicIndex: 1,
			Viscosity:       1,
			SmoothingLength: 1,
			SimulationScale: 20,
		},
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Logging.Format == "console" || c.Logging.Format == "json", "logging.format %q", c.Logging.Format)

	s := c.Simulation
	check(s.Worlds >= 1, "simulation.worlds %d", s.Worlds)
	check(s.Parallelism >= 0, "simulation.parallelism %d", s.Parallelism)
	check(s.Frames >= 0, "simulation.frames %d", s.Frames)
	check(s.FixedDelta >= 0, "simulation.fixed_delta %g", s.FixedDelta)
	check(s.Tick >= 0, "simulation.tick %s", s.Tick)
	check(s.StatsEvery >= 0, "simulation.stats_every %d", s.StatsEvery)

	sc := c.Scene
	check(sc.Kind == "gas" || sc.Kind == "particles", "scene.kind %q", sc.Kind)
	check(sc.Width > 0 && sc.Height > 0, "scene size %gx%g", sc.Width, sc.Height)
	check(sc.Columns >= 0 && sc.Rows >= 0, "scene grid %dx%d", sc.Columns, sc.Rows)
	check(sc.WallSpacing >= 0, "scene.wall_spacing %g", sc.WallSpacing)

	g := c.Gas
	check(g.SmoothingLength > 0, "gas.smoothing_length %g", g.SmoothingLength)
	check(g.SimulationScale > 0, "gas.simulation_scale %g", g.SimulationScale)
	check(g.PolytropicIndex != 0, "gas.polytropic_index %g", g.PolytropicIndex)

	switch c.Profile.Mode {
	case "", "cpu", "mem", "block", "mutex", "goroutine", "trace":
	default:
		check(false, "profile.mode %q", c.Profile.Mode)
	}
	return errors.Join(errs...)
}
