// Package config provides configuration loading and access for the particle field.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// ParticleCap bounds field.max_particles. The link pass is quadratic in the
// particle count.
const ParticleCap = 100

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Field     FieldConfig     `yaml:"field"`
	Cursor    CursorConfig    `yaml:"cursor"`
	Terminal  TerminalConfig  `yaml:"terminal"`
	Web       WebConfig       `yaml:"web"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds desktop window settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// FieldConfig holds particle field parameters.
type FieldConfig struct {
	AreaPerParticle float64 `yaml:"area_per_particle"` // Surface pixels per particle
	MaxParticles    int     `yaml:"max_particles"`     // Hard cap; bounds the O(n²) link pass
	SizeMin         float64 `yaml:"size_min"`          // Radius lower bound (inclusive)
	SizeMax         float64 `yaml:"size_max"`          // Radius upper bound (exclusive)
	SpeedMax        float64 `yaml:"speed_max"`         // Drift speed per axis in [-max, max]
	DensityMin      float64 `yaml:"density_min"`
	DensityMax      float64 `yaml:"density_max"`
	PointerRadius   float64 `yaml:"pointer_radius"` // Repulsion radius in surface pixels
	Easing          float64 `yaml:"easing"`         // Fraction of the gap closed per frame
	LinkDivisor     float64 `yaml:"link_divisor"`   // Link distance = width / divisor
	LinkAlpha       float64 `yaml:"link_alpha"`     // Opacity of a zero-length link
	LinkWidth       float64 `yaml:"link_width"`
	Color           string  `yaml:"color"` // Particle hue, hex
	Alpha           float64 `yaml:"alpha"` // Particle fill opacity
	Background      string  `yaml:"background"`
}

// CursorConfig holds the custom cursor overlay settings.
type CursorConfig struct {
	Enabled          bool    `yaml:"enabled"`
	Color            string  `yaml:"color"`
	DotRadius        float64 `yaml:"dot_radius"`
	RingRadius       float64 `yaml:"ring_radius"`
	RingWidth        float64 `yaml:"ring_width"`
	PressedDotScale  float64 `yaml:"pressed_dot_scale"`
	PressedRingScale float64 `yaml:"pressed_ring_scale"`
}

// TerminalConfig holds terminal backend settings.
type TerminalConfig struct {
	CellWidth     int           `yaml:"cell_width"`  // Pixels represented by one cell column
	CellHeight    int           `yaml:"cell_height"` // Pixels represented by one cell row
	FrameInterval time.Duration `yaml:"frame_interval"`
}

// WebConfig holds websocket backend settings.
type WebConfig struct {
	Addr         string        `yaml:"addr"`
	MaxSessions  int           `yaml:"max_sessions"`
	FrameRate    int           `yaml:"frame_rate"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Frames per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ParticleColor   color.NRGBA // Field.Color with Field.Alpha applied
	BackgroundColor color.NRGBA
	CursorColor     color.NRGBA
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every out-of-range parameter.
func (c *Config) Validate() error {
	f := c.Field
	var errs []error
	if f.AreaPerParticle <= 0 {
		errs = append(errs, fmt.Errorf("field.area_per_particle must be positive, got %v", f.AreaPerParticle))
	}
	if f.MaxParticles < 0 || f.MaxParticles > ParticleCap {
		errs = append(errs, fmt.Errorf("field.max_particles must be in [0, %d], got %d", ParticleCap, f.MaxParticles))
	}
	if f.SizeMin <= 0 || f.SizeMax < f.SizeMin {
		errs = append(errs, fmt.Errorf("field size range [%v, %v) is invalid", f.SizeMin, f.SizeMax))
	}
	if f.DensityMax < f.DensityMin {
		errs = append(errs, fmt.Errorf("field density range [%v, %v) is invalid", f.DensityMin, f.DensityMax))
	}
	if f.Easing <= 0 || f.Easing > 1 {
		errs = append(errs, fmt.Errorf("field.easing must be in (0, 1], got %v", f.Easing))
	}
	if f.LinkDivisor <= 0 {
		errs = append(errs, fmt.Errorf("field.link_divisor must be positive, got %v", f.LinkDivisor))
	}
	if f.PointerRadius < 0 {
		errs = append(errs, fmt.Errorf("field.pointer_radius must not be negative, got %v", f.PointerRadius))
	}
	if c.Terminal.CellWidth <= 0 || c.Terminal.CellHeight <= 0 {
		errs = append(errs, fmt.Errorf("terminal cell size %dx%d is invalid", c.Terminal.CellWidth, c.Terminal.CellHeight))
	}
	if c.Web.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("web.frame_rate must be positive, got %d", c.Web.FrameRate))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	particle, err := ParseColor(c.Field.Color, c.Field.Alpha)
	if err != nil {
		return fmt.Errorf("field.color: %w", err)
	}
	bg, err := ParseColor(c.Field.Background, 1)
	if err != nil {
		return fmt.Errorf("field.background: %w", err)
	}
	cursor, err := ParseColor(c.Cursor.Color, 1)
	if err != nil {
		return fmt.Errorf("cursor.color: %w", err)
	}
	c.Derived.ParticleColor = particle
	c.Derived.BackgroundColor = bg
	c.Derived.CursorColor = cursor
	return nil
}

// ParseColor parses a "#rrggbb" hex string and applies alpha in [0, 1].
func ParseColor(hex string, alpha float64) (color.NRGBA, error) {
	col, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := col.RGB255()
	alpha = max(0, min(alpha, 1))
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
