package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the host configuration. Zero values in a file keep the defaults.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Loop    LoopConfig    `yaml:"loop"`
	Input   InputConfig   `yaml:"input"`
	Module  ModuleConfig  `yaml:"module"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type RenderConfig struct {
	ClearColor [4]float32 `yaml:"clear_color"`
	// ValidateIndices checks every uploaded index against the vertex count.
	ValidateIndices bool `yaml:"validate_indices"`
}

type LoopConfig struct {
	// VSync ties frames to the display refresh. When off, FPSLimit paces
	// them instead (0 = unlimited).
	VSync     bool          `yaml:"vsync"`
	FPSLimit  int           `yaml:"fps_limit"`
	SlowFrame time.Duration `yaml:"slow_frame"`
}

type InputConfig struct {
	// ContextMenuClick also delivers the context-menu event to the module
	// as a click.
	ContextMenuClick bool `yaml:"context_menu_click"`
}

type ModuleConfig struct {
	Source string `yaml:"source"`
	// Seed fixes the init seed. Nil picks a random one per run.
	Seed         *uint32 `yaml:"seed"`
	WASI         bool    `yaml:"wasi"`
	FetchRetries int     `yaml:"fetch_retries"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console, json or empty for auto
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// FPS limit bounds.
const (
	MinFPSLimit = 1
	MaxFPSLimit = 1000
)

var ErrInvalid = errors.New("config: invalid")

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: WindowConfig{Width: 800, Height: 800, Title: "glbridge"},
		Render: RenderConfig{ClearColor: [4]float32{0, 0, 0, 1}},
		Loop:   LoopConfig{VSync: true, FPSLimit: 60, SlowFrame: 16 * time.Millisecond},
		Module: ModuleConfig{Source: "game.wasm", WASI: true, FetchRetries: 3},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error. The
// result is not validated: command-line overrides still have to be applied,
// so callers run Validate afterwards.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and clamps the FPS limit.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	for i, v := range c.Render.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: clear_color[%d]=%v outside 0..1", ErrInvalid, i, v)
		}
	}
	if c.Loop.FPSLimit != 0 {
		c.Loop.FPSLimit = max(MinFPSLimit, min(c.Loop.FPSLimit, MaxFPSLimit))
	}
	if c.Loop.SlowFrame < 0 {
		return fmt.Errorf("%w: slow_frame %v", ErrInvalid, c.Loop.SlowFrame)
	}
	if c.Module.Source == "" {
		return fmt.Errorf("%w: module source is empty", ErrInvalid)
	}
	if c.Module.FetchRetries < 0 {
		return fmt.Errorf("%w: fetch_retries %d", ErrInvalid, c.Module.FetchRetries)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
