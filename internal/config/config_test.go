package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"glbridge/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glbridge.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// load reads and validates the way the command does when no flags are set.
func load(t *testing.T, body string) (config.Config, error) {
	t.Helper()
	cfg, err := config.Load(writeConfig(t, body))
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Loop.VSync)
	assert.False(t, cfg.Input.ContextMenuClick)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, cfg.Render.ClearColor)
	assert.Nil(t, cfg.Module.Seed, "random seed unless one is configured")
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
window:
  width: 640
  title: sweeper
render:
  clear_color: [0.1, 0.2, 0.3, 1]
  validate_indices: true
loop:
  vsync: false
  fps_limit: 5000
  slow_frame: 40ms
input:
  context_menu_click: true
module:
  source: https://example.com/game.wasm
  seed: 42
metrics:
  addr: ":9102"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 800, cfg.Window.Height, "unset fields keep defaults")
	assert.Equal(t, "sweeper", cfg.Window.Title)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, cfg.Render.ClearColor)
	assert.True(t, cfg.Render.ValidateIndices)
	assert.False(t, cfg.Loop.VSync)
	assert.Equal(t, config.MaxFPSLimit, cfg.Loop.FPSLimit, "fps limit is clamped")
	assert.Equal(t, 40*time.Millisecond, cfg.Loop.SlowFrame)
	assert.True(t, cfg.Input.ContextMenuClick)
	require.NotNil(t, cfg.Module.Seed)
	assert.Equal(t, uint32(42), *cfg.Module.Seed)
	assert.True(t, cfg.Module.WASI)
	assert.Equal(t, ":9102", cfg.Metrics.Addr)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative width", "window: {width: -1}"},
		{"clear color range", "render: {clear_color: [2, 0, 0, 1]}"},
		{"empty source", "module: {source: ''}"},
		{"bad log format", "log: {format: xml}"},
		{"negative retries", "module: {fetch_retries: -2}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.body)
			require.ErrorIs(t, err, config.ErrInvalid)
		})
	}
}

func TestSeedFromFile(t *testing.T) {
	cfg, err := load(t, "module: {seed: 5}")
	require.NoError(t, err)
	require.NotNil(t, cfg.Module.Seed)
	assert.Equal(t, uint32(5), *cfg.Module.Seed)

	cfg, err = load(t, "module: {seed: 0}")
	require.NoError(t, err)
	require.NotNil(t, cfg.Module.Seed, "an explicit zero seed is still fixed")
}

func TestOverrideBeforeValidate(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "module: {source: ''}"))
	require.NoError(t, err, "loading does not validate")
	require.ErrorIs(t, cfg.Validate(), config.ErrInvalid)

	cfg.Module.Source = "override.wasm"
	require.NoError(t, cfg.Validate())
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := config.Load(writeConfig(t, "window: [unclosed"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, config.ErrInvalid)
}
