// Package app holds the process-wide bridge state and wires the module, the
// GPU device, input and the frame loop together.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"

	"glbridge/internal/bridge"
	"glbridge/internal/capture"
	"glbridge/internal/config"
	"glbridge/internal/frameloop"
	"glbridge/internal/input"
	"glbridge/internal/metrics"
	"glbridge/internal/module"
	"glbridge/internal/profiling"

	"go.uber.org/zap"
)

// Module is the game module's entry points.
type Module interface {
	Init(ctx context.Context, seed uint32) error
	Frame(ctx context.Context) error
	Click(ctx context.Context, x, y int32, button uint8) error
}

// Snapshotter is implemented by devices that can read back the framebuffer.
type Snapshotter interface {
	Snapshot() *image.RGBA
}

var ErrNoModule = errors.New("app: no module attached")

// App is created once at startup and lives for the whole process.
type App struct {
	cfg     config.Config
	log     *zap.Logger
	metrics *metrics.Metrics

	device bridge.Device
	host   *bridge.Host
	loop   *frameloop.Loop

	module Module
	input  *input.Translator

	captureAfter uint64
	capturePath  string
	pending      []string
}

// New builds the bridge around device. The module is attached separately
// because loading it needs Host.
func New(cfg config.Config, device bridge.Device, m *metrics.Metrics, log *zap.Logger) *App {
	uploader := bridge.NewUploader(device, m, cfg.Render.ValidateIndices)
	dispatcher := bridge.NewDispatcher(device, uploader, m)
	return &App{
		cfg:     cfg,
		log:     log,
		metrics: m,
		device:  device,
		host:    bridge.NewHost(dispatcher, m, log),
		loop:    frameloop.New(cfg.Loop.SlowFrame, m, log),
	}
}

// Host is what the module imports.
func (a *App) Host() module.Imports { return a.host }

// Attach installs the loaded module and routes input to it.
func (a *App) Attach(mod Module) {
	a.module = mod
	a.input = input.NewTranslator(mod, a.cfg.Input.ContextMenuClick, a.metrics, a.log)
}

// CaptureAfter saves a snapshot to path once frame n has been drawn.
func (a *App) CaptureAfter(n uint64, path string) {
	a.captureAfter, a.capturePath = n, path
}

// RequestCapture saves a snapshot to path after the next frame.
func (a *App) RequestCapture(path string) {
	a.pending = append(a.pending, path)
}

// Start calls the module's init once.
func (a *App) Start(ctx context.Context, seed uint32) error {
	if a.module == nil {
		return ErrNoModule
	}
	a.log.Info("starting module", zap.Uint32("seed", seed))
	return a.module.Init(ctx, seed)
}

// Run drives the module until src stops or a frame fails.
func (a *App) Run(ctx context.Context, src frameloop.RefreshSource) error {
	if a.module == nil {
		return ErrNoModule
	}
	return a.loop.Run(ctx, src, a.step)
}

func (a *App) step(ctx context.Context) error {
	a.host.BeginFrame()

	stop := profiling.Track("module.frame")
	err := a.module.Frame(ctx)
	stop()
	if err != nil {
		return err
	}

	if a.host.FrameDraws() == 0 {
		a.log.Debug("frame produced no draw")
	}
	a.captures()
	return nil
}

func (a *App) captures() {
	frame := a.loop.Frames() + 1
	if a.capturePath != "" && frame == a.captureAfter {
		a.pending = append(a.pending, a.capturePath)
	}
	if len(a.pending) == 0 {
		return
	}

	snap, ok := a.device.(Snapshotter)
	if !ok {
		a.log.Warn("device cannot capture frames")
		a.pending = a.pending[:0]
		return
	}
	img := snap.Snapshot()
	for _, path := range a.pending {
		if err := capture.Save(path, img); err != nil {
			a.log.Error("capture failed", zap.String("path", path), zap.Error(err))
			continue
		}
		a.log.Info("frame captured", zap.String("path", path), zap.Uint64("frame", frame))
	}
	a.pending = a.pending[:0]
}

// HandleInput forwards a pointer event. It reports whether the host's
// default action must be suppressed.
func (a *App) HandleInput(ctx context.Context, ev input.Event) bool {
	if a.input == nil {
		// nothing to deliver to, but the native menu stays suppressed
		return ev.Kind == input.EventContextMenu || ev.Kind == input.EventAuxClick
	}
	return a.input.Handle(ctx, ev)
}

// Mouse is the last known pointer state.
func (a *App) Mouse() input.MouseState {
	if a.input == nil {
		return input.MouseState{}
	}
	return a.input.Mouse()
}

// Frames is the number of completed frames.
func (a *App) Frames() uint64 { return a.loop.Frames() }

// Seed picks the configured init seed, or one from r when none is set.
func Seed(cfg config.ModuleConfig, r func() uint32) uint32 {
	if cfg.Seed != nil {
		return *cfg.Seed
	}
	return r()
}

// String summarizes the app for the startup log.
func (a *App) String() string {
	return fmt.Sprintf("vsync=%t fps_limit=%d context_menu_click=%t validate_indices=%t",
		a.cfg.Loop.VSync, a.cfg.Loop.FPSLimit, a.cfg.Input.ContextMenuClick, a.cfg.Render.ValidateIndices)
}
