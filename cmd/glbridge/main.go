package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"path"
	"runtime"
	"strings"

	"glbridge/internal/app"
	"glbridge/internal/config"
	"glbridge/internal/graphics"
	"glbridge/internal/logging"
	"glbridge/internal/metrics"
	"glbridge/internal/module"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/xlab/closer"
	"go.uber.org/zap"
)

func init() {
	// GL and glfw calls must stay on the main thread.
	runtime.LockOSThread()
}

type options struct {
	configPath   string
	source       string
	seed         int64
	vsync        bool
	fps          int
	menuClick    bool
	captureAfter uint64
	capturePath  string
	metricsAddr  string
	logLevel     string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "glbridge.yml", "config file; missing is fine")
	flag.StringVar(&o.source, "module", "", "module path or http(s) URL (overrides config)")
	flag.Int64Var(&o.seed, "seed", -1, "fixed init seed; -1 keeps config")
	flag.BoolVar(&o.vsync, "vsync", true, "tie frames to the display refresh")
	flag.IntVar(&o.fps, "fps", 0, "frame cap when vsync is off; 0 keeps config")
	flag.BoolVar(&o.menuClick, "context-menu-click", false, "also deliver right-click context menu events as clicks")
	flag.Uint64Var(&o.captureAfter, "capture-after", 0, "save a snapshot after frame N")
	flag.StringVar(&o.capturePath, "capture", "frame.png", "snapshot path for -capture-after and F2")
	flag.StringVar(&o.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	flag.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	flag.Parse()
	return o
}

// apply lets explicitly set flags win over the config file.
func (o options) apply(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "module":
			cfg.Module.Source = o.source
		case "seed":
			if o.seed >= 0 {
				seed := uint32(o.seed)
				cfg.Module.Seed = &seed
			}
		case "vsync":
			cfg.Loop.VSync = o.vsync
		case "fps":
			cfg.Loop.FPSLimit = o.fps
		case "context-menu-click":
			cfg.Input.ContextMenuClick = o.menuClick
		case "metrics-addr":
			cfg.Metrics.Addr = o.metricsAddr
		case "log-level":
			cfg.Log.Level = o.logLevel
		}
	})
}

func main() {
	closer.Checked(run, true)
	closer.Close()
}

func run() error {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	closer.Bind(func() { _ = log.Sync() })

	m, srv := setupMetrics(cfg.Metrics.Addr, log)
	if srv != nil {
		closer.Bind(func() { _ = srv.Close() })
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	closer.Bind(cancel)

	wasm, err := module.Fetch(ctx, cfg.Module.Source, module.FetchOptions{Retries: cfg.Module.FetchRetries}, log)
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw init: %w", err)
	}
	defer glfw.Terminate()

	window, s, err := setupWindow(cfg.Window, cfg.Loop.VSync)
	if err != nil {
		return err
	}
	defer window.Destroy()

	device, err := graphics.NewDevice(s, cfg.Render.ClearColor, log)
	if err != nil {
		return err
	}
	defer device.Dispose()

	a := app.New(cfg, device, m, log)
	inst, err := module.Load(ctx, wasm, a.Host(), module.Options{Name: moduleName(cfg.Module.Source), WASI: cfg.Module.WASI}, log)
	if err != nil {
		return err
	}
	defer inst.Close(ctx)

	a.Attach(inst)
	if opts.captureAfter > 0 {
		a.CaptureAfter(opts.captureAfter, opts.capturePath)
	}
	setupInputHandlers(ctx, window, s, a, opts.capturePath)

	log.Info("bridge ready", zap.Stringer("app", a))
	if err := a.Start(ctx, app.Seed(cfg.Module, rand.Uint32)); err != nil {
		return fmt.Errorf("module init: %w", err)
	}

	if err := a.Run(ctx, refreshSource(window, cfg.Loop)); err != nil {
		return err
	}
	log.Info("window closed", zap.Uint64("frames", a.Frames()))
	return nil
}

func setupMetrics(addr string, log *zap.Logger) (*metrics.Metrics, *http.Server) {
	if addr == "" {
		return metrics.Discard(), nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	srv := metrics.NewServer(addr, reg)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))
	return m, srv
}

// moduleName is the instance name wazero reports in traps.
func moduleName(source string) string {
	return strings.TrimSuffix(path.Base(source), ".wasm")
}
