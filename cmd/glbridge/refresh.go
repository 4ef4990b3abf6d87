package main

import (
	"glbridge/internal/config"
	"glbridge/internal/frameloop"
	"glbridge/internal/profiling"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// windowSource signals once per presented frame. With a swap interval of
// 1 SwapBuffers blocks until the display refresh, which makes it the
// refresh signal.
type windowSource struct {
	window  *glfw.Window
	started bool
}

func (s *windowSource) Next() bool {
	if s.started {
		func() { defer profiling.Track("glfw.SwapBuffers")(); s.window.SwapBuffers() }()
	}
	s.started = true
	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()
	return !s.window.ShouldClose()
}

func refreshSource(window *glfw.Window, cfg config.LoopConfig) frameloop.RefreshSource {
	src := &windowSource{window: window}
	if cfg.VSync || cfg.FPSLimit == 0 {
		return src
	}
	return frameloop.Paced{Source: src, Limiter: frameloop.NewLimiter(cfg.FPSLimit)}
}
