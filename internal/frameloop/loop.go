// Package frameloop drives the module one frame per refresh signal.
package frameloop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glbridge/internal/metrics"
	"glbridge/internal/profiling"

	"go.uber.org/zap"
)

// State of the loop.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// RefreshSource delivers refresh signals. Next blocks until the host grants
// the next frame and returns false once the host stops granting them.
// It is only called while the loop is Idle.
type RefreshSource interface {
	Next() bool
}

// SourceFunc adapts a function to RefreshSource.
type SourceFunc func() bool

func (f SourceFunc) Next() bool { return f() }

// Step advances the module by exactly one frame.
type Step func(ctx context.Context) error

var ErrAlreadyRunning = errors.New("frameloop: loop already running")

// Loop runs one Step per refresh signal with no overlap and no batching. A
// slow module makes the loop fall behind real time; frames are never skipped.
type Loop struct {
	state     State
	frames    uint64
	slowFrame time.Duration
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// New creates a loop. Frames slower than slowFrame are logged with their top
// profiling entries; zero disables the check.
func New(slowFrame time.Duration, m *metrics.Metrics, log *zap.Logger) *Loop {
	return &Loop{slowFrame: slowFrame, metrics: m, log: log.Named("loop")}
}

func (l *Loop) State() State { return l.state }

// Frames is the number of steps that completed.
func (l *Loop) Frames() uint64 { return l.frames }

// Run calls step once per signal from src. It returns nil when src stops,
// ctx's error when ctx is cancelled between frames, and the wrapped step
// error when a frame fails. A failed frame is not retried.
func (l *Loop) Run(ctx context.Context, src RefreshSource, step Step) error {
	if l.state == Running {
		return ErrAlreadyRunning
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !src.Next() {
			l.log.Info("refresh source stopped", zap.Uint64("frames", l.frames))
			return nil
		}

		profiling.ResetFrame()
		l.state = Running
		start := time.Now()
		err := step(ctx)
		elapsed := time.Since(start)
		l.state = Idle

		l.metrics.FrameDuration.Observe(elapsed.Seconds())
		if err != nil {
			return fmt.Errorf("frame %d: %w", l.frames, err)
		}
		l.frames++
		l.metrics.Frames.Inc()

		if l.slowFrame > 0 && elapsed > l.slowFrame {
			l.log.Warn("slow frame",
				zap.Uint64("frame", l.frames),
				zap.Duration("elapsed", elapsed),
				zap.Int("draws", profiling.Calls("bridge.DrawFrame")),
				zap.String("top", profiling.TopN(5)))
		}
	}
}
