package bridge

import (
	"errors"
	"strings"

	"glbridge/internal/geometry"
	"glbridge/internal/memview"
	"glbridge/internal/metrics"

	"go.uber.org/zap"
)

// Host implements the calls a module makes back into the bridge while it is
// inside frame().
type Host struct {
	dispatcher *Dispatcher
	metrics    *metrics.Metrics
	log        *zap.Logger
	moduleLog  *zap.Logger

	frameDraws int
}

func NewHost(dispatcher *Dispatcher, m *metrics.Metrics, log *zap.Logger) *Host {
	return &Host{
		dispatcher: dispatcher,
		metrics:    m,
		log:        log.Named("bridge"),
		moduleLog:  log.Named("module"),
	}
}

// Draw renders vertexCount vertices at vertexOffset as a triangle list.
func (h *Host) Draw(mem memview.Memory, vertexOffset, vertexCount uint32) error {
	return h.draw(mem, geometry.Arrays(vertexOffset, vertexCount))
}

// DrawIndexed renders indexCount indices at indexOffset into the vertexCount
// vertices at vertexOffset.
func (h *Host) DrawIndexed(mem memview.Memory, vertexOffset, vertexCount, indexOffset, indexCount uint32) error {
	return h.draw(mem, geometry.Elements(vertexOffset, vertexCount, indexOffset, indexCount))
}

func (h *Host) draw(mem memview.Memory, b geometry.Batch) error {
	h.frameDraws++
	err := h.dispatcher.DrawFrame(mem, b)
	if err == nil {
		return nil
	}
	if errors.Is(err, memview.ErrOutOfBounds) || errors.Is(err, memview.ErrMisaligned) ||
		errors.Is(err, geometry.ErrIndexOutOfRange) {
		h.metrics.ProtocolViolations.Inc()
	}
	h.log.Error("draw rejected",
		zap.String("mode", b.Mode()),
		zap.Uint32("vertex_offset", b.VertexOffset),
		zap.Uint32("vertex_count", b.VertexCount),
		zap.Uint32("index_offset", b.IndexOffset),
		zap.Uint32("index_count", b.IndexCount),
		zap.Uint32("memory_size", mem.Size()),
		zap.Error(err))
	return err
}

// Print logs length bytes at ptr as UTF-8. It never fails: an out-of-range
// request is logged and dropped, invalid UTF-8 is replaced.
func (h *Host) Print(mem memview.Memory, ptr, length uint32) {
	h.metrics.Prints.Inc()
	b, err := memview.Raw(mem, ptr, length)
	if err != nil {
		h.log.Warn("print outside module memory",
			zap.Uint32("ptr", ptr),
			zap.Uint32("len", length),
			zap.Error(err))
		return
	}
	text := strings.ToValidUTF8(string(b), "\uFFFD")
	h.moduleLog.Info(strings.TrimRight(text, "\r\n"))
}

// BeginFrame resets the per-frame draw counter.
func (h *Host) BeginFrame() { h.frameDraws = 0 }

// FrameDraws is the number of draw requests since BeginFrame.
func (h *Host) FrameDraws() int { return h.frameDraws }
