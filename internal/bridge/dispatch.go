package bridge

import (
	"glbridge/internal/geometry"
	"glbridge/internal/memview"
	"glbridge/internal/metrics"
	"glbridge/internal/profiling"
)

// Dispatcher turns one batch into clear + upload + at most one draw call.
type Dispatcher struct {
	device   Device
	uploader *Uploader
	metrics  *metrics.Metrics
}

func NewDispatcher(device Device, uploader *Uploader, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{device: device, uploader: uploader, metrics: m}
}

// DrawFrame clears the surface and draws b. An empty batch is a clear-only
// frame. Upload errors abort the draw.
func (d *Dispatcher) DrawFrame(mem memview.Memory, b geometry.Batch) error {
	defer profiling.Track("bridge.DrawFrame")()

	d.device.Clear()
	if err := d.uploader.Upload(mem, b); err != nil {
		return err
	}
	if b.Empty() {
		return nil
	}

	if b.Indexed {
		d.device.DrawElements(int32(b.IndexCount))
	} else {
		d.device.DrawArrays(int32(b.VertexCount))
	}
	d.metrics.DrawCalls.WithLabelValues(b.Mode()).Inc()
	return nil
}
