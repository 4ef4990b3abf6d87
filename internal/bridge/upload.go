package bridge

import (
	"math"

	"glbridge/internal/geometry"
	"glbridge/internal/memview"
	"glbridge/internal/metrics"
	"glbridge/internal/profiling"
)

// Uploader copies a batch from module memory into the device buffers.
type Uploader struct {
	device   Device
	metrics  *metrics.Metrics
	validate bool
}

// NewUploader creates an uploader. With validate set, every index is checked
// against the vertex count before anything reaches the device.
func NewUploader(device Device, m *metrics.Metrics, validate bool) *Uploader {
	return &Uploader{device: device, metrics: m, validate: validate}
}

// Upload builds fresh views for b and pushes them to the device. Both views
// are built before either upload so a bad index range leaves the device
// untouched.
func (u *Uploader) Upload(mem memview.Memory, b geometry.Batch) error {
	defer profiling.Track("bridge.Upload")()

	vertices, err := vertexView(mem, b)
	if err != nil {
		return err
	}

	var indices []uint32
	if b.Indexed {
		indices, err = memview.Uint32s(mem, b.IndexOffset, b.IndexCount)
		if err != nil {
			return err
		}
		if u.validate {
			if err := geometry.ValidateIndices(indices, b.VertexCount); err != nil {
				return err
			}
		}
	}

	u.device.UploadVertices(vertices)
	u.metrics.Vertices.Add(float64(b.VertexCount))
	if b.Indexed {
		u.device.UploadIndices(indices)
		u.metrics.Indices.Add(float64(b.IndexCount))
	}
	return nil
}

func vertexView(mem memview.Memory, b geometry.Batch) ([]float32, error) {
	floats := uint64(b.VertexCount) * geometry.FloatsPerVertex
	if floats > math.MaxUint32 {
		return nil, &memview.OutOfBoundsError{
			Offset:    b.VertexOffset,
			ByteCount: floats * geometry.FloatSize,
			Size:      mem.Size(),
		}
	}
	return memview.Float32s(mem, b.VertexOffset, uint32(floats))
}
