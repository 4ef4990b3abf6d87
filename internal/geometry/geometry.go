// Package geometry holds the vertex layout shared by the game module and the
// bridge. Nothing here is negotiated at runtime: a module that writes a
// different layout renders garbage.
package geometry

import (
	"errors"
	"fmt"
)

// Vertex layout in module memory.
const (
	PositionComponents = 2
	ColorComponents    = 3
	FloatsPerVertex    = PositionComponents + ColorComponents

	FloatSize = 4
	IndexSize = 4

	VertexStride   = FloatsPerVertex * FloatSize // 20 bytes
	PositionOffset = 0
	ColorOffset    = PositionComponents * FloatSize // 8 bytes
)

// Vertex documents the in-memory layout of one vertex. The bridge never
// decodes vertices through this type; it uploads raw float views.
type Vertex struct {
	X, Y    float32 // pixel space, origin top-left
	R, G, B float32 // 0..1
}

// Batch describes one frame's geometry inside module memory. It is only
// valid until the module runs again.
type Batch struct {
	VertexOffset uint32
	VertexCount  uint32

	Indexed     bool
	IndexOffset uint32
	IndexCount  uint32
}

// Arrays returns a non-indexed batch.
func Arrays(vertexOffset, vertexCount uint32) Batch {
	return Batch{VertexOffset: vertexOffset, VertexCount: vertexCount}
}

// Elements returns an indexed batch.
func Elements(vertexOffset, vertexCount, indexOffset, indexCount uint32) Batch {
	return Batch{
		VertexOffset: vertexOffset,
		VertexCount:  vertexCount,
		Indexed:      true,
		IndexOffset:  indexOffset,
		IndexCount:   indexCount,
	}
}

// ElementCount is the number of vertices the draw call will process.
func (b Batch) ElementCount() uint32 {
	if b.Indexed {
		return b.IndexCount
	}
	return b.VertexCount
}

// Empty reports whether the batch draws nothing.
func (b Batch) Empty() bool {
	return b.ElementCount() == 0
}

// Mode names the draw call the batch maps to.
func (b Batch) Mode() string {
	if b.Indexed {
		return "indexed"
	}
	return "arrays"
}

// ErrIndexOutOfRange is returned by ValidateIndices.
var ErrIndexOutOfRange = errors.New("geometry: index out of range")

// ValidateIndices checks 0 <= index < vertexCount for every index.
func ValidateIndices(indices []uint32, vertexCount uint32) error {
	for i, idx := range indices {
		if idx >= vertexCount {
			return fmt.Errorf("%w: indices[%d]=%d, vertex count %d", ErrIndexOutOfRange, i, idx, vertexCount)
		}
	}
	return nil
}
