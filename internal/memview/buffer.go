package memview

import (
	"encoding/binary"
	"math"
)

// PageSize is the wasm linear memory page size.
const PageSize = 65536

// Buffer is a host-owned Memory. It stands in for guest memory when the bridge
// is driven without a wasm runtime.
type Buffer struct {
	data []byte
}

// NewBuffer allocates a zeroed buffer of size bytes.
func NewBuffer(size uint32) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

func (b *Buffer) Size() uint32 { return uint32(len(b.data)) }

func (b *Buffer) Read(offset, byteCount uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(byteCount)
	if end > uint64(len(b.data)) {
		return nil, false
	}
	return b.data[offset:end:end], true
}

// Grow appends pages and replaces the backing array, like memory.grow does.
// Views taken before Grow keep pointing at the old array.
func (b *Buffer) Grow(pages uint32) {
	next := make([]byte, len(b.data)+int(pages)*PageSize)
	copy(next, b.data)
	b.data = next
}

// PutFloat32s writes little-endian floats at offset.
func (b *Buffer) PutFloat32s(offset uint32, vals ...float32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b.data[offset+uint32(i)*Float32Size:], math.Float32bits(v))
	}
}

// PutUint32s writes little-endian integers at offset.
func (b *Buffer) PutUint32s(offset uint32, vals ...uint32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b.data[offset+uint32(i)*Uint32Size:], v)
	}
}

// PutBytes copies p to offset.
func (b *Buffer) PutBytes(offset uint32, p []byte) {
	copy(b.data[offset:], p)
}
