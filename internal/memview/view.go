// Package memview builds typed views over a guest module's linear memory.
//
// Views alias the guest memory directly. They are borrowed for the duration
// of one host call and must not be retained: the next guest call may grow the
// memory, which replaces the backing buffer.
package memview

import (
	"errors"
	"fmt"
	"unsafe"
)

// Memory is the read side of a linear memory region. wazero's api.Memory
// satisfies it.
type Memory interface {
	Size() uint32
	Read(offset, byteCount uint32) ([]byte, bool)
}

// Element sizes in bytes.
const (
	Float32Size = 4
	Uint32Size  = 4
)

var (
	ErrOutOfBounds = errors.New("memview: range outside linear memory")
	ErrMisaligned  = errors.New("memview: misaligned offset")
)

// OutOfBoundsError reports a view request past the end of memory.
type OutOfBoundsError struct {
	Offset    uint32
	ByteCount uint64
	Size      uint32
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("memview: range [%d, %d) outside linear memory of %d bytes",
		e.Offset, uint64(e.Offset)+e.ByteCount, e.Size)
}

func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }

// Float32s returns count float32 values starting at offset.
func Float32s(mem Memory, offset, count uint32) ([]float32, error) {
	b, err := region(mem, offset, count, Float32Size)
	if err != nil || len(b) == 0 {
		return []float32{}, err
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), count), nil
}

// Uint32s returns count uint32 values starting at offset.
func Uint32s(mem Memory, offset, count uint32) ([]uint32, error) {
	b, err := region(mem, offset, count, Uint32Size)
	if err != nil || len(b) == 0 {
		return []uint32{}, err
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b[0])), count), nil
}

// Raw returns the raw byte range [offset, offset+count).
func Raw(mem Memory, offset, count uint32) ([]byte, error) {
	return region(mem, offset, count, 1)
}

// ByteLen returns the byte length of a typed view.
func ByteLen[T float32 | uint32](v []T) int {
	return len(v) * int(unsafe.Sizeof(*new(T)))
}

func region(mem Memory, offset, count uint32, elemSize uint32) ([]byte, error) {
	byteCount := uint64(count) * uint64(elemSize)
	size := mem.Size()
	if uint64(offset)+byteCount > uint64(size) {
		return nil, &OutOfBoundsError{Offset: offset, ByteCount: byteCount, Size: size}
	}
	if offset%elemSize != 0 {
		return nil, fmt.Errorf("%w: offset %d is not a multiple of %d", ErrMisaligned, offset, elemSize)
	}
	if byteCount == 0 {
		return []byte{}, nil
	}
	b, ok := mem.Read(offset, uint32(byteCount))
	if !ok {
		return nil, &OutOfBoundsError{Offset: offset, ByteCount: byteCount, Size: size}
	}
	if uintptr(unsafe.Pointer(&b[0]))%uintptr(elemSize) != 0 {
		return nil, fmt.Errorf("%w: backing buffer at offset %d", ErrMisaligned, offset)
	}
	return b, nil
}
