package memview_test

import (
	"errors"
	"math"
	"testing"

	"glbridge/internal/memview"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewByteLength(t *testing.T) {
	mem := memview.NewBuffer(memview.PageSize)

	tests := []struct {
		offset uint32
		count  uint32
	}{
		{0, 0},
		{0, 1},
		{4, 5},
		{1024, 300},
		{memview.PageSize - 4, 1},
		{0, memview.PageSize / 4},
		{memview.PageSize, 0},
	}
	for _, tt := range tests {
		f, err := memview.Float32s(mem, tt.offset, tt.count)
		require.NoError(t, err)
		assert.Equal(t, int(tt.count)*4, memview.ByteLen(f), "float32 view at %d count %d", tt.offset, tt.count)

		u, err := memview.Uint32s(mem, tt.offset, tt.count)
		require.NoError(t, err)
		assert.Equal(t, int(tt.count)*4, memview.ByteLen(u), "uint32 view at %d count %d", tt.offset, tt.count)
	}
}

func TestViewReadsMemory(t *testing.T) {
	mem := memview.NewBuffer(256)
	mem.PutFloat32s(20, 100, 700, 0, 1, 0.5)
	mem.PutUint32s(128, 0, 1, 2, math.MaxUint32)

	f, err := memview.Float32s(mem, 20, 5)
	require.NoError(t, err)
	assert.Equal(t, []float32{100, 700, 0, 1, 0.5}, f)

	u, err := memview.Uint32s(mem, 128, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2, math.MaxUint32}, u)
}

func TestViewAliasesMemory(t *testing.T) {
	mem := memview.NewBuffer(64)
	f, err := memview.Float32s(mem, 0, 2)
	require.NoError(t, err)

	mem.PutFloat32s(0, 3, 4)
	assert.Equal(t, []float32{3, 4}, f, "view must not copy")
}

func TestViewOutOfBounds(t *testing.T) {
	mem := memview.NewBuffer(64)

	tests := []struct {
		name   string
		offset uint32
		count  uint32
	}{
		{"one past end", 0, 17},
		{"offset past end", 68, 0},
		{"straddles end", 60, 2},
		{"count overflows uint32", 0, math.MaxUint32},
		{"offset overflows", math.MaxUint32 - 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := memview.Float32s(mem, tt.offset, tt.count)
			require.ErrorIs(t, err, memview.ErrOutOfBounds)

			var oob *memview.OutOfBoundsError
			require.True(t, errors.As(err, &oob))
			assert.Equal(t, tt.offset, oob.Offset)
			assert.Equal(t, uint32(64), oob.Size)

			_, err = memview.Uint32s(mem, tt.offset, tt.count)
			require.ErrorIs(t, err, memview.ErrOutOfBounds)
		})
	}
}

func TestViewMisaligned(t *testing.T) {
	mem := memview.NewBuffer(64)
	_, err := memview.Float32s(mem, 2, 1)
	require.ErrorIs(t, err, memview.ErrMisaligned)

	_, err = memview.Raw(mem, 3, 5)
	require.NoError(t, err)
}

func TestViewRebuiltAfterGrow(t *testing.T) {
	mem := memview.NewBuffer(memview.PageSize)

	_, err := memview.Float32s(mem, memview.PageSize, 5)
	require.ErrorIs(t, err, memview.ErrOutOfBounds)

	stale, err := memview.Float32s(mem, 0, 1)
	require.NoError(t, err)

	mem.Grow(1)
	mem.PutFloat32s(0, 42)
	mem.PutFloat32s(memview.PageSize, 1, 2, 3, 4, 5)

	fresh, err := memview.Float32s(mem, memview.PageSize, 5)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, fresh)

	assert.Equal(t, float32(0), stale[0], "views taken before growth see the old backing array")
	again, err := memview.Float32s(mem, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, float32(42), again[0])
}
