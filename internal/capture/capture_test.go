package capture_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"glbridge/internal/capture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func striped() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(y * 100), A: 255})
		}
	}
	return img
}

func TestFlipVertical(t *testing.T) {
	img := striped()
	capture.FlipVertical(img)
	assert.Equal(t, uint8(200), img.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(100), img.RGBAAt(1, 1).R)
	assert.Equal(t, uint8(0), img.RGBAAt(0, 2).R)
}

func TestSaveFormats(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "frame.png")
	require.NoError(t, capture.Save(pngPath, striped()))
	data, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 3), decoded.Bounds())

	bmpPath := filepath.Join(dir, "frame.BMP")
	require.NoError(t, capture.Save(bmpPath, striped()))
	data, err = os.ReadFile(bmpPath)
	require.NoError(t, err)
	decoded, err = bmp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	r, _, _, _ := decoded.At(0, 2).RGBA()
	assert.Equal(t, uint32(200)<<8|200, r)
}

func TestSaveUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.gif")
	err := capture.Save(path, striped())
	require.ErrorIs(t, err, capture.ErrUnknownFormat)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
