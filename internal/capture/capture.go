// Package capture writes framebuffer snapshots to disk.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

var ErrUnknownFormat = errors.New("capture: unknown image format")

// FlipVertical mirrors img top to bottom in place. GL reads rows bottom-up.
func FlipVertical(img *image.RGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for top, bottom := 0, h-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := img.Pix[top*img.Stride : (top+1)*img.Stride]
		b := img.Pix[bottom*img.Stride : (bottom+1)*img.Stride]
		copy(row, a)
		copy(a, b)
		copy(b, row)
	}
}

// Encode writes img in the format named by ext (".png" or ".bmp").
func Encode(w io.Writer, ext string, img image.Image) error {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode(w, img)
	case ".bmp":
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Supported reports whether Encode handles ext.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".bmp":
		return true
	}
	return false
}

// Save writes img to path, picking the encoder from the extension.
func Save(path string, img image.Image) error {
	ext := filepath.Ext(path)
	if !Supported(ext) {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create capture: %w", err)
	}
	if err := Encode(f, ext, img); err != nil {
		f.Close()
		return fmt.Errorf("encode capture: %w", err)
	}
	return f.Close()
}
