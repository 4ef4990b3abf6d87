// Package surface describes the drawing surface in pixels: its size, the
// pixel-space projection, and the mapping from window to surface coordinates.
package surface

import "github.com/go-gl/mathgl/mgl32"

// Surface is fixed at setup time; resizes are not tracked.
type Surface struct {
	Width  int // framebuffer pixels
	Height int

	// Window size in screen coordinates. Differs from Width/Height on
	// HiDPI displays.
	WindowWidth  int
	WindowHeight int
}

// New builds a surface from framebuffer and window sizes.
func New(fbWidth, fbHeight, winWidth, winHeight int) Surface {
	return Surface{Width: fbWidth, Height: fbHeight, WindowWidth: winWidth, WindowHeight: winHeight}
}

// Projection maps pixel coordinates with a top-left origin to clip space.
func (s Surface) Projection() mgl32.Mat4 {
	return mgl32.Ortho2D(0, float32(s.Width), float32(s.Height), 0)
}

// Scale is the framebuffer-to-window ratio on each axis.
func (s Surface) Scale() (float64, float64) {
	sx, sy := 1.0, 1.0
	if s.WindowWidth > 0 {
		sx = float64(s.Width) / float64(s.WindowWidth)
	}
	if s.WindowHeight > 0 {
		sy = float64(s.Height) / float64(s.WindowHeight)
	}
	return sx, sy
}

// FromWindow converts a cursor position in window coordinates to surface
// pixels.
func (s Surface) FromWindow(x, y float64) (float64, float64) {
	sx, sy := s.Scale()
	return x * sx, y * sy
}

// Contains reports whether the surface-pixel point lies on the surface.
func (s Surface) Contains(x, y float64) bool {
	return x >= 0 && y >= 0 && x < float64(s.Width) && y < float64(s.Height)
}
