// Package graphics is the OpenGL side of the bridge.
package graphics

import (
	"image"
	"unsafe"

	"glbridge/internal/capture"
	"glbridge/internal/geometry"
	"glbridge/internal/memview"
	"glbridge/internal/surface"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// Device owns the program, the VAO and the two streaming buffers the module's
// geometry is uploaded into. It must be used from the thread that owns the GL
// context.
type Device struct {
	shader *Shader
	vao    uint32
	vbo    uint32
	ebo    uint32

	surface surface.Surface
	log     *zap.Logger
}

// NewDevice compiles the geometry program and sets up the vertex layout.
// A shader failure is a setup failure; there is no fallback path.
func NewDevice(s surface.Surface, clearColor [4]float32, log *zap.Logger) (*Device, error) {
	shader, err := NewShader("geometry")
	if err != nil {
		return nil, err
	}

	d := &Device{shader: shader, surface: s, log: log.Named("graphics")}
	d.setupVAO()

	gl.Disable(gl.DEPTH_TEST)
	gl.Viewport(0, 0, int32(s.Width), int32(s.Height))
	gl.ClearColor(clearColor[0], clearColor[1], clearColor[2], clearColor[3])

	proj := s.Projection()
	shader.Use()
	shader.SetMatrix4("u_projection", &proj[0])

	d.log.Info("device ready",
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.Int("width", s.Width),
		zap.Int("height", s.Height))
	return d, nil
}

func (d *Device) setupVAO() {
	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)

	position := uint32(d.shader.AttribLocation("a_position"))
	gl.EnableVertexAttribArray(position)
	gl.VertexAttribPointerWithOffset(position, geometry.PositionComponents, gl.FLOAT, false,
		geometry.VertexStride, geometry.PositionOffset)

	color := uint32(d.shader.AttribLocation("a_color"))
	gl.EnableVertexAttribArray(color)
	gl.VertexAttribPointerWithOffset(color, geometry.ColorComponents, gl.FLOAT, false,
		geometry.VertexStride, geometry.ColorOffset)

	// The element buffer binding is VAO state.
	gl.GenBuffers(1, &d.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.ebo)
}

func (d *Device) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (d *Device) UploadVertices(vertices []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, memview.ByteLen(vertices), dataPtr(vertices), gl.STREAM_DRAW)
}

func (d *Device) UploadIndices(indices []uint32) {
	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, memview.ByteLen(indices), dataPtr(indices), gl.STREAM_DRAW)
}

func (d *Device) DrawArrays(count int32) {
	d.shader.Use()
	gl.BindVertexArray(d.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, count)
	d.checkError("DrawArrays")
}

func (d *Device) DrawElements(count int32) {
	d.shader.Use()
	gl.BindVertexArray(d.vao)
	gl.DrawElements(gl.TRIANGLES, count, gl.UNSIGNED_INT, nil)
	d.checkError("DrawElements")
}

// Snapshot reads back the framebuffer, top row first.
func (d *Device) Snapshot() *image.RGBA {
	w, h := d.surface.Width, d.surface.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	d.checkError("ReadPixels")
	capture.FlipVertical(img)
	return img
}

// Dispose releases every GL object the device created.
func (d *Device) Dispose() {
	if d.ebo != 0 {
		gl.DeleteBuffers(1, &d.ebo)
	}
	if d.vbo != 0 {
		gl.DeleteBuffers(1, &d.vbo)
	}
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
	}
	d.shader.Delete()
}

// checkError logs GL errors. A lost context shows up here and is not
// recovered.
func (d *Device) checkError(op string) {
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		d.log.Error("GL error", zap.String("op", op), zap.Uint32("code", code))
	}
}

func dataPtr[T float32 | uint32](v []T) unsafe.Pointer {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Pointer(&v[0])
}
