// Package bridge moves geometry out of the game module's memory and onto the
// GPU, once per frame.
package bridge

// Device is the GPU side of the bridge. Upload calls replace the whole buffer
// contents; there is exactly one vertex and one index buffer.
type Device interface {
	// Clear clears the color buffer.
	Clear()
	// UploadVertices replaces the vertex buffer with interleaved
	// position/color floats.
	UploadVertices(vertices []float32)
	// UploadIndices replaces the index buffer.
	UploadIndices(indices []uint32)
	// DrawArrays draws count vertices as a triangle list.
	DrawArrays(count int32)
	// DrawElements draws count uint32 indices as a triangle list, starting at
	// offset 0 of the index buffer.
	DrawElements(count int32)
}
