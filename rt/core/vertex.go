package core

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex matches the vertex shader input layout:
// position @0, normal @12, tangent @24, uv @36.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec3
	UV       mgl32.Vec2
}

const (
	VertexSize = uint32(unsafe.Sizeof(Vertex{}))
	IndexSize  = uint32(unsafe.Sizeof(uint32(0)))
)

func vertexBytes(vertices []Vertex) []byte {
	if len(vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(VertexSize))
}

func indexBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*int(IndexSize))
}
