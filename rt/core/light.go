package core

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// DirectionalLight mirrors the WGSL struct of the same name (48 bytes).
type DirectionalLight struct {
	AmbientColor mgl32.Vec4
	DiffuseColor mgl32.Vec4
	Direction    mgl32.Vec3
	_            float32
}

// PointLight mirrors the WGSL struct of the same name (32 bytes).
type PointLight struct {
	Color    mgl32.Vec4
	Position mgl32.Vec3
	_        float32
}

func (l DirectionalLight) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&l)), unsafe.Sizeof(l))
}

func (l PointLight) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&l)), unsafe.Sizeof(l))
}
