package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Releaser is implemented by every GPU object handed out by a Device.
type Releaser interface {
	Release()
}

type Buffer interface {
	Releaser
	Size() uint64
}

type TextureView interface {
	Releaser
	Label() string
}

type SamplerState interface {
	Releaser
}

type BufferUsage int

const (
	BufferUsageVertex BufferUsage = iota
	BufferUsageIndex
)

func (u BufferUsage) String() string {
	switch u {
	case BufferUsageVertex:
		return "vertex"
	case BufferUsageIndex:
		return "index"
	}
	return "unknown"
}

// Device creates GPU resources. Buffers created here are immutable:
// contents are uploaded once and there is no write path afterwards.
type Device interface {
	CreateImmutableBuffer(label string, usage BufferUsage, contents []byte) (Buffer, error)
}

type CullMode int

const (
	CullBack CullMode = iota
	CullFront
	CullNone
)

type DepthCompare int

const (
	DepthLess DepthCompare = iota
	DepthLessEqual
)

// RenderState is the fixed-function state a material applies before drawing.
// The zero value is back-face culling, depth less, no blending.
type RenderState struct {
	Cull  CullMode
	Depth DepthCompare
	Blend bool
}

// Context records draw state and draw calls for the current frame.
// Input assembly (vertex/index buffers) must be set before DrawIndexed.
type Context interface {
	SetRenderState(state RenderState)
	SetVertexBuffer(buf Buffer, stride uint32)
	SetIndexBuffer(buf Buffer)
	DrawIndexed(indexCount, startIndex uint32, baseVertex int32) error
}

type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StagePixel
)

func (s ShaderStage) String() string {
	if s == StageVertex {
		return "vertex"
	}
	return "pixel"
}

// ShaderProgram is a single shader stage with named parameters.
// Setters return false when the shader has no variable of that name.
// SetShader activates the stage on ctx and snapshots the current
// parameter values for the next draw.
type ShaderProgram interface {
	Name() string
	Stage() ShaderStage
	SetMatrix4x4(name string, m mgl32.Mat4) bool
	SetFloat3(name string, v mgl32.Vec3) bool
	SetData(name string, data []byte) bool
	SetShaderResourceView(name string, view TextureView) bool
	SetSamplerState(name string, sampler SamplerState) bool
	SetShader(ctx Context)
}
