// Package coretest provides a recording stand-in for the GPU so scene code
// can be tested without a device.
package coretest

import (
	"fmt"

	"github.com/gekko3d/starter/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Call is one recorded operation, e.g. "vs.SetShader" or "DrawIndexed".
type Call struct {
	Op   string
	Args []any
}

// Recorder implements core.Device and core.Context and hands out fake
// buffers, textures, samplers and shaders that log into the same call list.
type Recorder struct {
	Calls   []Call
	Buffers []*Buffer

	// FailCreate, when set, is returned by the next resource creation.
	FailCreate error

	Width, Height int
	Frames        int
	inFrame       bool
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(op string, args ...any) {
	r.Calls = append(r.Calls, Call{Op: op, Args: args})
}

// Ops returns the recorded operation names in order.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

func (r *Recorder) Reset() {
	r.Calls = nil
}

func (r *Recorder) takeFailure() error {
	err := r.FailCreate
	r.FailCreate = nil
	return err
}

type Buffer struct {
	Label    string
	Usage    core.BufferUsage
	Contents []byte
	Releases int
}

func (b *Buffer) Release()     { b.Releases++ }
func (b *Buffer) Size() uint64 { return uint64(len(b.Contents)) }

func (r *Recorder) CreateImmutableBuffer(label string, usage core.BufferUsage, contents []byte) (core.Buffer, error) {
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	b := &Buffer{
		Label:    label,
		Usage:    usage,
		Contents: append([]byte(nil), contents...),
	}
	r.Buffers = append(r.Buffers, b)
	r.record("CreateImmutableBuffer", label, usage, len(contents))
	return b, nil
}

type Texture struct {
	Name     string
	Width    uint32
	Height   uint32
	Cube     bool
	Releases int
}

func (t *Texture) Release()      { t.Releases++ }
func (t *Texture) Label() string { return t.Name }

type Sampler struct {
	Name     string
	Releases int
}

func (s *Sampler) Release() { s.Releases++ }

func (r *Recorder) CreateTexture2D(label string, pixels []byte, width, height uint32) (core.TextureView, error) {
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	if uint32(len(pixels)) != width*height*4 {
		return nil, fmt.Errorf("coretest: texture %q: %d bytes for %dx%d", label, len(pixels), width, height)
	}
	r.record("CreateTexture2D", label, width, height)
	return &Texture{Name: label, Width: width, Height: height}, nil
}

func (r *Recorder) CreateTextureCube(label string, faces [6][]byte, size uint32) (core.TextureView, error) {
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	r.record("CreateTextureCube", label, size)
	return &Texture{Name: label, Width: size, Height: size, Cube: true}, nil
}

func (r *Recorder) CreateSampler(label string) (core.SamplerState, error) {
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	r.record("CreateSampler", label)
	return &Sampler{Name: label}, nil
}

func (r *Recorder) LoadShader(name string, stage core.ShaderStage) (core.ShaderProgram, error) {
	if err := r.takeFailure(); err != nil {
		return nil, err
	}
	r.record("LoadShader", name, stage)
	return r.NewShader(name, stage), nil
}

// BeginFrame returns the recorder itself as the frame context.
func (r *Recorder) BeginFrame() (core.Context, error) {
	if r.inFrame {
		return nil, fmt.Errorf("coretest: frame %d not ended", r.Frames)
	}
	r.inFrame = true
	r.record("BeginFrame")
	return r, nil
}

func (r *Recorder) EndFrame() error {
	if !r.inFrame {
		return fmt.Errorf("coretest: no frame in progress")
	}
	r.inFrame = false
	r.Frames++
	r.record("EndFrame")
	return nil
}

func (r *Recorder) Resize(width, height int) error {
	r.Width, r.Height = width, height
	r.record("Resize", width, height)
	return nil
}

func (r *Recorder) SetRenderState(state core.RenderState) {
	r.record("SetRenderState", state)
}

func (r *Recorder) SetVertexBuffer(buf core.Buffer, stride uint32) {
	r.record("SetVertexBuffer", buf, stride)
}

func (r *Recorder) SetIndexBuffer(buf core.Buffer) {
	r.record("SetIndexBuffer", buf)
}

func (r *Recorder) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) error {
	r.record("DrawIndexed", indexCount, startIndex, baseVertex)
	return nil
}

// Shader records parameter writes and keeps the latest value of each.
type Shader struct {
	rec   *Recorder
	name  string
	stage core.ShaderStage

	Matrices map[string]mgl32.Mat4
	Floats   map[string]mgl32.Vec3
	Data     map[string][]byte
	Views    map[string]core.TextureView
	Samplers map[string]core.SamplerState

	// Known restricts accepted variable names; nil accepts everything.
	Known map[string]bool
}

func (r *Recorder) NewShader(name string, stage core.ShaderStage) *Shader {
	return &Shader{
		rec:      r,
		name:     name,
		stage:    stage,
		Matrices: make(map[string]mgl32.Mat4),
		Floats:   make(map[string]mgl32.Vec3),
		Data:     make(map[string][]byte),
		Views:    make(map[string]core.TextureView),
		Samplers: make(map[string]core.SamplerState),
	}
}

func (s *Shader) prefix() string {
	if s.stage == core.StageVertex {
		return "vs."
	}
	return "ps."
}

func (s *Shader) accepts(name string) bool {
	return s.Known == nil || s.Known[name]
}

func (s *Shader) Name() string            { return s.name }
func (s *Shader) Stage() core.ShaderStage { return s.stage }

func (s *Shader) SetMatrix4x4(name string, m mgl32.Mat4) bool {
	if !s.accepts(name) {
		return false
	}
	s.Matrices[name] = m
	s.rec.record(s.prefix()+"SetMatrix4x4", name)
	return true
}

func (s *Shader) SetFloat3(name string, v mgl32.Vec3) bool {
	if !s.accepts(name) {
		return false
	}
	s.Floats[name] = v
	s.rec.record(s.prefix()+"SetFloat3", name)
	return true
}

func (s *Shader) SetData(name string, data []byte) bool {
	if !s.accepts(name) {
		return false
	}
	s.Data[name] = append([]byte(nil), data...)
	s.rec.record(s.prefix()+"SetData", name, len(data))
	return true
}

func (s *Shader) SetShaderResourceView(name string, view core.TextureView) bool {
	if !s.accepts(name) {
		return false
	}
	if view == nil {
		delete(s.Views, name)
	} else {
		s.Views[name] = view
	}
	s.rec.record(s.prefix()+"SetShaderResourceView", name)
	return true
}

func (s *Shader) SetSamplerState(name string, sampler core.SamplerState) bool {
	if !s.accepts(name) {
		return false
	}
	if sampler == nil {
		delete(s.Samplers, name)
	} else {
		s.Samplers[name] = sampler
	}
	s.rec.record(s.prefix()+"SetSamplerState", name)
	return true
}

func (s *Shader) SetShader(ctx core.Context) {
	s.rec.record(s.prefix()+"SetShader", s.name)
}
