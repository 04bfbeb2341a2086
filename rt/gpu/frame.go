package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/starter/rt/core"
)

var (
	ErrFrameInProgress = errors.New("gpu: previous frame not ended")
	ErrNoFrame         = errors.New("gpu: no frame in progress")
	ErrNoProgram       = errors.New("gpu: vertex and pixel shader must be set before drawing")
	ErrNoGeometry      = errors.New("gpu: vertex and index buffer must be set before drawing")
)

const (
	// minUniformBufferOffsetAlignment guaranteed by WebGPU
	uniformAlign     = 256
	uniformChunkSize = 256 * uniformAlign
)

type uniformChunk struct {
	buf         *wgpu.Buffer
	vertexGroup *wgpu.BindGroup
	pixelGroup  *wgpu.BindGroup
}

// uniformRing hands out 256-byte uniform slots for the current frame. Chunks
// are kept across frames; reset rewinds to the first one.
type uniformRing struct {
	chunks []*uniformChunk
	index  int
	cursor uint32
}

func (u *uniformRing) reset() {
	u.index = 0
	u.cursor = 0
}

// reserve returns the chunk index and byte offset of the next free slot.
func (u *uniformRing) reserve() (int, uint32) {
	if u.cursor+uniformAlign > uniformChunkSize {
		u.index++
		u.cursor = 0
	}
	off := u.cursor
	u.cursor += uniformAlign
	return u.index, off
}

func (u *uniformRing) release() {
	for _, c := range u.chunks {
		c.vertexGroup.Release()
		c.pixelGroup.Release()
		c.buf.Release()
	}
	u.chunks = nil
	u.reset()
}

func (r *Renderer) uniformSlot(data []byte) (*uniformChunk, uint32, error) {
	idx, off := r.uniforms.reserve()
	for idx >= len(r.uniforms.chunks) {
		c, err := r.newUniformChunk(len(r.uniforms.chunks))
		if err != nil {
			return nil, 0, err
		}
		r.uniforms.chunks = append(r.uniforms.chunks, c)
	}
	c := r.uniforms.chunks[idx]
	if err := r.queue.WriteBuffer(c.buf, uint64(off), data); err != nil {
		return nil, 0, err
	}
	return c, off, nil
}

func (r *Renderer) newUniformChunk(n int) (*uniformChunk, error) {
	buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: fmt.Sprintf("UniformRing %d", n),
		Size:  uniformChunkSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	vg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "VertexUniformsBG",
		Layout: r.vertexLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Offset: 0, Size: vertexUniformSize},
		},
	})
	if err != nil {
		buf.Release()
		return nil, err
	}
	pg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "PixelUniformsBG",
		Layout: r.pixelLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Offset: 0, Size: pixelUniformSize},
		},
	})
	if err != nil {
		vg.Release()
		buf.Release()
		return nil, err
	}
	return &uniformChunk{buf: buf, vertexGroup: vg, pixelGroup: pg}, nil
}

// Frame is the core.Context for one swapchain image. It keeps the most
// recently activated shaders, render state and buffers and turns each
// DrawIndexed into a pipeline + bind group + draw on the render pass.
type Frame struct {
	r *Renderer

	surfaceTexture *wgpu.Texture
	view           *wgpu.TextureView
	encoder        *wgpu.CommandEncoder
	pass           *wgpu.RenderPassEncoder

	state core.RenderState

	vs, ps   *Shader
	vsChunk  *uniformChunk
	psChunk  *uniformChunk
	vsOffset uint32
	psOffset uint32
	textures [textureBindings]*Texture
	sampler  *Sampler

	vertex *Buffer
	index  *Buffer

	err   error
	Draws int
}

// BeginFrame acquires the next swapchain image and opens a render pass that
// clears color and depth.
func (r *Renderer) BeginFrame() (core.Context, error) {
	if r.frame != nil {
		return nil, ErrFrameInProgress
	}

	surfaceTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, err
	}
	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return nil, err
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: r.ClearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})

	r.uniforms.reset()
	r.frame = &Frame{
		r:              r,
		surfaceTexture: surfaceTexture,
		view:           view,
		encoder:        encoder,
		pass:           pass,
	}
	return r.frame, nil
}

// EndFrame submits the recorded pass and presents. The first error raised
// while recording, if any, is returned after presenting.
func (r *Renderer) EndFrame() error {
	f := r.frame
	if f == nil {
		return ErrNoFrame
	}
	r.frame = nil
	defer f.surfaceTexture.Release()
	defer f.view.Release()
	defer f.encoder.Release()

	if err := f.pass.End(); err != nil {
		return err
	}
	f.pass.Release()

	cmd, err := f.encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer cmd.Release()

	r.queue.Submit(cmd)
	r.surface.Present()
	return f.err
}

func (f *Frame) fail(err error) {
	if f.err == nil {
		f.err = err
	}
}

func (f *Frame) bindShader(s *Shader) {
	chunk, off, err := f.r.uniformSlot(s.uniforms)
	if err != nil {
		f.fail(fmt.Errorf("gpu: upload %s uniforms: %w", s.name, err))
		return
	}
	switch s.stage {
	case core.StageVertex:
		f.vs, f.vsChunk, f.vsOffset = s, chunk, off
	case core.StagePixel:
		f.ps, f.psChunk, f.psOffset = s, chunk, off
		f.textures = s.textures
		f.sampler = s.sampler
	}
}

func (f *Frame) SetRenderState(state core.RenderState) {
	f.state = state
}

func (f *Frame) SetVertexBuffer(buf core.Buffer, stride uint32) {
	if stride != core.VertexSize {
		f.fail(fmt.Errorf("gpu: vertex stride %d, pipeline expects %d", stride, core.VertexSize))
	}
	f.vertex, _ = buf.(*Buffer)
}

func (f *Frame) SetIndexBuffer(buf core.Buffer) {
	f.index, _ = buf.(*Buffer)
}

func (f *Frame) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) error {
	if f.vs == nil || f.ps == nil {
		return ErrNoProgram
	}
	if f.vertex == nil || f.index == nil {
		return ErrNoGeometry
	}

	pipeline, err := f.r.pipeline(f.vs, f.ps, f.state)
	if err != nil {
		return err
	}
	textures, err := f.r.textureGroup(f.textures, f.sampler)
	if err != nil {
		return err
	}

	f.pass.SetPipeline(pipeline)
	f.pass.SetBindGroup(0, f.vsChunk.vertexGroup, []uint32{f.vsOffset})
	f.pass.SetBindGroup(1, f.psChunk.pixelGroup, []uint32{f.psOffset})
	f.pass.SetBindGroup(2, textures, nil)
	f.pass.SetVertexBuffer(0, f.vertex.buf, 0, wgpu.WholeSize)
	f.pass.SetIndexBuffer(f.index.buf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	f.pass.DrawIndexed(indexCount, 1, startIndex, baseVertex, 0)
	f.Draws++
	return nil
}
