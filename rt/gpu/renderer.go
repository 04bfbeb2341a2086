package gpu

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/starter/rt/core"
	"github.com/gekko3d/starter/rt/shaders"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const depthFormat = wgpu.TextureFormatDepth24Plus

var ErrUnknownShader = errors.New("gpu: unknown shader")

type pipelineKey struct {
	vs, ps string
	state  core.RenderState
}

type textureKey struct {
	textures [textureBindings]*Texture
	sampler  *Sampler
}

// Renderer owns the WebGPU device and swapchain for one GLFW window. It
// implements core.Device and hands out one Frame per BeginFrame.
type Renderer struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	vertexLayout   *wgpu.BindGroupLayout
	pixelLayout    *wgpu.BindGroupLayout
	textureLayout  *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout

	modules       map[string]*wgpu.ShaderModule
	pipelines     map[pipelineKey]*wgpu.RenderPipeline
	textureGroups map[textureKey]*wgpu.BindGroup
	uniforms      uniformRing

	defaults       [textureBindings]*Texture
	defaultSampler *Sampler

	frame      *Frame
	ClearColor wgpu.Color
}

func NewRenderer(window *glfw.Window) (*Renderer, error) {
	r := &Renderer{
		modules:       make(map[string]*wgpu.ShaderModule),
		pipelines:     make(map[pipelineKey]*wgpu.RenderPipeline),
		textureGroups: make(map[textureKey]*wgpu.BindGroup),
		ClearColor:    wgpu.Color{R: 0.4, G: 0.6, B: 0.75, A: 1},
	}

	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: request adapter: %w", err)
	}
	r.adapter = adapter

	r.device, err = adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Starter Device",
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: request device: %w", err)
	}
	r.queue = r.device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := r.surface.GetCapabilities(adapter)
	r.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	r.surface.Configure(adapter, r.device, r.config)

	if err := r.createDepth(); err != nil {
		return nil, err
	}
	if err := r.createLayouts(); err != nil {
		return nil, err
	}
	if err := r.createDefaults(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) Device() *wgpu.Device { return r.device }

func (r *Renderer) Size() (int, int) {
	return int(r.config.Width), int(r.config.Height)
}

// Resize reconfigures the swapchain and depth buffer. A zero-sized window
// (minimized) is ignored.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if uint32(width) == r.config.Width && uint32(height) == r.config.Height {
		return nil
	}
	r.config.Width = uint32(width)
	r.config.Height = uint32(height)
	r.surface.Configure(r.adapter, r.device, r.config)
	return r.createDepth()
}

func (r *Renderer) createDepth() error {
	if r.depthView != nil {
		r.depthView.Release()
		r.depthTexture.Release()
	}
	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              r.config.Width,
			Height:             r.config.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("gpu: depth texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("gpu: depth view: %w", err)
	}
	r.depthTexture = tex
	r.depthView = view
	return nil
}

// Group 0: vertex uniforms, group 1: pixel uniforms, both with dynamic
// offsets into the per-frame uniform ring. Group 2: material textures.
func (r *Renderer) createLayouts() error {
	var err error
	r.vertexLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "VertexUniformsBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   vertexUniformSize,
				},
			},
		},
	})
	if err != nil {
		return err
	}

	r.pixelLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "PixelUniformsBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   pixelUniformSize,
				},
			},
		},
	})
	if err != nil {
		return err
	}

	texEntry := func(binding uint32, dim wgpu.TextureViewDimension) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: dim,
			},
		}
	}
	r.textureLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "MaterialTexturesBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			texEntry(bindingDiffuse, wgpu.TextureViewDimension2D),
			texEntry(bindingNormal, wgpu.TextureViewDimension2D),
			texEntry(bindingSpecular, wgpu.TextureViewDimension2D),
			texEntry(bindingSky, wgpu.TextureViewDimensionCube),
			{
				Binding:    bindingSampler,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return err
	}

	r.pipelineLayout, err = r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: "StarterPipelineLayout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{
			r.vertexLayout,
			r.pixelLayout,
			r.textureLayout,
		},
	})
	return err
}

// Stand-ins bound when a material leaves a slot empty.
func (r *Renderer) createDefaults() error {
	solid := func(label string, rgba [4]byte) (*Texture, error) {
		tv, err := r.CreateTexture2D(label, rgba[:], 1, 1)
		if err != nil {
			return nil, err
		}
		return tv.(*Texture), nil
	}

	var err error
	if r.defaults[bindingDiffuse], err = solid("default white", [4]byte{255, 255, 255, 255}); err != nil {
		return err
	}
	if r.defaults[bindingNormal], err = solid("default flat normal", [4]byte{128, 128, 255, 255}); err != nil {
		return err
	}
	if r.defaults[bindingSpecular], err = solid("default specular", [4]byte{0, 0, 0, 255}); err != nil {
		return err
	}

	var faces [6][]byte
	for i := range faces {
		faces[i] = []byte{0, 0, 0, 255}
	}
	cube, err := r.CreateTextureCube("default cube", faces, 1)
	if err != nil {
		return err
	}
	r.defaults[bindingSky] = cube.(*Texture)

	smp, err := r.CreateSampler("default trilinear")
	if err != nil {
		return err
	}
	r.defaultSampler = smp.(*Sampler)

	// defaults live as long as the renderer and never leave the bind-group cache
	for _, t := range r.defaults {
		t.owner = nil
	}
	r.defaultSampler.owner = nil
	return nil
}

// LoadShader compiles (once per name) an embedded WGSL module and returns a
// fresh program for the given stage with its own uniform and resource state.
func (r *Renderer) LoadShader(name string, stage core.ShaderStage) (core.ShaderProgram, error) {
	module, ok := r.modules[name]
	if !ok {
		src, found := shaders.Source(name)
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrUnknownShader, name)
		}
		var err error
		module, err = r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          name,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: src},
		})
		if err != nil {
			return nil, fmt.Errorf("gpu: compile %q: %w", name, err)
		}
		r.modules[name] = module
	}
	return newShader(name, stage, module), nil
}

func (r *Renderer) pipeline(vs, ps *Shader, state core.RenderState) (*wgpu.RenderPipeline, error) {
	key := pipelineKey{vs: vs.name, ps: ps.name, state: state}
	if p, ok := r.pipelines[key]; ok {
		return p, nil
	}

	cull := wgpu.CullModeBack
	switch state.Cull {
	case core.CullFront:
		cull = wgpu.CullModeFront
	case core.CullNone:
		cull = wgpu.CullModeNone
	}
	compare := wgpu.CompareFunctionLess
	if state.Depth == core.DepthLessEqual {
		compare = wgpu.CompareFunctionLessEqual
	}
	target := wgpu.ColorTargetState{
		Format:    r.config.Format,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if state.Blend {
		target.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
			Alpha: wgpu.BlendComponent{
				Operation: wgpu.BlendOperationAdd,
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			},
		}
	}

	var v core.Vertex
	p, err := r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  vs.name + "+" + ps.name,
		Layout: r.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(core.VertexSize),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: uint64(unsafe.Offsetof(v.Position)), ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: uint64(unsafe.Offsetof(v.Normal)), ShaderLocation: 1},
						{Format: wgpu.VertexFormatFloat32x3, Offset: uint64(unsafe.Offsetof(v.Tangent)), ShaderLocation: 2},
						{Format: wgpu.VertexFormatFloat32x2, Offset: uint64(unsafe.Offsetof(v.UV)), ShaderLocation: 3},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     ps.module,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{target},
		},
		// clockwise front faces: geometry is left-handed
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCW,
			CullMode:  cull,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: !state.Blend,
			DepthCompare:      compare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: pipeline %s+%s: %w", vs.name, ps.name, err)
	}
	r.pipelines[key] = p
	return p, nil
}

func (r *Renderer) textureGroup(textures [textureBindings]*Texture, sampler *Sampler) (*wgpu.BindGroup, error) {
	for i, t := range textures {
		if t == nil {
			textures[i] = r.defaults[i]
		}
	}
	if sampler == nil {
		sampler = r.defaultSampler
	}
	key := textureKey{textures: textures, sampler: sampler}
	if bg, ok := r.textureGroups[key]; ok {
		return bg, nil
	}

	entries := make([]wgpu.BindGroupEntry, 0, textureBindings+1)
	for i, t := range textures {
		entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(i), TextureView: t.view})
	}
	entries = append(entries, wgpu.BindGroupEntry{Binding: bindingSampler, Sampler: sampler.sampler})

	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "MaterialTexturesBG",
		Layout:  r.textureLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	r.textureGroups[key] = bg
	return bg, nil
}

func (r *Renderer) forgetTexture(t *Texture) {
	for key, bg := range r.textureGroups {
		for _, bound := range key.textures {
			if bound == t {
				bg.Release()
				delete(r.textureGroups, key)
				break
			}
		}
	}
}

func (r *Renderer) forgetSampler(s *Sampler) {
	for key, bg := range r.textureGroups {
		if key.sampler == s {
			bg.Release()
			delete(r.textureGroups, key)
		}
	}
}

func (r *Renderer) Release() {
	for key, bg := range r.textureGroups {
		bg.Release()
		delete(r.textureGroups, key)
	}
	for key, p := range r.pipelines {
		p.Release()
		delete(r.pipelines, key)
	}
	for name, m := range r.modules {
		m.Release()
		delete(r.modules, name)
	}
	r.uniforms.release()
	for _, t := range r.defaults {
		if t != nil {
			t.Release()
		}
	}
	if r.defaultSampler != nil {
		r.defaultSampler.Release()
	}
	if r.depthView != nil {
		r.depthView.Release()
		r.depthTexture.Release()
	}
	r.pipelineLayout.Release()
	r.textureLayout.Release()
	r.pixelLayout.Release()
	r.vertexLayout.Release()
	r.queue.Release()
	r.device.Release()
	r.adapter.Release()
	r.surface.Release()
	r.instance.Release()
}
