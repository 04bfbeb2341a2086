package gpu

import (
	"encoding/binary"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/starter/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

type uniformField struct {
	offset int
	size   int
}

// struct VertexUniforms in vertex.wgsl / sky_vertex.wgsl
var vertexUniforms = map[string]uniformField{
	"world":      {0, 64},
	"view":       {64, 64},
	"projection": {128, 64},
}

const vertexUniformSize = 192

// struct PixelUniforms in lighting.wgsl
var pixelUniforms = map[string]uniformField{
	"dirlight":       {0, 48},
	"pointlight":     {48, 32},
	"cameraPosition": {80, 12},
}

const pixelUniformSize = 96

// Group 2 bindings shared by all pixel shaders.
const (
	bindingDiffuse = iota
	bindingNormal
	bindingSpecular
	bindingSky
	bindingSampler

	textureBindings = bindingSampler
)

var textureBindingNames = map[string]int{
	core.TextureDiffuse.String():     bindingDiffuse,
	core.TextureNormal.String():      bindingNormal,
	core.TextureSpecular.String():    bindingSpecular,
	core.TextureEnvironment.String(): bindingSky,
}

// Shader is one compiled WGSL module used as either the vertex or the pixel
// stage. Variable writes land in a CPU copy of the stage's uniform block and
// are uploaded when SetShader activates the shader on a Frame.
type Shader struct {
	name   string
	stage  core.ShaderStage
	module *wgpu.ShaderModule

	fields   map[string]uniformField
	uniforms []byte

	textures [textureBindings]*Texture
	sampler  *Sampler
}

func newShader(name string, stage core.ShaderStage, module *wgpu.ShaderModule) *Shader {
	s := &Shader{
		name:   name,
		stage:  stage,
		module: module,
	}
	if stage == core.StageVertex {
		s.fields = vertexUniforms
		s.uniforms = make([]byte, vertexUniformSize)
	} else {
		s.fields = pixelUniforms
		s.uniforms = make([]byte, pixelUniformSize)
	}
	return s
}

func (s *Shader) Name() string            { return s.name }
func (s *Shader) Stage() core.ShaderStage { return s.stage }

func (s *Shader) SetMatrix4x4(name string, m mgl32.Mat4) bool {
	f, ok := s.fields[name]
	if !ok || f.size != 64 {
		return false
	}
	for i, v := range m {
		binary.LittleEndian.PutUint32(s.uniforms[f.offset+i*4:], math.Float32bits(v))
	}
	return true
}

func (s *Shader) SetFloat3(name string, v mgl32.Vec3) bool {
	f, ok := s.fields[name]
	if !ok || f.size < 12 {
		return false
	}
	for i, c := range v {
		binary.LittleEndian.PutUint32(s.uniforms[f.offset+i*4:], math.Float32bits(c))
	}
	return true
}

// SetData copies raw bytes into a uniform field. data may be shorter than
// the field but never longer.
func (s *Shader) SetData(name string, data []byte) bool {
	f, ok := s.fields[name]
	if !ok || len(data) > f.size {
		return false
	}
	copy(s.uniforms[f.offset:], data)
	return true
}

func (s *Shader) SetShaderResourceView(name string, view core.TextureView) bool {
	if s.stage != core.StagePixel {
		return false
	}
	binding, ok := textureBindingNames[name]
	if !ok {
		return false
	}
	if view == nil {
		// the frame substitutes the renderer default
		s.textures[binding] = nil
		return true
	}
	tex, ok := view.(*Texture)
	if !ok || tex.cube != (binding == bindingSky) {
		return false
	}
	s.textures[binding] = tex
	return true
}

func (s *Shader) SetSamplerState(name string, sampler core.SamplerState) bool {
	if s.stage != core.StagePixel || name != core.SamplerName {
		return false
	}
	if sampler == nil {
		s.sampler = nil
		return true
	}
	smp, ok := sampler.(*Sampler)
	if !ok {
		return false
	}
	s.sampler = smp
	return true
}

// SetShader makes s the active program for its stage on ctx and snapshots
// its current uniforms and resources for the next draw.
func (s *Shader) SetShader(ctx core.Context) {
	if f, ok := ctx.(*Frame); ok {
		f.bindShader(s)
	}
}
