package core

type TextureSlot int

const (
	TextureDiffuse TextureSlot = iota
	TextureNormal
	TextureSpecular
	TextureEnvironment

	TextureSlotCount
)

// Shader variable names for each slot and for the shared sampler.
var textureSlotNames = [TextureSlotCount]string{
	TextureDiffuse:     "diffuseTexture",
	TextureNormal:      "normalMap",
	TextureSpecular:    "specularMap",
	TextureEnvironment: "skyTexture",
}

const SamplerName = "trilinear"

func (s TextureSlot) String() string {
	if s < 0 || s >= TextureSlotCount {
		return "unknown"
	}
	return textureSlotNames[s]
}

// Material pairs a vertex and pixel shader with the textures, sampler and
// render state applied when drawing. Texture and sampler handles are owned
// by the material; a nil slot means the feature is disabled.
type Material struct {
	vertexShader ShaderProgram
	pixelShader  ShaderProgram

	textures [TextureSlotCount]*Handle[TextureView]
	sampler  *Handle[SamplerState]
	state    RenderState
}

func NewMaterial(vs, ps ShaderProgram) *Material {
	return &Material{
		vertexShader: vs,
		pixelShader:  ps,
	}
}

func (m *Material) VertexShader() ShaderProgram      { return m.vertexShader }
func (m *Material) PixelShader() ShaderProgram       { return m.pixelShader }
func (m *Material) SetVertexShader(vs ShaderProgram) { m.vertexShader = vs }
func (m *Material) SetPixelShader(ps ShaderProgram)  { m.pixelShader = ps }

func (m *Material) RenderState() RenderState         { return m.state }
func (m *Material) SetRenderState(state RenderState) { m.state = state }

// SetTexture takes ownership of one reference of h. A previously bound
// texture in the slot is released. Pass a Retain()ed handle to share a
// texture between materials.
func (m *Material) SetTexture(slot TextureSlot, h *Handle[TextureView]) {
	if m.textures[slot] == h {
		return
	}
	m.textures[slot].Release()
	m.textures[slot] = h
}

func (m *Material) Texture(slot TextureSlot) *Handle[TextureView] {
	return m.textures[slot]
}

func (m *Material) SetSampler(h *Handle[SamplerState]) {
	if m.sampler == h {
		return
	}
	m.sampler.Release()
	m.sampler = h
}

func (m *Material) Sampler() *Handle[SamplerState] {
	return m.sampler
}

// BindResources pushes every texture slot and the sampler to the pixel
// shader. Empty slots are bound as nil, which clears whatever an earlier
// material left on a shared shader.
func (m *Material) BindResources() {
	if m.pixelShader == nil {
		return
	}
	for slot, h := range m.textures {
		var view TextureView
		if h != nil {
			view = h.Get()
		}
		m.pixelShader.SetShaderResourceView(textureSlotNames[slot], view)
	}
	var sampler SamplerState
	if m.sampler != nil {
		sampler = m.sampler.Get()
	}
	m.pixelShader.SetSamplerState(SamplerName, sampler)
}

// Release drops the material's texture and sampler references. Calling it
// more than once is harmless. Shaders are not owned and stay untouched.
func (m *Material) Release() {
	for slot := range m.textures {
		m.textures[slot].Release()
		m.textures[slot] = nil
	}
	m.sampler.Release()
	m.sampler = nil
}
