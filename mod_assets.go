package starter

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/gekko3d/starter/rt/core"
	"github.com/gekko3d/starter/rt/importer"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

var ErrUnknownAsset = errors.New("starter: unknown asset")

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// AssetServer owns every mesh, material and texture loaded for the scene.
// Textures are reference counted: the server keeps one reference and each
// material that binds a texture holds another, so a texture is released
// when the server and all materials using it have let go.
type AssetServer struct {
	device GraphicsDevice

	meshes    map[AssetId]*core.Mesh
	materials map[AssetId]*core.Material
	textures  map[AssetId]*core.Handle[core.TextureView]
	shaders   map[shaderKey]core.ShaderProgram
	sampler   *core.Handle[core.SamplerState]

	// files maps a cleaned source path to the asset loaded from it.
	files map[string]AssetId
}

type shaderKey struct {
	name  string
	stage core.ShaderStage
}

// MaterialDesc names the shaders and textures of a material. Texture
// slots left empty stay unbound.
type MaterialDesc struct {
	Label        string
	VertexShader string
	PixelShader  string
	Textures     map[core.TextureSlot]AssetId
	State        core.RenderState
}

func NewAssetServer(device GraphicsDevice) *AssetServer {
	return &AssetServer{
		device:    device,
		meshes:    make(map[AssetId]*core.Mesh),
		materials: make(map[AssetId]*core.Material),
		textures:  make(map[AssetId]*core.Handle[core.TextureView]),
		shaders:   make(map[shaderKey]core.ShaderProgram),
		files:     make(map[string]AssetId),
	}
}

// AssetServerModule builds the asset server on the installed renderer.
type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	renderer, ok := findResource[Renderer](app)
	if !ok {
		cmd.Fail("assets", ErrNoRenderer)
		return
	}
	cmd.AddResources(NewAssetServer(renderer))
}

func (server *AssetServer) Device() GraphicsDevice { return server.device }

func (server *AssetServer) Mesh(id AssetId) (*core.Mesh, error) {
	m, ok := server.meshes[id]
	if !ok {
		return nil, fmt.Errorf("%w: mesh %s", ErrUnknownAsset, id)
	}
	return m, nil
}

func (server *AssetServer) Material(id AssetId) (*core.Material, error) {
	m, ok := server.materials[id]
	if !ok {
		return nil, fmt.Errorf("%w: material %s", ErrUnknownAsset, id)
	}
	return m, nil
}

func (server *AssetServer) Texture(id AssetId) (*core.Handle[core.TextureView], error) {
	t, ok := server.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: texture %s", ErrUnknownAsset, id)
	}
	return t, nil
}

// CreateMesh uploads geometry as a new mesh asset.
func (server *AssetServer) CreateMesh(label string, vertices []core.Vertex, indices []uint32) (AssetId, error) {
	mesh, err := core.NewMesh(server.device, label, vertices, indices)
	if err != nil {
		return "", err
	}
	id := makeAssetId()
	server.meshes[id] = mesh
	return id, nil
}

// LoadMesh imports an OBJ or glTF file. Loading the same path twice returns
// the first asset.
func (server *AssetServer) LoadMesh(path string) (AssetId, error) {
	key := "mesh:" + filepath.Clean(path)
	if id, ok := server.files[key]; ok {
		return id, nil
	}
	data, err := importer.Load(path)
	if err != nil {
		return "", err
	}
	id, err := server.CreateMesh(data.Name, data.Vertices, data.Indices)
	if err != nil {
		return "", err
	}
	server.files[key] = id
	return id, nil
}

// CreateTexture uploads img as a mipmapped RGBA texture.
func (server *AssetServer) CreateTexture(label string, img image.Image) (AssetId, error) {
	rgba := toRGBA(img)
	b := rgba.Bounds()
	view, err := server.device.CreateTexture2D(label, rgba.Pix, uint32(b.Dx()), uint32(b.Dy()))
	if err != nil {
		return "", fmt.Errorf("starter: texture %s: %w", label, err)
	}
	id := makeAssetId()
	server.textures[id] = core.NewHandle(view)
	return id, nil
}

// LoadTexture decodes a BMP or PNG file. Loading the same path twice
// returns the first asset.
func (server *AssetServer) LoadTexture(path string) (AssetId, error) {
	key := "texture:" + filepath.Clean(path)
	if id, ok := server.files[key]; ok {
		return id, nil
	}
	img, err := decodeImage(path)
	if err != nil {
		return "", err
	}
	id, err := server.CreateTexture(filepath.Base(path), img)
	if err != nil {
		return "", err
	}
	server.files[key] = id
	return id, nil
}

// LoadCubeTexture builds a cube map from six square image files of equal
// size, ordered +X, -X, +Y, -Y, +Z, -Z.
func (server *AssetServer) LoadCubeTexture(label string, paths [6]string) (AssetId, error) {
	var faces [6]image.Image
	for i, path := range paths {
		img, err := decodeImage(path)
		if err != nil {
			return "", err
		}
		faces[i] = img
	}
	return server.createCube(label, faces, paths)
}

// CreateCubeTexture builds a cube map from six square images of equal size,
// ordered +X, -X, +Y, -Y, +Z, -Z.
func (server *AssetServer) CreateCubeTexture(label string, faces [6]image.Image) (AssetId, error) {
	var names [6]string
	for i := range names {
		names[i] = fmt.Sprintf("%s[%d]", label, i)
	}
	return server.createCube(label, faces, names)
}

func (server *AssetServer) createCube(label string, images [6]image.Image, names [6]string) (AssetId, error) {
	var faces [6][]byte
	size := 0
	for i, img := range images {
		if img == nil {
			return "", fmt.Errorf("starter: cube face %s missing", names[i])
		}
		rgba := toRGBA(img)
		b := rgba.Bounds()
		if b.Dx() != b.Dy() {
			return "", fmt.Errorf("starter: cube face %s is %dx%d, want square", names[i], b.Dx(), b.Dy())
		}
		if i == 0 {
			size = b.Dx()
		} else if b.Dx() != size {
			return "", fmt.Errorf("starter: cube face %s is %d wide, want %d", names[i], b.Dx(), size)
		}
		faces[i] = rgba.Pix
	}

	view, err := server.device.CreateTextureCube(label, faces, uint32(size))
	if err != nil {
		return "", fmt.Errorf("starter: cube texture %s: %w", label, err)
	}
	id := makeAssetId()
	server.textures[id] = core.NewHandle(view)
	return id, nil
}

// Shader returns the named shader stage, loading it on first use. Shaders
// are shared between materials.
func (server *AssetServer) Shader(name string, stage core.ShaderStage) (core.ShaderProgram, error) {
	key := shaderKey{name, stage}
	if s, ok := server.shaders[key]; ok {
		return s, nil
	}
	s, err := server.device.LoadShader(name, stage)
	if err != nil {
		return nil, fmt.Errorf("starter: %s shader %q: %w", stage, name, err)
	}
	server.shaders[key] = s
	return s, nil
}

func (server *AssetServer) trilinearSampler() (*core.Handle[core.SamplerState], error) {
	if server.sampler == nil {
		s, err := server.device.CreateSampler(core.SamplerName)
		if err != nil {
			return nil, fmt.Errorf("starter: sampler: %w", err)
		}
		server.sampler = core.NewHandle(s)
	}
	return server.sampler, nil
}

// CreateMaterial resolves the shaders and textures of desc. Every bound
// texture and the shared sampler gain one reference owned by the material.
func (server *AssetServer) CreateMaterial(desc MaterialDesc) (AssetId, error) {
	vs, err := server.Shader(desc.VertexShader, core.StageVertex)
	if err != nil {
		return "", err
	}
	ps, err := server.Shader(desc.PixelShader, core.StagePixel)
	if err != nil {
		return "", err
	}

	for slot, texId := range desc.Textures {
		if _, err := server.Texture(texId); err != nil {
			return "", fmt.Errorf("starter: material %s %s: %w", desc.Label, slot, err)
		}
	}

	mat := core.NewMaterial(vs, ps)
	mat.SetRenderState(desc.State)
	for slot, texId := range desc.Textures {
		mat.SetTexture(slot, server.textures[texId].Retain())
	}
	if len(desc.Textures) > 0 {
		sampler, err := server.trilinearSampler()
		if err != nil {
			mat.Release()
			return "", err
		}
		mat.SetSampler(sampler.Retain())
	}

	id := makeAssetId()
	server.materials[id] = mat
	return id, nil
}

// Release frees every asset. Materials go first so that texture handles
// reach zero through the server's own reference.
func (server *AssetServer) Release() {
	for id, m := range server.materials {
		m.Release()
		delete(server.materials, id)
	}
	for id, m := range server.meshes {
		m.Release()
		delete(server.meshes, id)
	}
	for id, t := range server.textures {
		t.Release()
		delete(server.textures, id)
	}
	server.sampler.Release()
	server.sampler = nil
	server.files = make(map[string]AssetId)
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("starter: open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("starter: decode image %s: %w", path, err)
	}
	return img, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) && rgba.Stride == 4*rgba.Bounds().Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
