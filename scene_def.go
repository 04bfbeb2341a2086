package starter

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/gekko3d/starter/rt/core"
	"github.com/gekko3d/starter/rt/importer"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// SceneDef is the YAML scene description. Assets are declared by name and
// referenced by name from materials and entities. Relative paths resolve
// against the scene file's directory.
type SceneDef struct {
	Meshes    map[string]MeshDef     `yaml:"meshes"`
	Textures  map[string]TextureDef  `yaml:"textures"`
	Materials map[string]MaterialDef `yaml:"materials"`
	Entities  []EntityDef            `yaml:"entities"`
	Sky       *SkyDef                `yaml:"sky"`
	Camera    *CameraDef             `yaml:"camera"`
	Lights    LightsDef              `yaml:"lights"`
}

// MeshDef loads Path, or builds a primitive when Builtin is "cube".
type MeshDef struct {
	Path    string  `yaml:"path"`
	Builtin string  `yaml:"builtin"`
	Size    float32 `yaml:"size"`
}

// TextureDef is a 2D image (Path), a cube map from files (Faces, +X -X +Y
// -Y +Z -Z), a generated gradient cube map or a 1x1 solid RGBA color.
type TextureDef struct {
	Path     string       `yaml:"path"`
	Faces    [6]string    `yaml:"faces"`
	Gradient *GradientDef `yaml:"gradient"`
	Color    *[4]uint8    `yaml:"color"`
}

// GradientDef is a sky cube map blending Bottom, Horizon and Top by the
// height of the view direction.
type GradientDef struct {
	Top     [4]uint8 `yaml:"top"`
	Horizon [4]uint8 `yaml:"horizon"`
	Bottom  [4]uint8 `yaml:"bottom"`
	Size    int      `yaml:"size"`
}

// Faces renders the six cube faces, Size pixels square (default 32).
func (g GradientDef) Faces() [6]image.Image {
	size := g.Size
	if size <= 0 {
		size = 32
	}
	// face direction from texel coordinates u, v in [-1, 1], v down
	dirs := [6]func(u, v float32) mgl32.Vec3{
		func(u, v float32) mgl32.Vec3 { return mgl32.Vec3{1, -v, -u} },
		func(u, v float32) mgl32.Vec3 { return mgl32.Vec3{-1, -v, u} },
		func(u, v float32) mgl32.Vec3 { return mgl32.Vec3{u, 1, v} },
		func(u, v float32) mgl32.Vec3 { return mgl32.Vec3{u, -1, -v} },
		func(u, v float32) mgl32.Vec3 { return mgl32.Vec3{u, -v, 1} },
		func(u, v float32) mgl32.Vec3 { return mgl32.Vec3{-u, -v, -1} },
	}

	var faces [6]image.Image
	for f, dir := range dirs {
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				u := (float32(x)+0.5)/float32(size)*2 - 1
				v := (float32(y)+0.5)/float32(size)*2 - 1
				c := g.at(dir(u, v).Normalize().Y())
				copy(img.Pix[img.PixOffset(x, y):], c[:])
			}
		}
		faces[f] = img
	}
	return faces
}

// at blends for a height h in [-1, 1].
func (g GradientDef) at(h float32) [4]uint8 {
	from, to, t := g.Horizon, g.Top, h
	if h < 0 {
		from, to, t = g.Horizon, g.Bottom, -h
	}
	var c [4]uint8
	for i := range c {
		c[i] = uint8(float32(from[i]) + (float32(to[i])-float32(from[i]))*t + 0.5)
	}
	return c
}

type MaterialDef struct {
	Vertex   string            `yaml:"vertex"`
	Pixel    string            `yaml:"pixel"`
	Textures map[string]string `yaml:"textures"`
	Blend    bool              `yaml:"blend"`
	Sky      bool              `yaml:"sky"`
}

type EntityDef struct {
	Name     string      `yaml:"name"`
	Mesh     string      `yaml:"mesh"`
	Material string      `yaml:"material"`
	Pixel    string      `yaml:"pixel"`
	Position mgl32.Vec3  `yaml:"position"`
	Rotation mgl32.Vec3  `yaml:"rotation"`
	Scale    *mgl32.Vec3 `yaml:"scale"`
	Spin     mgl32.Vec3  `yaml:"spin"`
	Blended  bool        `yaml:"blended"`
}

type SkyDef struct {
	Mesh     string `yaml:"mesh"`
	Material string `yaml:"material"`
}

type CameraDef struct {
	Position  mgl32.Vec3 `yaml:"position"`
	Direction mgl32.Vec3 `yaml:"direction"`
}

type LightsDef struct {
	Directional *DirectionalLightDef `yaml:"directional"`
	Point       *PointLightDef       `yaml:"point"`
}

type DirectionalLightDef struct {
	Ambient   mgl32.Vec4 `yaml:"ambient"`
	Diffuse   mgl32.Vec4 `yaml:"diffuse"`
	Direction mgl32.Vec3 `yaml:"direction"`
}

type PointLightDef struct {
	Color        mgl32.Vec4 `yaml:"color"`
	Position     mgl32.Vec3 `yaml:"position"`
	FollowCamera bool       `yaml:"followCamera"`
}

var textureSlotByName = map[string]core.TextureSlot{
	"diffuse":  core.TextureDiffuse,
	"normal":   core.TextureNormal,
	"specular": core.TextureSpecular,
	"sky":      core.TextureEnvironment,
}

func LoadSceneDef(path string) (*SceneDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("starter: read scene: %w", err)
	}
	def, err := ParseSceneDef(data)
	if err != nil {
		return nil, fmt.Errorf("starter: scene %s: %w", path, err)
	}
	return def, nil
}

func ParseSceneDef(data []byte) (*SceneDef, error) {
	var def SceneDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadScene creates the assets named by def through assets and builds the
// scene. Names are resolved in sorted order so asset creation is
// deterministic.
func LoadScene(assets *AssetServer, def *SceneDef, baseDir string, logger Logger) (*Scene, error) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	meshes := make(map[string]AssetId)
	for _, name := range sortedKeys(def.Meshes) {
		m := def.Meshes[name]
		var (
			id  AssetId
			err error
		)
		switch {
		case m.Builtin == "cube":
			size := m.Size
			if size == 0 {
				size = 1
			}
			cube := importer.Cube(size)
			id, err = assets.CreateMesh(name, cube.Vertices, cube.Indices)
		case m.Builtin != "":
			err = fmt.Errorf("unknown builtin %q", m.Builtin)
		default:
			id, err = assets.LoadMesh(resolve(m.Path))
		}
		if err != nil {
			return nil, fmt.Errorf("starter: mesh %q: %w", name, err)
		}
		meshes[name] = id
	}

	textures := make(map[string]AssetId)
	for _, name := range sortedKeys(def.Textures) {
		t := def.Textures[name]
		var (
			id  AssetId
			err error
		)
		switch {
		case t.Color != nil:
			img := image.NewRGBA(image.Rect(0, 0, 1, 1))
			copy(img.Pix, t.Color[:])
			id, err = assets.CreateTexture(name, img)
		case t.Gradient != nil:
			id, err = assets.CreateCubeTexture(name, t.Gradient.Faces())
		case t.Faces[0] != "":
			var faces [6]string
			for i, f := range t.Faces {
				faces[i] = resolve(f)
			}
			id, err = assets.LoadCubeTexture(name, faces)
		default:
			id, err = assets.LoadTexture(resolve(t.Path))
		}
		if err != nil {
			return nil, fmt.Errorf("starter: texture %q: %w", name, err)
		}
		textures[name] = id
	}

	materials := make(map[string]AssetId)
	for _, name := range sortedKeys(def.Materials) {
		m := def.Materials[name]
		desc := MaterialDesc{
			Label:        name,
			VertexShader: m.Vertex,
			PixelShader:  m.Pixel,
			Textures:     make(map[core.TextureSlot]AssetId),
		}
		if desc.VertexShader == "" {
			desc.VertexShader = "vertex"
		}
		if desc.PixelShader == "" {
			desc.PixelShader = "pixel"
		}
		if m.Blend {
			desc.State.Blend = true
		}
		if m.Sky {
			desc.State.Cull = core.CullFront
			desc.State.Depth = core.DepthLessEqual
		}
		for slotName, texName := range m.Textures {
			slot, ok := textureSlotByName[slotName]
			if !ok {
				return nil, fmt.Errorf("starter: material %q: unknown texture slot %q", name, slotName)
			}
			id, ok := textures[texName]
			if !ok {
				return nil, fmt.Errorf("starter: material %q: %w: texture %q", name, ErrUnknownAsset, texName)
			}
			desc.Textures[slot] = id
		}
		id, err := assets.CreateMaterial(desc)
		if err != nil {
			return nil, fmt.Errorf("starter: material %q: %w", name, err)
		}
		materials[name] = id
	}

	lookup := func(kind, name string, ids map[string]AssetId) (AssetId, error) {
		id, ok := ids[name]
		if !ok {
			return "", fmt.Errorf("%w: %s %q", ErrUnknownAsset, kind, name)
		}
		return id, nil
	}
	entity := func(label, meshName, matName string) (*core.Entity, error) {
		meshId, err := lookup("mesh", meshName, meshes)
		if err != nil {
			return nil, err
		}
		matId, err := lookup("material", matName, materials)
		if err != nil {
			return nil, err
		}
		mesh, err := assets.Mesh(meshId)
		if err != nil {
			return nil, err
		}
		mat, err := assets.Material(matId)
		if err != nil {
			return nil, err
		}
		return core.NewEntity(label, mesh, mat), nil
	}

	scene := NewScene(logger)
	if def.Sky != nil {
		sky, err := entity("sky", def.Sky.Mesh, def.Sky.Material)
		if err != nil {
			return nil, fmt.Errorf("starter: sky: %w", err)
		}
		scene.Sky = sky
	}
	for i, ed := range def.Entities {
		e, err := entity(ed.Name, ed.Mesh, ed.Material)
		if err != nil {
			return nil, fmt.Errorf("starter: entity %d %q: %w", i, ed.Name, err)
		}
		se := &SceneEntity{Entity: e}
		if ed.Pixel != "" {
			ps, err := assets.Shader(ed.Pixel, core.StagePixel)
			if err != nil {
				return nil, fmt.Errorf("starter: entity %q: %w", ed.Name, err)
			}
			se.PixelShader = ps
		}
		scene.Add(se)
	}

	scene.Apply(def)
	return scene, nil
}

// Apply copies placements, camera and lights from def onto the scene.
// Entities are matched by position when the names agree, otherwise by
// name. GPU resources are not touched, so Apply can reload an edited scene
// file in place.
func (s *Scene) Apply(def *SceneDef) {
	for i, ed := range def.Entities {
		var e *SceneEntity
		if i < len(s.Entities) && s.Entities[i].Name == ed.Name {
			e = s.Entities[i]
		} else {
			e = s.Entity(ed.Name)
		}
		if e == nil {
			s.logger.Debugf("scene: no entity %q to update", ed.Name)
			continue
		}
		e.Transform.SetPosition(ed.Position)
		e.Transform.SetRotation(ed.Rotation)
		scale := mgl32.Vec3{1, 1, 1}
		if ed.Scale != nil {
			scale = *ed.Scale
		}
		e.Transform.SetScale(scale)
		e.Spin = ed.Spin
		e.Blended = ed.Blended
	}

	if def.Camera != nil {
		s.Camera.SetPosition(def.Camera.Position)
		s.Camera.SetOrientation(def.Camera.Direction, mgl32.Vec3{0, 1, 0})
	}
	if l := def.Lights.Directional; l != nil {
		s.DirLight.AmbientColor = l.Ambient
		s.DirLight.DiffuseColor = l.Diffuse
		s.DirLight.Direction = l.Direction
	}
	if l := def.Lights.Point; l != nil {
		s.PointLight.Color = l.Color
		s.PointLight.Position = l.Position
		s.PointLightFollowsCamera = l.FollowCamera
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
