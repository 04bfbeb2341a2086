package starter

import (
	"errors"

	"github.com/gekko3d/starter/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneEntity is a drawable entity plus the per-entity demo state.
type SceneEntity struct {
	*core.Entity

	// Spin is added to the rotation every second, in radians per axis.
	Spin mgl32.Vec3
	// Blended entities draw after all opaque ones.
	Blended bool
	// PixelShader, when set, replaces the material's pixel shader for this
	// entity's draw only.
	PixelShader core.ShaderProgram
}

// Scene holds the camera, the lights, an optional sky box and the entities.
// Meshes and materials belong to the AssetServer.
type Scene struct {
	Camera     *core.Camera
	DirLight   core.DirectionalLight
	PointLight core.PointLight
	// PointLightFollowsCamera moves the point light to the camera every frame.
	PointLightFollowsCamera bool

	Sky      *core.Entity
	Entities []*SceneEntity

	logger Logger
	warned map[*core.Entity]bool
}

func NewScene(logger Logger) *Scene {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Scene{
		Camera: core.NewCamera(),
		DirLight: core.DirectionalLight{
			AmbientColor: mgl32.Vec4{0.1, 0.1, 0.1, 1},
			DiffuseColor: mgl32.Vec4{1, 1, 1, 1},
			Direction:    mgl32.Vec3{1, -1, 0},
		},
		PointLight: core.PointLight{
			Color: mgl32.Vec4{1, 1, 1, 1},
		},
		PointLightFollowsCamera: true,
		logger:                  logger,
		warned:                  make(map[*core.Entity]bool),
	}
}

func (s *Scene) Add(e *SceneEntity) *SceneEntity {
	s.Entities = append(s.Entities, e)
	return e
}

// Entity returns the first entity with the given name, or nil.
func (s *Scene) Entity(name string) *SceneEntity {
	for _, e := range s.Entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Update advances entity spin by the frame time.
func (s *Scene) Update(t *Time) {
	dt := t.Seconds()
	if dt <= 0 {
		return
	}
	for _, e := range s.Entities {
		if e.Spin == (mgl32.Vec3{}) {
			continue
		}
		e.Transform.SetRotation(e.Transform.Rotation().Add(e.Spin.Mul(dt)))
	}
}

// Draw refreshes the camera matrices, uploads the lights to every pixel
// shader in use and draws the sky box, then opaque entities, then blended
// entities. Entities that cannot be drawn are skipped with a warning.
func (s *Scene) Draw(ctx core.Context) error {
	s.Camera.UpdateViewProjection()
	if s.PointLightFollowsCamera {
		s.PointLight.Position = s.Camera.Position()
	}
	s.uploadLights()

	view, projection := s.Camera.ViewMatrix(), s.Camera.ProjectionMatrix()

	if s.Sky != nil {
		if err := s.draw(ctx, s.Sky, nil, view, projection); err != nil {
			return err
		}
	}
	for _, blended := range []bool{false, true} {
		for _, e := range s.Entities {
			if e.Blended != blended {
				continue
			}
			if err := s.draw(ctx, e.Entity, e.PixelShader, view, projection); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Scene) draw(ctx core.Context, e *core.Entity, override core.ShaderProgram, view, projection mgl32.Mat4) error {
	if mat := e.Material(); mat != nil && override != nil {
		prev := mat.PixelShader()
		mat.SetPixelShader(override)
		defer mat.SetPixelShader(prev)
	}

	err := e.Draw(ctx, view, projection)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, core.ErrNoMesh), errors.Is(err, core.ErrNoMaterial),
		errors.Is(err, core.ErrNoShader), errors.Is(err, core.ErrMeshNotBuilt):
		if !s.warned[e] {
			s.warned[e] = true
			s.logger.Warnf("scene: skipping %q: %v", e.Name, err)
		}
		return nil
	}
	return err
}

// uploadLights writes the lights and camera position to each distinct pixel
// shader the next draw can use.
func (s *Scene) uploadLights() {
	dir := s.DirLight.Bytes()
	point := s.PointLight.Bytes()
	eye := s.Camera.Position()

	for _, ps := range s.pixelShaders() {
		ps.SetData("dirlight", dir)
		ps.SetData("pointlight", point)
		ps.SetFloat3("cameraPosition", eye)
	}
}

func (s *Scene) pixelShaders() []core.ShaderProgram {
	var out []core.ShaderProgram
	seen := make(map[core.ShaderProgram]bool)
	add := func(ps core.ShaderProgram) {
		if ps == nil || seen[ps] {
			return
		}
		seen[ps] = true
		out = append(out, ps)
	}
	if s.Sky != nil && s.Sky.Material() != nil {
		add(s.Sky.Material().PixelShader())
	}
	for _, e := range s.Entities {
		if e.PixelShader != nil {
			add(e.PixelShader)
		} else if e.Material() != nil {
			add(e.Material().PixelShader())
		}
	}
	return out
}
