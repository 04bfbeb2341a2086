package starter

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gekko3d/starter/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Demo is the sample Game: a scene loaded from ScenePath (or the built-in
// one) viewed through a FlyingCamera. Escape quits.
type Demo struct {
	ScenePath string

	app    *App
	scene  *Scene
	camera *FlyingCamera
}

func (d *Demo) Scene() *Scene                { return d.scene }
func (d *Demo) FlyingCamera() *FlyingCamera { return d.camera }

func (d *Demo) Init(app *App) error {
	d.app = app
	assets := Resource[AssetServer](app)
	if assets == nil {
		return errors.New("demo: no asset server; install AssetServerModule")
	}
	cfg := Resource[Config](app)
	if cfg == nil {
		c := DefaultConfig()
		cfg = &c
	}

	def, dir := DefaultSceneDef(), ""
	if d.ScenePath != "" {
		var err error
		if def, err = LoadSceneDef(d.ScenePath); err != nil {
			return err
		}
		dir = filepath.Dir(d.ScenePath)
	}

	scene, err := LoadScene(assets, def, dir, app.Logger())
	if err != nil {
		return err
	}
	scene.Camera.SetFieldOfView(cfg.Camera.FieldOfView)
	scene.Camera.SetNearClip(cfg.Camera.NearClip)
	scene.Camera.SetFarClip(cfg.Camera.FarClip)

	d.scene = scene
	d.camera = NewFlyingCamera(scene.Camera, cfg.Camera.Speed, cfg.Camera.Sensitivity)
	app.Logger().Infof("demo: %d entities, sky %t", len(scene.Entities), scene.Sky != nil)
	return nil
}

func (d *Demo) OnResize(width, height int) {
	if height <= 0 {
		return
	}
	d.scene.Camera.SetAspectRatio(float32(width) / float32(height))
}

func (d *Demo) Update(t *Time, input *Input) {
	if input.JustPressed[KeyEscape] {
		d.app.Quit()
		return
	}
	d.camera.Update(t, input)
	d.scene.Update(t)
}

func (d *Demo) Draw(ctx core.Context, t *Time) error {
	return d.scene.Draw(ctx)
}

func (d *Demo) OnMouseDown(button int, x, y float64) { d.camera.OnMouseDown(button, x, y) }
func (d *Demo) OnMouseUp(button int, x, y float64)   { d.camera.OnMouseUp(button, x, y) }
func (d *Demo) OnMouseMove(x, y float64)             { d.camera.OnMouseMove(x, y) }

// Reload re-reads the scene file and applies placements, camera and
// lights. Changes to other files are ignored.
func (d *Demo) Reload(path string) error {
	if d.ScenePath == "" {
		return nil
	}
	want, err := filepath.Abs(d.ScenePath)
	if err != nil {
		return err
	}
	if got, err := filepath.Abs(path); err != nil || got != want {
		return nil
	}

	def, err := LoadSceneDef(d.ScenePath)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	d.scene.Apply(def)
	return nil
}

// DefaultSceneDef is three spinning cubes in front of the camera, one per
// lit pixel shader, a translucent cube drawn last and a gradient sky box
// that the right cube reflects.
func DefaultSceneDef() *SceneDef {
	half := mgl32.Vec3{0.5, 0.5, 0.5}
	return &SceneDef{
		Meshes: map[string]MeshDef{
			"cube": {Builtin: "cube", Size: 2},
		},
		Textures: map[string]TextureDef{
			"tint": {Color: &[4]uint8{140, 200, 255, 110}},
			"sky": {Gradient: &GradientDef{
				Top:     [4]uint8{40, 90, 200, 255},
				Horizon: [4]uint8{200, 220, 240, 255},
				Bottom:  [4]uint8{60, 55, 50, 255},
			}},
		},
		Materials: map[string]MaterialDef{
			"lit":    {Vertex: "vertex", Pixel: "pixel"},
			"glass":  {Vertex: "vertex", Pixel: "pixel", Textures: map[string]string{"diffuse": "tint"}, Blend: true},
			"mirror": {Vertex: "vertex", Pixel: "pixel_reflect", Textures: map[string]string{"sky": "sky"}},
			"skybox": {Vertex: "sky_vertex", Pixel: "sky_pixel", Textures: map[string]string{"sky": "sky"}, Sky: true},
		},
		Entities: []EntityDef{
			{Name: "left", Mesh: "cube", Material: "lit", Position: mgl32.Vec3{-3, 0, 0}, Spin: mgl32.Vec3{0, 0.5, 0}},
			{Name: "center", Mesh: "cube", Material: "lit", Pixel: "pixel_spec", Spin: mgl32.Vec3{0.3, 0.5, 0}},
			{Name: "right", Mesh: "cube", Material: "mirror", Position: mgl32.Vec3{3, 0, 0}, Spin: mgl32.Vec3{0, -0.5, 0.2}},
			{Name: "glass", Mesh: "cube", Material: "glass", Position: mgl32.Vec3{0, 2.5, 0}, Scale: &half, Blended: true},
		},
		Sky: &SkyDef{Mesh: "cube", Material: "skybox"},
		Camera: &CameraDef{
			Position:  mgl32.Vec3{0, 0, -10},
			Direction: mgl32.Vec3{0, 0, 1},
		},
		Lights: LightsDef{
			Directional: &DirectionalLightDef{
				Ambient:   mgl32.Vec4{0.1, 0.1, 0.1, 1},
				Diffuse:   mgl32.Vec4{0.9, 0.9, 0.8, 1},
				Direction: mgl32.Vec3{1, -1, 1},
			},
			Point: &PointLightDef{
				Color:        mgl32.Vec4{0.4, 0.4, 0.6, 1},
				FollowCamera: true,
			},
		},
	}
}
