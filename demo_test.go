package starter

import (
	"testing"
	"time"

	"github.com/gekko3d/starter/rt/core/coretest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDemoApp(t *testing.T, demo *Demo, platform *fakePlatform) (*App, *coretest.Recorder) {
	t.Helper()
	app, rec := newTestApp(demo, platform)
	app.addResources(NewAssetServer(rec))
	return app, rec
}

func TestDemoInitDefaultScene(t *testing.T) {
	demo := &Demo{}
	app, _ := newDemoApp(t, demo, &fakePlatform{width: 300, height: 100})
	require.NoError(t, app.Step())

	require.NotNil(t, demo.Scene())
	require.NotNil(t, demo.FlyingCamera())
	assert.Len(t, demo.Scene().Entities, 4)
	assert.InDelta(t, 3.0, demo.Scene().Camera.AspectRatio(), 1e-6)

	cfg := DefaultConfig()
	assert.Equal(t, cfg.Camera.FieldOfView, demo.Scene().Camera.FieldOfView())
	assert.Equal(t, cfg.Camera.Speed, demo.FlyingCamera().Speed)
}

func TestDemoInitNeedsAssets(t *testing.T) {
	app, _ := newTestApp(&Demo{}, &fakePlatform{width: 8, height: 8})
	assert.ErrorContains(t, app.Run(), "no asset server")
}

func TestDemoInitUsesConfig(t *testing.T) {
	demo := &Demo{}
	app, _ := newDemoApp(t, demo, &fakePlatform{width: 8, height: 8})
	cfg := DefaultConfig()
	cfg.Camera.Speed = 12
	cfg.Camera.FarClip = 50
	app.addResources(&cfg)

	require.NoError(t, app.Step())
	assert.Equal(t, float32(12), demo.FlyingCamera().Speed)
	assert.Equal(t, float32(50), demo.Scene().Camera.FarClip())
}

func TestDemoEscapeQuits(t *testing.T) {
	demo := &Demo{}
	platform := &fakePlatform{width: 8, height: 8}
	platform.script = map[int]func(*Input){
		3: func(in *Input) { in.SetPressed(KeyEscape, true) },
	}
	app, rec := newDemoApp(t, demo, platform)

	require.NoError(t, app.Run())
	assert.True(t, app.Quitting())
	assert.Equal(t, 3, rec.Frames)
}

func TestDemoMovesCamera(t *testing.T) {
	demo := &Demo{}
	platform := &fakePlatform{width: 8, height: 8}
	platform.script = map[int]func(*Input){
		2: func(in *Input) { in.SetPressed(KeyW, true) },
	}
	app, _ := newDemoApp(t, demo, platform)

	require.NoError(t, app.Step())
	start := demo.Scene().Camera.Position()
	require.NoError(t, app.Step())

	moved := demo.Scene().Camera.Position().Sub(start)
	step := DefaultCameraSpeed * float32((16 * time.Millisecond).Seconds())
	assert.InDelta(t, step, moved.Z(), 1e-5, "W moves along the view direction")
}

func TestDemoReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scene.yaml", `
meshes: {box: {builtin: cube}}
materials: {m: {}}
entities: [{name: a, mesh: box, material: m}]
`)
	demo := &Demo{ScenePath: path}
	app, _ := newDemoApp(t, demo, &fakePlatform{width: 8, height: 8})
	require.NoError(t, app.Step())

	writeFile(t, dir, "scene.yaml", `
meshes: {box: {builtin: cube}}
materials: {m: {}}
entities: [{name: a, mesh: box, material: m, position: [4, 5, 6]}]
`)
	require.NoError(t, demo.Reload(writeFile(t, dir, "other.yaml", "")))
	assert.Equal(t, mgl32.Vec3{}, demo.Scene().Entity("a").Transform.Position(), "other files are ignored")

	require.NoError(t, demo.Reload(path))
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, demo.Scene().Entity("a").Transform.Position())

	writeFile(t, dir, "scene.yaml", "entities: {")
	assert.Error(t, demo.Reload(path))
	assert.Equal(t, mgl32.Vec3{4, 5, 6}, demo.Scene().Entity("a").Transform.Position(), "a bad file keeps the scene")
}
