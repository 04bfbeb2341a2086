package starter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gekko3d/starter/rt/core"
	"github.com/gekko3d/starter/rt/core/coretest"
	"github.com/gekko3d/starter/rt/importer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCube(t *testing.T, rec *coretest.Recorder) *core.Mesh {
	t.Helper()
	cube := importer.Cube(1)
	mesh, err := core.NewMesh(rec, "cube", cube.Vertices, cube.Indices)
	require.NoError(t, err)
	return mesh
}

func testMaterial(rec *coretest.Recorder, ps string) (*core.Material, *coretest.Shader) {
	pixel := rec.NewShader(ps, core.StagePixel)
	return core.NewMaterial(rec.NewShader("vertex", core.StageVertex), pixel), pixel
}

// pixelShaderSequence returns the pixel shader names activated, in order.
func pixelShaderSequence(rec *coretest.Recorder) []string {
	var out []string
	for _, c := range rec.Calls {
		if c.Op == "ps.SetShader" {
			out = append(out, c.Args[0].(string))
		}
	}
	return out
}

func TestSceneDrawOrder(t *testing.T) {
	rec := coretest.NewRecorder()
	mesh := testCube(t, rec)
	scene := NewScene(nil)

	skyMat, _ := testMaterial(rec, "sky")
	skyMat.SetRenderState(core.RenderState{Cull: core.CullFront, Depth: core.DepthLessEqual})
	blendMat, _ := testMaterial(rec, "blend")
	blendMat.SetRenderState(core.RenderState{Blend: true})
	opaqueMat, _ := testMaterial(rec, "opaque")

	scene.Add(&SceneEntity{Entity: core.NewEntity("glass", mesh, blendMat), Blended: true})
	scene.Add(&SceneEntity{Entity: core.NewEntity("a", mesh, opaqueMat)})
	scene.Add(&SceneEntity{Entity: core.NewEntity("b", mesh, opaqueMat)})
	scene.Sky = core.NewEntity("sky", mesh, skyMat)

	rec.Reset()
	require.NoError(t, scene.Draw(rec))
	assert.Equal(t, []string{"sky", "opaque", "opaque", "blend"}, pixelShaderSequence(rec))

	var states []core.RenderState
	for _, c := range rec.Calls {
		if c.Op == "SetRenderState" {
			states = append(states, c.Args[0].(core.RenderState))
		}
	}
	require.Len(t, states, 4)
	assert.Equal(t, core.CullFront, states[0].Cull)
	assert.Equal(t, core.DepthLessEqual, states[0].Depth)
	assert.True(t, states[3].Blend)
}

func TestSceneUploadsLightsOncePerShader(t *testing.T) {
	rec := coretest.NewRecorder()
	mesh := testCube(t, rec)
	scene := NewScene(nil)
	mat, ps := testMaterial(rec, "pixel")
	scene.Add(&SceneEntity{Entity: core.NewEntity("a", mesh, mat)})
	scene.Add(&SceneEntity{Entity: core.NewEntity("b", mesh, mat)})
	scene.Camera.SetPosition(mgl32.Vec3{1, 2, 3})

	rec.Reset()
	require.NoError(t, scene.Draw(rec))

	uploads := 0
	for i, c := range rec.Calls {
		if c.Op == "DrawIndexed" {
			break
		}
		if c.Op == "ps.SetData" && c.Args[0] == "dirlight" {
			uploads++
		}
		assert.NotEqual(t, "vs.SetData", c.Op, "call %d", i)
	}
	assert.Equal(t, 1, uploads)

	assert.Equal(t, mgl32.Vec3{1, 2, 3}, ps.Floats["cameraPosition"])
	assert.Equal(t, scene.DirLight.Bytes(), ps.Data["dirlight"])
	want := scene.PointLight
	want.Position = mgl32.Vec3{1, 2, 3}
	assert.Equal(t, want.Bytes(), ps.Data["pointlight"], "point light follows the camera")
}

func TestScenePointLightStaysWhenNotFollowing(t *testing.T) {
	rec := coretest.NewRecorder()
	scene := NewScene(nil)
	scene.PointLightFollowsCamera = false
	scene.PointLight.Position = mgl32.Vec3{0, 5, 0}

	require.NoError(t, scene.Draw(rec))
	assert.Equal(t, mgl32.Vec3{0, 5, 0}, scene.PointLight.Position)
}

func TestScenePixelShaderOverride(t *testing.T) {
	rec := coretest.NewRecorder()
	mesh := testCube(t, rec)
	scene := NewScene(nil)
	mat, _ := testMaterial(rec, "pixel")
	spec := rec.NewShader("pixel_spec", core.StagePixel)

	scene.Add(&SceneEntity{Entity: core.NewEntity("plain", mesh, mat)})
	scene.Add(&SceneEntity{Entity: core.NewEntity("shiny", mesh, mat), PixelShader: spec})

	rec.Reset()
	require.NoError(t, scene.Draw(rec))
	assert.Equal(t, []string{"pixel", "pixel_spec"}, pixelShaderSequence(rec))
	assert.Equal(t, "pixel", mat.PixelShader().Name(), "material keeps its own shader")
	assert.Contains(t, spec.Data, "dirlight", "override shader receives the lights")
}

func TestSceneSkipsBrokenEntities(t *testing.T) {
	rec := coretest.NewRecorder()
	mesh := testCube(t, rec)
	mat, _ := testMaterial(rec, "pixel")

	var out bytes.Buffer
	scene := NewScene(NewLoggerTo("", false, &out, &out))
	scene.Add(&SceneEntity{Entity: core.NewEntity("nomesh", nil, mat)})
	scene.Add(&SceneEntity{Entity: core.NewEntity("nomat", mesh, nil)})
	scene.Add(&SceneEntity{Entity: core.NewEntity("ok", mesh, mat)})

	for i := 0; i < 3; i++ {
		rec.Reset()
		require.NoError(t, scene.Draw(rec))
		draws := 0
		for _, op := range rec.Ops() {
			if op == "DrawIndexed" {
				draws++
			}
		}
		assert.Equal(t, 1, draws)
	}
	assert.Equal(t, 2, strings.Count(out.String(), "WARN"), "each broken entity warns once")
	assert.Contains(t, out.String(), `skipping "nomesh"`)
}

func TestSceneUpdateSpins(t *testing.T) {
	scene := NewScene(nil)
	spinning := scene.Add(&SceneEntity{Entity: core.NewEntity("spin", nil, nil), Spin: mgl32.Vec3{0, 1, 0}})
	still := scene.Add(&SceneEntity{Entity: core.NewEntity("still", nil, nil)})

	scene.Update(&Time{Dt: 500 * time.Millisecond})
	scene.Update(&Time{Dt: 250 * time.Millisecond})

	assert.InDelta(t, 0.75, spinning.Transform.Rotation().Y(), 1e-6)
	assert.Equal(t, mgl32.Vec3{}, still.Transform.Rotation())
	assert.Same(t, spinning, scene.Entity("spin"))
	assert.Nil(t, scene.Entity("missing"))
}
