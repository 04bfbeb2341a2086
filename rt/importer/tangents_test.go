package importer

import (
	"testing"

	"github.com/gekko3d/starter/rt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTangentsFollowsU(t *testing.T) {
	n := mgl32.Vec3{0, 0, -1}
	vertices := []core.Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: n, UV: mgl32.Vec2{0, 1}},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: n, UV: mgl32.Vec2{1, 1}},
		{Position: mgl32.Vec3{0, 1, 0}, Normal: n, UV: mgl32.Vec2{0, 0}},
	}
	CalculateTangents(vertices, []uint32{0, 1, 2})

	for i, v := range vertices {
		assert.True(t, v.Tangent.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-5), "vertex %d: %v", i, v.Tangent)
	}
}

func TestCalculateTangentsOrthogonalToNormal(t *testing.T) {
	n := mgl32.Vec3{0, 1, 1}.Normalize()
	vertices := []core.Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: n, UV: mgl32.Vec2{0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: n, UV: mgl32.Vec2{1, 0}},
		{Position: mgl32.Vec3{0, 1, -1}, Normal: n, UV: mgl32.Vec2{0, 1}},
	}
	CalculateTangents(vertices, []uint32{0, 1, 2})

	for _, v := range vertices {
		assert.InDelta(t, 1, v.Tangent.Len(), 1e-5)
		assert.InDelta(t, 0, v.Tangent.Dot(v.Normal), 1e-5)
	}
}

func TestCalculateTangentsDegenerateUVs(t *testing.T) {
	n := mgl32.Vec3{0, 1, 0}
	vertices := []core.Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: n},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: n},
		{Position: mgl32.Vec3{0, 0, 1}, Normal: n},
	}
	CalculateTangents(vertices, []uint32{0, 1, 2})

	for _, v := range vertices {
		assert.InDelta(t, 1, v.Tangent.Len(), 1e-5)
		assert.InDelta(t, 0, v.Tangent.Dot(n), 1e-5)
	}
}
