package importer

import (
	"github.com/chewxy/math32"
	"github.com/gekko3d/starter/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// CalculateTangents overwrites every vertex tangent with the per-triangle
// tangents (from position and UV deltas) accumulated over the triangles
// sharing the vertex, then orthogonalized against the vertex normal.
func CalculateTangents(vertices []core.Vertex, indices []uint32) {
	acc := make([]mgl32.Vec3, len(vertices))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0, v1, v2 := vertices[i0], vertices[i1], vertices[i2]

		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		du1, dv1 := v1.UV.X()-v0.UV.X(), v1.UV.Y()-v0.UV.Y()
		du2, dv2 := v2.UV.X()-v0.UV.X(), v2.UV.Y()-v0.UV.Y()

		det := du1*dv2 - du2*dv1
		if math32.Abs(det) < 1e-12 {
			continue
		}
		r := 1 / det
		t := e1.Mul(dv2).Sub(e2.Mul(dv1)).Mul(r)

		acc[i0] = acc[i0].Add(t)
		acc[i1] = acc[i1].Add(t)
		acc[i2] = acc[i2].Add(t)
	}

	for i := range vertices {
		n := vertices[i].Normal
		t := acc[i].Sub(n.Mul(n.Dot(acc[i])))
		if t.Len() < 1e-6 {
			t = anyPerpendicular(n)
		}
		vertices[i].Tangent = t.Normalize()
	}
}

func anyPerpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if math32.Abs(n.X()) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	t := axis.Sub(n.Mul(n.Dot(axis)))
	if t.Len() < 1e-6 {
		return axis
	}
	return t
}
