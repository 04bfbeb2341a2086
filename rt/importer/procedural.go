package importer

import (
	"github.com/gekko3d/starter/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Cube builds an axis-aligned cube centered on the origin with 4 vertices
// per face. Faces wind clockwise seen from outside and UVs cover each face
// once, starting top-left.
func Cube(size float32) *MeshData {
	h := size / 2
	faces := []struct{ n, up mgl32.Vec3 }{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	}

	mesh := &MeshData{Name: "cube"}
	for _, f := range faces {
		// right-hand side of the face when looking at it from outside
		right := f.n.Cross(f.up)
		center := f.n.Mul(h)
		corners := [4]struct {
			du, dv float32
			uv     mgl32.Vec2
		}{
			{-1, 1, mgl32.Vec2{0, 0}},
			{1, 1, mgl32.Vec2{1, 0}},
			{1, -1, mgl32.Vec2{1, 1}},
			{-1, -1, mgl32.Vec2{0, 1}},
		}
		vertices := make([]core.Vertex, 0, 4)
		for _, c := range corners {
			vertices = append(vertices, core.Vertex{
				Position: center.Add(right.Mul(c.du * h)).Add(f.up.Mul(c.dv * h)),
				Normal:   f.n,
				Tangent:  right,
				UV:       c.uv,
			})
		}
		mesh.append(vertices, []uint32{0, 1, 2, 0, 2, 3})
	}
	return mesh
}
