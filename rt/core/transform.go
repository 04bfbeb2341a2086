package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a position, Euler rotation (radians) and scale.
//
// The world matrix always composes in one fixed order: scale, then rotation
// about Z, then Y, then X, then translation. Reading left to right with row
// vectors that is World = S · Rz · Ry · Rx · T; the stored column-vector
// matrix is the equivalent T · Rx · Ry · Rz · S. There is no way to choose
// another order.
type Transform struct {
	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3

	world mgl32.Mat4
	dirty bool
}

func NewTransform() Transform {
	return Transform{
		scale: mgl32.Vec3{1, 1, 1},
		world: mgl32.Ident4(),
		dirty: true,
	}
}

func (t *Transform) Position() mgl32.Vec3 { return t.position }
func (t *Transform) Rotation() mgl32.Vec3 { return t.rotation }
func (t *Transform) Scale() mgl32.Vec3    { return t.scale }

func (t *Transform) SetPosition(p mgl32.Vec3) { t.position = p; t.dirty = true }
func (t *Transform) SetRotation(r mgl32.Vec3) { t.rotation = r; t.dirty = true }
func (t *Transform) SetScale(s mgl32.Vec3)    { t.scale = s; t.dirty = true }

func (t *Transform) SetPositionX(x float32) { t.position[0] = x; t.dirty = true }
func (t *Transform) SetPositionY(y float32) { t.position[1] = y; t.dirty = true }
func (t *Transform) SetPositionZ(z float32) { t.position[2] = z; t.dirty = true }

func (t *Transform) SetRotationX(x float32) { t.rotation[0] = x; t.dirty = true }
func (t *Transform) SetRotationY(y float32) { t.rotation[1] = y; t.dirty = true }
func (t *Transform) SetRotationZ(z float32) { t.rotation[2] = z; t.dirty = true }

func (t *Transform) SetScaleX(x float32) { t.scale[0] = x; t.dirty = true }
func (t *Transform) SetScaleY(y float32) { t.scale[1] = y; t.dirty = true }
func (t *Transform) SetScaleZ(z float32) { t.scale[2] = z; t.dirty = true }

// WorldMatrix returns the composed world matrix, rebuilding it if any
// component changed since the last call.
func (t *Transform) WorldMatrix() mgl32.Mat4 {
	if t.dirty {
		t.world = ComposeWorld(t.position, t.rotation, t.scale)
		t.dirty = false
	}
	return t.world
}

// ComposeWorld builds T · Rx · Ry · Rz · S.
func ComposeWorld(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	translate := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	rotX := mgl32.HomogRotate3DX(rotation.X())
	rotY := mgl32.HomogRotate3DY(rotation.Y())
	rotZ := mgl32.HomogRotate3DZ(rotation.Z())
	sc := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())

	return translate.Mul4(rotX).Mul4(rotY).Mul4(rotZ).Mul4(sc)
}
