package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-look perspective camera in a left-handed, Y-up world.
//
// View and projection matrices are stored in column-vector, column-major
// form (mgl32.Mat4), ready for upload to WGSL uniforms. Clip-space depth is
// mapped to [0, 1].
type Camera struct {
	position  mgl32.Vec3
	direction mgl32.Vec3
	up        mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	view       mgl32.Mat4
	projection mgl32.Mat4
}

var worldUp = mgl32.Vec3{0, 1, 0}

func NewCamera() *Camera {
	c := &Camera{
		position:  mgl32.Vec3{0, 0, -10},
		direction: mgl32.Vec3{0, 0, 1},
		up:        worldUp,
		fov:       0.25 * math32.Pi,
		aspect:    1,
		near:      0.1,
		far:       100,
	}
	c.UpdateViewProjection()
	return c
}

func (c *Camera) SetAspectRatio(aspect float32) { c.aspect = aspect }
func (c *Camera) SetFieldOfView(fov float32)    { c.fov = fov }
func (c *Camera) SetNearClip(near float32)      { c.near = near }
func (c *Camera) SetFarClip(far float32)        { c.far = far }

func (c *Camera) AspectRatio() float32  { return c.aspect }
func (c *Camera) FieldOfView() float32  { return c.fov }
func (c *Camera) NearClip() float32     { return c.near }
func (c *Camera) FarClip() float32      { return c.far }
func (c *Camera) Position() mgl32.Vec3  { return c.position }
func (c *Camera) Direction() mgl32.Vec3 { return c.direction }
func (c *Camera) Up() mgl32.Vec3        { return c.up }

// ViewMatrix returns the matrix computed by the last UpdateViewProjection.
func (c *Camera) ViewMatrix() mgl32.Mat4 { return c.view }

// ProjectionMatrix returns the matrix computed by the last UpdateViewProjection.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 { return c.projection }

func (c *Camera) SetPosition(p mgl32.Vec3) { c.position = p }

// SetOrientation replaces direction and up. The pair is re-orthonormalized;
// a zero direction is ignored.
func (c *Camera) SetOrientation(direction, up mgl32.Vec3) {
	if direction.Len() < 1e-6 {
		return
	}
	c.direction = direction
	if up.Len() < 1e-6 {
		up = worldUp
	}
	c.up = up
	c.orthonormalize()
}

func (c *Camera) UpdateViewProjection() {
	c.view = LookToLH(c.position, c.direction, c.up)
	c.projection = PerspectiveFovLH(c.fov, c.aspect, c.near, c.far)
}

// Rotate turns the camera by pitch about its right axis and yaw about its up
// axis. Both deltas are folded into a single quaternion that is applied to
// direction and up together, then the basis is re-orthonormalized so repeated
// small rotations do not drift.
func (c *Camera) Rotate(pitch, yaw float32) {
	right := c.up.Cross(c.direction).Normalize()
	q := mgl32.QuatRotate(yaw, c.up).Mul(mgl32.QuatRotate(pitch, right)).Normalize()
	c.direction = q.Rotate(c.direction)
	c.up = q.Rotate(c.up)
	c.orthonormalize()
}

func (c *Camera) MoveForward(speed float32) {
	c.position = c.position.Add(c.direction.Mul(speed))
}

func (c *Camera) MoveBackward(speed float32) {
	c.position = c.position.Sub(c.direction.Mul(speed))
}

// MoveLeft strafes along direction × up, which points left in a left-handed frame.
func (c *Camera) MoveLeft(speed float32) {
	c.position = c.position.Add(c.direction.Cross(c.up).Mul(speed))
}

func (c *Camera) MoveRight(speed float32) {
	c.position = c.position.Sub(c.direction.Cross(c.up).Mul(speed))
}

// MoveUp and MoveDown use the world Y axis, not the camera's up vector.
func (c *Camera) MoveUp(speed float32) {
	c.position = c.position.Add(worldUp.Mul(speed))
}

func (c *Camera) MoveDown(speed float32) {
	c.position = c.position.Sub(worldUp.Mul(speed))
}

func (c *Camera) orthonormalize() {
	d := c.direction.Normalize()
	r := c.up.Cross(d)
	if r.Len() < 1e-6 {
		// up collapsed onto direction; rebuild from whichever world axis is not parallel
		fallback := worldUp
		if math32.Abs(d.Dot(worldUp)) > 0.99 {
			fallback = mgl32.Vec3{0, 0, 1}
		}
		r = fallback.Cross(d)
	}
	r = r.Normalize()
	c.direction = d
	c.up = d.Cross(r)
}

// LookToLH builds a left-handed view matrix looking from eye along dir.
// The result maps eye to the origin and dir to +Z.
func LookToLH(eye, dir, up mgl32.Vec3) mgl32.Mat4 {
	z := dir.Normalize()
	x := up.Cross(z).Normalize()
	y := z.Cross(x)

	return mgl32.Mat4FromRows(
		mgl32.Vec4{x.X(), x.Y(), x.Z(), -x.Dot(eye)},
		mgl32.Vec4{y.X(), y.Y(), y.Z(), -y.Dot(eye)},
		mgl32.Vec4{z.X(), z.Y(), z.Z(), -z.Dot(eye)},
		mgl32.Vec4{0, 0, 0, 1},
	)
}

// PerspectiveFovLH builds a left-handed perspective projection with depth in
// [0, 1]. fov is the vertical field of view in radians.
func PerspectiveFovLH(fov, aspect, near, far float32) mgl32.Mat4 {
	h := 1 / math32.Tan(fov*0.5)
	w := h / aspect
	r := far / (far - near)

	return mgl32.Mat4FromRows(
		mgl32.Vec4{w, 0, 0, 0},
		mgl32.Vec4{0, h, 0, 0},
		mgl32.Vec4{0, 0, r, -r * near},
		mgl32.Vec4{0, 0, 1, 0},
	)
}
