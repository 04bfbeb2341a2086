package starter

import (
	"github.com/gekko3d/starter/rt/core"
)

// FlyingCamera drives a core.Camera from the keyboard and a left-button
// mouse drag. W/S move along the view direction, A/D strafe, Space/X move
// along world Y.
type FlyingCamera struct {
	Camera *core.Camera
	// Speed is in units per second.
	Speed float32
	// Sensitivity is in radians per pixel of drag.
	Sensitivity float32

	dragging     bool
	lastX, lastY float64
}

func NewFlyingCamera(camera *core.Camera, speed, sensitivity float32) *FlyingCamera {
	if speed <= 0 {
		speed = DefaultCameraSpeed
	}
	if sensitivity <= 0 {
		sensitivity = DefaultSensitivity
	}
	return &FlyingCamera{
		Camera:      camera,
		Speed:       speed,
		Sensitivity: sensitivity,
	}
}

func (f *FlyingCamera) Update(t *Time, input *Input) {
	step := f.Speed * t.Seconds()
	if step <= 0 {
		return
	}

	if input.Pressed[KeyW] {
		f.Camera.MoveForward(step)
	}
	if input.Pressed[KeyS] {
		f.Camera.MoveBackward(step)
	}
	if input.Pressed[KeyA] {
		f.Camera.MoveLeft(step)
	}
	if input.Pressed[KeyD] {
		f.Camera.MoveRight(step)
	}
	if input.Pressed[KeySpace] {
		f.Camera.MoveUp(step)
	}
	if input.Pressed[KeyX] {
		f.Camera.MoveDown(step)
	}
}

func (f *FlyingCamera) OnMouseDown(button int, x, y float64) {
	if button != MouseButtonLeft {
		return
	}
	f.dragging = true
	f.lastX, f.lastY = x, y
}

func (f *FlyingCamera) OnMouseUp(button int, x, y float64) {
	if button == MouseButtonLeft {
		f.dragging = false
	}
}

// OnMouseMove rotates by the drag delta: vertical motion pitches, horizontal
// motion yaws.
func (f *FlyingCamera) OnMouseMove(x, y float64) {
	if !f.dragging {
		return
	}
	dx := float32(x - f.lastX)
	dy := float32(y - f.lastY)
	f.lastX, f.lastY = x, y
	f.Camera.Rotate(dy*f.Sensitivity, dx*f.Sensitivity)
}
