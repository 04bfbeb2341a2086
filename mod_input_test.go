package starter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputEdges(t *testing.T) {
	var in Input

	in.BeginFrame()
	in.SetPressed(KeyW, true)
	assert.True(t, in.Pressed[KeyW])
	assert.True(t, in.JustPressed[KeyW])

	in.BeginFrame()
	in.SetPressed(KeyW, true)
	assert.True(t, in.Pressed[KeyW])
	assert.False(t, in.JustPressed[KeyW], "held key is not pressed again")

	in.BeginFrame()
	in.SetPressed(KeyW, false)
	assert.False(t, in.Pressed[KeyW])
	assert.True(t, in.JustReleased[KeyW])

	in.BeginFrame()
	assert.False(t, in.JustReleased[KeyW])

	assert.NotPanics(t, func() {
		in.SetPressed(-1, true)
		in.SetPressed(inputSlots, true)
	})
}

func TestInputCursorDelta(t *testing.T) {
	var in Input

	in.SetCursor(100, 50)
	assert.Zero(t, in.MouseDeltaX, "first position has no delta")
	assert.Zero(t, in.MouseDeltaY)

	in.BeginFrame()
	in.SetCursor(110, 45)
	assert.Equal(t, 10.0, in.MouseDeltaX)
	assert.Equal(t, -5.0, in.MouseDeltaY)

	in.BeginFrame()
	assert.Zero(t, in.MouseDeltaX)
	assert.Equal(t, 110.0, in.MouseX)
}
