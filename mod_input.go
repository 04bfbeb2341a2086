package starter

// Input slots. Mouse buttons share the key arrays after the keyboard.
const (
	KeyA int = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyShift
	KeyControl
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle

	inputSlots
)

type InputModule struct{}

// Input is the polled keyboard and mouse state for the current frame.
type Input struct {
	Pressed [inputSlots]bool

	JustPressed  [inputSlots]bool
	JustReleased [inputSlots]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64

	cursorKnown bool
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
}

// BeginFrame clears the edge flags and mouse delta. Platforms call it
// before reporting the frame's state.
func (in *Input) BeginFrame() {
	in.JustPressed = [inputSlots]bool{}
	in.JustReleased = [inputSlots]bool{}
	in.MouseDeltaX = 0
	in.MouseDeltaY = 0
}

// SetPressed records the current state of a key or button and derives the
// edge flags from the previous state.
func (in *Input) SetPressed(slot int, down bool) {
	if slot < 0 || slot >= inputSlots {
		return
	}
	if down && !in.Pressed[slot] {
		in.JustPressed[slot] = true
	}
	if !down && in.Pressed[slot] {
		in.JustReleased[slot] = true
	}
	in.Pressed[slot] = down
}

// SetCursor records the cursor position. The first report has no delta.
func (in *Input) SetCursor(x, y float64) {
	if in.cursorKnown {
		in.MouseDeltaX = x - in.MouseX
		in.MouseDeltaY = y - in.MouseY
	}
	in.MouseX, in.MouseY = x, y
	in.cursorKnown = true
}
