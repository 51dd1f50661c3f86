package platform

import "github.com/go-gl/glfw/v3.3/glfw"

type Key = glfw.Key
type MouseButton = glfw.MouseButton

const (
	KeyEscape = glfw.KeyEscape
	KeySpace  = glfw.KeySpace
	KeyLeft   = glfw.KeyLeft
	KeyRight  = glfw.KeyRight
	KeyUp     = glfw.KeyUp
	KeyDown   = glfw.KeyDown

	MouseButtonLeft  = glfw.MouseButtonLeft
	MouseButtonRight = glfw.MouseButtonRight
)

type keyboardState struct {
	keys map[Key]bool
}

type mouseState struct {
	x, y    float64
	buttons map[MouseButton]bool
}

// Input holds the keyboard and mouse state of a window for the current and the
// previous tick. It is written by GLFW callbacks during PollEvents and read by
// the application, both on the main thread.
type Input struct {
	keyboardCurrent  keyboardState
	keyboardPrevious keyboardState
	mouseCurrent     mouseState
	mousePrevious    mouseState
	scroll           float64
}

func NewInput() *Input {
	return &Input{
		keyboardCurrent:  keyboardState{keys: map[Key]bool{}},
		keyboardPrevious: keyboardState{keys: map[Key]bool{}},
		mouseCurrent:     mouseState{buttons: map[MouseButton]bool{}},
		mousePrevious:    mouseState{buttons: map[MouseButton]bool{}},
	}
}

// Update copies the current state into the previous one. Call once per tick,
// before polling events.
func (in *Input) Update() {
	clear(in.keyboardPrevious.keys)
	for k, v := range in.keyboardCurrent.keys {
		in.keyboardPrevious.keys[k] = v
	}
	clear(in.mousePrevious.buttons)
	for b, v := range in.mouseCurrent.buttons {
		in.mousePrevious.buttons[b] = v
	}
	in.mousePrevious.x, in.mousePrevious.y = in.mouseCurrent.x, in.mouseCurrent.y
	in.scroll = 0
}

// keyboard input
func (in *Input) IsKeyDown(key Key) bool   { return in.keyboardCurrent.keys[key] }
func (in *Input) IsKeyUp(key Key) bool     { return !in.keyboardCurrent.keys[key] }
func (in *Input) WasKeyDown(key Key) bool  { return in.keyboardPrevious.keys[key] }
func (in *Input) WasKeyUp(key Key) bool    { return !in.keyboardPrevious.keys[key] }
func (in *Input) KeyPressed(key Key) bool  { return in.IsKeyDown(key) && in.WasKeyUp(key) }
func (in *Input) KeyReleased(key Key) bool { return in.IsKeyUp(key) && in.WasKeyDown(key) }

func (in *Input) ProcessKey(key Key, pressed bool) {
	in.keyboardCurrent.keys[key] = pressed
}

// mouse input
func (in *Input) IsButtonDown(button MouseButton) bool  { return in.mouseCurrent.buttons[button] }
func (in *Input) WasButtonDown(button MouseButton) bool { return in.mousePrevious.buttons[button] }

func (in *Input) ButtonPressed(button MouseButton) bool {
	return in.IsButtonDown(button) && !in.WasButtonDown(button)
}

func (in *Input) MousePosition() (float64, float64) {
	return in.mouseCurrent.x, in.mouseCurrent.y
}

func (in *Input) PreviousMousePosition() (float64, float64) {
	return in.mousePrevious.x, in.mousePrevious.y
}

// Scroll returns the vertical wheel movement accumulated this tick.
func (in *Input) Scroll() float64 {
	return in.scroll
}

func (in *Input) ProcessButton(button MouseButton, pressed bool) {
	in.mouseCurrent.buttons[button] = pressed
}

func (in *Input) ProcessMouseMove(x, y float64) {
	in.mouseCurrent.x, in.mouseCurrent.y = x, y
}

func (in *Input) ProcessMouseWheel(delta float64) {
	in.scroll += delta
}
