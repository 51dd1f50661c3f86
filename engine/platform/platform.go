package platform

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

var (
	glfwMu   sync.Mutex
	glfwRefs int
	windows  atomic.Int32
)

// Acquire initializes GLFW on first use. Every successful Acquire must be
// paired with a Release; GLFW is terminated when the last user releases it.
func Acquire() error {
	glfwMu.Lock()
	defer glfwMu.Unlock()
	if glfwRefs == 0 {
		if err := glfw.Init(); err != nil {
			return fmt.Errorf("failed to initialize glfw: %w", err)
		}
	}
	glfwRefs++
	return nil
}

func Release() {
	glfwMu.Lock()
	defer glfwMu.Unlock()
	if glfwRefs == 0 {
		return
	}
	glfwRefs--
	if glfwRefs == 0 {
		glfw.Terminate()
	}
}

// PollEvents processes pending window and joystick events.
func PollEvents() {
	glfw.PollEvents()
}

// Windows is the number of open windows.
func Windows() int {
	return int(windows.Load())
}

type WindowConfig struct {
	Title     string
	X         int
	Y         int
	Width     int
	Height    int
	Resizable bool
}

// Window is a GLFW window without a client API, ready for a Vulkan surface.
type Window struct {
	*glfw.Window
	input   *Input
	width   int
	height  int
	resized bool
}

// NewWindow creates and shows a window. GLFW must have been acquired.
func NewWindow(cfg WindowConfig) (*Window, error) {
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, boolHint(cfg.Resizable))
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Required for Vulkan.

	gw, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w := &Window{Window: gw, input: NewInput()}
	w.width, w.height = gw.GetFramebufferSize()

	gw.SetKeyCallback(w.keyCallback)
	gw.SetMouseButtonCallback(w.mouseButtonCallback)
	gw.SetCursorPosCallback(w.cursorPosCallback)
	gw.SetScrollCallback(w.scrollCallback)
	gw.SetFramebufferSizeCallback(w.framebufferSizeCallback)
	gw.SetPos(cfg.X, cfg.Y)
	gw.Show()
	windows.Add(1)

	return w, nil
}

// PumpMessages rolls the input state over and polls GLFW for new events.
func (w *Window) PumpMessages() {
	w.input.Update()
	glfw.PollEvents()
}

func (w *Window) Input() *Input {
	return w.input
}

func (w *Window) FramebufferSize() (int, int) {
	return w.width, w.height
}

// Resized reports whether the framebuffer size changed since the last call.
func (w *Window) Resized() bool {
	r := w.resized
	w.resized = false
	return r
}

func (w *Window) Destroy() {
	if w.Window != nil {
		w.Window.Destroy()
		w.Window = nil
		windows.Add(-1)
	}
}

func (w *Window) keyCallback(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	switch action {
	case glfw.Press:
		w.input.ProcessKey(key, true)
	case glfw.Release:
		w.input.ProcessKey(key, false)
	}
}

func (w *Window) mouseButtonCallback(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	w.input.ProcessButton(button, action == glfw.Press)
}

func (w *Window) cursorPosCallback(_ *glfw.Window, xpos, ypos float64) {
	w.input.ProcessMouseMove(xpos, ypos)
}

func (w *Window) scrollCallback(_ *glfw.Window, _, yoff float64) {
	w.input.ProcessMouseWheel(yoff)
}

func (w *Window) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	if width != w.width || height != w.height {
		w.width, w.height = width, height
		w.resized = true
	}
}

func boolHint(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
