package controller

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/cala/engine/platform"
)

var glfwButtons = [...]struct {
	from glfw.GamepadButton
	to   Buttons
}{
	{glfw.ButtonA, ButtonA},
	{glfw.ButtonB, ButtonB},
	{glfw.ButtonX, ButtonX},
	{glfw.ButtonY, ButtonY},
	{glfw.ButtonDpadUp, ButtonDPadUp},
	{glfw.ButtonDpadDown, ButtonDPadDown},
	{glfw.ButtonDpadLeft, ButtonDPadLeft},
	{glfw.ButtonDpadRight, ButtonDPadRight},
	{glfw.ButtonLeftBumper, ButtonLeftBumper},
	{glfw.ButtonRightBumper, ButtonRightBumper},
	{glfw.ButtonLeftThumb, ButtonLeftThumb},
	{glfw.ButtonRightThumb, ButtonRightThumb},
	{glfw.ButtonStart, ButtonStart},
	{glfw.ButtonBack, ButtonBack},
	{glfw.ButtonGuide, ButtonGuide},
}

// GLFWPoller reads gamepads through GLFW's gamepad mappings. Joysticks
// without a mapping are ignored.
type GLFWPoller struct {
	pads []Pad
	pump func()
}

func NewGLFWPoller() *GLFWPoller {
	return &GLFWPoller{pump: platform.PollEvents}
}

func (p *GLFWPoller) Open() error {
	return platform.Acquire()
}

func (p *GLFWPoller) Poll() ([]Pad, error) {
	p.pumpEvents()
	p.pads = p.pads[:0]
	for joy := glfw.Joystick1; joy <= glfw.JoystickLast; joy++ {
		if !joy.Present() || !joy.IsGamepad() {
			continue
		}
		gs := joy.GetGamepadState()
		if gs == nil {
			continue
		}
		p.pads = append(p.pads, Pad{
			ID:    ID(joy),
			Name:  joy.GetGamepadName(),
			State: fromGamepadState(gs),
		})
	}
	return p.pads, nil
}

// pumpEvents processes GLFW events when no window does it. Joystick hotplug
// is only detected during event processing.
func (p *GLFWPoller) pumpEvents() {
	if platform.Windows() == 0 && p.pump != nil {
		p.pump()
	}
}

func (p *GLFWPoller) Close() error {
	platform.Release()
	return nil
}

func fromGamepadState(gs *glfw.GamepadState) State {
	var s State
	for _, b := range glfwButtons {
		if gs.Buttons[b.from] == glfw.Press {
			s.Buttons |= b.to
		}
	}
	s.LeftStick = Stick{X: gs.Axes[glfw.AxisLeftX], Y: gs.Axes[glfw.AxisLeftY]}
	s.RightStick = Stick{X: gs.Axes[glfw.AxisRightX], Y: gs.Axes[glfw.AxisRightY]}
	// GLFW reports triggers in [-1, 1] with -1 at rest
	s.LeftTrigger = (gs.Axes[glfw.AxisLeftTrigger] + 1) / 2
	s.RightTrigger = (gs.Axes[glfw.AxisRightTrigger] + 1) / 2
	return s
}
