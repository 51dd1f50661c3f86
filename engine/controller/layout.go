package controller

// Buttons is a bit set of digital inputs.
type Buttons uint32

const (
	ButtonA Buttons = 1 << iota
	ButtonB
	ButtonX
	ButtonY
	ButtonDPadUp
	ButtonDPadDown
	ButtonDPadLeft
	ButtonDPadRight
	ButtonLeftBumper
	ButtonRightBumper
	ButtonLeftThumb
	ButtonRightThumb
	ButtonStart
	ButtonBack
	ButtonGuide
)

const (
	abxyButtons    = ButtonA | ButtonB | ButtonX | ButtonY
	dpadButtons    = ButtonDPadUp | ButtonDPadDown | ButtonDPadLeft | ButtonDPadRight
	joyButtons     = ButtonLeftThumb | ButtonRightThumb
	triggerButtons = ButtonLeftBumper | ButtonRightBumper
	menuButtons    = ButtonStart | ButtonBack | ButtonGuide
)

// Has reports whether every button in b is set.
func (b Buttons) Has(o Buttons) bool {
	return b&o == o
}

type Stick struct {
	X, Y float32
}

// State is the polled state of one controller. Sticks are in [-1, 1] with Y
// pointing down, triggers in [0, 1].
type State struct {
	LeftStick    Stick
	RightStick   Stick
	LeftTrigger  float32
	RightTrigger float32
	Buttons      Buttons
}

// Layout selects which parts of a controller the application cares about.
// Everything outside the layout reads as released.
type Layout struct {
	joy      bool
	triggers bool
	abxy     bool
	dpad     bool
	menu     bool
}

func NewLayout() Layout {
	return Layout{}
}

// FullLayout includes every input.
func FullLayout() Layout {
	return NewLayout().Joy().Triggers().ABXY().DPad().Menu()
}

// Joy adds both sticks and their clicks.
func (l Layout) Joy() Layout { l.joy = true; return l }

// Triggers adds the analog triggers and the bumpers.
func (l Layout) Triggers() Layout { l.triggers = true; return l }

func (l Layout) ABXY() Layout { l.abxy = true; return l }
func (l Layout) DPad() Layout { l.dpad = true; return l }

// Menu adds start, back and guide.
func (l Layout) Menu() Layout { l.menu = true; return l }

func (l Layout) mask() Buttons {
	var m Buttons
	if l.joy {
		m |= joyButtons
	}
	if l.triggers {
		m |= triggerButtons
	}
	if l.abxy {
		m |= abxyButtons
	}
	if l.dpad {
		m |= dpadButtons
	}
	if l.menu {
		m |= menuButtons
	}
	return m
}

// Filter clears every input of s the layout does not include.
func (l Layout) Filter(s State) State {
	out := State{Buttons: s.Buttons & l.mask()}
	if l.joy {
		out.LeftStick, out.RightStick = s.LeftStick, s.RightStick
	}
	if l.triggers {
		out.LeftTrigger, out.RightTrigger = s.LeftTrigger, s.RightTrigger
	}
	return out
}
