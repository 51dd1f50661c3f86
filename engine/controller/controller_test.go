package controller

import (
	"errors"
	"reflect"
	"testing"

	"github.com/spaghettifunk/cala/engine/core"
)

type fakePoller struct {
	pads    []Pad
	err     error
	opened  bool
	closed  bool
	openErr error
}

func (p *fakePoller) Open() error {
	p.opened = true
	return p.openErr
}

func (p *fakePoller) Poll() ([]Pad, error) { return p.pads, p.err }

func (p *fakePoller) Close() error {
	p.closed = true
	return nil
}

func newTestControllers(t *testing.T, deadzone float32) (*Controllers, *fakePoller) {
	t.Helper()
	p := &fakePoller{}
	c := New(Config{Deadzone: deadzone}, p, nil)
	if err := c.Initialize(); err != nil {
		t.Fatal(err)
	}
	return c, p
}

func TestControllersConnectAndDisconnect(t *testing.T) {
	c, p := newTestControllers(t, 0)

	p.pads = []Pad{{ID: 2, Name: "pad two"}, {ID: 0, Name: "pad zero"}}
	if err := c.Update(0); err != nil {
		t.Fatal(err)
	}
	if got := c.Connected(); !reflect.DeepEqual(got, []ID{0, 2}) {
		t.Errorf("Connected() = %v", got)
	}

	var ids []ID
	for id := range c.All(FullLayout()) {
		ids = append(ids, id)
	}
	if !reflect.DeepEqual(ids, []ID{0, 2}) {
		t.Errorf("All() ids = %v, want sorted", ids)
	}
	if c.PadName(2) != "pad two" {
		t.Errorf("PadName(2) = %q", c.PadName(2))
	}

	p.pads = p.pads[1:]
	c.Update(0)
	if len(c.Connected()) != 0 {
		t.Errorf("Connected() = %v, want none", c.Connected())
	}
	if got := c.Disconnected(); !reflect.DeepEqual(got, []ID{2}) {
		t.Errorf("Disconnected() = %v", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d", c.Len())
	}
}

func TestControllersEdges(t *testing.T) {
	c, p := newTestControllers(t, 0)

	p.pads = []Pad{{ID: 0, State: State{Buttons: ButtonA}}}
	c.Update(0)
	if !c.Pressed(0, ButtonA) {
		t.Error("A should be pressed on the first tick it is down")
	}

	c.Update(0)
	if c.Pressed(0, ButtonA) {
		t.Error("A held should not report Pressed again")
	}

	p.pads = []Pad{{ID: 0}}
	c.Update(0)
	if !c.Released(0, ButtonA) {
		t.Error("A should be released")
	}
	if c.Pressed(1, ButtonA) || c.Released(1, ButtonA) {
		t.Error("unknown controller has no edges")
	}
}

func TestLayoutFilter(t *testing.T) {
	full := State{
		LeftStick:    Stick{X: 0.5},
		RightStick:   Stick{Y: -0.5},
		LeftTrigger:  0.25,
		RightTrigger: 1,
		Buttons:      ButtonA | ButtonDPadUp | ButtonStart | ButtonLeftBumper | ButtonLeftThumb,
	}

	tests := []struct {
		name   string
		layout Layout
		want   State
	}{
		{"empty", NewLayout(), State{}},
		{"abxy", NewLayout().ABXY(), State{Buttons: ButtonA}},
		{"dpad and menu", NewLayout().DPad().Menu(), State{Buttons: ButtonDPadUp | ButtonStart}},
		{"joy", NewLayout().Joy(), State{LeftStick: full.LeftStick, RightStick: full.RightStick, Buttons: ButtonLeftThumb}},
		{"triggers", NewLayout().Triggers(), State{LeftTrigger: 0.25, RightTrigger: 1, Buttons: ButtonLeftBumper}},
		{"full", FullLayout(), full},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.layout.Filter(full); got != tt.want {
				t.Errorf("Filter() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestControllersDeadzone(t *testing.T) {
	c, p := newTestControllers(t, 0.2)

	p.pads = []Pad{{ID: 0, State: State{LeftStick: Stick{X: 0.1, Y: 0.1}, RightStick: Stick{X: 1}}}}
	c.Update(0)
	s, ok := c.Get(0, NewLayout().Joy())
	if !ok {
		t.Fatal("controller 0 missing")
	}
	if s.LeftStick != (Stick{}) {
		t.Errorf("LeftStick = %+v, want zero inside deadzone", s.LeftStick)
	}
	if s.RightStick.X != 1 || s.RightStick.Y != 0 {
		t.Errorf("RightStick = %+v, want full deflection kept", s.RightStick)
	}
}

func TestControllersPollErrorIsTransient(t *testing.T) {
	c, p := newTestControllers(t, 0)
	p.err = errors.New("hid read failed")

	err := c.Update(0)
	if err == nil || core.IsFatal(err) {
		t.Errorf("Update() = %v, want transient error", err)
	}

	c.Shutdown()
	if !p.closed {
		t.Error("poller not closed")
	}
}
