package controller

import (
	"fmt"
	"iter"
	stdmath "math"
	"slices"
	"time"

	"github.com/spaghettifunk/cala/engine/core"
	"github.com/spaghettifunk/cala/engine/math"
)

const DefaultDeadzone float32 = 0.15

type Config struct {
	// Deadzone is the radius around the stick center that reads as zero.
	Deadzone float32
}

type pad struct {
	name    string
	current State
	prev    State
}

// Controllers is the controller capability. The poller is read once per tick;
// the state seen by the application only changes in Update.
type Controllers struct {
	cfg     Config
	poller  Poller
	journal *core.Journal

	pads         map[ID]*pad
	order        []ID
	connected    []ID
	disconnected []ID

	initialized bool
}

func New(cfg Config, poller Poller, journal *core.Journal) *Controllers {
	if journal == nil {
		journal = core.DiscardJournal()
	}
	cfg.Deadzone = math.Clamp(cfg.Deadzone, 0, 0.99)
	return &Controllers{
		cfg:     cfg,
		poller:  poller,
		journal: journal.With("system", "controller"),
		pads:    map[ID]*pad{},
	}
}

func (c *Controllers) Name() string {
	return "controller"
}

func (c *Controllers) Initialize() error {
	if c.initialized {
		return core.ErrAlreadyInitialized
	}
	if err := c.poller.Open(); err != nil {
		return fmt.Errorf("failed to open controller poller: %w", err)
	}
	c.initialized = true
	return nil
}

func (c *Controllers) Update(delta time.Duration) error {
	if !c.initialized {
		return core.ErrNotInitialized
	}
	c.connected = c.connected[:0]
	c.disconnected = c.disconnected[:0]

	polled, err := c.poller.Poll()
	if err != nil {
		// previous state stays
		return fmt.Errorf("controller poll: %w", err)
	}

	seen := make(map[ID]bool, len(polled))
	for _, p := range polled {
		seen[p.ID] = true
		state := c.applyDeadzone(p.State)
		if existing, ok := c.pads[p.ID]; ok {
			existing.prev = existing.current
			existing.current = state
			continue
		}
		c.pads[p.ID] = &pad{name: p.Name, current: state}
		c.connected = append(c.connected, p.ID)
		c.journal.Info("controller connected", "id", p.ID, "name", p.Name)
	}
	for id := range c.pads {
		if !seen[id] {
			delete(c.pads, id)
			c.disconnected = append(c.disconnected, id)
			c.journal.Info("controller disconnected", "id", id)
		}
	}

	c.order = c.order[:0]
	for id := range c.pads {
		c.order = append(c.order, id)
	}
	slices.Sort(c.order)
	slices.Sort(c.connected)
	slices.Sort(c.disconnected)
	return nil
}

func (c *Controllers) Shutdown() error {
	if !c.initialized {
		return nil
	}
	c.initialized = false
	clear(c.pads)
	c.order = c.order[:0]
	return c.poller.Close()
}

// All yields every connected controller in ID order, with its state filtered
// through layout.
func (c *Controllers) All(layout Layout) iter.Seq2[ID, State] {
	return func(yield func(ID, State) bool) {
		for _, id := range c.order {
			if !yield(id, layout.Filter(c.pads[id].current)) {
				return
			}
		}
	}
}

// Get returns the filtered state of one controller.
func (c *Controllers) Get(id ID, layout Layout) (State, bool) {
	p, ok := c.pads[id]
	if !ok {
		return State{}, false
	}
	return layout.Filter(p.current), true
}

func (c *Controllers) Len() int {
	return len(c.order)
}

// PadName returns the name reported by the controller.
func (c *Controllers) PadName(id ID) string {
	if p, ok := c.pads[id]; ok {
		return p.name
	}
	return ""
}

// Pressed reports whether every button in b went down this tick.
func (c *Controllers) Pressed(id ID, b Buttons) bool {
	p, ok := c.pads[id]
	return ok && p.current.Buttons.Has(b) && p.prev.Buttons&b == 0
}

// Released reports whether every button in b went up this tick.
func (c *Controllers) Released(id ID, b Buttons) bool {
	p, ok := c.pads[id]
	return ok && p.current.Buttons&b == 0 && p.prev.Buttons.Has(b)
}

// Connected returns the controllers that appeared this tick.
func (c *Controllers) Connected() []ID {
	return c.connected
}

// Disconnected returns the controllers that went away this tick.
func (c *Controllers) Disconnected() []ID {
	return c.disconnected
}

func (c *Controllers) applyDeadzone(s State) State {
	s.LeftStick = c.deadzone(s.LeftStick)
	s.RightStick = c.deadzone(s.RightStick)
	s.LeftTrigger = math.Clamp(s.LeftTrigger, 0, 1)
	s.RightTrigger = math.Clamp(s.RightTrigger, 0, 1)
	return s
}

// deadzone zeroes small deflections and rescales the rest so that the output
// still spans the full range.
func (c *Controllers) deadzone(s Stick) Stick {
	mag := float32(stdmath.Hypot(float64(s.X), float64(s.Y)))
	if mag <= c.cfg.Deadzone || mag == 0 {
		return Stick{}
	}
	scaled := math.Clamp((mag-c.cfg.Deadzone)/(1-c.cfg.Deadzone), 0, 1)
	return Stick{X: s.X / mag * scaled, Y: s.Y / mag * scaled}
}
