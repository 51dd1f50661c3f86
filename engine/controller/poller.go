package controller

type ID int

// Pad is one connected controller as seen by a Poller.
type Pad struct {
	ID    ID
	Name  string
	State State
}

// Poller reads the controllers attached to the machine. Poll must return
// immediately.
type Poller interface {
	Open() error
	Poll() ([]Pad, error)
	Close() error
}

// NullPoller never reports a controller.
type NullPoller struct{}

func (NullPoller) Open() error          { return nil }
func (NullPoller) Poll() ([]Pad, error) { return nil, nil }
func (NullPoller) Close() error         { return nil }
