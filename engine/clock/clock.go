package clock

import (
	"time"

	"github.com/spaghettifunk/cala/engine/core"
)

// Clock is the clock capability. Every reading is taken once per tick, in
// Update, so the application sees a stable time for the whole step.
type Clock struct {
	journal     *core.Journal
	wall        func() time.Time
	now         time.Time
	started     time.Time
	elapsed     time.Duration
	delta       time.Duration
	initialized bool
}

type Option func(*Clock)

// WithWallClock replaces time.Now as the source of the time of day.
func WithWallClock(fn func() time.Time) Option {
	return func(c *Clock) {
		c.wall = fn
	}
}

func New(journal *core.Journal, opts ...Option) *Clock {
	if journal == nil {
		journal = core.DiscardJournal()
	}
	c := &Clock{
		journal: journal.With("system", "clock"),
		wall:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Clock) Name() string {
	return "clock"
}

func (c *Clock) Initialize() error {
	if c.initialized {
		return core.ErrAlreadyInitialized
	}
	c.initialized = true
	c.now = c.wall()
	c.started = c.now
	c.journal.Debug("clock started", "at", c.started.Format(time.RFC3339))
	return nil
}

func (c *Clock) Update(delta time.Duration) error {
	if !c.initialized {
		return core.ErrNotInitialized
	}
	c.delta = delta
	c.elapsed += delta
	c.now = c.wall()
	return nil
}

func (c *Clock) Shutdown() error {
	if c.initialized {
		c.journal.Debug("clock stopped", "elapsed", c.elapsed)
	}
	c.initialized = false
	return nil
}

// Now returns the time of day sampled at the start of the current tick.
func (c *Clock) Now() time.Time {
	return c.now
}

// Started returns the time of day at which the clock was initialized.
func (c *Clock) Started() time.Time {
	return c.started
}

// Elapsed returns the sum of all frame deltas so far.
func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

// Delta returns the frame delta of the current tick.
func (c *Clock) Delta() time.Duration {
	return c.delta
}

// After returns a timer that is done once d of run time has passed.
func (c *Clock) After(d time.Duration) *Timer {
	return &Timer{clock: c, deadline: c.elapsed + d}
}

// Every returns a ticker firing every d of run time. A non-positive d panics,
// like time.NewTicker.
func (c *Clock) Every(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for Every")
	}
	return &Ticker{clock: c, interval: d, last: c.elapsed}
}

type Timer struct {
	clock    *Clock
	deadline time.Duration
	stopped  bool
}

// Done reports whether the timer expired. A stopped timer is never done.
func (t *Timer) Done() bool {
	return !t.stopped && t.clock.elapsed >= t.deadline
}

// Remaining returns the run time left before the timer expires.
func (t *Timer) Remaining() time.Duration {
	if r := t.deadline - t.clock.elapsed; r > 0 {
		return r
	}
	return 0
}

// Reset restarts the timer to expire d from now.
func (t *Timer) Reset(d time.Duration) {
	t.deadline = t.clock.elapsed + d
	t.stopped = false
}

func (t *Timer) Stop() {
	t.stopped = true
}

type Ticker struct {
	clock    *Clock
	interval time.Duration
	last     time.Duration
	stopped  bool
}

// Ready returns how many intervals elapsed since the previous call. Leftover
// time carries over to the next call.
func (t *Ticker) Ready() int {
	if t.stopped {
		return 0
	}
	n := (t.clock.elapsed - t.last) / t.interval
	t.last += n * t.interval
	return int(n)
}

func (t *Ticker) Stop() {
	t.stopped = true
}
