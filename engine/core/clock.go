package core

import (
	"sync"
	"time"
)

// TimeSource returns a monotonic reading relative to an arbitrary origin.
// Readings must never be affected by wall clock adjustments.
type TimeSource interface {
	Now() time.Duration
}

// MonotonicSource reads Go's monotonic clock.
type MonotonicSource struct {
	origin time.Time
}

func NewMonotonicSource() *MonotonicSource {
	return &MonotonicSource{origin: time.Now()}
}

func (s *MonotonicSource) Now() time.Duration {
	// time.Since uses the monotonic reading captured by time.Now.
	return time.Since(s.origin)
}

// ManualSource is a TimeSource advanced by hand. Safe for concurrent use.
type ManualSource struct {
	mu  sync.Mutex
	now time.Duration
}

func (s *ManualSource) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Advance moves the source forward by d.
func (s *ManualSource) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	s.mu.Unlock()
}

// Set forces the reading to now, even backwards.
func (s *ManualSource) Set(now time.Duration) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Clock measures the delta between ticks.
type Clock struct {
	source  TimeSource
	started bool
	first   time.Duration
	last    time.Duration
}

func NewClock(source TimeSource) (*Clock, error) {
	if source == nil {
		return nil, ErrNoTimeSource
	}
	return &Clock{source: source}, nil
}

// Now returns the current reading of the underlying source.
func (c *Clock) Now() time.Duration {
	return c.source.Now()
}

// Tick returns the time elapsed since the previous Tick and moves the reference
// point to now. The first Tick returns 0.
func (c *Clock) Tick() time.Duration {
	now := c.source.Now()
	if !c.started {
		c.started = true
		c.first = now
		c.last = now
		return 0
	}
	delta := now - c.last
	if delta < 0 {
		delta = 0
	}
	// never move the reference backwards, otherwise the next delta double counts
	if now > c.last {
		c.last = now
	}
	return delta
}

// Elapsed returns the time since the first Tick.
func (c *Clock) Elapsed() time.Duration {
	if !c.started {
		return 0
	}
	return c.last - c.first
}
