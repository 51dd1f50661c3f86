package engine

import (
	"sync/atomic"

	"github.com/spaghettifunk/cala/engine/core"
)

// Context is handed to the step function. A capability field (Clock, Audio,
// Controllers, Graphics, Files, User) only exists when the capability is
// compiled in.
type Context struct {
	clockCapability
	audioCapability
	controllerCapability
	graphicsCapability
	filesCapability
	userCapability

	Journal *core.Journal

	title        string
	ticks        uint64
	metrics      *core.Metrics
	interrupted  *atomic.Bool
	capabilities []string
}

func (c *Context) Title() string {
	return c.title
}

// Ticks returns how many ticks ran, the current one included.
func (c *Context) Ticks() uint64 {
	return c.ticks
}

func (c *Context) Metrics() core.FrameMetrics {
	return c.metrics.Snapshot()
}

// Interrupted reports whether the process was asked to stop. The step
// function decides when to return Exit.
func (c *Context) Interrupted() bool {
	return c.interrupted.Load()
}

// Capabilities returns the names of the systems serviced every tick.
func (c *Context) Capabilities() []string {
	return append([]string(nil), c.capabilities...)
}
