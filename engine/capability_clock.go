//go:build !noclock

package engine

import (
	"time"

	"github.com/spaghettifunk/cala/engine/clock"
	"github.com/spaghettifunk/cala/engine/systems"
)

type clockCapability struct {
	Clock *clock.Clock
}

// WithWallClock replaces time.Now as the time of day reported by the clock
// capability.
func WithWallClock(fn func() time.Time) Option {
	return withBackend("clock", fn)
}

func init() {
	register(capability{
		name:  "clock",
		order: orderClock,
		build: func(b *builder) systems.System {
			var opts []clock.Option
			if fn, ok := b.options.backends["clock"].(func() time.Time); ok {
				opts = append(opts, clock.WithWallClock(fn))
			}
			c := clock.New(b.journal, opts...)
			b.context.Clock = c
			return c
		},
	})
}
