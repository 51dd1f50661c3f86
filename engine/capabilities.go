package engine

import (
	"slices"

	"github.com/spaghettifunk/cala/engine/core"
	"github.com/spaghettifunk/cala/engine/systems"
)

// Registry order of the capabilities. Files guarded by build tags register
// the ones compiled in.
const (
	orderClock = iota
	orderAudio
	orderController
	orderGraphics
	orderFiles
	orderUser
)

type capability struct {
	name  string
	order int
	// build creates the system and publishes it on the context.
	build func(b *builder) systems.System
}

type builder struct {
	config  *ApplicationConfig
	options *options
	journal *core.Journal
	context *Context
}

var capabilities []capability

func register(c capability) {
	capabilities = append(capabilities, c)
	slices.SortFunc(capabilities, func(a, b capability) int { return a.order - b.order })
}

// Capabilities returns the names of the capabilities compiled in, in
// registry order.
func Capabilities() []string {
	names := make([]string, len(capabilities))
	for i, c := range capabilities {
		names[i] = c.name
	}
	return names
}

func buildCapabilities(b *builder) []systems.System {
	out := make([]systems.System, 0, len(capabilities))
	for _, c := range capabilities {
		out = append(out, c.build(b))
	}
	return out
}
