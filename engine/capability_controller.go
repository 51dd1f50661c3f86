//go:build !nocontroller

package engine

import (
	"github.com/spaghettifunk/cala/engine/controller"
	"github.com/spaghettifunk/cala/engine/systems"
)

type controllerCapability struct {
	Controllers *controller.Controllers
}

// WithControllerPoller replaces the GLFW gamepad poller.
func WithControllerPoller(poller controller.Poller) Option {
	return withBackend("controller", poller)
}

func init() {
	register(capability{
		name:  "controller",
		order: orderController,
		build: func(b *builder) systems.System {
			poller, ok := b.options.backends["controller"].(controller.Poller)
			switch {
			case ok:
			case b.config.Headless:
				poller = controller.NullPoller{}
			default:
				poller = controller.NewGLFWPoller()
			}
			c := controller.New(controller.Config{Deadzone: b.config.Controller.Deadzone}, poller, b.journal)
			b.context.Controllers = c
			return c
		},
	})
}
