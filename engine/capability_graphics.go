//go:build !nographics

package engine

import (
	"github.com/spaghettifunk/cala/engine/graphics"
	"github.com/spaghettifunk/cala/engine/systems"
)

type graphicsCapability struct {
	Graphics *graphics.Graphics
}

// WithPresenter replaces the window presenter.
func WithPresenter(presenter graphics.Presenter) Option {
	return withBackend("graphics", presenter)
}

func init() {
	register(capability{
		name:  "graphics",
		order: orderGraphics,
		build: func(b *builder) systems.System {
			presenter, ok := b.options.backends["graphics"].(graphics.Presenter)
			switch {
			case ok:
			case b.config.Headless:
				presenter = graphics.NewHeadlessPresenter()
			default:
				presenter = graphics.NewWindowPresenter(b.journal)
			}
			w := b.config.Window
			cfg := graphics.DefaultConfig()
			cfg.Title = b.config.Name
			cfg.X, cfg.Y = w.X, w.Y
			cfg.Width, cfg.Height = w.Width, w.Height
			cfg.Resizable = w.Resizable
			cfg.VSync = w.VSync
			cfg.Debug = w.Debug
			g := graphics.New(cfg, presenter, b.journal)
			b.context.Graphics = g
			return g
		},
	})
}
