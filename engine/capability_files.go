//go:build !nofiles

package engine

import (
	"github.com/spaghettifunk/cala/engine/files"
	"github.com/spaghettifunk/cala/engine/systems"
)

type filesCapability struct {
	Files *files.Files
}

// WithFileStore replaces the store selected by the files configuration.
func WithFileStore(store files.Store) Option {
	return withBackend("files", store)
}

func init() {
	register(capability{
		name:  "files",
		order: orderFiles,
		build: func(b *builder) systems.System {
			cfg := files.DefaultConfig()
			cfg.Root = b.config.filesRoot()
			if fc := b.config.Files; fc.Backend != "" {
				cfg.Backend = fc.Backend
			}
			cfg.Watch = b.config.Files.Watch
			if b.config.Files.Workers > 0 {
				cfg.Workers = b.config.Files.Workers
			}

			var opts []files.Option
			if store, ok := b.options.backends["files"].(files.Store); ok {
				opts = append(opts, files.WithStore(store))
			}
			f := files.New(cfg, b.journal, opts...)
			b.context.Files = f
			return f
		},
	})
}
