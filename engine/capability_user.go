//go:build !nouser

package engine

import (
	"github.com/spaghettifunk/cala/engine/systems"
	"github.com/spaghettifunk/cala/engine/user"
)

type userCapability struct {
	User *user.User
}

// WithUserLookup replaces the account lookup of the user capability.
func WithUserLookup(lookup user.Lookup) Option {
	return withBackend("user", lookup)
}

func init() {
	register(capability{
		name:  "user",
		order: orderUser,
		build: func(b *builder) systems.System {
			var opts []user.Option
			if lookup, ok := b.options.backends["user"].(user.Lookup); ok {
				opts = append(opts, user.WithLookup(lookup))
			}
			u := user.New(b.journal, opts...)
			b.context.User = u
			return u
		},
	})
}
