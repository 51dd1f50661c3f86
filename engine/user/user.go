package user

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/cala/engine/core"
)

type Option func(*User)

// WithLookup replaces Current as the source of user information.
func WithLookup(lookup Lookup) Option {
	return func(u *User) {
		u.lookup = lookup
	}
}

// User is the user capability. The information is read once at
// initialization and again on the tick following a Refresh.
type User struct {
	journal     *core.Journal
	lookup      Lookup
	info        Info
	refresh     bool
	initialized bool
}

func New(journal *core.Journal, opts ...Option) *User {
	if journal == nil {
		journal = core.DiscardJournal()
	}
	u := &User{
		journal: journal.With("system", "user"),
		lookup:  Current,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *User) Name() string {
	return "user"
}

func (u *User) Initialize() error {
	if u.initialized {
		return core.ErrAlreadyInitialized
	}
	info, err := u.lookup()
	if err != nil {
		return fmt.Errorf("failed to query user: %w", err)
	}
	u.info = info
	u.initialized = true
	u.journal.Debug("user queried", "username", info.Username, "language", info.Language)
	return nil
}

func (u *User) Update(delta time.Duration) error {
	if !u.initialized {
		return core.ErrNotInitialized
	}
	if !u.refresh {
		return nil
	}
	u.refresh = false
	info, err := u.lookup()
	if err != nil {
		return fmt.Errorf("failed to refresh user: %w", err)
	}
	u.info = info
	return nil
}

func (u *User) Shutdown() error {
	u.initialized = false
	return nil
}

func (u *User) Info() Info {
	return u.info
}

func (u *User) String() string {
	return u.info.String()
}

// Refresh asks for the information to be queried again on the next tick.
func (u *User) Refresh() {
	u.refresh = true
}
