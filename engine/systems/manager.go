package systems

import (
	"fmt"
	"time"

	"github.com/spaghettifunk/cala/engine/core"
)

// DefaultServiceBudget is how long a single Update is expected to take.
const DefaultServiceBudget = 4 * time.Millisecond

// Registry holds the systems compiled into this build, in declaration order.
// It is frozen as soon as Initialize is called.
type Registry struct {
	systems     []System
	initialized int
	frozen      bool
	shutdown    bool
	budget      time.Duration
	journal     *core.Journal
}

func NewRegistry(journal *core.Journal, systems ...System) *Registry {
	if journal == nil {
		journal = core.DiscardJournal()
	}
	return &Registry{
		systems: append([]System(nil), systems...),
		budget:  DefaultServiceBudget,
		journal: journal.With("component", "registry"),
	}
}

// Register appends a system. It fails once the registry is frozen.
func (r *Registry) Register(s System) error {
	if r.frozen {
		return fmt.Errorf("register %q: %w", s.Name(), core.ErrRegistryFrozen)
	}
	r.systems = append(r.systems, s)
	return nil
}

// SetServiceBudget changes the per-Update budget. Zero disables the check.
func (r *Registry) SetServiceBudget(d time.Duration) {
	r.budget = d
}

func (r *Registry) Len() int {
	return len(r.systems)
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.systems))
	for i, s := range r.systems {
		names[i] = s.Name()
	}
	return names
}

// Initialize initializes every system in order. When one fails, the systems
// already initialized are shut down in reverse order and the failure is
// returned as a *core.SystemError.
func (r *Registry) Initialize() error {
	if r.frozen {
		return core.ErrAlreadyInitialized
	}
	r.frozen = true

	for _, s := range r.systems {
		r.journal.Debug("initializing system", "system", s.Name())
		if err := s.Initialize(); err != nil {
			r.journal.Error("system failed to initialize", "system", s.Name(), "err", err)
			r.Shutdown()
			return &core.SystemError{System: s.Name(), Phase: core.PhaseInitialize, Err: err}
		}
		r.initialized++
	}
	r.journal.Info("systems initialized", "count", r.initialized)
	return nil
}

// Update services every system once, in order. Transient errors are journaled
// and servicing continues; the first fatal error stops the tick and is returned.
func (r *Registry) Update(delta time.Duration) error {
	for i := 0; i < r.initialized; i++ {
		s := r.systems[i]
		start := time.Now()
		err := s.Update(delta)
		if elapsed := time.Since(start); r.budget > 0 && elapsed > r.budget {
			r.journal.Fix("system %s took %s to service, budget is %s", s.Name(), elapsed, r.budget)
		}
		if err == nil {
			continue
		}
		if core.IsFatal(err) {
			return &core.SystemError{System: s.Name(), Phase: core.PhaseService, Err: err}
		}
		r.journal.Warn("transient service error", "system", s.Name(), "err", err)
	}
	return nil
}

// Shutdown shuts the initialized systems down in reverse order. Failures are
// journaled and never stop the remaining systems from shutting down.
func (r *Registry) Shutdown() {
	if r.shutdown {
		return
	}
	r.shutdown = true
	for i := r.initialized - 1; i >= 0; i-- {
		s := r.systems[i]
		r.journal.Debug("shutting down system", "system", s.Name())
		if err := shutdownSystem(s); err != nil {
			serr := &core.SystemError{System: s.Name(), Phase: core.PhaseShutdown, Err: err}
			r.journal.Error("system failed to shut down", "err", serr)
		}
	}
	r.initialized = 0
}

// shutdownSystem turns a panic in s.Shutdown into an error.
func shutdownSystem(s System) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return s.Shutdown()
}
