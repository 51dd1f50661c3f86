package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/spaghettifunk/cala/engine/core"
	"github.com/spaghettifunk/cala/engine/systems"
)

const (
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
)

type Config struct {
	Root      string
	Backend   string
	Watch     bool
	Workers   int
	QueueSize int
}

func DefaultConfig() Config {
	return Config{
		Root:      "data",
		Backend:   BackendDir,
		Workers:   2,
		QueueSize: 64,
	}
}

// OpenStore opens the store selected by cfg.Backend. The sqlite backend keeps
// its database in Root/files.db.
func OpenStore(ctx context.Context, cfg Config, journal *core.Journal) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendDir:
		return NewDirStore(cfg.Root, journal)
	case BackendSQLite:
		if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
			return nil, fmt.Errorf("create root %s: %w", cfg.Root, err)
		}
		return NewSQLiteStore(ctx, filepath.Join(cfg.Root, "files.db"), journal)
	default:
		return nil, fmt.Errorf("unknown files backend %q", cfg.Backend)
	}
}

type Option func(*Files)

// WithStore makes Files use store instead of opening one from the config.
// Files closes it on shutdown.
func WithStore(store Store) Option {
	return func(f *Files) {
		f.store = store
	}
}

// Files is the files capability. Every operation runs on a worker and its
// callback is invoked from Update, on the scheduler goroutine.
type Files struct {
	cfg     Config
	journal *core.Journal
	store   Store
	jobs    *systems.JobSystem

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	completed []func()
	pending   map[string]struct{}

	changed     []string
	initialized bool
}

func New(cfg Config, journal *core.Journal, opts ...Option) *Files {
	if journal == nil {
		journal = core.DiscardJournal()
	}
	f := &Files{
		cfg:     cfg,
		journal: journal.With("system", "files"),
		pending: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Files) Name() string {
	return "files"
}

func (f *Files) Initialize() error {
	if f.initialized {
		return core.ErrAlreadyInitialized
	}
	f.ctx, f.cancel = context.WithCancel(context.Background())

	if f.store == nil {
		store, err := OpenStore(f.ctx, f.cfg, f.journal)
		if err != nil {
			f.cancel()
			return fmt.Errorf("failed to open %s store: %w", f.cfg.Backend, err)
		}
		f.store = store
	}

	workers := max(f.cfg.Workers, 1)
	jobs, err := systems.NewJobSystem(f.journal, workers, max(f.cfg.QueueSize, 0))
	if err != nil {
		f.cancel()
		f.store.Close()
		return err
	}
	f.jobs = jobs

	if f.cfg.Watch {
		if w, ok := f.store.(Watcher); ok {
			if err := w.Watch(f.markChanged); err != nil {
				f.journal.Warn("file watch unavailable", "err", err)
			}
		} else {
			f.journal.Fix("files backend %q cannot be watched", f.cfg.Backend)
		}
	}

	f.initialized = true
	f.journal.Info("files initialized", "root", f.cfg.Root, "backend", f.cfg.Backend, "workers", workers)
	return nil
}

func (f *Files) markChanged(name string) {
	f.mu.Lock()
	f.pending[name] = struct{}{}
	f.mu.Unlock()
}

func (f *Files) complete(fn func()) {
	f.mu.Lock()
	f.completed = append(f.completed, fn)
	f.mu.Unlock()
}

// Update runs the callbacks of the operations completed since the previous
// tick and collects the names changed meanwhile.
func (f *Files) Update(delta time.Duration) error {
	if !f.initialized {
		return core.ErrNotInitialized
	}
	f.mu.Lock()
	completed := f.completed
	f.completed = nil
	f.changed = f.changed[:0]
	for name := range f.pending {
		f.changed = append(f.changed, name)
	}
	clear(f.pending)
	f.mu.Unlock()

	slices.Sort(f.changed)
	for _, fn := range completed {
		fn()
	}
	return nil
}

func (f *Files) Shutdown() error {
	if !f.initialized {
		return nil
	}
	f.initialized = false
	f.jobs.Shutdown()
	f.cancel()

	f.mu.Lock()
	if n := len(f.completed); n > 0 {
		f.journal.Dev("dropping %d file callbacks at shutdown", n)
	}
	f.completed = nil
	f.mu.Unlock()

	return f.store.Close()
}

// Changed returns the names modified since the previous tick, sorted.
func (f *Files) Changed() []string {
	return slices.Clone(f.changed)
}

func (f *Files) submit(name string, run func() error, onFailure func(error), onComplete func()) {
	if !f.initialized {
		onFailure(core.ErrNotInitialized)
		return
	}
	err := f.jobs.TrySubmit(systems.JobTask{
		Name:    name,
		OnStart: run,
		OnComplete: func() {
			f.complete(onComplete)
		},
		OnFailure: func(err error) {
			f.complete(func() { onFailure(err) })
		},
	})
	if err != nil {
		f.complete(func() { onFailure(err) })
	}
}

// Load reads name and hands the payload to done.
func (f *Files) Load(name string, done func(data []byte, err error)) {
	if done == nil {
		done = func([]byte, error) {}
	}
	var data []byte
	f.submit("load "+name,
		func() (err error) {
			data, err = f.store.Load(f.ctx, name)
			return err
		},
		func(err error) { done(nil, err) },
		func() { done(data, nil) },
	)
}

// Save replaces the payload stored under name.
func (f *Files) Save(name string, data []byte, done func(err error)) {
	if done == nil {
		done = func(error) {}
	}
	data = slices.Clone(data)
	f.submit("save "+name,
		func() error { return f.store.Save(f.ctx, name, data) },
		done,
		func() { done(nil) },
	)
}

func (f *Files) Remove(name string, done func(err error)) {
	if done == nil {
		done = func(error) {}
	}
	f.submit("remove "+name,
		func() error { return f.store.Remove(f.ctx, name) },
		done,
		func() { done(nil) },
	)
}
