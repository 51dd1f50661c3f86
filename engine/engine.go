package engine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/cala/engine/core"
	"github.com/spaghettifunk/cala/engine/systems"
)

type Stage uint32

const (
	// Engine is built but Run was not called yet
	EngineStageUninitialized Stage = iota
	// Engine is ticking
	EngineStageRunning
	// Engine is shutting the capabilities down
	EngineStageTerminating
	// Engine is done, it cannot be started again
	EngineStageTerminated
)

func (s Stage) String() string {
	switch s {
	case EngineStageUninitialized:
		return "uninitialized"
	case EngineStageRunning:
		return "running"
	case EngineStageTerminating:
		return "terminating"
	case EngineStageTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("stage(%d)", uint32(s))
	}
}

var ErrNoStep = errors.New("a step function is required")

type options struct {
	journal   *core.Journal
	source    core.TimeSource
	sourceSet bool
	systems   []systems.System
	replace   bool
	backends  map[string]any
	sleep     func(time.Duration)
}

type Option func(*options)

func WithJournal(journal *core.Journal) Option {
	return func(o *options) {
		o.journal = journal
	}
}

// WithTimeSource replaces the monotonic clock measuring the frame delta.
func WithTimeSource(source core.TimeSource) Option {
	return func(o *options) {
		o.source = source
		o.sourceSet = true
	}
}

// WithSystems services the given systems instead of the compiled-in
// capabilities. The capability fields of the Context stay nil.
func WithSystems(s ...systems.System) Option {
	return func(o *options) {
		o.systems = s
		o.replace = true
	}
}

// WithSleep replaces time.Sleep for frame pacing.
func WithSleep(sleep func(time.Duration)) Option {
	return func(o *options) {
		o.sleep = sleep
	}
}

func withBackend(name string, backend any) Option {
	return func(o *options) {
		o.backends[name] = backend
	}
}

// Engine runs the scheduler loop: every tick it services the capabilities,
// then calls the step function with the application state.
type Engine[T any] struct {
	config   ApplicationConfig
	step     Step[T]
	init     InitFunc[T]
	journal  *core.Journal
	clock    *core.Clock
	registry *systems.Registry
	metrics  *core.Metrics
	context  *Context
	sleep    func(time.Duration)

	stage       atomic.Uint32
	started     atomic.Bool
	interrupted atomic.Bool
	state       *T
	tornDown    bool
}

func New[T any](config ApplicationConfig, step Step[T], init InitFunc[T], opts ...Option) (*Engine[T], error) {
	if step == nil {
		return nil, ErrNoStep
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	o := &options{backends: map[string]any{}, sleep: time.Sleep}
	for _, opt := range opts {
		opt(o)
	}
	if !o.sourceSet {
		o.source = core.NewMonotonicSource()
	}
	if o.journal == nil {
		jo := core.DefaultJournalOptions()
		jo.Level = core.ParseLevel(config.LogLevel)
		jo.Format = config.LogFormat
		o.journal = core.NewJournal(os.Stderr, jo)
	}

	clock, err := core.NewClock(o.source)
	if err != nil {
		return nil, err
	}

	e := &Engine[T]{
		config:  config,
		step:    step,
		init:    init,
		journal: o.journal,
		clock:   clock,
		metrics: core.NewMetrics(),
		sleep:   o.sleep,
	}
	e.context = &Context{
		Journal:     o.journal,
		title:       config.Name,
		metrics:     e.metrics,
		interrupted: &e.interrupted,
	}

	var sys []systems.System
	if o.replace {
		sys = o.systems
	} else {
		sys = buildCapabilities(&builder{
			config:  &e.config,
			options: o,
			journal: o.journal,
			context: e.context,
		})
	}
	e.registry = systems.NewRegistry(o.journal, sys...)
	e.registry.SetServiceBudget(time.Duration(config.ServiceBudgetMS) * time.Millisecond)
	e.context.capabilities = e.registry.Names()
	return e, nil
}

func (e *Engine[T]) Stage() Stage {
	return Stage(e.stage.Load())
}

func (e *Engine[T]) setStage(s Stage) {
	e.stage.Store(uint32(s))
	e.journal.Debug("engine stage changed", "stage", s)
}

// Context returns the context passed to the step function.
func (e *Engine[T]) Context() *Context {
	return e.context
}

// Interrupt asks the application to stop. Safe to call from any goroutine;
// it is only observed through Context.Interrupted.
func (e *Engine[T]) Interrupt() {
	if !e.interrupted.Swap(true) {
		e.journal.Info("interrupt requested")
	}
}

// Run initializes the capabilities, ticks until the step function returns
// Exit or a capability fails fatally, and tears everything down. The
// returned error is the startup failure or the fatal service error.
func (e *Engine[T]) Run() (err error) {
	if !e.started.CompareAndSwap(false, true) {
		return core.ErrAlreadyRunning
	}

	defer func() {
		if r := recover(); r != nil {
			e.journal.Error("engine panicked, tearing down", "panic", r)
			e.teardown()
			panic(r)
		}
	}()

	var state T
	if e.init != nil {
		state = e.init()
	}
	e.state = &state

	if err := e.registry.Initialize(); err != nil {
		e.journal.Error("engine failed to start", "err", err)
		e.dropState()
		e.tornDown = true
		e.setStage(EngineStageTerminated)
		return err
	}

	e.setStage(EngineStageRunning)
	e.journal.Info("engine running", "title", e.config.Name, "capabilities", e.context.capabilities)

	for {
		delta := e.clock.Tick()
		frameStart := e.clock.Now()

		if serr := e.registry.Update(delta); serr != nil {
			e.journal.Error("fatal service error, stopping", "err", serr)
			err = serr
			break
		}

		e.context.ticks++
		loop := e.step(e.context, e.state, delta)
		e.metrics.Update(delta)

		if loop != Continue {
			if loop != Exit {
				e.journal.Fix("step returned unknown loop value %d, exiting", uint8(loop))
			}
			break
		}
		e.pace(frameStart)
	}

	e.teardown()
	return err
}

func (e *Engine[T]) pace(frameStart time.Duration) {
	if e.config.FrameRate <= 0 {
		return
	}
	target := time.Second / time.Duration(e.config.FrameRate)
	if spent := e.clock.Now() - frameStart; spent < target {
		e.sleep(target - spent)
	}
}

func (e *Engine[T]) teardown() {
	if e.tornDown {
		return
	}
	e.tornDown = true
	e.setStage(EngineStageTerminating)
	e.registry.Shutdown()
	e.dropState()
	e.setStage(EngineStageTerminated)
	m := e.metrics.Snapshot()
	e.journal.Info("engine terminated", "ticks", e.context.ticks, "fps", m.FPS)
}

// dropState releases the application state, closing it when it implements
// io.Closer.
func (e *Engine[T]) dropState() {
	state := e.state
	if state == nil {
		return
	}
	e.state = nil

	var closer io.Closer
	if c, ok := any(state).(io.Closer); ok {
		closer = c
	} else if c, ok := any(*state).(io.Closer); ok {
		closer = c
	}
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		e.journal.Warn("failed to close application state", "err", err)
	}
}
