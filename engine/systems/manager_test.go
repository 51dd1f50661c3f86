package systems

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spaghettifunk/cala/engine/core"
)

type fakeSystem struct {
	name      string
	events    *[]string
	initErr   error
	updateErr error
	stopErr   error
	stopPanic bool
	sleep     time.Duration
}

func (f *fakeSystem) Name() string { return f.name }

func (f *fakeSystem) Initialize() error {
	*f.events = append(*f.events, "init "+f.name)
	return f.initErr
}

func (f *fakeSystem) Update(delta time.Duration) error {
	*f.events = append(*f.events, "update "+f.name)
	if f.sleep > 0 {
		time.Sleep(f.sleep)
	}
	return f.updateErr
}

func (f *fakeSystem) Shutdown() error {
	*f.events = append(*f.events, "shutdown "+f.name)
	if f.stopPanic {
		panic("release failed")
	}
	return f.stopErr
}

func newFakes(events *[]string, names ...string) []System {
	out := make([]System, len(names))
	for i, n := range names {
		out[i] = &fakeSystem{name: n, events: events}
	}
	return out
}

func TestRegistryLifecycleOrder(t *testing.T) {
	var events []string
	r := NewRegistry(nil, newFakes(&events, "a", "b", "c")...)

	if err := r.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := r.Update(time.Millisecond); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	r.Shutdown()

	want := []string{
		"init a", "init b", "init c",
		"update a", "update b", "update c",
		"shutdown c", "shutdown b", "shutdown a",
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestRegistryInitializeRollback(t *testing.T) {
	var events []string
	fakes := newFakes(&events, "a", "b", "c")
	boom := errors.New("no device")
	fakes[1].(*fakeSystem).initErr = boom

	r := NewRegistry(nil, fakes...)
	err := r.Initialize()

	var serr *core.SystemError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *core.SystemError, got %v", err)
	}
	if serr.System != "b" || serr.Phase != core.PhaseInitialize {
		t.Errorf("unexpected error %+v", serr)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error does not wrap cause: %v", err)
	}

	want := []string{"init a", "init b", "shutdown a"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}

	// nothing left to shut down
	r.Shutdown()
	if !reflect.DeepEqual(events, want) {
		t.Errorf("second shutdown touched systems: %v", events)
	}
}

func TestRegistryFrozen(t *testing.T) {
	var events []string
	r := NewRegistry(nil, newFakes(&events, "a")...)
	if err := r.Register(&fakeSystem{name: "b", events: &events}); err != nil {
		t.Fatalf("Register before start: %v", err)
	}
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&fakeSystem{name: "c", events: &events}); !errors.Is(err, core.ErrRegistryFrozen) {
		t.Errorf("Register after start = %v, want ErrRegistryFrozen", err)
	}
	if err := r.Initialize(); !errors.Is(err, core.ErrAlreadyInitialized) {
		t.Errorf("second Initialize = %v, want ErrAlreadyInitialized", err)
	}
	if got := r.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestRegistryUpdateErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantFatal bool
		wantCalls []string
	}{
		{
			name:      "transient continues",
			err:       errors.New("buffer overrun"),
			wantCalls: []string{"update a", "update b", "update c"},
		},
		{
			name:      "fatal stops",
			err:       core.Fatal(errors.New("device lost")),
			wantFatal: true,
			wantCalls: []string{"update a", "update b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []string
			fakes := newFakes(&events, "a", "b", "c")
			fakes[1].(*fakeSystem).updateErr = tt.err

			var buf bytes.Buffer
			r := NewRegistry(core.NewJournal(&buf, core.JournalOptions{Level: core.DebugLevel}), fakes...)
			if err := r.Initialize(); err != nil {
				t.Fatal(err)
			}
			events = events[:0]

			err := r.Update(0)
			if tt.wantFatal {
				var serr *core.SystemError
				if !errors.As(err, &serr) || serr.System != "b" || serr.Phase != core.PhaseService {
					t.Fatalf("Update() = %v, want service error from b", err)
				}
			} else {
				if err != nil {
					t.Fatalf("Update() = %v, want nil", err)
				}
				if !strings.Contains(buf.String(), "buffer overrun") {
					t.Errorf("transient error was not journaled: %s", buf.String())
				}
			}
			if !reflect.DeepEqual(events, tt.wantCalls) {
				t.Errorf("events = %v, want %v", events, tt.wantCalls)
			}
		})
	}
}

func TestRegistryShutdownContinuesOnError(t *testing.T) {
	var events []string
	fakes := newFakes(&events, "a", "b", "c")
	fakes[1].(*fakeSystem).stopErr = errors.New("stuck")

	var buf bytes.Buffer
	r := NewRegistry(core.NewJournal(&buf, core.JournalOptions{Level: core.DebugLevel}), fakes...)
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}
	r.Shutdown()

	want := []string{"init a", "init b", "init c", "shutdown c", "shutdown b", "shutdown a"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if !strings.Contains(buf.String(), "b: shutdown: stuck") {
		t.Errorf("shutdown failure not journaled: %s", buf.String())
	}
}

func TestRegistryShutdownContinuesOnPanic(t *testing.T) {
	var events []string
	fakes := newFakes(&events, "a", "b", "c")
	fakes[2].(*fakeSystem).stopPanic = true

	var buf bytes.Buffer
	r := NewRegistry(core.NewJournal(&buf, core.JournalOptions{Level: core.DebugLevel}), fakes...)
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}
	r.Shutdown()

	want := []string{"init a", "init b", "init c", "shutdown c", "shutdown b", "shutdown a"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
	if !strings.Contains(buf.String(), "c: shutdown: panic: release failed") {
		t.Errorf("shutdown panic not journaled: %s", buf.String())
	}
}

func TestRegistryServiceBudget(t *testing.T) {
	var events []string
	slow := &fakeSystem{name: "slow", events: &events, sleep: 5 * time.Millisecond}

	var buf bytes.Buffer
	r := NewRegistry(core.NewJournal(&buf, core.JournalOptions{Level: core.DebugLevel}), slow)
	r.SetServiceBudget(time.Millisecond)
	if err := r.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := r.Update(0); err != nil {
		t.Fatalf("overrun must not be an error, got %v", err)
	}
	if !strings.Contains(buf.String(), "FIXME: system slow took") {
		t.Errorf("budget overrun not journaled: %s", buf.String())
	}
}
