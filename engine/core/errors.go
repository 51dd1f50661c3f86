package core

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyInitialized = errors.New("already initialized")
	ErrNotInitialized     = errors.New("not initialized")
	ErrRegistryFrozen     = errors.New("registry is frozen, systems cannot be added after start")
	ErrAlreadyRunning     = errors.New("engine already started")
	ErrNoTimeSource       = errors.New("no monotonic time source available")
)

// Phase names the lifecycle step a system was in when it failed.
type Phase string

const (
	PhaseInitialize Phase = "initialize"
	PhaseService    Phase = "service"
	PhaseShutdown   Phase = "shutdown"
)

// SystemError identifies which system failed and during which phase.
type SystemError struct {
	System string
	Phase  Phase
	Err    error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.System, e.Phase, e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}

type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Fatal marks err as fatal. A fatal error returned from a system's Update stops
// the engine; every other error is treated as transient and only journaled.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err, or any error it wraps, was marked with Fatal.
func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}
