package engine

import "time"

// Loop is what the step function returns after every tick.
type Loop uint8

const (
	// Continue keeps the engine running.
	Continue Loop = iota
	// Exit stops the engine once the current tick is done.
	Exit
)

func (l Loop) String() string {
	switch l {
	case Continue:
		return "continue"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// Step advances the application by one tick. It runs on the goroutine that
// called Run, after every capability was serviced for the tick.
type Step[T any] func(ctx *Context, state *T, delta time.Duration) Loop

// InitFunc builds the application state. It runs once, before any capability
// is initialized.
type InitFunc[T any] func() T
