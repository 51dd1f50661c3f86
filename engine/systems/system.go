package systems

import "time"

// System is the lifecycle wrapper around one hardware capability.
//
// Initialize acquires the platform resources and is called exactly once, in
// registration order. Update services one tick; it must poll and return,
// leaving long running work to the system's own goroutines. Shutdown releases
// the resources, in reverse registration order.
type System interface {
	Name() string
	Initialize() error
	Update(delta time.Duration) error
	Shutdown() error
}
