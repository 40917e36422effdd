package lifecycle

import "sync/atomic"

var draining atomic.Bool

// SetDraining marks the process as draining. Set on SIGTERM/SIGINT so the
// health endpoint can report shutting-down before the listener closes.
func SetDraining(v bool) {
	draining.Store(v)
}

// IsDraining reports whether the process is shutting down and should not
// receive new traffic.
func IsDraining() bool {
	return draining.Load()
}
