package tls

import "github.com/joshuapare/rtkit/internal/host"

// Identity names the calling thread.
type Identity interface {
	ThreadID() (int, error)
}

// OSIdentity identifies callers by kernel thread id. Goroutines must hold
// runtime.LockOSThread for the id to stay stable between calls.
type OSIdentity struct{}

// ThreadID returns the calling thread's kernel id.
func (OSIdentity) ThreadID() (int, error) { return host.ThreadID() }

// FixedIdentity reports the same id for every caller.
type FixedIdentity int

// ThreadID returns f.
func (f FixedIdentity) ThreadID() (int, error) { return int(f), nil }
