package host

import "github.com/cockroachdb/errors"

var (
	// ErrUnsupported indicates the primitive has no implementation on this platform.
	ErrUnsupported = errors.New("host: unsupported on this platform")

	// ErrClosed indicates a write or close on a descriptor that was already closed.
	ErrClosed = errors.New("host: descriptor closed")
)
