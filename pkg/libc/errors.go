package libc

import "github.com/cockroachdb/errors"

var (
	// ErrInitialized indicates Init was called while a runtime is active.
	ErrInitialized = errors.New("libc: already initialized")

	// ErrConfig indicates an invalid configuration document.
	ErrConfig = errors.New("libc: invalid config")
)
