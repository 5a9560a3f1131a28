package libc

import (
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/rtkit/heap"
	"github.com/joshuapare/rtkit/internal/host"
	"github.com/joshuapare/rtkit/printf"
	"github.com/joshuapare/rtkit/tls"
)

// Errno values.
const (
	EPERM     = 1
	EINTR     = 4
	EIO       = 5
	ENOMEM    = 12
	EINVAL    = 22
	ERANGE    = 34
	ENOSYS    = 38
	EOVERFLOW = 75
)

// errnoFor maps a core error to the errno a C caller would see.
func errnoFor(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, heap.ErrOverflow):
		return EOVERFLOW
	case errors.Is(err, heap.ErrOutOfMemory):
		return ENOMEM
	case errors.Is(err, heap.ErrInvalidPointer),
		errors.Is(err, heap.ErrDoubleFree),
		errors.Is(err, heap.ErrBadAlignment),
		errors.Is(err, printf.ErrInvalidDirective),
		errors.Is(err, printf.ErrMissingArgument),
		errors.Is(err, printf.ErrBadArgument),
		errors.Is(err, tls.ErrSlotRange):
		return EINVAL
	case errors.Is(err, printf.ErrShortBuffer):
		return ERANGE
	case errors.Is(err, host.ErrUnsupported):
		return ENOSYS
	case errors.Is(err, heap.ErrClosed), errors.Is(err, host.ErrClosed):
		return EPERM
	}
	var en syscall.Errno
	if errors.As(err, &en) {
		return int(en)
	}
	return EIO
}
