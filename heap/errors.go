package heap

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfMemory indicates that no free block was large enough and growth failed.
	ErrOutOfMemory = errors.New("heap: out of memory")

	// ErrOverflow indicates that count*elemSize of a zeroed allocation is not representable.
	ErrOverflow = errors.New("heap: size overflow")

	// ErrInvalidPointer indicates a pointer that was not produced by this heap
	// or whose header failed its guard check.
	ErrInvalidPointer = errors.New("heap: invalid pointer")

	// ErrDoubleFree indicates an attempt to release a block that is already free.
	ErrDoubleFree = errors.New("heap: block already free")

	// ErrBadAlignment indicates an alignment that is not a power of two or exceeds MaxAlign.
	ErrBadAlignment = errors.New("heap: bad alignment")

	// ErrClosed indicates use of a heap after Close.
	ErrClosed = errors.New("heap: closed")

	// ErrUnterminated indicates a string read that ran off the end of its region.
	ErrUnterminated = errors.New("heap: string not terminated")

	// ErrGrowLimit indicates that a LimitGrower's byte budget is exhausted.
	ErrGrowLimit = errors.New("heap: growth budget exhausted")
)
