// Package heap provides the process heap: block allocation, release,
// reallocation and aligned allocation over memory regions obtained from a
// growth collaborator.
//
// # Overview
//
// A Heap owns one or more regions. Each region is tiled by blocks; every
// block is a 32-byte in-band header followed by its payload. Free blocks are
// indexed in segregated size classes, each a min-heap keyed on size, so the
// smallest block that fits is found in O(log n). Blocks larger than the last
// class live on a separate list.
//
//	h, err := heap.New(heap.NewDefaultGrower(), nil)
//	if err != nil {
//	    return err
//	}
//	p, err := h.Allocate(100)
//	if err != nil {
//	    return err
//	}
//	b, _ := h.Payload(p)
//	copy(b, "hello")
//	_ = h.Release(p)
//
// # Block Header
//
// Header layout (little endian):
//
//	0x00  guard      uint32  constant 0x52544B48
//	0x04  flags      uint32  bit 0 = free
//	0x08  size       uint64  usable payload bytes (multiple of 32)
//	0x10  prevSize   uint64  payload size of the physically preceding block, 0 if first
//	0x18  backOffset uint64  backGuard<<32 | delta
//
// The word immediately before any payload address handed out is a
// back-offset word. For ordinary allocations it is the header's own last
// field with delta 0. AllocateAligned over-allocates and writes a second
// back-offset word just before the aligned address, so Release and
// Reallocate recover the header from any payload address with one step.
// Both guards are validated before a header is trusted; a failed check is
// reported as ErrInvalidPointer instead of corrupting the pool.
//
// # Splitting and Coalescing
//
// A block is split when the remainder can hold a header plus MinAlign bytes.
// Release merges the block with free physical neighbours immediately, so no
// two adjacent blocks are ever both free. Blocks never cross a region
// boundary.
//
// # Growth
//
// When no free block fits, the heap asks its Grower for a new region of at
// least GrowQuantum bytes, adds it as one free block and retries once.
// Growth runs outside the heap lock. If the Grower fails, the error is
// returned marked with ErrOutOfMemory; the heap never aborts the process.
//
// # Thread Safety
//
// All operations are safe for concurrent use. A single mutex covers every
// region and the free set; critical sections are bounded and do no I/O.
package heap
