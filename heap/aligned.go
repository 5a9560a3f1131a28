package heap

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/rtkit/internal/buf"
)

// AllocateAligned returns a block of at least size bytes whose address is a
// multiple of alignment. alignment must be a power of two no larger than
// Options.MaxAlign. The result is released or reallocated like any other
// block.
func (h *Heap) AllocateAligned(alignment, size uint64) (Ptr, error) {
	if !buf.IsPow2(alignment) || alignment > h.opts.MaxAlign {
		return Nil, errors.Wrapf(ErrBadAlignment, "heap: alignment %d", alignment)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats.AlignedCalls++

	if alignment <= MinAlign {
		return h.allocLocked(size)
	}

	// Over-allocate so an aligned address with room for size bytes exists
	// inside the payload, then record the distance back to the header.
	need, ok := roundPayload(size)
	if !ok {
		return Nil, errors.Wrapf(ErrOutOfMemory, "heap: aligned request of %d bytes", size)
	}
	total, ok := buf.AddU64(need, alignment-MinAlign)
	if !ok {
		return Nil, errors.Wrapf(ErrOutOfMemory, "heap: aligned request of %d bytes", size)
	}
	p, err := h.allocLocked(total)
	if err != nil {
		return Nil, err
	}

	a, ok := buf.AlignUp(uint64(p), alignment)
	if !ok {
		return Nil, errors.CombineErrors(
			errors.Wrapf(ErrOutOfMemory, "heap: aligning %#x to %d", uintptr(p), alignment),
			h.releaseLocked(p))
	}
	aligned := Ptr(a)
	if delta := uint64(aligned - p); delta > 0 {
		r := h.findRegion(aligned)
		off := int(aligned - r.base)
		buf.PutU64LE(r.data[off-8:], backWord(delta))
	}
	return aligned, nil
}
