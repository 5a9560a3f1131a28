package heap

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/rtkit/internal/buf"
)

// Reallocate resizes the block at p to size bytes, preserving the first
// min(old, size) bytes.
//
// Reallocate(Nil, n) is Allocate(n). Reallocate(p, 0) releases p and returns
// Nil. Shrinking happens in place. Growth first tries to absorb a free
// physical successor; otherwise a new block is allocated, the contents
// copied and p released. On failure p is left untouched.
//
// A block from AllocateAligned keeps its alignment when resized in place;
// a moved block is only MinAlign-aligned.
func (h *Heap) Reallocate(p Ptr, size uint64) (Ptr, error) {
	if p == Nil {
		return h.Allocate(size)
	}
	if size == 0 {
		return Nil, h.Release(p)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return Nil, ErrClosed
	}
	h.stats.ReallocCalls++

	ref, err := h.resolve(p)
	if err != nil {
		return Nil, err
	}
	total, ok := buf.AddU64(size, ref.delta)
	if !ok {
		return Nil, errors.Wrapf(ErrOutOfMemory, "heap: reallocation to %d bytes", size)
	}
	need, ok := roundPayload(total)
	if !ok {
		return Nil, errors.Wrapf(ErrOutOfMemory, "heap: reallocation to %d bytes", size)
	}

	if need <= ref.hd.size {
		h.shrinkInPlace(ref, need)
		h.stats.ReallocInPlace++
		return p, nil
	}
	if h.growInPlace(ref, need) {
		h.stats.ReallocInPlace++
		return p, nil
	}

	np, err := h.allocLocked(size)
	if err != nil {
		return Nil, err
	}
	// allocLocked may have dropped the lock; look p up again.
	old, err := h.resolve(p)
	if err != nil {
		return Nil, errors.CombineErrors(err, h.releaseLocked(np))
	}
	dst, err := h.payloadLocked(np)
	if err != nil {
		return Nil, err
	}
	start := int(p - old.r.base)
	copy(dst, old.r.data[start:start+int(old.usable())])
	h.freeBlock(old.r, old.off, old.hd)

	h.stats.ReallocMoved++
	return np, nil
}

func (h *Heap) shrinkInPlace(ref blockRef, need uint64) {
	hd := ref.hd
	before := hd.size
	if h.splitTail(ref.r, ref.off, &hd, need) {
		h.stats.BytesInUse -= before - hd.size
	}
}

// growInPlace extends the block into a free physical successor when the two
// together hold need bytes.
func (h *Heap) growInPlace(ref blockRef, need uint64) bool {
	r, off, hd := ref.r, ref.off, ref.hd
	nextOff, ok := r.next(off, hd.size)
	if !ok {
		return false
	}
	nh := readHeader(r.hdr(nextOff))
	if !nh.free() {
		return false
	}
	combined := hd.size + HeaderSize + nh.size
	if combined < need {
		return false
	}

	h.free.remove(r.base + Ptr(nextOff))
	clear(r.hdr(nextOff))
	before := hd.size
	hd.size = combined
	hd.put(r.hdr(off))
	after, _ := r.next(off, combined)
	r.setPrev(after, combined)
	h.stats.CoalesceForward++

	h.splitTail(r, off, &hd, need)
	h.stats.BytesInUse += hd.size - before
	return true
}
