package heap

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/rtkit/internal/buf"
)

// blockRef locates the block owning a payload pointer.
type blockRef struct {
	r     *region
	off   int    // header offset
	delta uint64 // payload pointer minus natural payload start
	hd    header
}

// usable is the byte count available from the payload pointer.
func (b blockRef) usable() uint64 { return b.hd.size - b.delta }

func invalidPointer(p Ptr, reason string) error {
	return errors.Mark(errors.AssertionFailedf("heap: pointer %#x: %s", uintptr(p), reason), ErrInvalidPointer)
}

// resolve maps a payload pointer to its in-use block, validating the
// back-offset word and the header guard before trusting either.
func (h *Heap) resolve(p Ptr) (blockRef, error) {
	r := h.findRegion(p)
	if r == nil {
		return blockRef{}, invalidPointer(p, "not inside any region")
	}
	poff := int(p - r.base)
	if poff < HeaderSize || poff%MinAlign != 0 {
		return blockRef{}, invalidPointer(p, "not a payload address")
	}

	word := buf.U64LE(r.data[poff-8:])
	if uint32(word>>32) != backGuard {
		return blockRef{}, invalidPointer(p, "back-offset guard mismatch")
	}
	delta := word & 0xFFFFFFFF
	if delta%MinAlign != 0 || delta > uint64(poff-HeaderSize) {
		return blockRef{}, invalidPointer(p, "back-offset out of range")
	}

	off := poff - int(delta) - HeaderSize
	hd := readHeader(r.hdr(off))
	switch {
	case hd.guard != headerGuard:
		return blockRef{}, invalidPointer(p, "header guard mismatch")
	case hd.size < MinAlign || hd.size%MinAlign != 0 || delta >= hd.size:
		return blockRef{}, invalidPointer(p, "header size corrupt")
	case uint64(len(r.data)-off-HeaderSize) < hd.size:
		return blockRef{}, invalidPointer(p, "block overruns region")
	case hd.prev%MinAlign != 0 || hd.prev > uint64(off) || (hd.prev != 0 && uint64(off)-hd.prev < HeaderSize):
		return blockRef{}, invalidPointer(p, "predecessor size corrupt")
	}
	if hd.free() {
		return blockRef{}, errors.Wrapf(ErrDoubleFree, "heap: pointer %#x", uintptr(p))
	}
	return blockRef{r: r, off: off, delta: delta, hd: hd}, nil
}

func (h *Heap) payloadLocked(p Ptr) ([]byte, error) {
	ref, err := h.resolve(p)
	if err != nil {
		return nil, err
	}
	start := int(p - ref.r.base)
	end := start + int(ref.usable())
	return ref.r.data[start:end:end], nil
}

// UsableSize returns the number of bytes available at p, which is at least
// the size requested when p was allocated.
func (h *Heap) UsableSize(p Ptr) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, ErrClosed
	}
	ref, err := h.resolve(p)
	if err != nil {
		return 0, err
	}
	return ref.usable(), nil
}

// Payload returns the usable bytes of the block at p. The slice aliases heap
// memory and is valid until p is released or reallocated.
func (h *Heap) Payload(p Ptr) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	return h.payloadLocked(p)
}

// Bytes returns n bytes starting at p without consulting block headers. The
// range must lie inside one region.
func (h *Heap) Bytes(p Ptr, n int) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	r := h.findRegion(p)
	if r == nil {
		return nil, invalidPointer(p, "not inside any region")
	}
	b, ok := buf.Slice(r.data, int(p-r.base), n)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidPointer, "heap: %d bytes at %#x overrun region", n, uintptr(p))
	}
	return b, nil
}

// CString returns the bytes from p up to, not including, the first NUL.
func (h *Heap) CString(p Ptr) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	r := h.findRegion(p)
	if r == nil {
		return nil, invalidPointer(p, "not inside any region")
	}
	rest := r.data[p-r.base:]
	for i, c := range rest {
		if c == 0 {
			return rest[:i:i], nil
		}
	}
	return nil, errors.Wrapf(ErrUnterminated, "heap: string at %#x", uintptr(p))
}

// RegionInfo describes one region owned by the heap.
type RegionInfo struct {
	Base Ptr
	Size int
}

// Regions lists the heap's regions in address order.
func (h *Heap) Regions() []RegionInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]RegionInfo, len(h.regions))
	for i, r := range h.regions {
		out[i] = RegionInfo{Base: r.base, Size: len(r.data)}
	}
	return out
}
