package heap

import (
	"github.com/cockroachdb/errors"
)

// Check walks every region and verifies the heap's structural invariants:
// blocks tile each region exactly, guards and sizes are sane, predecessor
// sizes match, no two adjacent blocks are free, and the free set indexes
// exactly the free blocks. It returns the first violation found.
func (h *Heap) Check() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	var (
		freeSeen  int
		freeBytes uint64
		live      int
		inUse     uint64
	)
	for i, r := range h.regions {
		if i > 0 && h.regions[i-1].end() > r.base {
			return errors.Newf("region %#x overlaps region %#x", uintptr(r.base), uintptr(h.regions[i-1].base))
		}

		var prev uint64
		prevFree := false
		for off := 0; off < len(r.data); {
			if len(r.data)-off < HeaderSize {
				return errors.Newf("region %#x: %d trailing bytes at offset %d", uintptr(r.base), len(r.data)-off, off)
			}
			hd := readHeader(r.hdr(off))
			switch {
			case hd.guard != headerGuard:
				return errors.Newf("block at %#x: guard %#x", uintptr(r.base)+uintptr(off), hd.guard)
			case hd.size < MinAlign || hd.size%MinAlign != 0:
				return errors.Newf("block at %#x: size %d is not a positive multiple of %d", uintptr(r.base)+uintptr(off), hd.size, MinAlign)
			case uint64(len(r.data)-off-HeaderSize) < hd.size:
				return errors.Newf("block at %#x: size %d overruns its region", uintptr(r.base)+uintptr(off), hd.size)
			case hd.prev != prev:
				return errors.Newf("block at %#x: predecessor size %d, expected %d", uintptr(r.base)+uintptr(off), hd.prev, prev)
			}

			if hd.free() {
				if prevFree {
					return errors.Newf("block at %#x: free and adjacent to a free predecessor", uintptr(r.base)+uintptr(off))
				}
				fb := h.free.lookup(r.base + Ptr(off))
				if fb == nil || fb.size != hd.size {
					return errors.Newf("free block at %#x is not indexed with size %d", uintptr(r.base)+uintptr(off), hd.size)
				}
				freeSeen++
				freeBytes += hd.size
			} else {
				live++
				inUse += hd.size
			}

			prevFree = hd.free()
			prev = hd.size
			off += HeaderSize + int(hd.size)
		}
	}

	if freeSeen != h.free.len() {
		return errors.Newf("free set holds %d blocks, walk found %d", h.free.len(), freeSeen)
	}
	if freeBytes != h.free.bytes {
		return errors.Newf("free set accounts %d bytes, walk found %d", h.free.bytes, freeBytes)
	}
	if live != h.stats.Live || inUse != h.stats.BytesInUse {
		return errors.Newf("stats report %d live blocks of %d bytes, walk found %d of %d",
			h.stats.Live, h.stats.BytesInUse, live, inUse)
	}

	for sc, list := range h.free.lists {
		for i, b := range list {
			if b.heapIndex != i || b.sc != sc {
				return errors.Newf("class %d: block %#x has index %d/class %d at position %d", sc, uintptr(b.addr), b.heapIndex, b.sc, i)
			}
			if i > 0 && list.Less(i, (i-1)/2) {
				return errors.Newf("class %d: heap order violated at position %d", sc, i)
			}
		}
	}
	return nil
}
