package heap

import (
	"sort"

	"github.com/joshuapare/rtkit/internal/buf"
)

// region is a Region as tracked by the heap.
type region struct {
	base Ptr
	data []byte
	src  Region
}

func (r *region) end() Ptr { return r.base + Ptr(len(r.data)) }

func (r *region) contains(p Ptr) bool { return p >= r.base && p < r.end() }

func (r *region) hdr(off int) []byte { return r.data[off : off+HeaderSize] }

// next returns the header offset of the block physically after the one at
// off, and whether it is inside the region.
func (r *region) next(off int, size uint64) (int, bool) {
	n := off + HeaderSize + int(size)
	return n, n < len(r.data)
}

// findRegion returns the region containing p, or nil. Regions are kept
// sorted by base so this is a binary search.
func (h *Heap) findRegion(p Ptr) *region {
	i := sort.Search(len(h.regions), func(i int) bool {
		return h.regions[i].end() > p
	})
	if i < len(h.regions) && h.regions[i].contains(p) {
		return h.regions[i]
	}
	return nil
}

// addRegion inserts r keeping the slice sorted, and publishes its memory as
// a single free block.
func (h *Heap) addRegion(r *region) {
	i := sort.Search(len(h.regions), func(i int) bool {
		return h.regions[i].base > r.base
	})
	h.regions = append(h.regions, nil)
	copy(h.regions[i+1:], h.regions[i:])
	h.regions[i] = r

	size := uint64(len(r.data) - HeaderSize)
	newHeader(size, 0, true).put(r.hdr(0))
	h.free.insert(r, 0, size)
}

// setPrev records prev as the predecessor size of the block at off, if off
// is inside r.
func (r *region) setPrev(off int, prev uint64) {
	if off < len(r.data) {
		buf.PutU64LE(r.data[off+offPrev:], prev)
	}
}
