package heap

import (
	"container/heap"
	"sync"
)

// freeBlock is a free block tracked by the free set.
type freeBlock struct {
	addr      Ptr // header address, the free set key
	r         *region
	off       int // header offset within r
	size      uint64
	sc        int
	heapIndex int        // position in the class heap, -1 when not in one
	next      *freeBlock // large list link
}

// freeBlockHeap is a min-heap of free blocks ordered by size, then address.
type freeBlockHeap []*freeBlock

func (h *freeBlockHeap) Len() int { return len(*h) }

func (h *freeBlockHeap) Less(i, j int) bool {
	if (*h)[i].size != (*h)[j].size {
		return (*h)[i].size < (*h)[j].size
	}
	return (*h)[i].addr < (*h)[j].addr
}

func (h *freeBlockHeap) Swap(i, j int) {
	(*h)[i], (*h)[j] = (*h)[j], (*h)[i]
	(*h)[i].heapIndex = i
	(*h)[j].heapIndex = j
}

func (h *freeBlockHeap) Push(x any) {
	b := x.(*freeBlock) //nolint:errcheck // heap.Interface contract guarantees type
	b.heapIndex = len(*h)
	*h = append(*h, b)
}

func (h *freeBlockHeap) Pop() any {
	old := *h
	n := len(old)
	b := old[n-1]
	old[n-1] = nil
	b.heapIndex = -1
	*h = old[:n-1]
	return b
}

// freeSet indexes every free block: one min-heap per size class, a list for
// blocks above the last class, and an address map for O(1) lookup during
// coalescing.
type freeSet struct {
	table  *sizeClassTable
	lists  []freeBlockHeap
	large  *freeBlock
	byAddr map[Ptr]*freeBlock
	bytes  uint64
	pool   sync.Pool
	stats  *Stats
}

func newFreeSet(table *sizeClassTable, stats *Stats) *freeSet {
	return &freeSet{
		table:  table,
		lists:  make([]freeBlockHeap, table.numClasses),
		byAddr: make(map[Ptr]*freeBlock),
		stats:  stats,
		pool: sync.Pool{
			New: func() any { return &freeBlock{heapIndex: -1} },
		},
	}
}

func (fs *freeSet) len() int { return len(fs.byAddr) }

func (fs *freeSet) lookup(addr Ptr) *freeBlock { return fs.byAddr[addr] }

// insert records a free block of the given payload size at off within r.
func (fs *freeSet) insert(r *region, off int, size uint64) {
	b := fs.get()
	b.addr = r.base + Ptr(off)
	b.r = r
	b.off = off
	b.size = size
	b.sc = fs.table.classOf(size)

	if b.sc < len(fs.lists) {
		fs.stats.HeapPushes++
		heap.Push(&fs.lists[b.sc], b)
	} else {
		b.next = fs.large
		fs.large = b
	}
	fs.byAddr[b.addr] = b
	fs.bytes += size
}

// remove drops the free block whose header is at addr. It reports whether
// such a block was tracked.
func (fs *freeSet) remove(addr Ptr) bool {
	b := fs.byAddr[addr]
	if b == nil {
		return false
	}
	if b.sc < len(fs.lists) {
		fs.stats.HeapRemoves++
		heap.Remove(&fs.lists[b.sc], b.heapIndex)
	} else {
		fs.unlinkLarge(b)
	}
	delete(fs.byAddr, addr)
	fs.bytes -= b.size
	fs.put(b)
	return true
}

// take removes and returns the smallest free block whose size is at least
// need, or nil. The caller returns the block with put once done with it.
func (fs *freeSet) take(need uint64) *freeBlock {
	for sc := fs.table.classOf(need); sc < len(fs.lists); sc++ {
		if b := fs.takeFromClass(sc, need); b != nil {
			return fs.detach(b)
		}
	}
	if b := fs.takeFromLarge(need); b != nil {
		return fs.detach(b)
	}
	return nil
}

// takeFromClass returns the best fit in a class heap, already removed from it.
//
// heap[0] is the smallest block in the class; if it fits it is the best fit.
// Otherwise a larger block in the same class may still fit, so scan.
func (fs *freeSet) takeFromClass(sc int, need uint64) *freeBlock {
	list := &fs.lists[sc]
	if list.Len() == 0 {
		return nil
	}
	if (*list)[0].size >= need {
		fs.stats.HeapPops++
		return heap.Pop(list).(*freeBlock) //nolint:errcheck // heap contains only *freeBlock
	}

	best := -1
	for i := 1; i < list.Len(); i++ {
		s := (*list)[i].size
		if s >= need && (best < 0 || s < (*list)[best].size) {
			best = i
			if s == need {
				break
			}
		}
	}
	if best < 0 {
		return nil
	}
	fs.stats.HeapRemoves++
	return heap.Remove(list, best).(*freeBlock) //nolint:errcheck // heap contains only *freeBlock
}

// takeFromLarge returns the best fit on the large list, already unlinked.
func (fs *freeSet) takeFromLarge(need uint64) *freeBlock {
	var best *freeBlock
	for b := fs.large; b != nil; b = b.next {
		if b.size >= need && (best == nil || b.size < best.size) {
			best = b
		}
	}
	if best != nil {
		fs.unlinkLarge(best)
	}
	return best
}

func (fs *freeSet) unlinkLarge(target *freeBlock) {
	var prev *freeBlock
	for b := fs.large; b != nil; b = b.next {
		if b == target {
			if prev == nil {
				fs.large = b.next
			} else {
				prev.next = b.next
			}
			b.next = nil
			return
		}
		prev = b
	}
}

func (fs *freeSet) detach(b *freeBlock) *freeBlock {
	delete(fs.byAddr, b.addr)
	fs.bytes -= b.size
	return b
}

// each calls fn for every tracked free block.
func (fs *freeSet) each(fn func(b *freeBlock)) {
	for _, b := range fs.byAddr {
		fn(b)
	}
}

func (fs *freeSet) reset() {
	for i := range fs.lists {
		fs.lists[i] = nil
	}
	fs.large = nil
	fs.byAddr = make(map[Ptr]*freeBlock)
	fs.bytes = 0
}

func (fs *freeSet) get() *freeBlock {
	b, ok := fs.pool.Get().(*freeBlock)
	if !ok {
		return &freeBlock{heapIndex: -1}
	}
	return b
}

func (fs *freeSet) put(b *freeBlock) {
	*b = freeBlock{heapIndex: -1}
	fs.pool.Put(b)
}
