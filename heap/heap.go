package heap

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/rtkit/internal/buf"
	"github.com/joshuapare/rtkit/internal/host"
	"github.com/joshuapare/rtkit/internal/logger"
)

// RTKIT_LOG_HEAP turns on debug logging to stderr through the process
// logger unless something already enabled it.
func init() {
	if os.Getenv("RTKIT_LOG_HEAP") != "" && !logger.Enabled(slog.LevelDebug) {
		logger.Init(logger.Options{Enabled: true, Level: slog.LevelDebug})
	}
}

// Heap is a thread-safe block allocator over regions obtained from a Grower.
type Heap struct {
	mu sync.Mutex

	grower   Grower
	opts     Options
	table    *sizeClassTable
	free     *freeSet
	regions  []*region // sorted by base
	pageSize uint64
	closed   bool

	stats Stats

	// Test hook: called before each growth request (nil in production).
	onGrow func(n int)
}

// New creates a heap that grows through g. A nil opts selects DefaultOptions.
func New(g Grower, opts *Options) (*Heap, error) {
	if g == nil {
		return nil, errors.New("heap: nil grower")
	}
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	h := &Heap{
		grower:   g,
		opts:     o,
		table:    newSizeClassTable(*o.SizeClasses),
		pageSize: uint64(host.PageSize()),
	}
	h.free = newFreeSet(h.table, &h.stats)

	if o.InitialSize > 0 {
		h.mu.Lock()
		err = h.growLocked(uint64(o.InitialSize) - min(uint64(o.InitialSize), HeaderSize))
		h.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}

	h.log().Debug("heap: created",
		"size_classes", h.table.String(),
		"grow_quantum", o.GrowQuantum,
		"initial", o.InitialSize)
	return h, nil
}

func (h *Heap) log() *slog.Logger {
	if h.opts.Logger != nil {
		return h.opts.Logger
	}
	return logger.With("component", "heap")
}

// Allocate returns a block with at least size usable bytes, aligned to
// MinAlign. A zero size yields a distinct MinAlign-byte block.
func (h *Heap) Allocate(size uint64) (Ptr, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats.AllocCalls++
	return h.allocLocked(size)
}

// AllocateZeroed allocates count*elemSize bytes and zeroes them. The product
// is checked for overflow before any memory is touched.
func (h *Heap) AllocateZeroed(count, elemSize uint64) (Ptr, error) {
	total, ok := buf.MulU64(count, elemSize)
	if !ok {
		return Nil, errors.Wrapf(ErrOverflow, "heap: %d elements of %d bytes", count, elemSize)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats.ZeroedCalls++
	p, err := h.allocLocked(total)
	if err != nil {
		return Nil, err
	}
	b, err := h.payloadLocked(p)
	if err != nil {
		return Nil, err
	}
	clear(b)
	return p, nil
}

// Release returns the block at p to the heap and merges it with free
// neighbours. Releasing Nil is a no-op.
func (h *Heap) Release(p Ptr) error {
	if p == Nil {
		return nil
	}
	h.mu.Lock()
	err := h.releaseLocked(p)
	h.mu.Unlock()
	if err != nil {
		h.log().Warn("heap: release rejected", "ptr", fmt.Sprintf("%#x", uintptr(p)), "err", err)
	}
	return err
}

// allocLocked carves a block for size bytes. It may drop h.mu while the
// Grower runs; callers must not hold free-set references across it.
func (h *Heap) allocLocked(size uint64) (Ptr, error) {
	if h.closed {
		return Nil, ErrClosed
	}
	need, ok := roundPayload(size)
	if !ok {
		return Nil, errors.Wrapf(ErrOutOfMemory, "heap: request of %d bytes", size)
	}

	if b := h.free.take(need); b != nil {
		h.stats.AllocFromFree++
		return h.carve(b, need), nil
	}

	if err := h.growLocked(need); err != nil {
		return Nil, err
	}

	// Single retry. Another goroutine may have raced us to the new region.
	b := h.free.take(need)
	if b == nil {
		return Nil, errors.Wrapf(ErrOutOfMemory, "heap: no block of %d bytes after growth", need)
	}
	h.stats.AllocAfterGrow++
	return h.carve(b, need), nil
}

// carve marks the free block b in use, splitting off any usable tail.
func (h *Heap) carve(b *freeBlock, need uint64) Ptr {
	r, off := b.r, b.off
	h.free.put(b)

	hd := readHeader(r.hdr(off))
	hd.flags &^= flagFree
	hd.back = backWord(0)
	if !h.splitTail(r, off, &hd, need) {
		hd.put(r.hdr(off))
	}

	h.stats.Live++
	h.stats.BytesInUse += hd.size
	return r.base + Ptr(off+HeaderSize)
}

// splitTail shrinks the block at off to need bytes when the remainder can
// form its own block. The tail is published as free, merged with a free
// successor if there is one. hd is updated and written back on split.
func (h *Heap) splitTail(r *region, off int, hd *header, need uint64) bool {
	rem := hd.size - need
	if rem < minSplit {
		return false
	}
	hd.size = need
	hd.put(r.hdr(off))

	tailOff := off + HeaderSize + int(need)
	tail := newHeader(rem-HeaderSize, need, true)
	if nextOff, ok := r.next(tailOff, tail.size); ok {
		if nh := readHeader(r.hdr(nextOff)); nh.free() {
			h.free.remove(r.base + Ptr(nextOff))
			clear(r.hdr(nextOff))
			tail.size += HeaderSize + nh.size
			h.stats.CoalesceForward++
		}
	}
	tail.put(r.hdr(tailOff))
	nextOff, _ := r.next(tailOff, tail.size)
	r.setPrev(nextOff, tail.size)
	h.free.insert(r, tailOff, tail.size)

	h.stats.SplitCount++
	return true
}

func (h *Heap) releaseLocked(p Ptr) error {
	if h.closed {
		return ErrClosed
	}
	h.stats.FreeCalls++
	ref, err := h.resolve(p)
	if err != nil {
		return err
	}
	h.freeBlock(ref.r, ref.off, ref.hd)
	return nil
}

// freeBlock marks the in-use block at off free and coalesces it with its
// physical neighbours.
func (h *Heap) freeBlock(r *region, off int, hd header) {
	h.stats.Live--
	h.stats.BytesInUse -= hd.size

	size := hd.size
	if nextOff, ok := r.next(off, size); ok {
		if nh := readHeader(r.hdr(nextOff)); nh.free() {
			h.free.remove(r.base + Ptr(nextOff))
			clear(r.hdr(nextOff))
			size += HeaderSize + nh.size
			h.stats.CoalesceForward++
		}
	}

	if hd.prev != 0 {
		prevOff := off - HeaderSize - int(hd.prev)
		if ph := readHeader(r.hdr(prevOff)); ph.free() {
			h.free.remove(r.base + Ptr(prevOff))
			clear(r.hdr(off))
			size += HeaderSize + ph.size
			off, hd = prevOff, ph
			h.stats.CoalesceBackward++
		}
	}

	hd.size = size
	hd.flags |= flagFree
	hd.back = backWord(0)
	hd.put(r.hdr(off))
	nextOff, _ := r.next(off, size)
	r.setPrev(nextOff, size)
	h.free.insert(r, off, size)
}

// growLocked obtains a region able to hold a need-byte payload.
func (h *Heap) growLocked(need uint64) error {
	want := max(need+HeaderSize, uint64(h.opts.GrowQuantum))
	n, ok := buf.AlignUp(want, h.pageSize)
	if !ok || n > math.MaxInt {
		return errors.Wrapf(ErrOutOfMemory, "heap: growth of %d bytes", want)
	}
	return h.growRegionLocked(int(n))
}

// growRegionLocked asks the Grower for n bytes. h.mu is released for the
// duration of the call.
func (h *Heap) growRegionLocked(n int) error {
	if h.onGrow != nil {
		h.onGrow(n)
	}

	h.mu.Unlock()
	reg, err := h.grower.Grow(n)
	if err != nil {
		h.log().Warn("heap: grow failed", "bytes", n, "err", err)
	} else {
		h.log().Debug("heap: grew", "bytes", len(reg.Data), "base", fmt.Sprintf("%#x", uintptr(reg.Base)))
	}
	h.mu.Lock()

	if err != nil {
		h.stats.GrowFailures++
		return errors.Mark(errors.Wrapf(err, "heap: grow by %d bytes", n), ErrOutOfMemory)
	}
	if err := h.acceptRegion(reg, n); err != nil {
		h.stats.GrowFailures++
		h.giveBack(reg)
		return err
	}

	h.stats.GrowCalls++
	h.stats.GrowBytes += int64(len(reg.Data))
	return nil
}

// acceptRegion validates reg and adds it to the heap.
func (h *Heap) acceptRegion(reg Region, n int) error {
	if h.closed {
		return ErrClosed
	}
	end := uint64(reg.Base) + uint64(len(reg.Data))
	switch {
	case len(reg.Data) < n:
		return errors.Mark(errors.Newf("heap: grower returned %d bytes, want %d", len(reg.Data), n), ErrOutOfMemory)
	case reg.Base == Nil || reg.Base%MinAlign != 0 || len(reg.Data)%MinAlign != 0:
		return errors.Mark(errors.Newf("heap: grower returned misaligned region %#x+%d", uintptr(reg.Base), len(reg.Data)), ErrOutOfMemory)
	case end < uint64(reg.Base):
		return errors.Mark(errors.Newf("heap: grower returned region wrapping the address space"), ErrOutOfMemory)
	}
	for _, r := range h.regions {
		if reg.Base < r.end() && Ptr(end) > r.base {
			return errors.Mark(errors.Newf("heap: grower returned region %#x overlapping %#x", uintptr(reg.Base), uintptr(r.base)), ErrOutOfMemory)
		}
	}
	h.addRegion(&region{base: reg.Base, data: reg.Data, src: reg})
	return nil
}

func (h *Heap) giveBack(reg Region) {
	if rel, ok := h.grower.(RegionReleaser); ok {
		if err := rel.ReleaseRegion(reg); err != nil {
			h.log().Warn("heap: region release failed", "err", err)
		}
	}
}

// Stats returns a snapshot of the heap counters.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.stats
	s.FreeBlocks = h.free.len()
	s.FreeBytes = h.free.bytes
	s.Regions = len(h.regions)
	for _, r := range h.regions {
		s.PoolBytes += int64(len(r.data))
	}
	return s
}

// Close hands every region back to the Grower, if it supports release, and
// makes further operations fail with ErrClosed. Close is idempotent.
func (h *Heap) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	var err error
	if rel, ok := h.grower.(RegionReleaser); ok {
		for _, r := range h.regions {
			err = errors.CombineErrors(err, rel.ReleaseRegion(r.src))
		}
	}
	h.regions = nil
	h.free.reset()
	return err
}
