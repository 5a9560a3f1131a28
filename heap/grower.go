package heap

import (
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/rtkit/internal/buf"
	"github.com/joshuapare/rtkit/internal/host"
)

// Region is a contiguous span of memory handed to the heap by a Grower.
// Base is the address of Data[0] in the heap's address space.
type Region struct {
	Base Ptr
	Data []byte
}

// Grower supplies fresh regions when the free set cannot satisfy a request.
// Grow must return a region of at least n bytes whose Base and length are
// multiples of MinAlign.
type Grower interface {
	Grow(n int) (Region, error)
}

// RegionReleaser is implemented by growers that can take regions back.
// Heap.Close hands every region back through it.
type RegionReleaser interface {
	ReleaseRegion(r Region) error
}

// MmapGrower obtains regions as anonymous private mappings. Base is the
// real address of the mapping.
type MmapGrower struct{}

// Grow maps n bytes.
func (MmapGrower) Grow(n int) (Region, error) {
	data, err := host.MapAnon(n)
	if err != nil {
		return Region{}, err
	}
	return Region{Base: Ptr(uintptr(unsafe.Pointer(&data[0]))), Data: data}, nil
}

// ReleaseRegion unmaps r.
func (MmapGrower) ReleaseRegion(r Region) error {
	return host.Unmap(r.Data)
}

// SliceGrower obtains regions from the Go heap and assigns them synthetic,
// page-aligned base addresses with an unmapped gap between regions. It is
// deterministic, which makes it the grower of choice for tests.
type SliceGrower struct {
	mu   sync.Mutex
	next Ptr
}

// sliceGrowerBase is the first synthetic address handed out.
const sliceGrowerBase Ptr = 0x10000000

// NewSliceGrower returns a SliceGrower.
func NewSliceGrower() *SliceGrower {
	return &SliceGrower{next: sliceGrowerBase}
}

// Grow allocates n bytes.
func (g *SliceGrower) Grow(n int) (Region, error) {
	if n <= 0 {
		return Region{}, errors.Newf("heap: grow of %d bytes", n)
	}
	page := uint64(host.PageSize())
	span, ok := buf.AlignUp(uint64(n), page)
	if !ok {
		return Region{}, errors.Newf("heap: grow of %d bytes", n)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next == 0 {
		g.next = sliceGrowerBase
	}
	base := g.next
	g.next += Ptr(span + page)
	return Region{Base: base, Data: make([]byte, n)}, nil
}

// LimitGrower caps the total bytes another Grower may hand out.
type LimitGrower struct {
	Inner Grower
	Limit int

	mu   sync.Mutex
	used int
}

// NewLimitGrower wraps inner with a budget of limit bytes.
func NewLimitGrower(inner Grower, limit int) *LimitGrower {
	return &LimitGrower{Inner: inner, Limit: limit}
}

// Grow forwards to Inner while the budget allows.
func (g *LimitGrower) Grow(n int) (Region, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if sum, ok := buf.AddOverflowSafe(g.used, n); !ok || sum > g.Limit {
		return Region{}, errors.Wrapf(ErrGrowLimit, "used %d of %d, want %d", g.used, g.Limit, n)
	}
	r, err := g.Inner.Grow(n)
	if err != nil {
		return Region{}, err
	}
	g.used += len(r.Data)
	return r, nil
}

// ReleaseRegion forwards to Inner when it supports release and returns the
// bytes to the budget.
func (g *LimitGrower) ReleaseRegion(r Region) error {
	g.mu.Lock()
	g.used -= len(r.Data)
	g.mu.Unlock()
	if rel, ok := g.Inner.(RegionReleaser); ok {
		return rel.ReleaseRegion(r)
	}
	return nil
}

// Used reports the bytes handed out so far.
func (g *LimitGrower) Used() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.used
}
