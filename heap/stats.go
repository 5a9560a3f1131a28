package heap

// Stats is a snapshot of heap counters.
type Stats struct {
	// Operation counts.
	AllocCalls   int
	ZeroedCalls  int
	AlignedCalls int
	FreeCalls    int
	ReallocCalls int

	// Allocation path breakdown.
	AllocFromFree  int // satisfied without growing
	AllocAfterGrow int // satisfied after growing

	// Reallocation outcomes.
	ReallocInPlace int
	ReallocMoved   int

	// Block surgery.
	SplitCount       int
	CoalesceForward  int
	CoalesceBackward int

	// Free set operations.
	HeapPushes  int
	HeapPops    int
	HeapRemoves int

	// Growth.
	GrowCalls    int
	GrowFailures int
	GrowBytes    int64

	// Current state, filled in by Heap.Stats.
	Live       int    // blocks in use
	BytesInUse uint64 // payload bytes of blocks in use
	FreeBlocks int
	FreeBytes  uint64
	Regions    int
	PoolBytes  int64 // total bytes of all regions
}

// Allocations returns the number of blocks currently in use.
func (h *Heap) Allocations() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats.Live
}
