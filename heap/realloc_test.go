package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Realloc_PreservesContents(t *testing.T) {
	h := newTestHeap(t, nil)

	p, err := h.Allocate(16)
	require.NoError(t, err)
	fill(t, h, p, 16, 0xAB)
	// Pin the successor so growth cannot happen in place.
	_, err = h.Allocate(32)
	require.NoError(t, err)

	q, err := h.Reallocate(p, 4096)
	require.NoError(t, err)
	require.NotEqual(t, p, q)
	requireFilled(t, h, q, 16, 0xAB)

	usable, err := h.UsableSize(q)
	require.NoError(t, err)
	require.GreaterOrEqual(t, usable, uint64(4096))

	s := h.Stats()
	require.Equal(t, 1, s.ReallocMoved)
	requireInvariants(t, h)
	requireIs(t, h.Release(p), ErrDoubleFree)
}

func Test_Realloc_NilAllocates(t *testing.T) {
	h := newTestHeap(t, nil)

	p, err := h.Reallocate(Nil, 100)
	require.NoError(t, err)
	require.NotEqual(t, Nil, p)
	require.Equal(t, 1, h.Stats().AllocCalls)
}

func Test_Realloc_ZeroReleases(t *testing.T) {
	h := newTestHeap(t, nil)

	p, err := h.Allocate(100)
	require.NoError(t, err)
	q, err := h.Reallocate(p, 0)
	require.NoError(t, err)
	require.Equal(t, Nil, q)
	require.Zero(t, h.Stats().Live)
}

func Test_Realloc_ShrinkInPlace(t *testing.T) {
	h := newTestHeap(t, nil)

	p, err := h.Allocate(1024)
	require.NoError(t, err)
	fill(t, h, p, 1024, 0x5A)
	_, err = h.Allocate(32)
	require.NoError(t, err)

	q, err := h.Reallocate(p, 100)
	require.NoError(t, err)
	require.Equal(t, p, q)
	requireFilled(t, h, q, 100, 0x5A)

	usable, err := h.UsableSize(q)
	require.NoError(t, err)
	require.Equal(t, uint64(128), usable)

	s := h.Stats()
	require.Equal(t, 1, s.ReallocInPlace)
	require.Equal(t, 2, s.FreeBlocks, "shrunk tail and region tail")
	requireInvariants(t, h)
}

func Test_Realloc_GrowIntoFreeSuccessor(t *testing.T) {
	h := newTestHeap(t, nil)

	p, err := h.Allocate(64)
	require.NoError(t, err)
	fill(t, h, p, 64, 0x11)

	q, err := h.Reallocate(p, 1000)
	require.NoError(t, err)
	require.Equal(t, p, q)
	requireFilled(t, h, q, 64, 0x11)
	require.Equal(t, 1, h.Stats().ReallocInPlace)
	requireInvariants(t, h)
}

func Test_Realloc_FailureLeavesBlock(t *testing.T) {
	lg := NewLimitGrower(NewSliceGrower(), 16<<10)
	h, err := New(lg, &Options{GrowQuantum: 16 << 10})
	require.NoError(t, err)
	defer h.Close()

	p, err := h.Allocate(64)
	require.NoError(t, err)
	fill(t, h, p, 64, 0x77)
	_, err = h.Allocate(32)
	require.NoError(t, err)

	_, err = h.Reallocate(p, 1<<20)
	requireIs(t, err, ErrOutOfMemory)
	requireFilled(t, h, p, 64, 0x77)
	requireInvariants(t, h)
	require.NoError(t, h.Release(p))
}

func Test_Realloc_InvalidPointer(t *testing.T) {
	h := newTestHeap(t, nil)

	_, err := h.Allocate(64)
	require.NoError(t, err)
	_, err = h.Reallocate(0x40, 10)
	requireIs(t, err, ErrInvalidPointer)
}
