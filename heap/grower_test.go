package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_SliceGrower_DisjointAlignedRegions(t *testing.T) {
	g := NewSliceGrower()

	a, err := g.Grow(5000)
	require.NoError(t, err)
	b, err := g.Grow(4096)
	require.NoError(t, err)

	require.Len(t, a.Data, 5000)
	require.Zero(t, uintptr(a.Base)%4096)
	require.Zero(t, uintptr(b.Base)%4096)
	require.Greater(t, b.Base, a.Base+Ptr(len(a.Data)))

	_, err = g.Grow(0)
	require.Error(t, err)
}

func Test_LimitGrower_Budget(t *testing.T) {
	g := NewLimitGrower(NewSliceGrower(), 8192)

	r, err := g.Grow(8192)
	require.NoError(t, err)
	_, err = g.Grow(1)
	requireIs(t, err, ErrGrowLimit)

	require.NoError(t, g.ReleaseRegion(r))
	require.Zero(t, g.Used())
	_, err = g.Grow(4096)
	require.NoError(t, err)
}

func Test_Heap_RejectsMisalignedRegion(t *testing.T) {
	h, err := New(badGrower{}, nil)
	require.NoError(t, err)

	_, err = h.Allocate(10)
	requireIs(t, err, ErrOutOfMemory)
	require.Equal(t, 1, h.Stats().GrowFailures)
}

type badGrower struct{}

func (badGrower) Grow(n int) (Region, error) {
	return Region{Base: 0x1001, Data: make([]byte, n)}, nil
}
