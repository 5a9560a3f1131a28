package heap

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// newTestHeap returns a heap over a SliceGrower with small regions so tests
// exercise growth and region boundaries.
func newTestHeap(t *testing.T, opts *Options) *Heap {
	t.Helper()
	if opts == nil {
		opts = &Options{GrowQuantum: 4096}
	}
	h, err := New(NewSliceGrower(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

// requireInvariants fails the test if the heap's structural check fails.
func requireInvariants(t *testing.T, h *Heap) {
	t.Helper()
	require.NoError(t, h.Check())
}

func fill(t *testing.T, h *Heap, p Ptr, n int, v byte) {
	t.Helper()
	b, err := h.Bytes(p, n)
	require.NoError(t, err)
	for i := range b {
		b[i] = v
	}
}

func requireFilled(t *testing.T, h *Heap, p Ptr, n int, v byte) {
	t.Helper()
	b, err := h.Bytes(p, n)
	require.NoError(t, err)
	for i, c := range b {
		if c != v {
			t.Fatalf("byte %d at %#x: got %#x, want %#x", i, uintptr(p), c, v)
		}
	}
}

// failingGrower refuses every request.
type failingGrower struct{ err error }

func (g failingGrower) Grow(int) (Region, error) { return Region{}, g.err }

// requireIs checks err against target with errors.Is, which also sees marks
// added by errors.Mark.
func requireIs(t *testing.T, err, target error, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, errors.Is(err, target), "error %v does not match %v %v", err, target, msgAndArgs)
}

var errTagMismatch = errors.New("block contents overwritten by another goroutine")
