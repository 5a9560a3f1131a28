package printf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/rtkit/heap"
)

func newTestHeap(t *testing.T) *heap.Heap {
	t.Helper()
	h, err := heap.New(heap.NewSliceGrower(), &heap.Options{GrowQuantum: 4096})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func Test_Hprintf_RendersIntoHeap(t *testing.T) {
	h := newTestHeap(t)

	p, n, err := Hprintf(h, "%s has %d bytes at %p", "block", 64, uintptr(0x40))
	require.NoError(t, err)
	require.Equal(t, len("block has 64 bytes at 0x40"), n)

	s, err := h.CString(p)
	require.NoError(t, err)
	require.Equal(t, "block has 64 bytes at 0x40", string(s))
	require.NoError(t, h.Release(p))
	require.Zero(t, h.Allocations())
}

func Test_Hprintf_EmptyOutputIsTerminated(t *testing.T) {
	h := newTestHeap(t)

	p, n, err := Hprintf(h, "%s", "")
	require.NoError(t, err)
	require.Zero(t, n)
	s, err := h.CString(p)
	require.NoError(t, err)
	require.Empty(t, s)
}

func Test_Hprintf_DereferencesHeapStrings(t *testing.T) {
	h := newTestHeap(t)

	name, _, err := Hprintf(h, "world")
	require.NoError(t, err)

	p, _, err := Hprintf(h, "hello %s", name)
	require.NoError(t, err)
	s, err := h.CString(p)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(s))
}

func Test_Hprintf_FailureFreesBuffer(t *testing.T) {
	h := newTestHeap(t)

	_, _, err := Hprintf(h, "ok %d then %q", 1)
	requireIs(t, err, ErrInvalidDirective)
	require.Zero(t, h.Allocations())
}

func Test_HeapBuffer_GrowsWithReallocate(t *testing.T) {
	h := newTestHeap(t)
	w := NewHeapBuffer(h)
	require.Equal(t, heap.Nil, w.Ptr())

	var want strings.Builder
	for i := range 200 {
		_, err := Fprintf(w, "line %d;", i)
		require.NoError(t, err)
		_, _ = Fprintf(&want, "line %d;", i)
	}
	require.Equal(t, want.Len(), w.Len())

	s, err := h.CString(w.Ptr())
	require.NoError(t, err)
	require.Equal(t, want.String(), string(s))
	require.Positive(t, h.Stats().ReallocCalls)

	require.NoError(t, w.Release())
	require.Zero(t, h.Allocations())
}

func Test_Printer_MemoryResolvesPointers(t *testing.T) {
	h := newTestHeap(t)
	name, _, err := Hprintf(h, "rtkit")
	require.NoError(t, err)

	pr := Printer{Mem: h}
	out, err := pr.Append(nil, "[%-7s]", name)
	require.NoError(t, err)
	require.Equal(t, "[rtkit  ]", string(out))

	out, err = pr.Append(nil, "%s", heap.Nil)
	require.NoError(t, err)
	require.Equal(t, "(null)", string(out))

	_, err = pr.Append(nil, "%s", heap.Ptr(0x20))
	requireIs(t, err, ErrBadArgument)
}
