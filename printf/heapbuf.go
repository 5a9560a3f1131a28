package printf

import (
	"github.com/cockroachdb/errors"

	"github.com/joshuapare/rtkit/heap"
)

// HeapBuffer is an io.Writer accumulating bytes in a heap block that grows
// through Reallocate. The content is always followed by a NUL.
type HeapBuffer struct {
	h   *heap.Heap
	p   heap.Ptr
	n   int
	cap int
}

const minHeapBuffer = 64

// NewHeapBuffer returns an empty buffer backed by h.
func NewHeapBuffer(h *heap.Heap) *HeapBuffer { return &HeapBuffer{h: h} }

// Write appends b, growing the block as needed.
func (w *HeapBuffer) Write(b []byte) (int, error) {
	if err := w.reserve(len(b) + 1); err != nil {
		return 0, err
	}
	dst, err := w.h.Bytes(w.p+heap.Ptr(w.n), len(b)+1)
	if err != nil {
		return 0, err
	}
	copy(dst, b)
	dst[len(b)] = 0
	w.n += len(b)
	return len(b), nil
}

func (w *HeapBuffer) reserve(extra int) error {
	need := w.n + extra
	if need <= w.cap {
		return nil
	}
	newCap := max(need, 2*w.cap, minHeapBuffer)
	p, err := w.h.Reallocate(w.p, uint64(newCap))
	if err != nil {
		return errors.Wrapf(err, "printf: grow heap buffer to %d bytes", newCap)
	}
	w.p, w.cap = p, newCap
	return nil
}

// Ptr is the address of the first byte, heap.Nil before the first write.
func (w *HeapBuffer) Ptr() heap.Ptr { return w.p }

// Len is the number of bytes written, excluding the terminator.
func (w *HeapBuffer) Len() int { return w.n }

// Release frees the block and resets the buffer.
func (w *HeapBuffer) Release() error {
	err := w.h.Release(w.p)
	w.p, w.n, w.cap = heap.Nil, 0, 0
	return err
}

// Hprintf renders into a new NUL-terminated heap block and returns its
// address and the byte count excluding the terminator. %s may dereference
// heap pointers from h. On failure nothing stays allocated.
func Hprintf(h *heap.Heap, format string, args ...any) (heap.Ptr, int, error) {
	w := NewHeapBuffer(h)
	if err := w.reserve(1); err != nil {
		return heap.Nil, 0, err
	}
	zero, err := h.Bytes(w.p, 1)
	if err != nil {
		return heap.Nil, 0, errors.CombineErrors(err, w.Release())
	}
	zero[0] = 0

	if _, err := (Printer{Mem: h}).Fprintf(w, format, args...); err != nil {
		return heap.Nil, 0, errors.CombineErrors(err, w.Release())
	}
	return w.p, w.n, nil
}
