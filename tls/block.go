package tls

import (
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/rtkit/heap"
	"github.com/joshuapare/rtkit/internal/buf"
)

// errnoSize is the reserved slot at the start of every block.
const errnoSize = 8

// Block is one thread's private storage. Template slots are only touched by
// the owning thread and take no locks. The errno slot is accessed
// atomically, since an Identity that maps many goroutines to one id (such
// as FixedIdentity) shares the block between them.
type Block struct {
	tid     int
	base    heap.Ptr
	mem     []byte // errno slot, padding, template copy
	dataOff int
	size    int
}

// ThreadID is the id of the owning thread.
func (b *Block) ThreadID() int { return b.tid }

// Size is the template size.
func (b *Block) Size() int { return b.size }

func (b *Block) view(off, n int) ([]byte, error) {
	if b.mem == nil {
		return nil, errors.Wrapf(ErrNoThread, "thread %d exited", b.tid)
	}
	if off < 0 || n < 0 || off > b.size || n > b.size-off {
		return nil, errors.Wrapf(ErrSlotRange, "offset %d width %d, template size %d", off, n, b.size)
	}
	return b.mem[b.dataOff+off : b.dataOff+off+n : b.dataOff+off+n], nil
}

// Slot resolves off to a live address inside the block.
func (b *Block) Slot(off int) (heap.Ptr, error) {
	if _, err := b.view(off, 0); err != nil {
		return heap.Nil, err
	}
	return b.base + heap.Ptr(b.dataOff+off), nil
}

// Bytes returns the n bytes at off. The slice aliases the block.
func (b *Block) Bytes(off, n int) ([]byte, error) { return b.view(off, n) }

// Int32 reads the 4-byte integer at off.
func (b *Block) Int32(off int) (int32, error) {
	v, err := b.view(off, 4)
	if err != nil {
		return 0, err
	}
	return buf.I32LE(v), nil
}

// SetInt32 writes the 4-byte integer at off.
func (b *Block) SetInt32(off int, x int32) error {
	v, err := b.view(off, 4)
	if err != nil {
		return err
	}
	buf.PutI32LE(v, x)
	return nil
}

// Int64 reads the 8-byte integer at off.
func (b *Block) Int64(off int) (int64, error) {
	v, err := b.view(off, 8)
	if err != nil {
		return 0, err
	}
	return buf.I64LE(v), nil
}

// SetInt64 writes the 8-byte integer at off.
func (b *Block) SetInt64(off int, x int64) error {
	v, err := b.view(off, 8)
	if err != nil {
		return err
	}
	buf.PutI64LE(v, x)
	return nil
}

// Uint64 reads the 8-byte unsigned integer at off.
func (b *Block) Uint64(off int) (uint64, error) {
	v, err := b.view(off, 8)
	if err != nil {
		return 0, err
	}
	return buf.U64LE(v), nil
}

// SetUint64 writes the 8-byte unsigned integer at off.
func (b *Block) SetUint64(off int, x uint64) error {
	v, err := b.view(off, 8)
	if err != nil {
		return err
	}
	buf.PutU64LE(v, x)
	return nil
}

// errnoWord views the errno slot as an atomic word in native byte order.
// Block memory is at least MinAlign-aligned, so the slot is 8-byte aligned.
func (b *Block) errnoWord() *atomic.Int64 {
	return (*atomic.Int64)(unsafe.Pointer(unsafe.SliceData(b.mem)))
}

// Errno returns the thread's error status. It is 0 in a fresh block and
// after Exit.
func (b *Block) Errno() int {
	if b.mem == nil {
		return 0
	}
	return int(b.errnoWord().Load())
}

// SetErrno sets the thread's error status.
func (b *Block) SetErrno(v int) {
	if b.mem != nil {
		b.errnoWord().Store(int64(v))
	}
}
