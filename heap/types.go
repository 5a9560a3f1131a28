package heap

import "github.com/joshuapare/rtkit/internal/buf"

// Ptr is an address in the heap's address space.
type Ptr uintptr

// Nil is the absent pointer.
const Nil Ptr = 0

const (
	// MinAlign is the allocation granularity and the alignment of every payload.
	MinAlign = 32

	// HeaderSize is the size of the in-band block header.
	HeaderSize = 32

	// minSplit is the smallest remainder worth carving into its own free block.
	minSplit = HeaderSize + MinAlign

	// maxRequest bounds a single request so size arithmetic never wraps.
	maxRequest = 1 << 48

	headerGuard uint32 = 0x52544B48
	backGuard   uint32 = 0x4241434B

	flagFree uint32 = 1 << 0

	offGuard = 0x00
	offFlags = 0x04
	offSize  = 0x08
	offPrev  = 0x10
	offBack  = 0x18
)

// header is the decoded form of a block header.
type header struct {
	guard uint32
	flags uint32
	size  uint64
	prev  uint64
	back  uint64
}

func newHeader(size, prev uint64, free bool) header {
	h := header{guard: headerGuard, size: size, prev: prev, back: backWord(0)}
	if free {
		h.flags = flagFree
	}
	return h
}

func readHeader(b []byte) header {
	return header{
		guard: buf.U32LE(b[offGuard:]),
		flags: buf.U32LE(b[offFlags:]),
		size:  buf.U64LE(b[offSize:]),
		prev:  buf.U64LE(b[offPrev:]),
		back:  buf.U64LE(b[offBack:]),
	}
}

func (h header) put(b []byte) {
	buf.PutU32LE(b[offGuard:], h.guard)
	buf.PutU32LE(b[offFlags:], h.flags)
	buf.PutU64LE(b[offSize:], h.size)
	buf.PutU64LE(b[offPrev:], h.prev)
	buf.PutU64LE(b[offBack:], h.back)
}

func (h header) free() bool { return h.flags&flagFree != 0 }

// backWord encodes the back-offset stored immediately before a payload.
func backWord(delta uint64) uint64 {
	return uint64(backGuard)<<32 | delta
}

// roundPayload converts a request into a payload size: at least MinAlign and
// a multiple of it.
func roundPayload(size uint64) (uint64, bool) {
	if size > maxRequest {
		return 0, false
	}
	if size == 0 {
		return MinAlign, true
	}
	return buf.AlignUp(size, MinAlign)
}
