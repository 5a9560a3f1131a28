package buf

import (
	"math"
	"math/bits"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// AddU64 adds a and b, returning ok = false when the sum wraps.
func AddU64(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// MulU64 multiplies a and b, returning ok = false when the product does not fit in 64 bits.
// This is the count * elementSize check used by zero-filled allocation.
func MulU64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// AlignUp rounds n up to the next multiple of align, which must be a power of two.
// ok is false when rounding would wrap.
func AlignUp(n, align uint64) (uint64, bool) {
	mask := align - 1
	sum, ok := AddU64(n, mask)
	if !ok {
		return 0, false
	}
	return sum &^ mask, true
}

// IsPow2 reports whether n is a non-zero power of two.
func IsPow2(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}
