package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestMulU64(t *testing.T) {
	tests := []struct {
		a, b uint64
		want uint64
		ok   bool
	}{
		{0, math.MaxUint64, 0, true},
		{100, 1, 100, true},
		{1 << 32, 1 << 31, 1 << 63, true},
		{1 << 32, 1 << 32, 0, false},
		{math.MaxUint64, 2, 0, false},
	}
	for _, tt := range tests {
		got, ok := MulU64(tt.a, tt.b)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("MulU64(%d,%d)=%d,%v want %d,%v", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAlignUp(t *testing.T) {
	if got, ok := AlignUp(1, 32); !ok || got != 32 {
		t.Fatalf("AlignUp(1,32)=%d,%v want 32,true", got, ok)
	}
	if got, ok := AlignUp(64, 32); !ok || got != 64 {
		t.Fatalf("AlignUp(64,32)=%d,%v want 64,true", got, ok)
	}
	if got, ok := AlignUp(0, 4096); !ok || got != 0 {
		t.Fatalf("AlignUp(0,4096)=%d,%v want 0,true", got, ok)
	}
	if _, ok := AlignUp(math.MaxUint64-3, 32); ok {
		t.Fatalf("AlignUp near MaxUint64 should report wrap")
	}
}

func TestIsPow2(t *testing.T) {
	for _, n := range []uint64{1, 2, 4, 256, 1 << 40} {
		if !IsPow2(n) {
			t.Fatalf("IsPow2(%d) = false", n)
		}
	}
	for _, n := range []uint64{0, 3, 6, 255, 1<<40 + 1} {
		if IsPow2(n) {
			t.Fatalf("IsPow2(%d) = true", n)
		}
	}
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if got, _ := Slice(data, 1, 3); cap(got) != 3 {
		t.Fatalf("Slice must cap the view at its end, cap=%d", cap(got))
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if Has(data, 2, 4) {
		t.Fatalf("Has should be false for out-of-bounds range")
	}
	if !Has(data, 2, 1) {
		t.Fatalf("Has should be true for valid range")
	}

	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
	if _, ok := Slice(data, 1, -1); ok {
		t.Fatalf("Slice should reject negative length")
	}
}
