package printf

import "testing"

func BenchmarkSprintf(b *testing.B) {
	dst := make([]byte, 128)
	b.ReportAllocs()
	for b.Loop() {
		_, _ = Sprintf(dst, "%s=%08x (%d)", "key", 0xBEEF, -12345)
	}
}
