package libc

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/rtkit/heap"
	"github.com/joshuapare/rtkit/internal/host"
	"github.com/joshuapare/rtkit/tls"
)

func newTestRuntime(t *testing.T, opts *Options) *Runtime {
	t.Helper()
	if opts == nil {
		opts = &Options{}
	}
	if opts.Grower == nil {
		opts.Grower = heap.NewSliceGrower()
	}
	if opts.Heap == nil {
		opts.Heap = &heap.Options{GrowQuantum: 4096}
	}
	if opts.Stdout == nil {
		opts.Stdout = &bytes.Buffer{}
	}
	rt, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func Test_Runtime_MallocFree(t *testing.T) {
	rt := newTestRuntime(t, nil)

	p := rt.Malloc(100)
	require.NotEqual(t, heap.Nil, p)
	require.Equal(t, uint64(0), uint64(p)%heap.MinAlign)
	require.GreaterOrEqual(t, rt.MallocUsableSize(p), uint64(100))

	rt.Free(p)
	rt.Free(heap.Nil)
	require.Equal(t, 0, rt.Errno())
	require.Equal(t, uint64(0), rt.MallocUsableSize(heap.Nil))
}

func Test_Runtime_ReallocPreservesContents(t *testing.T) {
	rt := newTestRuntime(t, nil)

	p := rt.Malloc(64)
	b, err := rt.Heap().Bytes(p, 64)
	require.NoError(t, err)
	for i := range b {
		b[i] = 0xAB
	}

	q := rt.Realloc(p, 4096)
	require.NotEqual(t, heap.Nil, q)
	b, err = rt.Heap().Bytes(q, 64)
	require.NoError(t, err)
	for i, v := range b {
		require.Equal(t, byte(0xAB), v, "byte %d", i)
	}
	rt.Free(q)
	require.NoError(t, rt.Heap().Check())
}

func Test_Runtime_CallocZeroedAndOverflow(t *testing.T) {
	rt := newTestRuntime(t, nil)

	p := rt.Calloc(16, 8)
	require.NotEqual(t, heap.Nil, p)
	b, err := rt.Heap().Bytes(p, 128)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 128), b)

	require.Equal(t, heap.Nil, rt.Calloc(1<<62, 8))
	require.Equal(t, EOVERFLOW, rt.Errno())
}

func Test_Runtime_AlignedAlloc(t *testing.T) {
	rt := newTestRuntime(t, nil)

	p := rt.AlignedAlloc(256, 40)
	require.NotEqual(t, heap.Nil, p)
	require.Equal(t, uint64(0), uint64(p)%256)
	rt.Free(p)
	require.Equal(t, 0, rt.Errno())

	require.Equal(t, heap.Nil, rt.AlignedAlloc(3, 16))
	require.Equal(t, EINVAL, rt.Errno())
}

func Test_Runtime_FreeInvalidSetsErrno(t *testing.T) {
	rt := newTestRuntime(t, nil)

	rt.Free(heap.Ptr(0x1234))
	require.Equal(t, EINVAL, rt.Errno())

	rt.SetErrno(0)
	p := rt.Malloc(8)
	rt.Free(p)
	rt.Free(p)
	require.Equal(t, EINVAL, rt.Errno())
}

func Test_Runtime_OutOfMemorySetsENOMEM(t *testing.T) {
	rt := newTestRuntime(t, &Options{
		Grower: heap.NewLimitGrower(heap.NewSliceGrower(), 16<<10),
	})

	require.Equal(t, heap.Nil, rt.Malloc(1<<20))
	require.Equal(t, ENOMEM, rt.Errno())

	// The heap stays usable after a failed growth.
	require.NotEqual(t, heap.Nil, rt.Malloc(64))
}

func Test_Runtime_Errno(t *testing.T) {
	rt := newTestRuntime(t, nil)

	require.Equal(t, 0, rt.Errno())
	rt.SetErrno(5)
	require.Equal(t, 5, rt.Errno())

	b, err := rt.Thread()
	require.NoError(t, err)
	require.Equal(t, 5, b.Errno())
}

func Test_Runtime_Printf(t *testing.T) {
	var out bytes.Buffer
	rt := newTestRuntime(t, &Options{Stdout: &out})

	require.Equal(t, 12, rt.Printf("Hello, world"))
	require.Equal(t, 0, rt.Printf(""))
	require.Equal(t, "Hello, world", out.String())

	out.Reset()
	require.Equal(t, 8, rt.Printf("%d-%s-%c", 42, "abc", 'z'))
	require.Equal(t, "42-abc-z", out.String())
}

func Test_Runtime_PrintfInvalidDirective(t *testing.T) {
	var out bytes.Buffer
	rt := newTestRuntime(t, &Options{Stdout: &out})

	require.Equal(t, -1, rt.Printf("bad %q"))
	require.Equal(t, EINVAL, rt.Errno())
}

func Test_Runtime_SprintfHeapString(t *testing.T) {
	rt := newTestRuntime(t, nil)

	s := rt.Malloc(16)
	b, err := rt.Heap().Bytes(s, 6)
	require.NoError(t, err)
	copy(b, "world\x00")

	dst := make([]byte, 32)
	n := rt.Sprintf(dst, "Hello, %s!", s)
	require.Equal(t, 13, n)
	require.Equal(t, "Hello, world!\x00", string(dst[:n+1]))

	small := make([]byte, 4)
	require.Equal(t, -1, rt.Sprintf(small, "Hello"))
	require.Equal(t, ERANGE, rt.Errno())

	require.Equal(t, 5, rt.Snprintf(small, "Hello"))
	require.Equal(t, "Hel\x00", string(small))
}

func Test_Runtime_TimeAndSleep(t *testing.T) {
	clock := host.NewManualClock(time.Unix(1_700_000_000, 0))
	rt := newTestRuntime(t, &Options{Clock: clock})

	require.Equal(t, int64(1_700_000_000), rt.Time())
	require.Equal(t, uint(0), rt.Sleep(3))
	require.Equal(t, int64(1_700_000_003), rt.Time())
}

func Test_Runtime_TemplateDefaults(t *testing.T) {
	l := tls.NewLayout()
	a := l.Int32("a", 5)
	b := l.Int32("b", 3)
	tmpl, err := l.Template()
	require.NoError(t, err)

	rt := newTestRuntime(t, &Options{Template: tmpl})
	blk, err := rt.Thread()
	require.NoError(t, err)

	v, err := blk.Int32(a)
	require.NoError(t, err)
	require.Equal(t, int32(5), v)
	require.NoError(t, blk.SetInt32(a, v+50))
	require.NoError(t, blk.SetInt32(b, 3*8))

	again, err := rt.Thread()
	require.NoError(t, err)
	v, err = again.Int32(a)
	require.NoError(t, err)
	require.Equal(t, int32(55), v)

	fresh := newTestRuntime(t, &Options{Template: tmpl})
	fb, err := fresh.Thread()
	require.NoError(t, err)
	v, err = fb.Int32(b)
	require.NoError(t, err)
	require.Equal(t, int32(3), v)
}

func Test_Runtime_New_BadHeapOptions(t *testing.T) {
	_, err := New(&Options{
		Grower: heap.NewSliceGrower(),
		Heap:   &heap.Options{GrowQuantum: -1},
	})
	require.Error(t, err)
}

func Test_Runtime_ConcurrentErrnoSharedIdentity(t *testing.T) {
	rt := newTestRuntime(t, nil)

	const workers = 8
	const iterations = 500
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if i%2 == 0 {
					rt.SetErrno(100 + w)
				} else {
					rt.Free(heap.Ptr(0x40 + w))
				}
				_ = rt.Errno()
			}
		}(w)
	}
	wg.Wait()

	// Every goroutine shares the fixed identity, so errno holds the last
	// value written by any of them.
	got := rt.Errno()
	require.True(t, got == EINVAL || (got >= 100 && got < 100+workers), "errno %d", got)

	b, err := rt.Thread()
	require.NoError(t, err)
	require.Equal(t, got, b.Errno())
	require.Equal(t, []int{1}, rt.TLS().Threads())
}
