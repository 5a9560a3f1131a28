package libc

import (
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/rtkit/heap"
	"github.com/joshuapare/rtkit/internal/host"
	"github.com/joshuapare/rtkit/internal/logger"
	"github.com/joshuapare/rtkit/printf"
	"github.com/joshuapare/rtkit/tls"
)

// Runtime is one instance of the C runtime core.
type Runtime struct {
	heap    *heap.Heap
	tls     *tls.Manager
	stdout  io.Writer
	clock   host.Clock
	printer printf.Printer
}

// New builds a Runtime and materializes the calling thread's block.
func New(opts *Options) (*Runtime, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Logging != nil {
		logger.Init(logger.Options{
			Enabled: true,
			Writer:  opts.Logging.Writer,
			Format:  logger.Format(opts.Logging.Format),
			Level:   opts.Logging.Level,
		})
	}

	grower := opts.Grower
	if grower == nil {
		grower = heap.NewDefaultGrower()
	}
	h, err := heap.New(grower, opts.Heap)
	if err != nil {
		return nil, errors.Wrap(err, "libc: heap")
	}

	id := opts.Identity
	if id == nil {
		id = tls.FixedIdentity(1)
	}
	m, err := tls.NewManager(h, id)
	if err != nil {
		return nil, errors.CombineErrors(errors.Wrap(err, "libc: tls"), h.Close())
	}
	tmpl := opts.Template
	if tmpl == nil {
		if tmpl, err = tls.NewTemplate(nil, 0); err != nil {
			return nil, errors.CombineErrors(err, h.Close())
		}
	}
	if err := m.InstallTemplate(tmpl); err != nil {
		return nil, errors.CombineErrors(err, h.Close())
	}
	// The initial thread's block exists before user code runs.
	if _, err := m.Current(); err != nil {
		return nil, errors.CombineErrors(errors.Wrap(err, "libc: initial thread"), h.Close())
	}

	rt := &Runtime{
		heap:    h,
		tls:     m,
		stdout:  opts.Stdout,
		clock:   opts.Clock,
		printer: printf.Printer{Mem: h},
	}
	if rt.stdout == nil {
		rt.stdout = host.NewStream(host.Stdout)
	}
	if rt.clock == nil {
		rt.clock = host.RealClock{}
	}
	logger.Debug("libc: runtime started", "template", tmpl.Size())
	return rt, nil
}

// Close tears down every thread block and the heap.
func (rt *Runtime) Close() error {
	return errors.CombineErrors(rt.tls.Close(), rt.heap.Close())
}

// Heap is the runtime's allocator.
func (rt *Runtime) Heap() *heap.Heap { return rt.heap }

// TLS is the runtime's thread-local storage manager.
func (rt *Runtime) TLS() *tls.Manager { return rt.tls }

// Thread returns the calling thread's block.
func (rt *Runtime) Thread() (*tls.Block, error) { return rt.tls.Current() }

// fail records err in the calling thread's errno.
func (rt *Runtime) fail(op string, err error) {
	code := errnoFor(err)
	logger.Debug("libc: call failed", "op", op, "errno", code, "err", err)
	if b, terr := rt.tls.Current(); terr == nil {
		b.SetErrno(code)
	}
}

// Errno returns the calling thread's error status.
func (rt *Runtime) Errno() int {
	b, err := rt.tls.Current()
	if err != nil {
		return 0
	}
	return b.Errno()
}

// SetErrno sets the calling thread's error status.
func (rt *Runtime) SetErrno(v int) {
	if b, err := rt.tls.Current(); err == nil {
		b.SetErrno(v)
	}
}

// Malloc allocates size bytes. It returns heap.Nil and sets ENOMEM on failure.
func (rt *Runtime) Malloc(size uint64) heap.Ptr {
	p, err := rt.heap.Allocate(size)
	if err != nil {
		rt.fail("malloc", err)
		return heap.Nil
	}
	return p
}

// Calloc allocates count*size zeroed bytes. Overflow sets EOVERFLOW.
func (rt *Runtime) Calloc(count, size uint64) heap.Ptr {
	p, err := rt.heap.AllocateZeroed(count, size)
	if err != nil {
		rt.fail("calloc", err)
		return heap.Nil
	}
	return p
}

// Realloc resizes p. On failure p is unchanged, heap.Nil is returned and
// errno is set.
func (rt *Runtime) Realloc(p heap.Ptr, size uint64) heap.Ptr {
	q, err := rt.heap.Reallocate(p, size)
	if err != nil {
		rt.fail("realloc", err)
		return heap.Nil
	}
	return q
}

// AlignedAlloc allocates size bytes aligned to alignment. A bad alignment
// sets EINVAL.
func (rt *Runtime) AlignedAlloc(alignment, size uint64) heap.Ptr {
	p, err := rt.heap.AllocateAligned(alignment, size)
	if err != nil {
		rt.fail("aligned_alloc", err)
		return heap.Nil
	}
	return p
}

// Free releases p. An invalid pointer or double free sets EINVAL and is
// otherwise ignored.
func (rt *Runtime) Free(p heap.Ptr) {
	if err := rt.heap.Release(p); err != nil {
		rt.fail("free", err)
	}
}

// MallocUsableSize reports the usable bytes at p, 0 if p is invalid.
func (rt *Runtime) MallocUsableSize(p heap.Ptr) uint64 {
	if p == heap.Nil {
		return 0
	}
	n, err := rt.heap.UsableSize(p)
	if err != nil {
		rt.fail("malloc_usable_size", err)
		return 0
	}
	return n
}

// Sprintf renders into dst and NUL-terminates it. It returns the byte
// count excluding the terminator, or -1 with errno set.
func (rt *Runtime) Sprintf(dst []byte, format string, args ...any) int {
	n, err := rt.printer.Sprintf(dst, format, args...)
	if err != nil {
		rt.fail("sprintf", err)
		return -1
	}
	return n
}

// Snprintf renders at most len(dst)-1 bytes and returns the untruncated
// length, or -1 with errno set.
func (rt *Runtime) Snprintf(dst []byte, format string, args ...any) int {
	n, err := rt.printer.Snprintf(dst, format, args...)
	if err != nil {
		rt.fail("snprintf", err)
		return -1
	}
	return n
}

// Printf writes to the runtime's stdout.
func (rt *Runtime) Printf(format string, args ...any) int {
	return rt.Fprintf(rt.stdout, format, args...)
}

// Fprintf writes to w and returns the byte count, or -1 with errno set.
func (rt *Runtime) Fprintf(w io.Writer, format string, args ...any) int {
	n, err := rt.printer.Fprintf(w, format, args...)
	if err != nil {
		rt.fail("fprintf", err)
		return -1
	}
	return n
}

// Time returns seconds since the epoch, or -1 with errno set.
func (rt *Runtime) Time() int64 {
	now, err := rt.clock.Now()
	if err != nil {
		rt.fail("time", err)
		return -1
	}
	return now.Unix()
}

// Sleep suspends the caller for seconds. It returns 0, or the requested
// seconds with errno set if the clock failed.
func (rt *Runtime) Sleep(seconds uint) uint {
	if err := rt.clock.Sleep(time.Duration(seconds) * time.Second); err != nil {
		rt.fail("sleep", err)
		return seconds
	}
	return 0
}
