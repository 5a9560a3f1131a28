package libc

import (
	"io"
	"sync"

	"github.com/joshuapare/rtkit/heap"
)

var (
	procMu sync.Mutex
	proc   *Runtime
)

// Init starts the process runtime. It fails with ErrInitialized if one is
// already running.
func Init(opts *Options) error {
	procMu.Lock()
	defer procMu.Unlock()
	if proc != nil {
		return ErrInitialized
	}
	rt, err := New(opts)
	if err != nil {
		return err
	}
	proc = rt
	return nil
}

// Shutdown closes the process runtime. It is a no-op if none is running.
func Shutdown() error {
	procMu.Lock()
	rt := proc
	proc = nil
	procMu.Unlock()
	if rt == nil {
		return nil
	}
	return rt.Close()
}

// Default returns the process runtime, starting it with default options on
// first use.
func Default() *Runtime {
	procMu.Lock()
	defer procMu.Unlock()
	if proc == nil {
		rt, err := New(nil)
		if err != nil {
			panic(err)
		}
		proc = rt
	}
	return proc
}

// Malloc calls Default().Malloc.
func Malloc(size uint64) heap.Ptr { return Default().Malloc(size) }

// Calloc calls Default().Calloc.
func Calloc(count, size uint64) heap.Ptr { return Default().Calloc(count, size) }

// Realloc calls Default().Realloc.
func Realloc(p heap.Ptr, size uint64) heap.Ptr { return Default().Realloc(p, size) }

// AlignedAlloc calls Default().AlignedAlloc.
func AlignedAlloc(alignment, size uint64) heap.Ptr {
	return Default().AlignedAlloc(alignment, size)
}

// Free calls Default().Free.
func Free(p heap.Ptr) { Default().Free(p) }

// MallocUsableSize calls Default().MallocUsableSize.
func MallocUsableSize(p heap.Ptr) uint64 { return Default().MallocUsableSize(p) }

// Printf calls Default().Printf.
func Printf(format string, args ...any) int { return Default().Printf(format, args...) }

// Fprintf calls Default().Fprintf.
func Fprintf(w io.Writer, format string, args ...any) int {
	return Default().Fprintf(w, format, args...)
}

// Sprintf calls Default().Sprintf.
func Sprintf(dst []byte, format string, args ...any) int {
	return Default().Sprintf(dst, format, args...)
}

// Snprintf calls Default().Snprintf.
func Snprintf(dst []byte, format string, args ...any) int {
	return Default().Snprintf(dst, format, args...)
}

// Errno returns the calling thread's errno in the process runtime.
func Errno() int { return Default().Errno() }

// SetErrno sets the calling thread's errno in the process runtime.
func SetErrno(v int) { Default().SetErrno(v) }

// Time calls Default().Time.
func Time() int64 { return Default().Time() }

// Sleep calls Default().Sleep.
func Sleep(seconds uint) uint { return Default().Sleep(seconds) }
