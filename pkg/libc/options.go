package libc

import (
	"io"
	"log/slog"

	"github.com/joshuapare/rtkit/heap"
	"github.com/joshuapare/rtkit/internal/host"
	"github.com/joshuapare/rtkit/tls"
)

// Options configures a Runtime. Nil fields select defaults.
type Options struct {
	// Heap tunes the allocator. Nil means heap.DefaultOptions().
	Heap *heap.Options

	// Grower supplies heap memory. Nil means heap.NewDefaultGrower().
	Grower heap.Grower

	// Template is the thread-local default image. Nil means an empty one.
	Template *tls.Template

	// Identity names threads. Nil means tls.FixedIdentity(1): every caller
	// is the main thread, so errno and thread-locals are process-wide and
	// the last failing call from any goroutine sets errno. Use
	// tls.OSIdentity with goroutines pinned by runtime.LockOSThread for
	// per-thread errno and storage.
	Identity tls.Identity

	// Stdout receives Printf output. Nil means the process's descriptor 1.
	Stdout io.Writer

	// Clock backs Time and Sleep. Nil means host.RealClock.
	Clock host.Clock

	// Logging, when set, initializes the process logger.
	Logging *LogOptions
}

// LogOptions configures the process logger.
type LogOptions struct {
	Level  slog.Level
	Format string // "text" or "json"
	Writer io.Writer
}

// DefaultOptions returns the options Init uses when given nil.
func DefaultOptions() *Options {
	return &Options{}
}
