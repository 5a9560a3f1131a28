package heap

import (
	"log/slog"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultGrowQuantum is the minimum number of bytes requested per growth.
	DefaultGrowQuantum = 64 << 10

	// DefaultMaxAlign is the largest alignment AllocateAligned accepts.
	DefaultMaxAlign = 1 << 20

	// maxAlignLimit bounds MaxAlign so a back-offset delta fits in 32 bits.
	maxAlignLimit = 1 << 31
)

// Options configures a Heap. The zero value of each field selects its default.
type Options struct {
	// GrowQuantum is the minimum region size requested from the Grower.
	GrowQuantum int

	// InitialSize, when positive, grows the heap by this many bytes in New
	// so the first allocations do not pay for growth.
	InitialSize int

	// SizeClasses selects the free-set bucketing. Nil means DefaultConfig.
	SizeClasses *SizeClassConfig

	// MaxAlign is the largest alignment AllocateAligned accepts.
	MaxAlign uint64

	// Logger receives debug events. Nil means the process logger.
	Logger *slog.Logger
}

// DefaultOptions returns the options New uses when given nil.
func DefaultOptions() *Options {
	cfg := DefaultConfig
	return &Options{
		GrowQuantum: DefaultGrowQuantum,
		SizeClasses: &cfg,
		MaxAlign:    DefaultMaxAlign,
	}
}

func (o *Options) withDefaults() (Options, error) {
	out := *DefaultOptions()
	if o == nil {
		return out, nil
	}
	if o.GrowQuantum < 0 || o.InitialSize < 0 {
		return out, errors.Newf("heap: negative size in options (grow quantum %d, initial %d)", o.GrowQuantum, o.InitialSize)
	}
	if o.GrowQuantum > 0 {
		out.GrowQuantum = o.GrowQuantum
	}
	out.InitialSize = o.InitialSize
	if o.SizeClasses != nil {
		if err := o.SizeClasses.validate(); err != nil {
			return out, err
		}
		cfg := *o.SizeClasses
		out.SizeClasses = &cfg
	}
	if o.MaxAlign != 0 {
		if o.MaxAlign < MinAlign || o.MaxAlign > maxAlignLimit {
			return out, errors.Newf("heap: max alignment %d outside [%d, %d]", o.MaxAlign, MinAlign, uint64(maxAlignLimit))
		}
		out.MaxAlign = o.MaxAlign
	}
	out.Logger = o.Logger
	return out, nil
}
