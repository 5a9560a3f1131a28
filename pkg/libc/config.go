package libc

import (
	"bytes"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/joshuapare/rtkit/heap"
	"github.com/joshuapare/rtkit/internal/logger"
	"github.com/joshuapare/rtkit/tls"
)

// Config is the parsed form of a runtime configuration document.
type Config struct {
	GrowQuantum int
	InitialSize int
	SizeClasses string
	Limit       int
	Backend     string // "mmap" or "slice"
	MaxAlign    uint64

	Identity string // "fixed" or "os"

	LogLevel  string
	LogFormat string
}

// ParseConfig reads a JSON configuration. Empty input yields the zero
// Config, which maps to default Options.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return cfg, nil
	}
	if !gjson.ValidBytes(data) {
		return cfg, errors.Wrapf(ErrConfig, "invalid json: %q", data)
	}

	doc := gjson.ParseBytes(data)
	hp := doc.Get("heap")
	cfg.GrowQuantum = int(hp.Get("grow_quantum").Int())
	cfg.InitialSize = int(hp.Get("initial_size").Int())
	cfg.Limit = int(hp.Get("limit").Int())
	cfg.MaxAlign = hp.Get("max_align").Uint()
	cfg.SizeClasses = hp.Get("size_classes").String()
	cfg.Backend = strings.ToLower(hp.Get("backend").String())
	if cfg.GrowQuantum < 0 || cfg.InitialSize < 0 || cfg.Limit < 0 {
		return cfg, errors.Wrap(ErrConfig, "heap sizes must be non-negative")
	}
	switch cfg.Backend {
	case "", "mmap", "slice":
	default:
		return cfg, errors.Wrapf(ErrConfig, "unknown heap backend %q", cfg.Backend)
	}
	if _, err := heap.ConfigByName(cfg.SizeClasses); err != nil {
		return cfg, errors.Mark(err, ErrConfig)
	}

	cfg.Identity = strings.ToLower(doc.Get("tls.identity").String())
	switch cfg.Identity {
	case "", "fixed", "os":
	default:
		return cfg, errors.Wrapf(ErrConfig, "unknown tls identity %q", cfg.Identity)
	}

	if lv := doc.Get("log.level"); lv.Exists() {
		cfg.LogLevel = lv.String()
	}
	cfg.LogFormat = doc.Get("log.format").String()
	return cfg, nil
}

// Options converts the configuration into runtime Options.
func (c Config) Options() (*Options, error) {
	classes, err := heap.ConfigByName(c.SizeClasses)
	if err != nil {
		return nil, errors.Mark(err, ErrConfig)
	}
	opts := &Options{
		Heap: &heap.Options{
			GrowQuantum: c.GrowQuantum,
			InitialSize: c.InitialSize,
			SizeClasses: &classes,
			MaxAlign:    c.MaxAlign,
		},
	}

	switch c.Backend {
	case "slice":
		opts.Grower = heap.NewSliceGrower()
	case "mmap":
		opts.Grower = heap.MmapGrower{}
	default:
		opts.Grower = heap.NewDefaultGrower()
	}
	if c.Limit > 0 {
		opts.Grower = heap.NewLimitGrower(opts.Grower, c.Limit)
	}

	if c.Identity == "os" {
		opts.Identity = tls.OSIdentity{}
	}

	if c.LogLevel != "" {
		opts.Logging = &LogOptions{
			Level:  logger.ParseLevel(c.LogLevel),
			Format: c.LogFormat,
			Writer: os.Stderr,
		}
	}
	return opts, nil
}
