package heap

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

// SizeClassConfig defines how free blocks are bucketed by payload size.
// Small payloads use linear classes, medium payloads grow geometrically,
// and anything above MediumMax goes to the large list.
type SizeClassConfig struct {
	// Name identifies the configuration in logs and config files.
	Name string

	// Small payloads (linear increments).
	SmallMin       uint64
	SmallMax       uint64
	SmallIncrement uint64

	// Medium payloads (geometric growth) up to MediumMax.
	MediumMax    uint64
	GrowthFactor float64
}

// Predefined configurations.
var (
	// ConfigFineGrained: one class per MinAlign step up to 1 KiB.
	ConfigFineGrained = SizeClassConfig{
		Name:           "fine",
		SmallMin:       MinAlign,
		SmallMax:       1024,
		SmallIncrement: MinAlign,
		MediumMax:      64 << 10,
		GrowthFactor:   1.25,
	}

	// ConfigBalanced: 32-byte steps to 512, then x1.5 to 64 KiB.
	ConfigBalanced = SizeClassConfig{
		Name:           "balanced",
		SmallMin:       MinAlign,
		SmallMax:       512,
		SmallIncrement: MinAlign,
		MediumMax:      64 << 10,
		GrowthFactor:   1.5,
	}

	// ConfigCoarse: few classes, cheaper bookkeeping, looser fits.
	ConfigCoarse = SizeClassConfig{
		Name:           "coarse",
		SmallMin:       MinAlign,
		SmallMax:       512,
		SmallIncrement: 4 * MinAlign,
		MediumMax:      64 << 10,
		GrowthFactor:   2.0,
	}

	// DefaultConfig is used when Options.SizeClasses is nil.
	DefaultConfig = ConfigBalanced
)

// ConfigByName returns the predefined configuration with the given name.
func ConfigByName(name string) (SizeClassConfig, error) {
	switch strings.ToLower(name) {
	case "", ConfigBalanced.Name:
		return ConfigBalanced, nil
	case ConfigFineGrained.Name:
		return ConfigFineGrained, nil
	case ConfigCoarse.Name:
		return ConfigCoarse, nil
	default:
		return SizeClassConfig{}, errors.Newf("heap: unknown size class config %q", name)
	}
}

func (c SizeClassConfig) validate() error {
	if c.SmallIncrement == 0 || c.SmallMin == 0 {
		return errors.Newf("heap: size class config %q: zero increment or minimum", c.Name)
	}
	if c.SmallMax < c.SmallMin || c.MediumMax < c.SmallMax {
		return errors.Newf("heap: size class config %q: bounds out of order", c.Name)
	}
	if c.GrowthFactor <= 1 {
		return errors.Newf("heap: size class config %q: growth factor %v must exceed 1", c.Name, c.GrowthFactor)
	}
	return nil
}

// sizeClassTable holds the computed class boundaries.
type sizeClassTable struct {
	config     SizeClassConfig
	boundaries []uint64 // inclusive upper bound of each class
	numClasses int
}

func newSizeClassTable(config SizeClassConfig) *sizeClassTable {
	table := &sizeClassTable{
		config:     config,
		boundaries: make([]uint64, 0, 64),
	}

	for size := config.SmallMin; size < config.SmallMax; size += config.SmallIncrement {
		table.boundaries = append(table.boundaries, size+config.SmallIncrement-1)
	}

	if config.SmallMax < config.MediumMax {
		size := config.SmallMax
		for size < config.MediumMax {
			next := uint64(math.Ceil(float64(size) * config.GrowthFactor))
			if next <= size {
				next = size + 1
			}
			table.boundaries = append(table.boundaries, next-1)
			size = next
		}
	}

	table.numClasses = len(table.boundaries)
	return table
}

// classOf returns the class index for a payload size, or numClasses for the
// large list.
func (t *sizeClassTable) classOf(size uint64) int {
	lo, hi := 0, t.numClasses-1
	for lo <= hi {
		mid := (lo + hi) / 2
		if size <= t.boundaries[mid] {
			if mid == 0 || size > t.boundaries[mid-1] {
				return mid
			}
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}
	return t.numClasses
}

func (t *sizeClassTable) String() string { return t.config.Name }
