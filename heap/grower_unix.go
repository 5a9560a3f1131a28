//go:build unix

package heap

// NewDefaultGrower returns the platform's preferred Grower.
func NewDefaultGrower() Grower { return MmapGrower{} }
