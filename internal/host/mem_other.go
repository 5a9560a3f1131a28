//go:build !unix

package host

import "os"

// PageSize returns the system page size.
func PageSize() int {
	return os.Getpagesize()
}

// MapAnon is not available without mmap.
func MapAnon(n int) ([]byte, error) {
	return nil, ErrUnsupported
}

// Unmap is a no-op without mmap.
func Unmap(data []byte) error {
	return nil
}
