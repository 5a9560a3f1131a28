//go:build unix

package host

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// PageSize returns the system page size.
func PageSize() int {
	return unix.Getpagesize()
}

// MapAnon maps n bytes of zeroed, private, read-write memory.
// The mapping never moves, so addresses taken from it stay valid until Unmap.
func MapAnon(n int) ([]byte, error) {
	if n <= 0 {
		return nil, errors.Newf("host: invalid mapping length %d", n)
	}
	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "host: mmap %d bytes", n)
	}
	return data, nil
}

// Unmap releases a mapping returned by MapAnon.
func Unmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	err := unix.Munmap(data)
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}
