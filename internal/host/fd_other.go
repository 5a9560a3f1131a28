//go:build !unix

package host

import (
	"os"
	"sync"

	"github.com/cockroachdb/errors"
)

// Descriptor is a raw file descriptor. Only the standard streams are
// available on this platform.
type Descriptor int

const (
	Stdin  Descriptor = 0
	Stdout Descriptor = 1
	Stderr Descriptor = 2
)

func (d Descriptor) file() (*os.File, error) {
	switch d {
	case Stdin:
		return os.Stdin, nil
	case Stdout:
		return os.Stdout, nil
	case Stderr:
		return os.Stderr, nil
	}
	return nil, ErrClosed
}

// Open is not available on this platform.
func Open(path string, flags int, perm uint32) (Descriptor, error) {
	return -1, errors.Wrapf(ErrUnsupported, "host: open %s", path)
}

// Write writes all of p to the standard stream behind d.
func (d Descriptor) Write(p []byte) (int, error) {
	f, err := d.file()
	if err != nil {
		return 0, err
	}
	return f.Write(p)
}

// Read reads from the standard stream behind d.
func (d Descriptor) Read(p []byte) (int, error) {
	f, err := d.file()
	if err != nil {
		return 0, err
	}
	return f.Read(p)
}

// Close closes the standard stream behind d.
func (d Descriptor) Close() error {
	f, err := d.file()
	if err != nil {
		return err
	}
	return f.Close()
}

// Stream serializes writes to a shared descriptor.
type Stream struct {
	mu sync.Mutex
	fd Descriptor
}

// NewStream wraps fd.
func NewStream(fd Descriptor) *Stream {
	return &Stream{fd: fd}
}

// Write forwards p to the descriptor under the stream lock.
func (s *Stream) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fd.Write(p)
}

// Close closes the underlying descriptor.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.fd.Close()
	s.fd = -1
	return err
}
