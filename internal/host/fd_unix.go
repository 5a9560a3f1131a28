//go:build unix

package host

import (
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Descriptor is a raw file descriptor. Writes go straight to write(2);
// there is no buffering and no locking.
type Descriptor int

const (
	Stdin  Descriptor = 0
	Stdout Descriptor = 1
	Stderr Descriptor = 2
)

// Open opens path with open(2) flags and permission bits.
func Open(path string, flags int, perm uint32) (Descriptor, error) {
	for {
		fd, err := unix.Open(path, flags|unix.O_CLOEXEC, perm)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return -1, errors.Wrapf(err, "host: open %s", path)
		}
		return Descriptor(fd), nil
	}
}

// Write writes all of p, retrying short writes and EINTR. The returned
// error is the syscall's own.
func (d Descriptor) Write(p []byte) (int, error) {
	if d < 0 {
		return 0, ErrClosed
	}
	written := 0
	for written < len(p) {
		n, err := unix.Write(int(d), p[written:])
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// Read reads up to len(p) bytes, retrying EINTR. It returns 0, nil at end of file.
func (d Descriptor) Read(p []byte) (int, error) {
	if d < 0 {
		return 0, ErrClosed
	}
	for {
		n, err := unix.Read(int(d), p)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

// Close closes the descriptor.
func (d Descriptor) Close() error {
	if d < 0 {
		return ErrClosed
	}
	return unix.Close(int(d))
}

// Stream serializes writes to a shared descriptor so concurrent formatted
// output never interleaves within one Write call.
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

// Close closes the underlying descriptor. Later writes fail with ErrClosed.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.fd.Close()
	s.fd = -1
	return err
}
