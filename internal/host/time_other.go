//go:build !linux

package host

import "time"

// Now reads the wall clock.
func Now() (time.Time, error) {
	return time.Now(), nil
}

var start = time.Now()

// Monotonic returns the monotonic time elapsed since process start.
func Monotonic() (time.Duration, error) {
	return time.Since(start), nil
}

// Sleep blocks for d.
func Sleep(d time.Duration) error {
	if d > 0 {
		time.Sleep(d)
	}
	return nil
}

// ThreadID has no portable implementation outside linux.
func ThreadID() (int, error) {
	return 0, ErrUnsupported
}
