//go:build linux

package host

import (
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// Now reads CLOCK_REALTIME.
func Now() (time.Time, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return time.Time{}, errors.Wrap(err, "host: clock_gettime")
	}
	return time.Unix(ts.Unix()), nil
}

// Monotonic reads CLOCK_MONOTONIC.
func Monotonic() (time.Duration, error) {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0, errors.Wrap(err, "host: clock_gettime")
	}
	return time.Duration(ts.Nano()), nil
}

// Sleep blocks for d with nanosleep(2), resuming with the remaining time
// after EINTR.
func Sleep(d time.Duration) error {
	if d <= 0 {
		return nil
	}
	req := unix.NsecToTimespec(d.Nanoseconds())
	for {
		var rem unix.Timespec
		err := unix.Nanosleep(&req, &rem)
		if errors.Is(err, unix.EINTR) {
			req = rem
			continue
		}
		return err
	}
}

// ThreadID returns the kernel id of the calling OS thread. Goroutines that
// need a stable answer must hold runtime.LockOSThread.
func ThreadID() (int, error) {
	return unix.Gettid(), nil
}
