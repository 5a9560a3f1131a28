package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	c := NewManualClock(start)

	now, err := c.Now()
	require.NoError(t, err)
	require.Equal(t, start, now)

	require.NoError(t, c.Sleep(1500*time.Millisecond))
	c.Advance(-time.Hour)

	now, err = c.Now()
	require.NoError(t, err)
	require.Equal(t, start.Add(1500*time.Millisecond), now)
}

func TestRealClockMovesForward(t *testing.T) {
	m0, err := Monotonic()
	require.NoError(t, err)

	require.NoError(t, RealClock{}.Sleep(2*time.Millisecond))

	m1, err := Monotonic()
	require.NoError(t, err)
	require.GreaterOrEqual(t, m1-m0, 2*time.Millisecond)

	now, err := RealClock{}.Now()
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), now, time.Minute)
}

func TestPageSizeIsPowerOfTwo(t *testing.T) {
	ps := PageSize()
	require.Positive(t, ps)
	require.Zero(t, ps&(ps-1))
}
