//go:build linux

package host

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThreadIDStableWhileLocked(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	a, err := ThreadID()
	require.NoError(t, err)
	b, err := ThreadID()
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Positive(t, a)
}
