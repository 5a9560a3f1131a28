package logger

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDisabledDiscards(t *testing.T) {
	Init(Options{})
	require.False(t, Enabled(slog.LevelError))
}

func TestInitJSON(t *testing.T) {
	var out bytes.Buffer
	Init(Options{Enabled: true, Writer: &out, Format: FormatJSON, Level: slog.LevelDebug})
	t.Cleanup(func() { Init(Options{}) })

	Debug("grow", "bytes", 4096)
	require.Contains(t, out.String(), `"msg":"grow"`)
	require.Contains(t, out.String(), `"bytes":4096`)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	require.Equal(t, slog.LevelError, ParseLevel(" error "))
	require.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestInitConcurrentWithLogging(t *testing.T) {
	t.Cleanup(func() { Init(Options{}) })

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				Init(Options{Enabled: j%2 == 0, Writer: io.Discard, Level: slog.LevelDebug})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				Debug("tick", "j", j)
				_ = Enabled(slog.LevelInfo)
			}
		}()
	}
	wg.Wait()
}

func TestWithAttachesAttrs(t *testing.T) {
	var out bytes.Buffer
	Init(Options{Enabled: true, Writer: &out, Level: slog.LevelDebug})
	t.Cleanup(func() { Init(Options{}) })

	With("component", "heap").Debug("grew", "bytes", 4096)
	require.Contains(t, out.String(), "component=heap")
	require.Contains(t, out.String(), "msg=grew")
}
