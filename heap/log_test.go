package heap

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/rtkit/internal/logger"
)

func Test_Heap_LogsThroughProcessLogger(t *testing.T) {
	var out bytes.Buffer
	logger.Init(logger.Options{Enabled: true, Writer: &out, Format: logger.FormatJSON, Level: slog.LevelDebug})
	t.Cleanup(func() { logger.Init(logger.Options{}) })

	h := newTestHeap(t, nil)
	_, err := h.Allocate(100)
	require.NoError(t, err)

	require.Contains(t, out.String(), `"component":"heap"`)
	require.Contains(t, out.String(), `"msg":"heap: created"`)
	require.Contains(t, out.String(), `"msg":"heap: grew"`)
}

func Test_Heap_LoggerOptionOverridesProcessLogger(t *testing.T) {
	var proc, own bytes.Buffer
	logger.Init(logger.Options{Enabled: true, Writer: &proc, Level: slog.LevelDebug})
	t.Cleanup(func() { logger.Init(logger.Options{}) })

	l := slog.New(slog.NewTextHandler(&own, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := newTestHeap(t, &Options{GrowQuantum: 4096, Logger: l})
	_, err := h.Allocate(8)
	require.NoError(t, err)

	require.Contains(t, own.String(), "heap: grew")
	require.NotContains(t, proc.String(), "heap: grew")
}
