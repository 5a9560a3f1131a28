package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/rtkit/heap"
)

func TestVersionCommand(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)

	output, err := captureOutput(t, runVersion)
	require.NoError(t, err)
	assertContains(t, output, []string{"rtctl " + version, "commit:", heap.DefaultConfig.Name + " classes"})
}

func TestVersionCommand_JSON(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	jsonOut = true

	output, err := captureOutput(t, runVersion)
	require.NoError(t, err)

	var info VersionInfo
	require.NoError(t, json.Unmarshal([]byte(output), &info))
	require.Equal(t, version, info.Version)
	require.Equal(t, heap.DefaultGrowQuantum, info.GrowQuantum)
	require.Positive(t, info.PageSize)
}

func TestVersionFlagMatchesCommand(t *testing.T) {
	require.Equal(t, version, rootCmd.Version)

	output, err := captureOutput(t, func() error {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs([]string{"--version"})
		defer rootCmd.SetArgs(nil)
		return rootCmd.Execute()
	})
	require.NoError(t, err)
	require.Equal(t, "rtctl "+version+"\n", output)
}
