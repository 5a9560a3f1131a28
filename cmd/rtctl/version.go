package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/joshuapare/rtkit/heap"
	"github.com/joshuapare/rtkit/internal/host"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("rtctl {{.Version}}\n")
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and runtime defaults",
		Long: `The version command prints the build version together with the
platform and heap defaults the runtime starts with.

Example:
  rtctl version
  rtctl version --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion()
		},
	}
}

// VersionInfo describes the build and the runtime defaults.
type VersionInfo struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	Built       string `json:"built"`
	Go          string `json:"go"`
	Platform    string `json:"platform"`
	PageSize    int    `json:"page_size"`
	SizeClasses string `json:"size_classes"`
	GrowQuantum int    `json:"grow_quantum"`
	MaxAlign    uint64 `json:"max_align"`
}

func versionInfo() VersionInfo {
	opts := heap.DefaultOptions()
	return VersionInfo{
		Version:     version,
		Commit:      commit,
		Built:       date,
		Go:          runtime.Version(),
		Platform:    runtime.GOOS + "/" + runtime.GOARCH,
		PageSize:    host.PageSize(),
		SizeClasses: opts.SizeClasses.Name,
		GrowQuantum: opts.GrowQuantum,
		MaxAlign:    opts.MaxAlign,
	}
}

func runVersion() error {
	info := versionInfo()
	if jsonOut {
		return printJSON(info)
	}
	printInfo("rtctl %s\n", info.Version)
	printInfo("  commit:   %s\n", info.Commit)
	printInfo("  built:    %s\n", info.Built)
	printInfo("  go:       %s (%s)\n", info.Go, info.Platform)
	printInfo("  heap:     %s classes, %d-byte quantum, %d-byte pages, max align %d\n",
		info.SizeClasses, info.GrowQuantum, info.PageSize, info.MaxAlign)
	return nil
}
