package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/joshuapare/rtkit/internal/logger"
	"github.com/joshuapare/rtkit/pkg/libc"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "rtctl",
	Short: "Exercise the rtkit runtime core",
	Long: `rtctl drives the rtkit runtime core from the command line: it renders
printf formats, stress-tests the heap allocator and demonstrates per-thread
storage. A JSON configuration file (see pkg/libc) tunes the runtime.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logLevel != "" {
			logger.Init(logger.Options{
				Enabled: true,
				Writer:  os.Stderr,
				Level:   logger.ParseLevel(logLevel),
			})
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Runtime configuration file (JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log to stderr at this level (debug, info, warn, error)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadOptions reads --config, if given, into runtime options.
func loadOptions() (*libc.Options, error) {
	var data []byte
	if configPath != "" {
		var err error
		if data, err = os.ReadFile(configPath); err != nil {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}
	cfg, err := libc.ParseConfig(data)
	if err != nil {
		return nil, err
	}
	printVerbose("Config: %+v\n", cfg)
	return cfg.Options()
}

// newRuntime builds a runtime from --config whose stdout is out.
func newRuntime(out io.Writer) (*libc.Runtime, error) {
	opts, err := loadOptions()
	if err != nil {
		return nil, err
	}
	opts.Stdout = out
	return libc.New(opts)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
