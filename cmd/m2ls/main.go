package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnana997/m2ls/pkg/engine"
	"github.com/gnana997/m2ls/pkg/util"
)

var version = "0.1.0-dev"

var (
	flagConfig       string
	flagLogLevel     string
	flagLogFormat    string
	flagWatch        bool
	flagLibraryRoots []string
	flagMetricsAddr  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "m2ls",
	Short:         "Language server for Magento 2 projects",
	Long:          "m2ls indexes Magento 2 modules, themes and RequireJS configs and answers go-to-definition and completion requests over LSP or MCP.",
	SilenceErrors: true,
	SilenceUsage:  true,
	Args:          cobra.NoArgs,
	// Without a subcommand the LSP server runs, as editors expect.
	RunE: runLSP,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .m2ls/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json")
	rootCmd.PersistentFlags().BoolVar(&flagWatch, "watch", true, "re-index discovered files when they change on disk")
	rootCmd.PersistentFlags().StringSliceVar(&flagLibraryRoots, "library-root", nil, "extra search root for library components (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")

	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "m2ls %s\n", version)
	},
}

// loadSettings reads the project config and applies the command's flags.
func loadSettings(cmd *cobra.Command, callLog string) (settings, error) {
	cfg, err := loadProjectConfig(flagConfig)
	if err != nil {
		return settings{}, fmt.Errorf("loading config: %w", err)
	}
	return resolveSettings(overrides{
		LogLevel:     flagLogLevel,
		LogFormat:    flagLogFormat,
		Watch:        flagWatch,
		WatchSet:     cmd.Flags().Changed("watch"),
		LibraryRoots: flagLibraryRoots,
		MetricsAddr:  flagMetricsAddr,
		CallLog:      callLog,
	}, cfg), nil
}

// newLogger writes to stderr; stdout carries the protocol streams.
func newLogger(s settings) *slog.Logger {
	return util.NewLogger(util.LoggerConfig{
		Level:  s.LogLevel,
		Format: s.LogFormat,
		Output: os.Stderr,
	})
}

func newEngine(s settings, logger *slog.Logger) (*engine.Engine, error) {
	config := engine.DefaultConfig()
	config.LibraryRoots = s.LibraryRoots
	config.Watch = s.Watch

	eng, err := engine.New(config, logger)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return eng, nil
}

// resolveTargetDir returns the absolute directory named by args, or the
// working directory.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("accessing %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
