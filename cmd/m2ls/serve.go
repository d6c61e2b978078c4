package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gnana997/m2ls/pkg/engine"
	"github.com/gnana997/m2ls/pkg/lsp"
	mcpserver "github.com/gnana997/m2ls/pkg/mcp"
	"github.com/gnana997/m2ls/pkg/mcplog"
	"github.com/gnana997/m2ls/pkg/metrics"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server on stdin/stdout",
	Args:  cobra.NoArgs,
	RunE:  runLSP,
}

var flagCallLog string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP tool server on stdin/stdout",
	Long:  "Serves index_workspace, open_document, close_document, find_definition, get_completions and get_stats as MCP tools.",
	Args:  cobra.NoArgs,
	RunE:  runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&flagCallLog, "call-log", "", "append every tool call as a JSONL line to this file")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd, "")
	if err != nil {
		return err
	}
	logger := newLogger(s)

	eng, err := newEngine(s, logger)
	if err != nil {
		return err
	}
	defer eng.Shutdown()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	startMetrics(ctx, s.MetricsAddr, logger)
	indexConfigured(eng, s)

	srv := lsp.NewServer(eng, version, logger)
	return srv.Serve(ctx, os.Stdin, os.Stdout)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd, flagCallLog)
	if err != nil {
		return err
	}
	logger := newLogger(s)

	callLog, err := mcplog.NewLogger(s.CallLog)
	if err != nil {
		return err
	}
	if callLog != nil {
		defer callLog.Close()
	}

	eng, err := newEngine(s, logger)
	if err != nil {
		return err
	}
	defer eng.Shutdown()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	startMetrics(ctx, s.MetricsAddr, logger)
	indexConfigured(eng, s)

	srv := mcpserver.NewServer(eng, version, callLog, logger)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// indexConfigured registers the workspaces named in the project config.
func indexConfigured(eng *engine.Engine, s settings) {
	for _, root := range s.Workspaces {
		eng.IndexWorkspace(root)
	}
}

func startMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.Serve(ctx, addr, logger); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
}
