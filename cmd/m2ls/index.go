package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a Magento root once and print the statistics",
	Long:  "Discovers registrations and RequireJS configs under path (default: the working directory), waits for indexing to finish and prints the counters as JSON.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	s, err := loadSettings(cmd, "")
	if err != nil {
		return err
	}
	s.Watch = false
	logger := newLogger(s)

	eng, err := newEngine(s, logger)
	if err != nil {
		return err
	}
	defer eng.Shutdown()

	eng.IndexWorkspace(targetDir)
	if err := eng.Wait(); err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	data, err := json.MarshalIndent(eng.Stats(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	logger.Info("indexed workspace", "root", targetDir, "duration", time.Since(start))
	return nil
}
