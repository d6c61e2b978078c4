package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const serverName = "m2ls"

// clientDef describes one MCP client that reads a project-level JSON config.
type clientDef struct {
	ID          string
	DisplayName string
	DirMarker   string            // directory that indicates the client is used; "" = always offered
	ConfigPath  string            // relative to the project root
	ServersKey  string            // "servers" (VS Code) or "mcpServers"
	ExtraFields map[string]string // e.g. "type": "stdio" for VS Code
}

var clientRegistry = []clientDef{
	{
		ID: "vscode", DisplayName: "VS Code",
		DirMarker: ".vscode", ConfigPath: filepath.Join(".vscode", "mcp.json"),
		ServersKey: "servers", ExtraFields: map[string]string{"type": "stdio"},
	},
	{
		ID: "cursor", DisplayName: "Cursor",
		DirMarker: ".cursor", ConfigPath: filepath.Join(".cursor", "mcp.json"),
		ServersKey: "mcpServers",
	},
	{
		ID: "project", DisplayName: "Project .mcp.json",
		ConfigPath: ".mcp.json", ServersKey: "mcpServers",
	},
}

// detectedClient is a client found under the project root.
type detectedClient struct {
	Def          clientDef
	ConfigPath   string
	AlreadySetup bool
}

var flagSetupAuto bool

var setupCmd = &cobra.Command{
	Use:   "setup [path]",
	Short: "Register the m2ls MCP server with the MCP clients used in a project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveTargetDir(args)
		if err != nil {
			return err
		}
		executeSetup(cmd.InOrStdin(), cmd.OutOrStdout(), root, flagSetupAuto)
		return nil
	},
}

func init() {
	setupCmd.Flags().BoolVar(&flagSetupAuto, "auto", false, "configure every detected client without prompting")
	rootCmd.AddCommand(setupCmd)
}

// detectClients returns the clients whose marker directory exists under root.
func detectClients(root string) []detectedClient {
	var detected []detectedClient
	for _, def := range clientRegistry {
		if def.DirMarker != "" {
			if info, err := os.Stat(filepath.Join(root, def.DirMarker)); err != nil || !info.IsDir() {
				continue
			}
		}
		path := filepath.Join(root, def.ConfigPath)
		detected = append(detected, detectedClient{
			Def:          def,
			ConfigPath:   path,
			AlreadySetup: isAlreadyConfigured(path, def.ServersKey),
		})
	}
	return detected
}

func isAlreadyConfigured(configPath, serversKey string) bool {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return false
	}
	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return false
	}
	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		return false
	}
	_, exists := servers[serverName]
	return exists
}

func serverEntry(extra map[string]string) map[string]any {
	entry := map[string]any{
		"command": serverName,
		"args":    []any{"mcp"},
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry adds the m2ls entry under serversKey of the existing JSON
// (or a new document) and returns the merged bytes.
// Returns nil, nil if m2ls is already configured.
func mergeServerEntry(existing []byte, serversKey string, extra map[string]string) ([]byte, error) {
	config := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}

	servers[serverName] = serverEntry(extra)
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func configureClient(d detectedClient) error {
	if err := os.MkdirAll(filepath.Dir(d.ConfigPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	var existing []byte
	if data, err := os.ReadFile(d.ConfigPath); err == nil {
		existing = data
	}

	merged, err := mergeServerEntry(existing, d.Def.ServersKey, d.Def.ExtraFields)
	if err != nil {
		return err
	}
	if merged == nil {
		return nil
	}
	return os.WriteFile(d.ConfigPath, merged, 0o644)
}

// promptYesNo prints a question and reads Y/n. Returns true for yes (default).
func promptYesNo(scanner *bufio.Scanner, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s ", question)
	if !scanner.Scan() {
		return true
	}
	answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
	return answer == "" || answer == "y" || answer == "yes"
}

// executeSetup is the testable core of the setup command.
func executeSetup(r io.Reader, w io.Writer, root string, auto bool) {
	detected := detectClients(root)

	fmt.Fprintln(w, "MCP clients:")
	for _, d := range detected {
		if d.AlreadySetup {
			fmt.Fprintf(w, "  * %s (already configured)\n", d.Def.DisplayName)
		} else {
			fmt.Fprintf(w, "  * %s\n", d.Def.DisplayName)
		}
	}

	scanner := bufio.NewScanner(r)
	for _, d := range detected {
		if d.AlreadySetup {
			continue
		}
		if !auto && !promptYesNo(scanner, w, fmt.Sprintf("\n%s: add m2ls to %s? [Y/n]", d.Def.DisplayName, d.ConfigPath)) {
			fmt.Fprintln(w, "  skipped")
			continue
		}
		if err := configureClient(d); err != nil {
			fmt.Fprintf(w, "  ! %s: failed: %v\n", d.Def.DisplayName, err)
			continue
		}
		fmt.Fprintf(w, "  + %s configured (%s)\n", d.Def.DisplayName, d.ConfigPath)
	}
}
