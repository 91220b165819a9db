package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dusk-indust/fourfold/internal/config"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// fourfoldMCPEntry is the MCP server configuration for the fourfold binary.
var fourfoldMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "fourfold",
  "args": ["serve-mcp"]
}`)

func initCmd() *cobra.Command {
	var force, withMCP bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default fourfold.yml (and optionally register the MCP server)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd.OutOrStdout(), viper.GetString("dir"), force, withMCP)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	cmd.Flags().BoolVar(&withMCP, "mcp", false, "also add fourfold to .mcp.json")
	return cmd
}

// runInit writes the default configuration, and with withMCP the .mcp.json
// entry, into the project directory.
func runInit(out io.Writer, projectRoot string, force, withMCP bool) error {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return err
	}

	cfgPath := filepath.Join(abs, config.FileNames[0])
	if _, err := os.Stat(cfgPath); err == nil && !force {
		fmt.Fprintf(out, "  skipped %s (exists, use --force to overwrite)\n", dotRelative(abs, cfgPath))
	} else {
		written, err := config.Write(abs, config.Defaults())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  created %s\n", dotRelative(abs, written))
	}

	if withMCP {
		if err := mergeMCPConfig(out, filepath.Join(abs, ".mcp.json"), force); err != nil {
			return err
		}
	}
	return nil
}

// mergeMCPConfig creates or merges the fourfold entry into .mcp.json.
func mergeMCPConfig(out io.Writer, mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["fourfold"]; exists && !force {
		fmt.Fprintln(out, "  skipped .mcp.json fourfold entry (exists, use --force to overwrite)")
		return nil
	}

	cfg.MCPServers["fourfold"] = fourfoldMCPEntry

	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}
	if err := os.WriteFile(mcpPath, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(out, "  %s .mcp.json with fourfold MCP server\n", action)
	return nil
}

// dotRelative returns a display path relative to the project root, prefixed
// with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
