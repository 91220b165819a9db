package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/fourfold/internal/export"
)

func diagramCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagram <report.json>",
		Short: "Print a Mermaid conflict diagram from a JSON report",
		Long: `diagram reads a report written by 'fourfold analyze --format json' and
prints a Mermaid graph with one node per stream and one edge per conflict.
Use '-' to read the report from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagram(args[0], cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runDiagram(path string, stdin io.Reader, out io.Writer) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	var report export.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return fmt.Errorf("parse report %s: %w", path, err)
	}

	_, err = io.WriteString(out, export.ConflictMermaid(report.Result))
	return err
}
