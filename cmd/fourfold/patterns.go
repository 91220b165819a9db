package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/fourfold/internal/conflict"
)

// patternRow is the JSON form of a learned pattern; conflict.Pattern hides
// its key.
type patternRow struct {
	Key string `json:"key"`
	conflict.Pattern
}

func patternsCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List learned conflict patterns, most frequent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), cmd.ErrOrStderr(), func(_ context.Context, a *app) error {
				patterns := a.orch.Conflicts().ConflictPatterns()
				if limit > 0 && limit < len(patterns) {
					patterns = patterns[:limit]
				}

				out := cmd.OutOrStdout()
				if asJSON {
					rows := make([]patternRow, len(patterns))
					for i, p := range patterns {
						rows[i] = patternRow{Key: p.Key.String(), Pattern: p}
					}
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(rows)
				}

				if len(patterns) == 0 {
					fmt.Fprintf(out, "No conflict patterns recorded yet (backend: %s).\n", a.cfg.Patterns.Backend)
					return nil
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(out)
				tw.AppendHeader(table.Row{"Type", "Streams", "Frequency", "Success rate", "Last seen"})
				for _, p := range patterns {
					tw.AppendRow(table.Row{
						p.Key.Type(),
						pairLabel(p.CommonSources),
						p.Frequency,
						fmt.Sprintf("%.0f%%", p.SuccessRate*100),
						p.LastSeen.Local().Format(time.DateTime),
					})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n patterns")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func pairLabel(ids []string) string {
	if len(ids) == 2 {
		return ids[0] + " vs " + ids[1]
	}
	return fmt.Sprint(ids)
}
