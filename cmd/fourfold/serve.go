package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/fourfold/internal/mcptools"
)

func serveMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve-mcp",
		Short: "Run as an MCP server on stdio",
		Long: `serve-mcp exposes analyze_problem, list_conflict_patterns and
record_resolution as MCP tools over stdin/stdout. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd.Context(), cmd.ErrOrStderr(), func(ctx context.Context, a *app) error {
				svc := mcptools.NewAnalysisService(a.orch, a.registry, a.store)
				a.log.InfoContext(ctx, "mcp server listening on stdio")
				return mcptools.RunStdio(ctx, mcptools.NewMCPServer(svc))
			})
		},
	}
}
