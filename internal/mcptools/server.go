package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server with the analysis and pattern tools
// registered.
func NewMCPServer(svc *AnalysisService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "fourfold",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_problem",
		Description: "Analyze a problem from the methodical, divergent, skeptical and integrative perspectives in parallel, then return one synthesized conclusion with recommendations and any conflicts between the perspectives.",
	}, svc.AnalyzeProblem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_conflict_patterns",
		Description: "List the recurring conflict patterns learned so far, most frequent first, with how often each was resolved.",
	}, svc.ListConflictPatterns)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_resolution",
		Description: "Record whether a conflict between two streams was resolved, updating the learned success rate of its pattern.",
	}, svc.RecordResolution)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
