package mcptools

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupServerClient wires an MCP server and client together using in-memory
// transports and returns the connected client session.
func setupServerClient(t *testing.T) *mcp.ClientSession {
	t.Helper()

	server := NewMCPServer(newTestService(t, nil))
	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		session.Close()
	})
	return session
}

// decodeStructured round-trips structured tool output into out.
func decodeStructured(t *testing.T, result *mcp.CallToolResult, out any) {
	t.Helper()
	require.NotNil(t, result.StructuredContent, "expected structured content")
	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestMCPListTools(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)
	assert.Equal(t, []string{"analyze_problem", "list_conflict_patterns", "record_resolution"}, names)
}

func TestMCPAnalyzeThenListPatterns(t *testing.T) {
	session := setupServerClient(t)
	ctx := context.Background()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "analyze_problem",
		Arguments: AnalyzeProblemInput{
			ID:          "p-mcp",
			Description: "Is X safe to ship?",
			Streams:     []string{"methodical", "skeptical"},
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "analyze_problem should not return an error")

	var analysis AnalyzeProblemOutput
	decodeStructured(t, result, &analysis)
	assert.Equal(t, "p-mcp", analysis.ProblemID)
	require.Len(t, analysis.Conflicts, 1)
	assert.Equal(t, "critical", analysis.Conflicts[0].Severity)

	result, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "list_conflict_patterns",
		Arguments: ListConflictPatternsInput{},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var patterns ListConflictPatternsOutput
	decodeStructured(t, result, &patterns)
	require.Equal(t, 1, patterns.Total)
	assert.Equal(t, []string{"methodical", "skeptical"}, patterns.Patterns[0].Sources)
}

func TestMCPRecordResolution_InvalidTypeIsToolError(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "record_resolution",
		Arguments: RecordResolutionInput{
			Type:    "moral",
			Sources: []string{"a", "b"},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
