package mcptools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/fourfold/internal/conflict"
	"github.com/dusk-indust/fourfold/internal/orchestrator"
	"github.com/dusk-indust/fourfold/internal/patternstore"
	"github.com/dusk-indust/fourfold/internal/stream"
	"github.com/dusk-indust/fourfold/internal/synthesis"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// fixedStream returns a factory whose tasks always conclude with conclusion.
func fixedStream(kind stream.Kind, conclusion string, confidence float64) stream.Factory {
	return func(o stream.Options) stream.Task {
		return stream.NewBase(o.ID, kind, o.Delay, func(ctx context.Context, p stream.Problem, b *stream.Base) (stream.Result, error) {
			return stream.Result{
				Conclusion: conclusion,
				Reasoning:  []string{"checked the inputs"},
				Confidence: confidence,
			}, nil
		})
	}
}

// newTestService wires a service whose methodical and skeptical streams
// disagree critically.
func newTestService(t *testing.T, store patternstore.Store) *AnalysisService {
	t.Helper()

	reg := stream.NewRegistry(0)
	reg.Register(stream.KindMethodical, fixedStream(stream.KindMethodical, "X is safe", 0.97))
	reg.Register(stream.KindSkeptical, fixedStream(stream.KindSkeptical, "X is unsafe", 0.96))

	orch := orchestrator.New(
		synthesis.NewEngine(conflict.NewEngine()),
		orchestrator.WithTimeouts(time.Second, 2*time.Second),
		orchestrator.WithShareDelay(time.Hour),
	)
	return NewAnalysisService(orch, reg, store)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAnalyzeProblem_RequiresDescription(t *testing.T) {
	svc := newTestService(t, nil)
	_, _, err := svc.AnalyzeProblem(context.Background(), nil, AnalyzeProblemInput{Description: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestAnalyzeProblem_UnknownStream(t *testing.T) {
	svc := newTestService(t, nil)
	_, _, err := svc.AnalyzeProblem(context.Background(), nil, AnalyzeProblemInput{
		Description: "Is X safe?",
		Streams:     []string{"methodical", "lateral"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lateral")
}

func TestAnalyzeProblem_SelectedStreams(t *testing.T) {
	store := patternstore.NewMemStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	_, out, err := svc.AnalyzeProblem(ctx, nil, AnalyzeProblemInput{
		ID:          "p-42",
		Description: "Is X safe to ship?",
		Streams:     []string{"Methodical", " skeptical "},
	})
	require.NoError(t, err)

	assert.Equal(t, "p-42", out.ProblemID)
	require.Len(t, out.Streams, 2)
	assert.Equal(t, "methodical", out.Streams[0].StreamID)
	assert.Equal(t, "completed", out.Streams[1].Status)

	require.Len(t, out.Conflicts, 1)
	c := out.Conflicts[0]
	assert.Equal(t, "critical", c.Severity)
	assert.Equal(t, []string{"methodical", "skeptical"}, c.Sources)
	assert.True(t, strings.HasPrefix(c.RecommendedAction, "IMMEDIATE ACTION REQUIRED: "))
	assert.Contains(t, out.Conclusion, "CRITICAL conflicts requiring immediate attention:")
	assert.True(t, strings.HasPrefix(out.Report, "# Analysis: p-42"))

	saved, err := store.LoadPatterns(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1, "critical conflict pattern should be persisted")
	assert.Equal(t, 1, saved[0].Frequency)
	assert.Zero(t, saved[0].SuccessRate)
}

func TestAnalyzeProblem_GeneratesID(t *testing.T) {
	svc := newTestService(t, nil)
	_, out, err := svc.AnalyzeProblem(context.Background(), nil, AnalyzeProblemInput{
		Description: "Is X safe to ship?",
		Streams:     []string{"methodical"},
	})
	require.NoError(t, err)
	assert.Len(t, out.ProblemID, 36)
	assert.Empty(t, out.Conflicts)
	assert.NotNil(t, out.Conflicts)
}

func TestListConflictPatterns(t *testing.T) {
	svc := newTestService(t, nil)
	ce := svc.orch.Conflicts()
	ce.TrackConflictPattern(conflict.Conflict{Type: conflict.TypeLogical, Sources: []string{"a", "b"}}, true)
	ce.TrackConflictPattern(conflict.Conflict{Type: conflict.TypeFactual, Sources: []string{"c", "d"}}, false)
	ce.TrackConflictPattern(conflict.Conflict{Type: conflict.TypeFactual, Sources: []string{"d", "c"}}, true)

	_, out, err := svc.ListConflictPatterns(context.Background(), nil, ListConflictPatternsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	require.Len(t, out.Patterns, 2)
	assert.Equal(t, "factual", out.Patterns[0].Type)
	assert.Equal(t, 2, out.Patterns[0].Frequency)
	assert.InDelta(t, 0.5, out.Patterns[0].SuccessRate, 1e-9)
	assert.Equal(t, []string{"c", "d"}, out.Patterns[0].Sources)

	_, limited, err := svc.ListConflictPatterns(context.Background(), nil, ListConflictPatternsInput{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, limited.Total)
	assert.Len(t, limited.Patterns, 1)
}

func TestRecordResolution(t *testing.T) {
	store := patternstore.NewMemStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	in := RecordResolutionInput{Type: "Evaluative", Sources: []string{"skeptical", "divergent"}, Resolved: true}
	_, out, err := svc.RecordResolution(ctx, nil, in)
	require.NoError(t, err)
	assert.Equal(t, "evaluative", out.Pattern.Type)
	assert.Equal(t, []string{"divergent", "skeptical"}, out.Pattern.Sources)
	assert.Equal(t, 1, out.Pattern.Frequency)
	assert.InDelta(t, 1.0, out.Pattern.SuccessRate, 1e-9)

	in.Resolved = false
	_, out, err = svc.RecordResolution(ctx, nil, in)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Pattern.Frequency)
	assert.InDelta(t, 0.5, out.Pattern.SuccessRate, 1e-9)

	saved, err := store.LoadPatterns(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, 2, saved[0].Frequency)
}

func TestRecordResolution_Validation(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, _, err := svc.RecordResolution(ctx, nil, RecordResolutionInput{Type: "moral", Sources: []string{"a", "b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moral")

	_, _, err = svc.RecordResolution(ctx, nil, RecordResolutionInput{Type: "factual", Sources: []string{"a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "two source")

	assert.Empty(t, svc.orch.Conflicts().ConflictPatterns())
}
