//go:build e2e

package e2e

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/fourfold/internal/conflict"
	"github.com/dusk-indust/fourfold/internal/export"
	"github.com/dusk-indust/fourfold/internal/orchestrator"
	"github.com/dusk-indust/fourfold/internal/patternstore"
	"github.com/dusk-indust/fourfold/internal/stream"
	"github.com/dusk-indust/fourfold/internal/synthesis"
)

var migration = stream.Problem{
	ID:          "billing-migration",
	Description: "Should we migrate the legacy billing service to event sourcing before the Q3 deadline?",
	Context:     "The billing service is a ten year old monolith shared by three teams.",
	Constraints: []string{"budget is fixed", "no downtime during month-end close"},
	Goals:       []string{"auditable invoice history", "independent team deployments"},
	Complexity:  "high",
	Urgency:     "medium",
}

func newOrchestrator(ce *conflict.Engine, opts ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(synthesis.NewEngine(ce), opts...)
}

func TestPipeline_AllStreamsComplete(t *testing.T) {
	ce := conflict.NewEngine()
	var events []orchestrator.ProgressEvent
	reporter := orchestrator.NewProgressReporter()
	orch := newOrchestrator(ce,
		orchestrator.WithTimeouts(5*time.Second, 10*time.Second),
		orchestrator.WithShareDelay(10*time.Millisecond),
		orchestrator.WithReporter(reporter),
	)

	tasks, err := stream.NewRegistry(20 * time.Millisecond).SpawnAll()
	require.NoError(t, err)

	res := orch.ExecuteStreams(context.Background(), migration, tasks)
	reporter.Close()
	for ev := range reporter.Subscribe() {
		events = append(events, ev)
	}

	require.Len(t, res.Metadata.Streams, 4)
	for _, s := range res.Metadata.Streams {
		assert.Equal(t, stream.StatusCompleted, s.Status, s.StreamID)
	}
	assert.Equal(t, 4, res.Metadata.StatusCounts[stream.StatusCompleted])
	assert.Equal(t, "billing-migration", res.Metadata.ProblemID)
	assert.True(t, strings.HasPrefix(res.Conclusion, "Integrated conclusion: "), res.Conclusion)
	assert.NotEmpty(t, res.Insights)
	assert.NotEmpty(t, res.Recommendations)
	assert.InDelta(t, 0.5, res.Confidence, 0.5)
	assert.InDelta(t, 0.5, res.Quality.OverallScore, 0.5)
	assert.NotEmpty(t, events)

	for _, c := range res.Conflicts {
		assert.NotNil(t, c.Framework)
		assert.Len(t, c.Sources, 2)
	}
	assert.Len(t, ce.ConflictPatterns(), distinctPatterns(res.Conflicts))

	md := export.Markdown(res)
	assert.Contains(t, md, "# Analysis: billing-migration")
	assert.True(t, strings.HasPrefix(export.ConflictMermaid(res), "graph LR\n"))
}

func TestPipeline_SlowStreamsTimeOut(t *testing.T) {
	orch := newOrchestrator(conflict.NewEngine(),
		orchestrator.WithTimeouts(50*time.Millisecond, time.Second),
	)
	tasks, err := stream.NewRegistry(time.Second).SpawnAll()
	require.NoError(t, err)

	start := time.Now()
	res := orch.ExecuteStreams(context.Background(), migration, tasks)
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 900*time.Millisecond, "per-task timeout must fire well before the stream delay")
	require.Len(t, res.Metadata.Streams, 4)
	assert.Equal(t, 4, res.Metadata.StatusCounts[stream.StatusTimeout])
	assert.Equal(t, "None of the 4 streams completed, so no integrated conclusion could be formed.", res.Conclusion)
	assert.Empty(t, res.Conflicts)
	for _, task := range tasks {
		assert.NotEqual(t, 1.0, task.Progress(), task.ID())
	}
}

func TestPipeline_BatchDeadline(t *testing.T) {
	orch := newOrchestrator(conflict.NewEngine(),
		orchestrator.WithTimeouts(5*time.Second, 100*time.Millisecond),
	)
	tasks, err := stream.NewRegistry(time.Second).SpawnAll()
	require.NoError(t, err)

	start := time.Now()
	res := orch.ExecuteStreams(context.Background(), migration, tasks)

	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, res.Metadata.Streams, 4)
	assert.Zero(t, res.Metadata.StatusCounts[stream.StatusCompleted])
}

func TestPipeline_PatternsSurviveRestart(t *testing.T) {
	ctx := context.Background()
	store := patternstore.NewMemStore()

	first := conflict.NewEngine()
	first.TrackConflictPattern(conflict.Conflict{Type: conflict.TypeFactual, Sources: []string{"methodical", "skeptical"}}, false)
	_, err := patternstore.Persist(ctx, store, first)
	require.NoError(t, err)

	second := conflict.NewEngine()
	_, err = patternstore.Restore(ctx, store, second)
	require.NoError(t, err)

	orch := newOrchestrator(second, orchestrator.WithTimeouts(5*time.Second, 10*time.Second))
	tasks, err := stream.NewRegistry(0).SpawnAll()
	require.NoError(t, err)
	orch.ExecuteStreams(ctx, migration, tasks)

	var found bool
	for _, p := range orch.Conflicts().ConflictPatterns() {
		if p.Key == conflict.NewPatternKey(conflict.TypeFactual, []string{"skeptical", "methodical"}) {
			found = true
			assert.GreaterOrEqual(t, p.Frequency, 1)
		}
	}
	assert.True(t, found, "restored pattern must still be listed after a new run")
}

func distinctPatterns(cs []conflict.Conflict) int {
	seen := make(map[conflict.PatternKey]bool)
	for _, c := range cs {
		seen[conflict.NewPatternKey(c.Type, c.Sources)] = true
	}
	return len(seen)
}
