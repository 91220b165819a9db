package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/fourfold/internal/conflict"
	"github.com/dusk-indust/fourfold/internal/export"
	"github.com/dusk-indust/fourfold/internal/orchestrator"
	"github.com/dusk-indust/fourfold/internal/patternstore"
	"github.com/dusk-indust/fourfold/internal/stream"
	"github.com/dusk-indust/fourfold/internal/synthesis"
)

// AnalysisService holds the orchestrator, stream registry and optional
// pattern store used by MCP tool handlers.
type AnalysisService struct {
	orch     *orchestrator.Orchestrator
	registry *stream.Registry
	store    patternstore.Store // nil disables persistence
	log      *slog.Logger
}

// NewAnalysisService creates an AnalysisService. store may be nil.
func NewAnalysisService(orch *orchestrator.Orchestrator, registry *stream.Registry, store patternstore.Store) *AnalysisService {
	return &AnalysisService{
		orch:     orch,
		registry: registry,
		store:    store,
		log:      slog.Default().With("component", "fourfold.mcp"),
	}
}

// AnalyzeProblem runs the requested streams against the problem and returns
// the synthesized result.
func (s *AnalysisService) AnalyzeProblem(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeProblemInput,
) (*mcp.CallToolResult, AnalyzeProblemOutput, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, AnalyzeProblemOutput{}, errors.New("description is required")
	}

	p := stream.Problem{
		ID:          input.ID,
		Description: input.Description,
		Context:     input.Context,
		Constraints: input.Constraints,
		Goals:       input.Goals,
		Complexity:  input.Complexity,
		Urgency:     input.Urgency,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	tasks, err := s.spawn(input.Streams)
	if err != nil {
		return nil, AnalyzeProblemOutput{}, err
	}

	perTask := time.Duration(input.PerTaskMillis) * time.Millisecond
	total := time.Duration(input.TotalMillis) * time.Millisecond
	res := s.orch.Run(ctx, p, tasks, perTask, total)

	s.persist(ctx)

	return nil, analyzeOutput(res), nil
}

// ListConflictPatterns returns the learned conflict patterns.
func (s *AnalysisService) ListConflictPatterns(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListConflictPatternsInput,
) (*mcp.CallToolResult, ListConflictPatternsOutput, error) {
	patterns := s.orch.Conflicts().ConflictPatterns()
	total := len(patterns)
	if input.Limit > 0 && input.Limit < total {
		patterns = patterns[:input.Limit]
	}

	out := ListConflictPatternsOutput{
		Patterns: make([]PatternSummary, 0, len(patterns)),
		Total:    total,
	}
	for _, p := range patterns {
		out.Patterns = append(out.Patterns, patternSummary(p))
	}
	return nil, out, nil
}

// RecordResolution tracks an externally settled conflict and returns its
// updated pattern.
func (s *AnalysisService) RecordResolution(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecordResolutionInput,
) (*mcp.CallToolResult, RecordResolutionOutput, error) {
	typ := conflict.Type(strings.ToLower(input.Type))
	if !typ.Valid() {
		return nil, RecordResolutionOutput{}, fmt.Errorf("unknown conflict type %q", input.Type)
	}
	if len(input.Sources) != 2 || input.Sources[0] == "" || input.Sources[1] == "" {
		return nil, RecordResolutionOutput{}, fmt.Errorf("exactly two source stream IDs are required, got %d", len(input.Sources))
	}

	ce := s.orch.Conflicts()
	ce.TrackConflictPattern(conflict.Conflict{Type: typ, Sources: input.Sources}, input.Resolved)
	s.persist(ctx)

	key := conflict.NewPatternKey(typ, input.Sources)
	for _, p := range ce.ConflictPatterns() {
		if p.Key == key {
			return nil, RecordResolutionOutput{Pattern: patternSummary(p)}, nil
		}
	}
	return nil, RecordResolutionOutput{}, fmt.Errorf("pattern %s not found after tracking", key)
}

func (s *AnalysisService) spawn(kinds []string) ([]stream.Task, error) {
	if len(kinds) == 0 {
		return s.registry.SpawnAll()
	}
	tasks := make([]stream.Task, 0, len(kinds))
	for _, k := range kinds {
		kind := stream.Kind(strings.ToLower(strings.TrimSpace(k)))
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown stream kind %q", k)
		}
		t, err := s.registry.Spawn(kind)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// persist saves learned patterns. Failures are logged, not returned: the
// analysis itself already succeeded.
func (s *AnalysisService) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	if _, err := patternstore.Persist(ctx, s.store, s.orch.Conflicts()); err != nil {
		s.log.WarnContext(ctx, "pattern persistence failed", "error", err)
	}
}

func analyzeOutput(res synthesis.Result) AnalyzeProblemOutput {
	out := AnalyzeProblemOutput{
		ProblemID:       res.Metadata.ProblemID,
		Conclusion:      res.Conclusion,
		Confidence:      res.Confidence,
		Quality:         res.Quality.OverallScore,
		StreamsUsed:     make([]string, 0, len(res.Metadata.StreamsUsed)),
		Streams:         make([]StreamOutcome, 0, len(res.Metadata.Streams)),
		Recommendations: make([]string, 0, len(res.Recommendations)),
		Conflicts:       make([]ConflictSummary, 0, len(res.Conflicts)),
		Report:          export.Markdown(res),
	}
	for _, k := range res.Metadata.StreamsUsed {
		out.StreamsUsed = append(out.StreamsUsed, string(k))
	}
	for _, sm := range res.Metadata.Streams {
		out.Streams = append(out.Streams, StreamOutcome{
			StreamID: sm.StreamID,
			Status:   string(sm.Status),
			Error:    sm.Error,
		})
	}
	for _, r := range res.Recommendations {
		out.Recommendations = append(out.Recommendations, r.Description)
	}
	for _, c := range res.Conflicts {
		cs := ConflictSummary{
			ID:          c.ID,
			Type:        string(c.Type),
			Severity:    string(c.Severity),
			Sources:     c.Sources,
			Description: c.Description,
		}
		if c.Framework != nil {
			cs.RecommendedAction = c.Framework.RecommendedAction
		}
		out.Conflicts = append(out.Conflicts, cs)
	}
	return out
}

func patternSummary(p conflict.Pattern) PatternSummary {
	return PatternSummary{
		Type:        string(p.Key.Type()),
		Sources:     p.CommonSources,
		Frequency:   p.Frequency,
		SuccessRate: p.SuccessRate,
		LastSeen:    p.LastSeen.UTC().Format(time.RFC3339),
	}
}
