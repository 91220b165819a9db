// Package synthesis merges stream results into one ranked, conflict-aware,
// quality-scored answer.
package synthesis

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dusk-indust/fourfold/internal/conflict"
	"github.com/dusk-indust/fourfold/internal/stream"
)

// DefaultImportanceCutoff is the importance an attributed insight must
// exceed to be reported.
const DefaultImportanceCutoff = 0.4

const conclusionPreamble = "Integrated conclusion: "

// Engine synthesizes stream results. It holds no state of its own beyond
// the conflict engine it delegates detection to.
type Engine struct {
	conflicts *conflict.Engine
	cutoff    float64
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithImportanceCutoff overrides DefaultImportanceCutoff.
func WithImportanceCutoff(cutoff float64) Option {
	return func(e *Engine) { e.cutoff = cutoff }
}

// WithClock overrides the time source used for metadata.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine that detects conflicts with ce. A nil ce gets a
// fresh conflict engine with default thresholds.
func NewEngine(ce *conflict.Engine, opts ...Option) *Engine {
	if ce == nil {
		ce = conflict.NewEngine()
	}
	e := &Engine{
		conflicts: ce,
		cutoff:    DefaultImportanceCutoff,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Conflicts returns the conflict engine used for detection.
func (e *Engine) Conflicts() *conflict.Engine { return e.conflicts }

// Synthesize merges results into a single Result. Only completed results
// contribute content; every input is still counted in the metadata. Empty
// input, or input with no completed result, yields a sentinel result with
// zero confidence and zero quality.
func (e *Engine) Synthesize(results []stream.Result) Result {
	start := e.now()
	meta := metadata(results)

	if len(results) == 0 {
		return e.sentinel("No stream results were available to synthesize.", meta, start)
	}

	var done []stream.Result
	for _, r := range results {
		if r.Completed() {
			done = append(done, r)
		}
	}
	if len(done) == 0 {
		return e.sentinel(fmt.Sprintf("None of the %d streams completed, so no integrated conclusion could be formed.", len(results)), meta, start)
	}

	conflicts := e.conflicts.DetectConflicts(done)
	insights := e.attribute(done)
	recs := e.recommend(done)
	conclusion := conclude(done, conflicts)

	confidences := make([]float64, len(done))
	var kinds []stream.Kind
	for i, r := range done {
		confidences[i] = r.Confidence
		if !slices.Contains(kinds, r.Kind) {
			kinds = append(kinds, r.Kind)
		}
	}

	meta.StreamsUsed = kinds
	meta.Timestamp = e.now()
	meta.SynthesisTime = meta.Timestamp.Sub(start)

	return Result{
		Conclusion:      conclusion,
		Insights:        insights,
		Recommendations: recs,
		Conflicts:       conflicts,
		Confidence:      mean(confidences),
		Quality:         assess(kinds, conclusion, insights, recs, conflicts),
		Metadata:        meta,
	}
}

func (e *Engine) sentinel(conclusion string, meta Metadata, start time.Time) Result {
	meta.Timestamp = e.now()
	meta.SynthesisTime = meta.Timestamp.Sub(start)
	return Result{
		Conclusion:      conclusion,
		Insights:        []AttributedInsight{},
		Recommendations: []Recommendation{},
		Conflicts:       []conflict.Conflict{},
		Metadata:        meta,
	}
}

func metadata(results []stream.Result) Metadata {
	meta := Metadata{
		StreamsUsed:  []stream.Kind{},
		StreamCount:  len(results),
		StatusCounts: make(map[stream.Status]int),
		Streams:      make([]StreamSummary, 0, len(results)),
	}
	for _, r := range results {
		meta.StatusCounts[r.Status]++
		s := StreamSummary{
			StreamID:       r.StreamID,
			Kind:           r.Kind,
			Status:         r.Status,
			Confidence:     r.Confidence,
			ProcessingTime: r.ProcessingTime,
		}
		if r.Err != nil {
			s.Error = r.Err.Error()
		}
		meta.Streams = append(meta.Streams, s)
	}
	return meta
}

// conclude joins the completed conclusions and appends the critical and high
// severity conflicts, plus a count of the rest.
func conclude(results []stream.Result, conflicts []conflict.Conflict) string {
	var parts []string
	for _, r := range results {
		c := strings.TrimRight(strings.TrimSpace(r.Conclusion), ".")
		if c != "" {
			parts = append(parts, c)
		}
	}

	var b strings.Builder
	b.WriteString(conclusionPreamble)
	b.WriteString(strings.Join(parts, ". "))
	if len(parts) > 0 {
		b.WriteString(".")
	}
	if len(conflicts) == 0 {
		return b.String()
	}

	var critical, high []conflict.Conflict
	rest := 0
	for _, c := range conflicts {
		switch c.Severity {
		case conflict.SeverityCritical:
			critical = append(critical, c)
		case conflict.SeverityHigh:
			high = append(high, c)
		default:
			rest++
		}
	}

	writeBlock(&b, "CRITICAL conflicts requiring immediate attention:", critical)
	writeBlock(&b, "High-priority conflicts:", high)
	if rest > 0 {
		noun := "conflicts"
		if rest == 1 {
			noun = "conflict"
		}
		fmt.Fprintf(&b, "\n\n(%d additional lower-severity %s detected)", rest, noun)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, heading string, conflicts []conflict.Conflict) {
	if len(conflicts) == 0 {
		return
	}
	b.WriteString("\n\n")
	b.WriteString(heading)
	for _, c := range conflicts {
		b.WriteString("\n- ")
		b.WriteString(c.Description)
		if c.Framework != nil {
			b.WriteString(" ")
			b.WriteString(c.Framework.RecommendedAction)
		}
	}
}
