package conflict

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dusk-indust/fourfold/internal/stream"
)

// Engine detects, classifies and grades disagreements between stream results
// and learns which stream pairs tend to conflict. An Engine is safe for
// concurrent use; its pattern table is the only state kept across calls.
type Engine struct {
	th       Thresholds
	now      func() time.Time
	newID    func() string
	patterns *patternTable
}

// Option configures an Engine.
type Option func(*Engine)

// WithThresholds overrides the detection and severity constants.
func WithThresholds(th Thresholds) Option {
	return func(e *Engine) { e.th = th }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator overrides how conflict IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine creates an Engine with default thresholds.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		th:       DefaultThresholds(),
		now:      time.Now,
		newID:    uuid.NewString,
		patterns: newPatternTable(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Thresholds returns the constants the engine was configured with.
func (e *Engine) Thresholds() Thresholds { return e.th }

// DetectConflicts compares every unordered pair of results and returns one
// Conflict per pair whose conclusions disagree. Results without a stream ID
// or a conclusion are skipped. Every returned conflict carries a severity
// and a resolution framework.
func (e *Engine) DetectConflicts(results []stream.Result) []Conflict {
	usable := make([]stream.Result, 0, len(results))
	for _, r := range results {
		if r.StreamID == "" || strings.TrimSpace(r.Conclusion) == "" {
			continue
		}
		usable = append(usable, r)
	}

	conflicts := make([]Conflict, 0)
	for i := 0; i < len(usable); i++ {
		for j := i + 1; j < len(usable); j++ {
			a, b := usable[i], usable[j]
			if AreConclusionsSimilar(a.Conclusion, b.Conclusion, e.th) {
				continue
			}
			conflicts = append(conflicts, e.newConflict(a, b))
		}
	}
	return conflicts
}

func (e *Engine) newConflict(a, b stream.Result) Conflict {
	t := Classify(a.Conclusion, b.Conclusion)
	c := Conflict{
		ID:      e.newID(),
		Type:    t,
		Sources: []string{a.StreamID, b.StreamID},
		Description: fmt.Sprintf("%s disagreement between %s and %s: %q vs %q",
			strings.ToUpper(string(t[:1]))+string(t[1:]), a.StreamID, b.StreamID, a.Conclusion, b.Conclusion),
		Evidence:   [2]Evidence{evidenceFrom(a), evidenceFrom(b)},
		DetectedAt: e.now(),
	}
	c.Severity = e.AssessSeverity(c)
	fw := e.GenerateResolutionFramework(c)
	c.Framework = &fw
	return c
}

func evidenceFrom(r stream.Result) Evidence {
	return Evidence{
		StreamID:   r.StreamID,
		Kind:       r.Kind,
		Claim:      r.Conclusion,
		Reasoning:  strings.Join(r.Reasoning, "; "),
		Confidence: r.Confidence,
	}
}

// TrackConflictPattern records one occurrence of c's pattern and folds
// resolved into the pattern's running success rate.
func (e *Engine) TrackConflictPattern(c Conflict, resolved bool) {
	e.patterns.track(c, resolved, e.now())
}

// ConflictPatterns returns a snapshot of every pattern seen so far.
func (e *Engine) ConflictPatterns() []Pattern {
	return e.patterns.snapshot()
}

// RestorePatterns seeds the pattern table, typically from a persistent store.
// Patterns with the same key replace what the table already holds.
func (e *Engine) RestorePatterns(patterns []Pattern) {
	e.patterns.restore(patterns)
}
