package conflict

import (
	"slices"
	"strings"
	"time"

	"github.com/dusk-indust/fourfold/internal/stream"
)

// Type classifies the nature of a disagreement between two streams.
type Type string

const (
	TypeFactual        Type = "factual"
	TypeLogical        Type = "logical"
	TypeMethodological Type = "methodological"
	TypeEvaluative     Type = "evaluative"
	TypePredictive     Type = "predictive"
)

// AllTypes returns the five conflict types in classification order.
func AllTypes() []Type {
	return []Type{TypeFactual, TypePredictive, TypeLogical, TypeEvaluative, TypeMethodological}
}

// Valid reports whether t is one of the known conflict types.
func (t Type) Valid() bool {
	return slices.Contains(AllTypes(), t)
}

// Severity grades how urgently a conflict needs attention.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Score maps a severity onto 0..1 for quality scoring.
func (s Severity) Score() float64 {
	switch s {
	case SeverityLow:
		return 0.25
	case SeverityMedium:
		return 0.5
	case SeverityHigh:
		return 0.75
	case SeverityCritical:
		return 1.0
	default:
		return 0
	}
}

// Rank orders severities from low (1) to critical (4). Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Evidence is one side of a disagreement.
type Evidence struct {
	StreamID   string      `json:"streamId"`
	Kind       stream.Kind `json:"kind"`
	Claim      string      `json:"claim"`
	Reasoning  string      `json:"reasoning"`
	Confidence float64     `json:"confidence"`
}

// Conflict is a classified, severity-scored disagreement between two stream
// conclusions. Severity and Framework are always populated by DetectConflicts.
type Conflict struct {
	ID          string               `json:"id"`
	Type        Type                 `json:"type"`
	Severity    Severity             `json:"severity"`
	Sources     []string             `json:"sources"`
	Description string               `json:"description"`
	Evidence    [2]Evidence          `json:"evidence"`
	DetectedAt  time.Time            `json:"detectedAt"`
	Framework   *ResolutionFramework `json:"resolutionFramework,omitempty"`
}

// ResolutionFramework is a structured plan for settling a conflict.
type ResolutionFramework struct {
	Approach          string   `json:"approach"`
	Steps             []string `json:"steps"`
	Considerations    []string `json:"considerations"`
	RecommendedAction string   `json:"recommendedAction"`
}

// sourceSep cannot appear in a stream ID typed on a command line or in YAML,
// so joined keys never collide.
const sourceSep = "\x1f"

// PatternKey identifies a conflict pattern by type and the sorted set of
// stream IDs involved. Build it with NewPatternKey.
type PatternKey struct {
	typ     Type
	sources string
}

// NewPatternKey builds a key from a conflict type and source IDs in any order.
func NewPatternKey(t Type, sources []string) PatternKey {
	ids := slices.Clone(sources)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	return PatternKey{typ: t, sources: strings.Join(ids, sourceSep)}
}

// Type returns the conflict type of the key.
func (k PatternKey) Type() Type { return k.typ }

// Sources returns the sorted, deduplicated stream IDs of the key.
func (k PatternKey) Sources() []string {
	if k.sources == "" {
		return nil
	}
	return strings.Split(k.sources, sourceSep)
}

func (k PatternKey) String() string {
	return string(k.typ) + ":" + strings.Join(k.Sources(), ",")
}

// Pattern aggregates every conflict seen for one PatternKey.
type Pattern struct {
	Key           PatternKey `json:"-"`
	Types         []Type     `json:"types"`
	Frequency     int        `json:"frequency"`
	CommonSources []string   `json:"commonSources"`
	SuccessRate   float64    `json:"successRate"`
	LastSeen      time.Time  `json:"lastSeen"`
}
