package synthesis

import (
	"time"

	"github.com/dusk-indust/fourfold/internal/conflict"
	"github.com/dusk-indust/fourfold/internal/stream"
)

// Excerpt is a reasoning step quoted as evidence for an insight.
type Excerpt struct {
	StreamID string      `json:"streamId"`
	Source   stream.Kind `json:"source"`
	Text     string      `json:"text"`
}

// AttributedInsight merges insights with the same normalized content and
// records which streams produced it.
type AttributedInsight struct {
	Content    string        `json:"content"`
	Sources    []stream.Kind `json:"sources"`
	Confidence float64       `json:"confidence"`
	Importance float64       `json:"importance"`
	Evidence   []Excerpt     `json:"evidence"`
}

// Score is the ranking key: importance times confidence.
func (a AttributedInsight) Score() float64 {
	return a.Importance * a.Confidence
}

// Recommendation is an action-oriented conclusion, merged across streams.
type Recommendation struct {
	Description string        `json:"description"`
	Sources     []stream.Kind `json:"sources"`
	Priority    float64       `json:"priority"`
	Confidence  float64       `json:"confidence"`
	Rationale   []string      `json:"rationale"`
	Concerns    []string      `json:"concerns"`
}

// QualityAssessment scores a synthesis on five equally weighted components.
type QualityAssessment struct {
	Completeness          float64 `json:"completeness"`
	Consistency           float64 `json:"consistency"`
	Coherence             float64 `json:"coherence"`
	InsightQuality        float64 `json:"insightQuality"`
	RecommendationQuality float64 `json:"recommendationQuality"`
	OverallScore          float64 `json:"overallScore"`
}

// StreamSummary describes one input result, whatever its status.
type StreamSummary struct {
	StreamID       string        `json:"streamId"`
	Kind           stream.Kind   `json:"kind"`
	Status         stream.Status `json:"status"`
	Confidence     float64       `json:"confidence"`
	ProcessingTime time.Duration `json:"processingTime"`
	Error          string        `json:"error,omitempty"`
}

// Metadata describes how a synthesis was produced.
type Metadata struct {
	// StreamsUsed lists the distinct kinds of the completed results.
	StreamsUsed   []stream.Kind         `json:"streamsUsed"`
	SynthesisTime time.Duration         `json:"synthesisTime"`
	Timestamp     time.Time             `json:"timestamp"`
	ProblemID     string                `json:"problemId,omitempty"`
	StreamCount   int                   `json:"streamCount"`
	StatusCounts  map[stream.Status]int `json:"statusCounts"`
	Streams       []StreamSummary       `json:"streams"`
}

// Result is the single, final answer of an orchestration run.
type Result struct {
	Conclusion      string              `json:"conclusion"`
	Insights        []AttributedInsight `json:"insights"`
	Recommendations []Recommendation    `json:"recommendations"`
	Conflicts       []conflict.Conflict `json:"conflicts"`
	Confidence      float64             `json:"confidence"`
	Quality         QualityAssessment   `json:"quality"`
	Metadata        Metadata            `json:"metadata"`
}
