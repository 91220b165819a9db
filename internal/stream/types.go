package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidProblem is returned when a problem is missing required fields.
var ErrInvalidProblem = errors.New("invalid problem")

// Problem is the statement every stream analyzes. It is treated as immutable
// once submitted to the orchestrator.
type Problem struct {
	ID          string   `json:"id" yaml:"id"`
	Description string   `json:"description" yaml:"description"`
	Context     string   `json:"context,omitempty" yaml:"context,omitempty"`
	Constraints []string `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	Goals       []string `json:"goals,omitempty" yaml:"goals,omitempty"`
	Complexity  string   `json:"complexity,omitempty" yaml:"complexity,omitempty"`
	Urgency     string   `json:"urgency,omitempty" yaml:"urgency,omitempty"`
}

// Validate reports whether the problem carries an ID and a description.
func (p Problem) Validate() error {
	var missing []string
	if strings.TrimSpace(p.ID) == "" {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(p.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidProblem, strings.Join(missing, ", "))
	}
	return nil
}

// Kind identifies one of the four analytical perspectives.
type Kind string

const (
	KindMethodical  Kind = "methodical"
	KindDivergent   Kind = "divergent"
	KindSkeptical   Kind = "skeptical"
	KindIntegrative Kind = "integrative"
)

// AllKinds returns the four stream kinds in canonical order.
func AllKinds() []Kind {
	return []Kind{KindMethodical, KindDivergent, KindSkeptical, KindIntegrative}
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindMethodical, KindDivergent, KindSkeptical, KindIntegrative:
		return true
	}
	return false
}

// Status is the lifecycle state of a stream result.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusTimeout   Status = "timeout"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsTerminal returns true if no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusTimeout, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Insight is a single observation produced by a stream.
type Insight struct {
	Content    string  `json:"content"`
	Source     Kind    `json:"source"`
	Confidence float64 `json:"confidence"`
	Importance float64 `json:"importance"`
}

// Result is the outcome of one stream task attempt.
type Result struct {
	StreamID       string        `json:"streamId"`
	Kind           Kind          `json:"kind"`
	Conclusion     string        `json:"conclusion"`
	Reasoning      []string      `json:"reasoning"`
	Insights       []Insight     `json:"insights"`
	Confidence     float64       `json:"confidence"`
	ProcessingTime time.Duration `json:"processingTime"`
	Status         Status        `json:"status"`
	Err            error         `json:"-"`
}

// MarshalJSON renders Err as a plain string.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	out := struct {
		alias
		Error string `json:"error,omitempty"`
	}{alias: alias(r)}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// Completed reports whether the result finished successfully.
func (r Result) Completed() bool {
	return r.Status == StatusCompleted
}
