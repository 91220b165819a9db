package stream

import "context"

// Task is a unit of work that analyzes a problem from one perspective.
//
// The context passed to Process is the cancellation token: implementations
// check it between side-effecting steps and stop making progress once it is
// done. Cancel is the advisory hook called by the orchestrator's deadline
// guards; it must be safe to call more than once and after Process returned.
type Task interface {
	ID() string
	Kind() Kind
	Process(ctx context.Context, p Problem) (Result, error)
	Cancel()
	Progress() float64
}

// InsightSource is implemented by tasks that can publish insights while they
// are still running.
type InsightSource interface {
	SharedInsights() []Insight
}

// InsightSink is implemented by tasks that accept insights from other streams
// while they are running.
type InsightSink interface {
	ReceiveInsights(insights []Insight)
}
