package orchestrator

import (
	"context"

	"github.com/dusk-indust/fourfold/internal/stream"
)

// Coordinator propagates insights between tasks that are still running. It
// is called at most once per run, in its own goroutine, and its errors never
// affect the run's result.
type Coordinator interface {
	ShareInsights(ctx context.Context, active []stream.Task) error
}

// CoordinatorFunc adapts a function to Coordinator.
type CoordinatorFunc func(ctx context.Context, active []stream.Task) error

func (f CoordinatorFunc) ShareInsights(ctx context.Context, active []stream.Task) error {
	return f(ctx, active)
}

// DefaultShareImportance is the importance an insight needs to be forwarded.
const DefaultShareImportance = 0.7

// InsightExchange forwards high-importance insights published by each
// running task to every other running task that accepts them.
type InsightExchange struct {
	MinImportance float64
}

// NewInsightExchange creates an exchange using DefaultShareImportance.
func NewInsightExchange() *InsightExchange {
	return &InsightExchange{MinImportance: DefaultShareImportance}
}

func (x *InsightExchange) ShareInsights(ctx context.Context, active []stream.Task) error {
	shared := make([][]stream.Insight, len(active))
	for i, t := range active {
		src, ok := t.(stream.InsightSource)
		if !ok {
			continue
		}
		for _, in := range src.SharedInsights() {
			if in.Importance >= x.MinImportance {
				shared[i] = append(shared[i], in)
			}
		}
	}

	for i, t := range active {
		if err := ctx.Err(); err != nil {
			return err
		}
		sink, ok := t.(stream.InsightSink)
		if !ok {
			continue
		}
		var inbox []stream.Insight
		for j, ins := range shared {
			if j != i {
				inbox = append(inbox, ins...)
			}
		}
		if len(inbox) > 0 {
			sink.ReceiveInsights(inbox)
		}
	}
	return nil
}
