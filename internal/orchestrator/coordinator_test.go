package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dusk-indust/fourfold/internal/stream"
)

// sharingTask is a mockTask that also publishes and receives insights.
type sharingTask struct {
	mockTask
	published []stream.Insight
	inbox     []stream.Insight
}

func (s *sharingTask) SharedInsights() []stream.Insight     { return s.published }
func (s *sharingTask) ReceiveInsights(in []stream.Insight) { s.inbox = append(s.inbox, in...) }

func TestInsightExchange_ForwardsImportantInsightsToOthers(t *testing.T) {
	risk := stream.Insight{Content: "legacy schema risk", Source: stream.KindSkeptical, Importance: 0.75}
	minor := stream.Insight{Content: "minor", Source: stream.KindSkeptical, Importance: 0.3}
	phases := stream.Insight{Content: "three phases", Source: stream.KindMethodical, Importance: 0.7}

	skeptical := &sharingTask{mockTask: mockTask{id: "skeptical"}, published: []stream.Insight{risk, minor}}
	methodical := &sharingTask{mockTask: mockTask{id: "methodical"}, published: []stream.Insight{phases}}
	integrative := &sharingTask{mockTask: mockTask{id: "integrative"}}
	plain := &mockTask{id: "plain"}

	err := NewInsightExchange().ShareInsights(context.Background(), []stream.Task{skeptical, methodical, integrative, plain})
	assert.NoError(t, err)

	assert.Equal(t, []stream.Insight{phases}, skeptical.inbox, "a task never receives its own insights")
	assert.Equal(t, []stream.Insight{risk}, methodical.inbox)
	assert.Equal(t, []stream.Insight{risk, phases}, integrative.inbox)
}

func TestInsightExchange_StopsOnCancelledContext(t *testing.T) {
	src := &sharingTask{mockTask: mockTask{id: "a"}, published: []stream.Insight{{Content: "x", Importance: 0.9}}}
	dst := &sharingTask{mockTask: mockTask{id: "b"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewInsightExchange().ShareInsights(ctx, []stream.Task{src, dst})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dst.inbox)
}

func TestInsightExchange_WithRealStreams(t *testing.T) {
	skeptical := stream.NewSkeptical(stream.Options{})
	integrative := stream.NewIntegrative(stream.Options{})
	skeptical.Publish(stream.Insight{Content: "budget risk", Source: stream.KindSkeptical, Importance: 0.8, Confidence: 0.7})

	err := NewInsightExchange().ShareInsights(context.Background(), []stream.Task{skeptical, integrative})
	assert.NoError(t, err)
	assert.Len(t, integrative.Received(), 1)
	assert.Empty(t, skeptical.Received())
}
