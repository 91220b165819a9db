package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/fourfold/internal/stream"
)

func TestRecommend_ExtractsActionConclusions(t *testing.T) {
	m := result(stream.KindMethodical, "We should phase the rollout", 0.8,
		insight(stream.KindMethodical, "Budget is fixed", 0.8, 0.8),
		insight(stream.KindMethodical, "Legacy risk is high", 0.7, 0.6),
	)
	m.Reasoning = []string{"one", "two", "three", "four"}
	d := result(stream.KindDivergent, "We recommend trying a pilot", 0.6)
	s := result(stream.KindSkeptical, "The plan is fragile", 0.9)

	got := NewEngine(nil).recommend([]stream.Result{m, d, s})
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "We should phase the rollout", first.Description)
	assert.InDelta(t, 0.7, first.Priority, 1e-9)
	assert.InDelta(t, 0.8, first.Confidence, 1e-9)
	assert.Equal(t, []string{"one", "two", "three"}, first.Rationale)
	assert.Equal(t, []string{"Legacy risk is high"}, first.Concerns)
	assert.Equal(t, []stream.Kind{stream.KindMethodical}, first.Sources)

	second := got[1]
	assert.Equal(t, "We recommend trying a pilot", second.Description)
	assert.InDelta(t, 0.5, second.Priority, 1e-9, "no insights defaults to 0.5")
	assert.Empty(t, second.Concerns)
	assert.NotNil(t, second.Concerns)
}

func TestRecommend_MergesDuplicates(t *testing.T) {
	a := result(stream.KindMethodical, "We suggest a pilot", 0.8, insight(stream.KindMethodical, "x", 0.5, 0.9))
	b := result(stream.KindIntegrative, "we suggest  a PILOT", 0.4, insight(stream.KindIntegrative, "y", 0.5, 0.5))

	got := NewEngine(nil).recommend([]stream.Result{a, b})
	require.Len(t, got, 1)
	assert.Equal(t, []stream.Kind{stream.KindMethodical, stream.KindIntegrative}, got[0].Sources)
	assert.InDelta(t, 0.7, got[0].Priority, 1e-9)
	assert.InDelta(t, 0.6, got[0].Confidence, 1e-9)
	assert.Len(t, got[0].Rationale, 2)
}

func TestRecommend_TieBrokenByConfidence(t *testing.T) {
	low := result(stream.KindMethodical, "We should wait", 0.3)
	high := result(stream.KindDivergent, "We should act", 0.9)

	got := NewEngine(nil).recommend([]stream.Result{low, high})
	require.Len(t, got, 2)
	assert.Equal(t, "We should act", got[0].Description)
	assert.Equal(t, "We should wait", got[1].Description)
}
