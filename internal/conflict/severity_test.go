package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContradictionDegree(t *testing.T) {
	th := DefaultThresholds()

	assert.Equal(t, 1.0, ContradictionDegree("X is safe", "X is not safe", th))
	assert.Equal(t, 1.0, ContradictionDegree("We can do it", "We cannot do it", th))
	assert.Equal(t, 0.9, ContradictionDegree("Hire 3 engineers", "Hire 5 engineers", th))
	assert.Equal(t, 0.85, ContradictionDegree("Optimize for security", "Optimize for usability", th))
	assert.Equal(t, 0.85, ContradictionDegree("Infrastructure costs increased sharply this quarter", "Infrastructure costs decreased sharply this quarter", th))
	assert.InDelta(t, 0.8, ContradictionDegree("alpha beta", "gamma delta", th), 1e-9)
	assert.InDelta(t, 0.3, ContradictionDegree("alpha beta", "beta alpha", th), 1e-9)
}

func TestTier(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		name string
		typ  Type
		m    Metrics
		want Severity
	}{
		{"critical", TypeMethodological, Metrics{0.96, 0.01, 0.9, 0.5}, SeverityCritical},
		{"critical needs small gap", TypeMethodological, Metrics{0.96, 0.06, 0.9, 0.5}, SeverityMedium},
		{"critical needs degree", TypeFactual, Metrics{0.96, 0.01, 0.5, 0.9}, SeverityHigh},
		{"high logical", TypeLogical, Metrics{0.86, 0.05, 0.5, 0.85}, SeverityHigh},
		{"high factual", TypeFactual, Metrics{0.9, 0.05, 0.5, 0.9}, SeverityHigh},
		{"high factual above critical mean", TypeFactual, Metrics{0.955, 0.07, 0.76, 0.9}, SeverityHigh},
		{"high evaluative ignores gap", TypeEvaluative, Metrics{0.76, 0.4, 0.5, 0.6}, SeverityHigh},
		{"medium by weight", TypePredictive, Metrics{0.66, 0.2, 0.5, 0.7}, SeverityMedium},
		{"medium by mean", TypeMethodological, Metrics{0.7, 0.2, 0.5, 0.5}, SeverityMedium},
		{"low weight and mean", TypeMethodological, Metrics{0.68, 0.2, 0.5, 0.5}, SeverityLow},
		{"low", TypeFactual, Metrics{0.5, 0.0, 1.0, 0.9}, SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, th.tier(tt.typ, tt.m))
		})
	}
}

func TestTier_Monotone(t *testing.T) {
	th := DefaultThresholds()
	types := []Type{TypeFactual, TypeLogical, TypePredictive, TypeEvaluative, TypeMethodological}
	degrees := []float64{0.3, 0.79, 0.8, 0.85, 1.0}

	for _, typ := range types {
		for _, degree := range degrees {
			m := Metrics{ContradictionDegree: degree, TypeWeight: th.Weight(typ)}

			// Rising mean confidence at a fixed gap.
			for _, gap := range []float64{0, 0.04, 0.09, 0.2} {
				prev := 0
				for mean := 0.0; mean <= 1.0001; mean += 0.01 {
					m.MeanConfidence, m.ConfidenceGap = mean, gap
					rank := th.tier(typ, m).Rank()
					assert.GreaterOrEqual(t, rank, prev, "type=%s degree=%.2f gap=%.2f mean=%.2f", typ, degree, gap, mean)
					prev = rank
				}
			}

			// Shrinking gap at a fixed mean.
			for _, mean := range []float64{0.6, 0.7, 0.8, 0.9, 0.97} {
				prev := 0
				for gap := 0.5; gap >= -0.0001; gap -= 0.01 {
					m.MeanConfidence, m.ConfidenceGap = mean, max(gap, 0)
					rank := th.tier(typ, m).Rank()
					assert.GreaterOrEqual(t, rank, prev, "type=%s degree=%.2f mean=%.2f gap=%.2f", typ, degree, mean, gap)
					prev = rank
				}
			}
		}
	}
}

func TestSeverity_ScoreAndRank(t *testing.T) {
	assert.Equal(t, 0.25, SeverityLow.Score())
	assert.Equal(t, 0.5, SeverityMedium.Score())
	assert.Equal(t, 0.75, SeverityHigh.Score())
	assert.Equal(t, 1.0, SeverityCritical.Score())
	assert.Equal(t, 0.0, Severity("").Score())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())

	th := DefaultThresholds()
	th.SimilarityOverlap = 1.5
	th.TypeWeights[TypeLogical] = -0.1
	err := th.Validate()
	assert.ErrorContains(t, err, "similarityOverlap")
	assert.ErrorContains(t, err, "typeWeights.logical")
}

func TestType_Valid(t *testing.T) {
	for _, typ := range AllTypes() {
		assert.True(t, typ.Valid(), typ)
	}
	assert.False(t, Type("political").Valid())
	assert.False(t, Type("").Valid())
}
