package conflict

import (
	"errors"
	"fmt"
)

// Thresholds holds every heuristic constant used by detection and severity
// scoring. DefaultThresholds returns the tuned values.
type Thresholds struct {
	// SimilarityOverlap is the Jaccard overlap above which two conclusions
	// are considered the same claim.
	SimilarityOverlap float64 `yaml:"similarityOverlap"`

	// MinTokenLength excludes tokens of this length or shorter from overlap.
	MinTokenLength int `yaml:"minTokenLength"`

	CriticalMean   float64 `yaml:"criticalMean"`
	CriticalMaxGap float64 `yaml:"criticalMaxGap"`
	CriticalDegree float64 `yaml:"criticalDegree"`

	HighMean           float64 `yaml:"highMean"`
	HighMaxGap         float64 `yaml:"highMaxGap"`
	HighEvaluativeMean float64 `yaml:"highEvaluativeMean"`

	MediumMean    float64 `yaml:"mediumMean"`
	MediumWeight  float64 `yaml:"mediumWeight"`
	MediumAltMean float64 `yaml:"mediumAltMean"`

	TypeWeights map[Type]float64 `yaml:"typeWeights"`
}

// DefaultThresholds returns the standard detection and severity constants.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SimilarityOverlap:  0.75,
		MinTokenLength:     2,
		CriticalMean:       0.95,
		CriticalMaxGap:     0.05,
		CriticalDegree:     0.8,
		HighMean:           0.85,
		HighMaxGap:         0.1,
		HighEvaluativeMean: 0.75,
		MediumMean:         0.65,
		MediumWeight:       0.7,
		MediumAltMean:      0.7,
		TypeWeights: map[Type]float64{
			TypeFactual:        0.9,
			TypeLogical:        0.85,
			TypePredictive:     0.7,
			TypeEvaluative:     0.6,
			TypeMethodological: 0.5,
		},
	}
}

// Weight returns the severity weight for t, falling back to the
// methodological weight for unknown types.
func (th Thresholds) Weight(t Type) float64 {
	if w, ok := th.TypeWeights[t]; ok {
		return w
	}
	return th.TypeWeights[TypeMethodological]
}

// Validate checks that every ratio lies in [0, 1].
func (th Thresholds) Validate() error {
	var errs []error
	check := func(name string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0, 1], got %g", name, v))
		}
	}
	check("similarityOverlap", th.SimilarityOverlap)
	check("criticalMean", th.CriticalMean)
	check("criticalMaxGap", th.CriticalMaxGap)
	check("criticalDegree", th.CriticalDegree)
	check("highMean", th.HighMean)
	check("highMaxGap", th.HighMaxGap)
	check("highEvaluativeMean", th.HighEvaluativeMean)
	check("mediumMean", th.MediumMean)
	check("mediumWeight", th.MediumWeight)
	check("mediumAltMean", th.MediumAltMean)
	for t, w := range th.TypeWeights {
		check("typeWeights."+string(t), w)
	}
	if th.MinTokenLength < 0 {
		errs = append(errs, fmt.Errorf("minTokenLength must not be negative, got %d", th.MinTokenLength))
	}
	return errors.Join(errs...)
}
