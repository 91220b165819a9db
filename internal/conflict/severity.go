package conflict

import "math"

// Metrics are the inputs to the severity tiers.
type Metrics struct {
	MeanConfidence      float64
	ConfidenceGap       float64
	ContradictionDegree float64
	TypeWeight          float64
}

// ContradictionDegree scores in 0..1 how directly two claims contradict.
func ContradictionDegree(a, b string, th Thresholds) float64 {
	if antonym(a, b, false) {
		return 1.0
	}
	na, nb := normalize(a), normalize(b)
	if la, lb := numberRe.FindString(na), numberRe.FindString(nb); la != "" && lb != "" && la != lb {
		return 0.9
	}
	if oppositePair(na, nb) {
		return 0.85
	}
	return 0.3 + 0.5*(1-overlap(na, nb, th.MinTokenLength))
}

func (e *Engine) metrics(c Conflict) Metrics {
	ca, cb := c.Evidence[0].Confidence, c.Evidence[1].Confidence
	return Metrics{
		MeanConfidence:      (ca + cb) / 2,
		ConfidenceGap:       math.Abs(ca - cb),
		ContradictionDegree: ContradictionDegree(c.Evidence[0].Claim, c.Evidence[1].Claim, e.th),
		TypeWeight:          e.th.Weight(c.Type),
	}
}

// tier applies the severity rules in order; the first match wins. The
// factual and logical HIGH rule has no upper bound on the mean confidence so
// that raising confidence never lowers the tier.
func (th Thresholds) tier(t Type, m Metrics) Severity {
	switch {
	case m.MeanConfidence >= th.CriticalMean && m.ConfidenceGap < th.CriticalMaxGap && m.ContradictionDegree >= th.CriticalDegree:
		return SeverityCritical
	case m.MeanConfidence >= th.HighMean && m.ConfidenceGap < th.HighMaxGap && (t == TypeLogical || t == TypeFactual):
		return SeverityHigh
	case m.MeanConfidence >= th.HighEvaluativeMean && t == TypeEvaluative:
		return SeverityHigh
	case m.MeanConfidence >= th.MediumMean && (m.TypeWeight >= th.MediumWeight || m.MeanConfidence >= th.MediumAltMean):
		return SeverityMedium
	}
	return SeverityLow
}

// AssessSeverity grades c from its evidence confidences, how directly the
// claims contradict and the weight of its type.
func (e *Engine) AssessSeverity(c Conflict) Severity {
	return e.th.tier(c.Type, e.metrics(c))
}
