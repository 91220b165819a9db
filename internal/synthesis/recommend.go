package synthesis

import (
	"slices"

	"github.com/dusk-indust/fourfold/internal/stream"
)

const maxRationale = 3

type recommendationGroup struct {
	rec         Recommendation
	priorities  []float64
	confidences []float64
}

// recommend turns action-oriented conclusions into recommendations, merges
// those with the same normalized description and ranks them by priority,
// then confidence.
func (e *Engine) recommend(results []stream.Result) []Recommendation {
	var order []string
	groups := make(map[string]*recommendationGroup)

	for _, r := range results {
		if !actionable(r.Conclusion) {
			continue
		}
		key := normalize(r.Conclusion)
		g, ok := groups[key]
		if !ok {
			g = &recommendationGroup{rec: Recommendation{
				Description: r.Conclusion,
				Rationale:   []string{},
				Concerns:    []string{},
			}}
			groups[key] = g
			order = append(order, key)
		}

		if !slices.Contains(g.rec.Sources, r.Kind) {
			g.rec.Sources = append(g.rec.Sources, r.Kind)
		}
		g.priorities = append(g.priorities, priority(r))
		g.confidences = append(g.confidences, r.Confidence)

		rationale := r.Reasoning
		if len(rationale) > maxRationale {
			rationale = rationale[:maxRationale]
		}
		g.rec.Rationale = appendUnique(g.rec.Rationale, rationale...)
		for _, in := range r.Insights {
			if mentionsRisk(in.Content) {
				g.rec.Concerns = appendUnique(g.rec.Concerns, in.Content)
			}
		}
	}

	out := make([]Recommendation, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.rec.Priority = mean(g.priorities)
		g.rec.Confidence = mean(g.confidences)
		out = append(out, g.rec)
	}

	slices.SortStableFunc(out, func(a, b Recommendation) int {
		switch {
		case a.Priority != b.Priority:
			if a.Priority > b.Priority {
				return -1
			}
			return 1
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		}
		return 0
	})
	return out
}

// priority is the mean importance of the result's insights, or 0.5 when it
// has none.
func priority(r stream.Result) float64 {
	if len(r.Insights) == 0 {
		return 0.5
	}
	vs := make([]float64, len(r.Insights))
	for i, in := range r.Insights {
		vs[i] = in.Importance
	}
	return mean(vs)
}

func appendUnique(dst []string, items ...string) []string {
	for _, it := range items {
		if it != "" && !slices.Contains(dst, it) {
			dst = append(dst, it)
		}
	}
	return dst
}
