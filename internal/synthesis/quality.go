package synthesis

import (
	"unicode/utf8"

	"github.com/dusk-indust/fourfold/internal/conflict"
	"github.com/dusk-indust/fourfold/internal/stream"
)

// expectedKinds is the number of perspectives a complete analysis covers.
const expectedKinds = 4

func assess(kinds []stream.Kind, conclusion string, insights []AttributedInsight, recs []Recommendation, conflicts []conflict.Conflict) QualityAssessment {
	q := QualityAssessment{
		Completeness: min(1, float64(len(kinds))/expectedKinds),
		Consistency:  1,
	}

	if len(conflicts) > 0 {
		scores := make([]float64, len(conflicts))
		for i, c := range conflicts {
			scores[i] = c.Severity.Score()
		}
		q.Consistency = 1 - mean(scores)
	}

	q.Coherence = mean([]float64{
		scaled(utf8.RuneCountInString(conclusion), 100),
		scaled(len(insights), 5),
	})

	if len(insights) > 0 {
		conf := make([]float64, len(insights))
		imp := make([]float64, len(insights))
		ev := make([]float64, len(insights))
		for i, in := range insights {
			conf[i], imp[i], ev[i] = in.Confidence, in.Importance, scaled(len(in.Evidence), 3)
		}
		q.InsightQuality = mean([]float64{mean(conf), mean(imp), mean(ev)})
	}

	if len(recs) > 0 {
		prio := make([]float64, len(recs))
		conf := make([]float64, len(recs))
		rat := make([]float64, len(recs))
		for i, r := range recs {
			prio[i], conf[i], rat[i] = r.Priority, r.Confidence, scaled(len(r.Rationale), 3)
		}
		q.RecommendationQuality = mean([]float64{mean(prio), mean(conf), mean(rat)})
	}

	q.OverallScore = mean([]float64{
		q.Completeness,
		q.Consistency,
		q.Coherence,
		q.InsightQuality,
		q.RecommendationQuality,
	})
	return q
}
