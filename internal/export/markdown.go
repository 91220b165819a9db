package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/dusk-indust/fourfold/internal/synthesis"
)

// Markdown renders a human-readable report of a synthesis result.
func Markdown(r synthesis.Result) string {
	var sb strings.Builder

	title := "Analysis"
	if id := r.Metadata.ProblemID; id != "" {
		title += ": " + id
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "Confidence **%.2f**, quality **%.2f**, %d of %d streams used, synthesized in %s.\n\n",
		r.Confidence, r.Quality.OverallScore, len(r.Metadata.StreamsUsed), r.Metadata.StreamCount,
		r.Metadata.SynthesisTime.Round(time.Microsecond))

	sb.WriteString("## Conclusion\n\n")
	sb.WriteString(r.Conclusion)
	sb.WriteString("\n\n")

	if len(r.Recommendations) > 0 {
		sb.WriteString("## Recommendations\n\n")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(&sb, "%d. **%s** (priority %.2f, from %s)\n",
				i+1, rec.Description, rec.Priority, joinKinds(rec.Sources))
			for _, c := range rec.Concerns {
				fmt.Fprintf(&sb, "   - Concern: %s\n", c)
			}
		}
		sb.WriteString("\n")
	}

	if len(r.Insights) > 0 {
		sb.WriteString("## Insights\n\n")
		for _, in := range r.Insights {
			fmt.Fprintf(&sb, "- %s _(%s, importance %.2f, confidence %.2f)_\n",
				in.Content, joinKinds(in.Sources), in.Importance, in.Confidence)
		}
		sb.WriteString("\n")
	}

	if len(r.Conflicts) > 0 {
		sb.WriteString("## Conflicts\n\n")
		sb.WriteString("| Severity | Type | Streams | Recommended action |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, c := range r.Conflicts {
			action := ""
			if c.Framework != nil {
				action = c.Framework.RecommendedAction
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				c.Severity, c.Type, strings.Join(c.Sources, ", "), cell(action))
		}
		sb.WriteString("\n")
	}

	q := r.Quality
	sb.WriteString("## Quality\n\n")
	sb.WriteString("| Component | Score |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Completeness | %.2f |\n", q.Completeness)
	fmt.Fprintf(&sb, "| Consistency | %.2f |\n", q.Consistency)
	fmt.Fprintf(&sb, "| Coherence | %.2f |\n", q.Coherence)
	fmt.Fprintf(&sb, "| Insight quality | %.2f |\n", q.InsightQuality)
	fmt.Fprintf(&sb, "| Recommendation quality | %.2f |\n", q.RecommendationQuality)
	fmt.Fprintf(&sb, "| **Overall** | **%.2f** |\n", q.OverallScore)

	if len(r.Metadata.Streams) > 0 {
		sb.WriteString("\n## Streams\n\n")
		sb.WriteString("| Stream | Kind | Status | Confidence | Time |\n|---|---|---|---|---|\n")
		for _, s := range r.Metadata.Streams {
			status := string(s.Status)
			if s.Error != "" {
				status += ": " + cell(s.Error)
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %.2f | %s |\n",
				s.StreamID, s.Kind, status, s.Confidence, s.ProcessingTime.Round(time.Millisecond))
		}
	}

	return sb.String()
}

func joinKinds[K ~string](ks []K) string {
	parts := make([]string, len(ks))
	for i, k := range ks {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

// cell escapes text for a single Markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
