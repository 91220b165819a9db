package synthesis

import (
	"slices"

	"github.com/dusk-indust/fourfold/internal/stream"
)

// maxExcerpts bounds how many reasoning steps each stream contributes as
// evidence for one insight.
const maxExcerpts = 2

type insightGroup struct {
	content     string
	sources     []stream.Kind
	streams     map[string]bool
	confidences []float64
	importances []float64
	evidence    []Excerpt
}

// attribute groups insights by normalized content, averages their scores,
// drops groups at or below the importance cutoff and ranks the rest by
// importance times confidence.
func (e *Engine) attribute(results []stream.Result) []AttributedInsight {
	var order []string
	groups := make(map[string]*insightGroup)

	for _, r := range results {
		for _, in := range r.Insights {
			key := normalize(in.Content)
			if key == "" {
				continue
			}
			g, ok := groups[key]
			if !ok {
				g = &insightGroup{content: in.Content, streams: make(map[string]bool)}
				groups[key] = g
				order = append(order, key)
			}

			source := in.Source
			if source == "" {
				source = r.Kind
			}
			if !slices.Contains(g.sources, source) {
				g.sources = append(g.sources, source)
			}
			g.confidences = append(g.confidences, in.Confidence)
			g.importances = append(g.importances, in.Importance)

			if !g.streams[r.StreamID] {
				g.streams[r.StreamID] = true
				g.evidence = append(g.evidence, excerpts(r, in.Content)...)
			}
		}
	}

	out := make([]AttributedInsight, 0, len(order))
	for _, key := range order {
		g := groups[key]
		ai := AttributedInsight{
			Content:    g.content,
			Sources:    g.sources,
			Confidence: mean(g.confidences),
			Importance: mean(g.importances),
			Evidence:   g.evidence,
		}
		if ai.Importance <= e.cutoff {
			continue
		}
		if ai.Evidence == nil {
			ai.Evidence = []Excerpt{}
		}
		out = append(out, ai)
	}

	slices.SortStableFunc(out, func(a, b AttributedInsight) int {
		switch sa, sb := a.Score(), b.Score(); {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return 0
	})
	return out
}

// excerpts picks up to maxExcerpts reasoning steps from r, preferring steps
// that share a significant word with content.
func excerpts(r stream.Result, content string) []Excerpt {
	words := significant(content)
	var related, rest []string
	for _, step := range r.Reasoning {
		if step == "" {
			continue
		}
		shared := false
		for w := range significant(step) {
			if words[w] {
				shared = true
				break
			}
		}
		if shared {
			related = append(related, step)
		} else {
			rest = append(rest, step)
		}
	}

	picked := append(related, rest...)
	if len(picked) > maxExcerpts {
		picked = picked[:maxExcerpts]
	}
	out := make([]Excerpt, 0, len(picked))
	for _, text := range picked {
		out = append(out, Excerpt{StreamID: r.StreamID, Source: r.Kind, Text: text})
	}
	return out
}
