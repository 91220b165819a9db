package conflict

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

var (
	numberRe   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	solutionRe = regexp.MustCompile(`\bsolution\s+([a-z])\b`)
)

// contradictoryPairs are word pairs that signal a disagreement when each side
// of a comparison uses a different member.
var contradictoryPairs = [][2]string{
	{"security", "usability"},
	{"quantitative", "qualitative"},
	{"grow", "decline"},
	{"increase", "decrease"},
	{"safe", "unsafe"},
	{"optimal", "suboptimal"},
}

// normalize lower-cases s, trims it and collapses internal whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range tokenize(s) {
		set[w] = true
	}
	return set
}

// overlap is the Jaccard index of the tokens of a and b longer than minLen.
func overlap(a, b string, minLen int) float64 {
	sa, sb := make(map[string]bool), make(map[string]bool)
	for _, w := range tokenize(a) {
		if len(w) > minLen {
			sa[w] = true
		}
	}
	for _, w := range tokenize(b) {
		if len(w) > minLen {
			sb[w] = true
		}
	}
	if len(sa) == 0 && len(sb) == 0 {
		return 1
	}
	inter := 0
	for w := range sa {
		if sb[w] {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

// distinctMatches returns the sorted, deduplicated matches of re in s. When
// re has a capture group the first group is used.
func distinctMatches(re *regexp.Regexp, s string) []string {
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		v := m[0]
		if len(m) > 1 {
			v = m[1]
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// differingSets reports whether both a and b are non-empty and not equal.
func differingSets(a, b []string) bool {
	return len(a) > 0 && len(b) > 0 && !slices.Equal(a, b)
}

// oppositePair reports whether some contradictory pair is split across the
// two texts: a uses one member without the other and b does the reverse.
// A member matches any token that starts with it, so inflections such as
// "increased" or "declines" count.
func oppositePair(a, b string) bool {
	ta, tb := tokenize(a), tokenize(b)
	for _, p := range contradictoryPairs {
		x, y := p[0], p[1]
		ax, ay := hasStem(ta, x), hasStem(ta, y)
		bx, by := hasStem(tb, x), hasStem(tb, y)
		if ax && !ay && by && !bx {
			return true
		}
		if ay && !ax && bx && !by {
			return true
		}
	}
	return false
}

// hasStem reports whether some token starts with stem.
func hasStem(tokens []string, stem string) bool {
	return slices.ContainsFunc(tokens, func(tok string) bool {
		return strings.HasPrefix(tok, stem)
	})
}

// AreConclusionsSimilar reports whether two conclusions make the same claim.
// Identical normalized text is always similar. Otherwise differing numbers,
// differing "solution X" references or a split contradictory word pair mark
// the texts as different, and what remains must overlap by more than
// th.SimilarityOverlap.
func AreConclusionsSimilar(a, b string, th Thresholds) bool {
	na, nb := normalize(a), normalize(b)
	if na == nb {
		return true
	}
	if differingSets(distinctMatches(numberRe, na), distinctMatches(numberRe, nb)) {
		return false
	}
	if differingSets(distinctMatches(solutionRe, na), distinctMatches(solutionRe, nb)) {
		return false
	}
	if oppositePair(na, nb) {
		return false
	}
	return overlap(na, nb, th.MinTokenLength) > th.SimilarityOverlap
}
