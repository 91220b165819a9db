package stream

import (
	"strings"
	"unicode"
)

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true, "this": true,
	"from": true, "into": true, "our": true, "are": true, "was": true, "were": true,
	"has": true, "have": true, "how": true, "what": true, "when": true, "which": true,
	"will": true, "would": true, "should": true, "can": true, "could": true, "not": true,
	"but": true, "all": true, "any": true, "its": true, "their": true, "them": true,
	"they": true, "need": true, "needs": true, "use": true, "using": true, "more": true,
}

// riskWords mark phrasing the skeptical stream treats as unverified.
var riskWords = []string{
	"always", "never", "must", "guarantee", "all", "every", "only", "assume",
	"risk", "legacy", "deadline", "budget", "migrate", "security", "scale",
}

// words splits s into lower-cased alphanumeric tokens.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// keywords returns the distinct significant words of s in order of first
// appearance.
func keywords(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range words(s) {
		if len(w) <= 3 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// topic condenses a problem description into a short noun phrase.
func topic(p Problem) string {
	kw := keywords(p.Description)
	if len(kw) == 0 {
		return "the problem"
	}
	if len(kw) > 3 {
		kw = kw[:3]
	}
	return strings.Join(kw, " ")
}

// sentences splits text on sentence terminators and drops blanks.
func sentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?' || r == ';' || r == '\n'
	})
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// risks returns the risk words present in text.
func risks(text string) []string {
	present := make(map[string]bool)
	for _, w := range words(text) {
		present[w] = true
	}
	var out []string
	for _, r := range riskWords {
		if present[r] {
			out = append(out, r)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
