package synthesis

import (
	"strings"
	"unicode"
)

var actionWords = []string{"should", "recommend", "suggest"}

var riskWords = map[string]bool{
	"risk": true, "risks": true, "risky": true, "concern": true, "concerns": true,
	"fail": true, "fails": true, "failure": true, "unverified": true,
	"assumption": true, "assumptions": true, "invalidate": true, "gap": true,
	"lack": true, "lacks": true, "threat": true, "unsafe": true, "danger": true,
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// significant returns the set of words longer than three letters.
func significant(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range tokenize(s) {
		if len(w) > 3 {
			set[w] = true
		}
	}
	return set
}

func actionable(conclusion string) bool {
	lc := strings.ToLower(conclusion)
	for _, w := range actionWords {
		if strings.Contains(lc, w) {
			return true
		}
	}
	return false
}

func mentionsRisk(s string) bool {
	for _, w := range tokenize(s) {
		if riskWords[w] {
			return true
		}
	}
	return false
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

// scaled clamps n to limit and maps it onto 0..1.
func scaled(n, limit int) float64 {
	return float64(min(n, limit)) / float64(limit)
}
