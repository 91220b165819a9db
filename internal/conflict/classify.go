package conflict

import (
	"regexp"
	"strings"
)

var (
	factualWords = []string{
		"fact", "facts", "factually", "data", "evidence", "study", "studies",
		"research", "statistics", "measured", "according", "shows", "proven",
		"documented", "benchmark", "survey",
	}
	predictiveWords = []string{
		"will", "forecast", "predict", "predicts", "predicted", "projected",
		"expect", "expected", "trend", "trends", "likely", "future", "grow",
		"decline",
	}
	logicalWords = []string{
		"therefore", "because", "thus", "hence", "implies", "consequently",
		"since", "if", "then", "but",
	}
	evaluativeWords = []string{
		"priority", "prioritize", "important", "better", "worse", "best",
		"should", "value", "prefer", "critical", "essential",
	}
	methodWords = []string{
		"method", "approach", "process", "technique", "strategy", "framework",
		"methodology", "procedure",
	}

	percentRe = regexp.MustCompile(`\d+(?:\.\d+)?\s*%`)
)

// contractions folds negated auxiliaries into single tokens so antonym
// patterns can match them with word boundaries.
var contractions = strings.NewReplacer(
	"can not", "cannot",
	"can't", "cannot",
	"will not", "wont",
	"won't", "wont",
	"should not", "shouldnt",
	"shouldn't", "shouldnt",
	"does not", "doesnt",
	"doesn't", "doesnt",
)

// antonymPattern matches a claim and its direct negation. Assertions state
// whether the subject is safe and count as factual disagreements; the rest
// only raise the contradiction degree and leave the type to the keyword
// checks.
type antonymPattern struct {
	pos, neg  *regexp.Regexp
	assertion bool
}

var antonymPatterns = []antonymPattern{
	{regexp.MustCompile(`\bcan\b`), regexp.MustCompile(`\bcannot\b`), false},
	{regexp.MustCompile(`\bis safe\b`), regexp.MustCompile(`\bis (?:not safe|unsafe)\b`), true},
	{regexp.MustCompile(`\bwill\b`), regexp.MustCompile(`\bwont\b`), false},
	{regexp.MustCompile(`\bshould\b`), regexp.MustCompile(`\bshouldnt\b`), false},
	{regexp.MustCompile(`\b(?:possible|feasible)\b`), regexp.MustCompile(`\b(?:impossible|infeasible|not possible|not feasible)\b`), false},
	{regexp.MustCompile(`\bworks\b`), regexp.MustCompile(`\b(?:doesnt work|fails)\b`), false},
	{regexp.MustCompile(`\beffective\b`), regexp.MustCompile(`\b(?:ineffective|not effective)\b`), false},
}

// matches reports whether one side asserts pos and the other asserts neg.
func (p antonymPattern) matches(a, b string) bool {
	return (p.pos.MatchString(a) && !p.neg.MatchString(a) && p.neg.MatchString(b)) ||
		(p.pos.MatchString(b) && !p.neg.MatchString(b) && p.neg.MatchString(a))
}

// antonym reports whether a and b contradict each other through a known
// antonym pattern. With assertionsOnly, only safety assertions count.
func antonym(a, b string, assertionsOnly bool) bool {
	a, b = contractions.Replace(normalize(a)), contractions.Replace(normalize(b))
	for _, p := range antonymPatterns {
		if assertionsOnly && !p.assertion {
			continue
		}
		if p.matches(a, b) {
			return true
		}
	}
	return false
}

func hasAny(set map[string]bool, words []string) bool {
	for _, w := range words {
		if set[w] {
			return true
		}
	}
	return false
}

func predictive(text string, set map[string]bool) bool {
	return hasAny(set, predictiveWords) || percentRe.MatchString(text)
}

// Classify assigns a conflict type to a pair of disagreeing claims. Checks run
// from the most specific type to the least, and the first match wins.
func Classify(a, b string) Type {
	na, nb := normalize(a), normalize(b)
	wa, wb := wordSet(na), wordSet(nb)

	citesA, citesB := hasAny(wa, factualWords), hasAny(wb, factualWords)
	predA, predB := predictive(na, wa), predictive(nb, wb)

	switch {
	case citesA && citesB && differingSets(distinctMatches(numberRe, na), distinctMatches(numberRe, nb)):
		return TypeFactual
	case (citesA || citesB) && !(predA && predB):
		return TypeFactual
	case antonym(na, nb, true):
		return TypeFactual
	case predA && predB:
		return TypePredictive
	case hasAny(wa, logicalWords) && hasAny(wb, logicalWords) && (wa["but"] || wb["but"]):
		return TypeLogical
	case hasAny(wa, evaluativeWords) && hasAny(wb, evaluativeWords):
		return TypeEvaluative
	case hasAny(wa, methodWords) && hasAny(wb, methodWords):
		return TypeMethodological
	}
	return TypeMethodological
}
