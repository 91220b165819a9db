package conflict

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// patternTable is the engine's learning state. It grows for the lifetime of
// the engine and has no eviction.
type patternTable struct {
	mu sync.Mutex
	m  map[PatternKey]*Pattern
}

func newPatternTable() *patternTable {
	return &patternTable{m: make(map[PatternKey]*Pattern)}
}

func (t *patternTable) track(c Conflict, resolved bool, now time.Time) {
	key := NewPatternKey(c.Type, c.Sources)

	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.m[key]
	if !ok {
		p = &Pattern{
			Key:           key,
			Types:         []Type{c.Type},
			CommonSources: key.Sources(),
		}
		t.m[key] = p
	}

	p.Frequency++
	n := float64(p.Frequency)
	hit := 0.0
	if resolved {
		hit = 1
	}
	p.SuccessRate = (p.SuccessRate*(n-1) + hit) / n
	p.LastSeen = now
}

func (t *patternTable) restore(patterns []Pattern) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range patterns {
		if len(p.Types) == 0 || p.Frequency <= 0 {
			continue
		}
		key := NewPatternKey(p.Types[0], p.CommonSources)
		cp := p
		cp.Key = key
		cp.Types = slices.Clone(p.Types)
		cp.CommonSources = key.Sources()
		t.m[key] = &cp
	}
}

// snapshot returns copies ordered by frequency, most frequent first, then by
// key for a stable listing.
func (t *patternTable) snapshot() []Pattern {
	t.mu.Lock()
	out := make([]Pattern, 0, len(t.m))
	for _, p := range t.m {
		cp := *p
		cp.Types = slices.Clone(p.Types)
		cp.CommonSources = slices.Clone(p.CommonSources)
		out = append(out, cp)
	}
	t.mu.Unlock()

	slices.SortFunc(out, func(a, b Pattern) int {
		if a.Frequency != b.Frequency {
			return b.Frequency - a.Frequency
		}
		return strings.Compare(a.Key.String(), b.Key.String())
	})
	return out
}
