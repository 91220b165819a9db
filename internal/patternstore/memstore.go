package patternstore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/dusk-indust/fourfold/internal/conflict"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// MemStore implements Store using a Go map. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu       sync.RWMutex
	patterns map[conflict.PatternKey]conflict.Pattern
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{patterns: make(map[conflict.PatternKey]conflict.Pattern)}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// SavePatterns stores a copy of each pattern under its key.
func (m *MemStore) SavePatterns(_ context.Context, patterns []conflict.Pattern) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range patterns {
		key := p.Key
		if len(p.Types) > 0 {
			key = conflict.NewPatternKey(p.Types[0], p.CommonSources)
		}
		p.Key = key
		p.Types = slices.Clone(p.Types)
		p.CommonSources = slices.Clone(p.CommonSources)
		m.patterns[key] = p
	}
	return nil
}

// LoadPatterns returns copies of every stored pattern.
func (m *MemStore) LoadPatterns(_ context.Context) ([]conflict.Pattern, error) {
	m.mu.RLock()
	out := make([]conflict.Pattern, 0, len(m.patterns))
	for _, p := range m.patterns {
		p.Types = slices.Clone(p.Types)
		p.CommonSources = slices.Clone(p.CommonSources)
		out = append(out, p)
	}
	m.mu.RUnlock()

	sortPatterns(out)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// sortPatterns orders patterns the way conflict.Engine lists them: most
// frequent first, then by key.
func sortPatterns(ps []conflict.Pattern) {
	slices.SortFunc(ps, func(a, b conflict.Pattern) int {
		if a.Frequency != b.Frequency {
			return b.Frequency - a.Frequency
		}
		return strings.Compare(a.Key.String(), b.Key.String())
	})
}
