// Package patternstore persists the conflict patterns learned by a
// conflict.Engine so they survive across runs.
package patternstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dusk-indust/fourfold/internal/config"
	"github.com/dusk-indust/fourfold/internal/conflict"
)

// ErrKuzuUnavailable is returned when the binary was built without cgo and
// the Kuzu backend is requested.
var ErrKuzuUnavailable = errors.New("kuzu backend requires a cgo build")

// Store is the persistence backend for conflict patterns.
// Implementations: KuzuStore (production), MemStore (testing and default).
type Store interface {
	io.Closer

	// InitSchema is called once before any pattern is saved.
	InitSchema(ctx context.Context) error

	// SavePatterns upserts every pattern by its key. Patterns already stored
	// under other keys are left untouched.
	SavePatterns(ctx context.Context, patterns []conflict.Pattern) error

	// LoadPatterns returns all stored patterns, most frequent first.
	LoadPatterns(ctx context.Context) ([]conflict.Pattern, error)
}

// Open builds the store selected by cfg and initializes its schema. A
// relative cfg.Path is resolved against root.
func Open(ctx context.Context, cfg config.PatternsConfig, root string) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case "", "memory":
		s = NewMemStore()
	case "kuzu":
		path := cfg.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		s, err = NewKuzuFileStore(path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown pattern backend %q", cfg.Backend)
	}

	if err := s.InitSchema(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Restore seeds e with every pattern held by s.
func Restore(ctx context.Context, s Store, e *conflict.Engine) (int, error) {
	patterns, err := s.LoadPatterns(ctx)
	if err != nil {
		return 0, fmt.Errorf("load patterns: %w", err)
	}
	e.RestorePatterns(patterns)
	return len(patterns), nil
}

// Persist writes the current pattern table of e to s.
func Persist(ctx context.Context, s Store, e *conflict.Engine) (int, error) {
	patterns := e.ConflictPatterns()
	if err := s.SavePatterns(ctx, patterns); err != nil {
		return 0, fmt.Errorf("save patterns: %w", err)
	}
	return len(patterns), nil
}
