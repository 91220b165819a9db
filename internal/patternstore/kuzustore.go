//go:build cgo

package patternstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/fourfold/internal/conflict"
)

// KuzuStore implements Store on an embedded KuzuDB graph. Each pattern is a
// Pattern node linked to the Stream nodes it involves.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by an on-disk database at
// dbPath. KuzuDB creates the leaf directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(path, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Pattern(
		key STRING,
		type STRING,
		types STRING,
		frequency INT64,
		success_rate DOUBLE,
		last_seen INT64,
		PRIMARY KEY(key)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Stream(
		id STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS INVOLVES(FROM Pattern TO Stream)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// SavePatterns replaces the stored node for each pattern key and relinks it
// to its streams.
func (s *KuzuStore) SavePatterns(ctx context.Context, patterns []conflict.Pattern) error {
	for _, p := range patterns {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(p.Types) == 0 {
			continue
		}
		if err := s.savePattern(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *KuzuStore) savePattern(p conflict.Pattern) error {
	key := conflict.NewPatternKey(p.Types[0], p.CommonSources)
	id := key.String()

	if err := s.exec(
		"MATCH (p:Pattern {key: $key}) DETACH DELETE p",
		map[string]any{"key": id},
	); err != nil {
		return fmt.Errorf("kuzu: replace pattern %s: %w", id, err)
	}

	types := make([]string, len(p.Types))
	for i, t := range p.Types {
		types[i] = string(t)
	}
	if err := s.exec(
		`CREATE (p:Pattern {key: $key, type: $type, types: $types,
			frequency: $freq, success_rate: $rate, last_seen: $seen})`,
		map[string]any{
			"key":   id,
			"type":  string(key.Type()),
			"types": strings.Join(types, ","),
			"freq":  int64(p.Frequency),
			"rate":  p.SuccessRate,
			"seen":  p.LastSeen.UnixNano(),
		},
	); err != nil {
		return fmt.Errorf("kuzu: create pattern %s: %w", id, err)
	}

	for _, src := range key.Sources() {
		if err := s.exec("MERGE (s:Stream {id: $id})", map[string]any{"id": src}); err != nil {
			return fmt.Errorf("kuzu: merge stream %s: %w", src, err)
		}
		if err := s.exec(
			`MATCH (p:Pattern {key: $key}), (s:Stream {id: $id})
			CREATE (p)-[:INVOLVES]->(s)`,
			map[string]any{"key": id, "id": src},
		); err != nil {
			return fmt.Errorf("kuzu: link %s to %s: %w", id, src, err)
		}
	}
	return nil
}

// LoadPatterns reads every Pattern node with the streams it involves.
func (s *KuzuStore) LoadPatterns(_ context.Context) ([]conflict.Pattern, error) {
	rows, err := s.query(
		"MATCH (p:Pattern) RETURN p.key, p.type, p.types, p.frequency, p.success_rate, p.last_seen",
		nil,
	)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*conflict.Pattern, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		id := toString(row[0])
		p := &conflict.Pattern{
			Frequency:   toInt(row[3]),
			SuccessRate: toFloat64(row[4]),
			LastSeen:    time.Unix(0, toInt64(row[5])).UTC(),
		}
		for _, t := range strings.Split(toString(row[2]), ",") {
			if t != "" {
				p.Types = append(p.Types, conflict.Type(t))
			}
		}
		if len(p.Types) == 0 {
			p.Types = []conflict.Type{conflict.Type(toString(row[1]))}
		}
		byKey[id] = p
		order = append(order, id)
	}

	links, err := s.query("MATCH (p:Pattern)-[:INVOLVES]->(s:Stream) RETURN p.key, s.id", nil)
	if err != nil {
		return nil, err
	}
	for _, row := range links {
		if len(row) < 2 {
			continue
		}
		if p, ok := byKey[toString(row[0])]; ok {
			p.CommonSources = append(p.CommonSources, toString(row[1]))
		}
	}

	out := make([]conflict.Pattern, 0, len(order))
	for _, id := range order {
		p := byKey[id]
		p.Key = conflict.NewPatternKey(p.Types[0], p.CommonSources)
		p.CommonSources = p.Key.Sources()
		out = append(out, *p)
	}
	sortPatterns(out)
	return out, nil
}

// exec runs a parameterized Cypher statement that returns no rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a Cypher statement and collects all result rows. Each row is a
// []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	return int(toInt64(v))
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
