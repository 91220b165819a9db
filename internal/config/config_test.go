package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/fourfold/internal/conflict"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	data := `
timeouts:
  perTask: 2s
  total: 5s
conflict:
  similarityOverlap: 0.6
  typeWeights:
    evaluative: 0.8
patterns:
  backend: kuzu
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fourfold.yaml"), []byte(data), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Timeouts.PerTask)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Total)
	assert.Equal(t, time.Second, cfg.Timeouts.ShareDelay, "unset fields keep defaults")
	assert.Equal(t, "kuzu", cfg.Patterns.Backend)
	assert.Equal(t, ".fourfold/patterns", cfg.Patterns.Path)
	assert.Equal(t, "json", cfg.Log.Format)
	require.NoError(t, cfg.Validate())

	th := cfg.Thresholds()
	assert.Equal(t, 0.6, th.SimilarityOverlap)
	assert.Equal(t, 0.8, th.Weight(conflict.TypeEvaluative))
	assert.Equal(t, 0.9, th.Weight(conflict.TypeFactual))
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fourfold.yml"), []byte("timeouts: [1, 2"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fourfold.yml")
}

func TestWriteThenLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := Defaults()
	cfg.Timeouts.PerTask = 3 * time.Second

	path, err := Write(dir, cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fourfold.yml"), path)

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Timeouts.PerTask = 0
	cfg.Timeouts.Total = -time.Second
	cfg.Synthesis.ImportanceCutoff = 2
	cfg.Patterns.Backend = "redis"
	cfg.Log.Format = "xml"
	bad := 1.5
	cfg.Conflict.CriticalMean = &bad

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"timeouts.perTask",
		"timeouts.total",
		"importanceCutoff",
		"patterns.backend",
		"log.format",
		"criticalMean",
	} {
		assert.Contains(t, err.Error(), want)
	}
}
