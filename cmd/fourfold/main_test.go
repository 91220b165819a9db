package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/fourfold/internal/config"
	"github.com/dusk-indust/fourfold/internal/conflict"
	"github.com/dusk-indust/fourfold/internal/export"
	"github.com/dusk-indust/fourfold/internal/stream"
	"github.com/dusk-indust/fourfold/internal/synthesis"
)

func TestBuildProblem_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problem.yml")
	require.NoError(t, os.WriteFile(path, []byte(`id: p-file
description: Choose a message broker
context: Three teams publish order events
constraints:
  - must run on-prem
goals:
  - at-least-once delivery
urgency: high
`), 0o644))

	p, err := buildProblem(stream.Problem{Description: "Choose a queue", Goals: []string{"low latency"}}, path)
	require.NoError(t, err)

	assert.Equal(t, "p-file", p.ID)
	assert.Equal(t, "Choose a queue", p.Description)
	assert.Equal(t, "Three teams publish order events", p.Context)
	assert.Equal(t, []string{"must run on-prem"}, p.Constraints)
	assert.Equal(t, []string{"low latency"}, p.Goals)
	assert.Equal(t, "high", p.Urgency)
}

func TestBuildProblem_GeneratesIDAndRequiresDescription(t *testing.T) {
	p, err := buildProblem(stream.Problem{Description: "Pick a cache"}, "")
	require.NoError(t, err)
	assert.Len(t, p.ID, 36)

	_, err = buildProblem(stream.Problem{ID: "x"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description is required")
}

func TestBuildProblem_BadFile(t *testing.T) {
	_, err := buildProblem(stream.Problem{}, filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read problem file")
}

func TestSpawnTasks(t *testing.T) {
	reg := stream.NewRegistry(0)

	all, err := spawnTasks(reg, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, stream.KindMethodical, all[0].Kind())

	some, err := spawnTasks(reg, []string{"Skeptical", "divergent"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, stream.KindSkeptical, some[0].Kind())

	_, err = spawnTasks(reg, []string{"lateral"})
	assert.Error(t, err)
}

func TestApplyOverrides(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("log-level", "debug")
	viper.Set("patterns-backend", "kuzu")
	viper.Set("per-task", 3*time.Second)

	cfg := config.Defaults()
	applyOverrides(cfg)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "kuzu", cfg.Patterns.Backend)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.PerTask)
	assert.Equal(t, config.Defaults().Timeouts.Total, cfg.Timeouts.Total)
}

func TestLoadConfig_FromDir(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fourfold.yml"), []byte("timeouts:\n  perTask: 4s\n  total: 9s\n"), 0o644))
	viper.Set("dir", dir)

	cfg, root, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, dir, root)
	assert.Equal(t, 4*time.Second, cfg.Timeouts.PerTask)
	assert.Equal(t, 9*time.Second, cfg.Timeouts.Total)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("dir", t.TempDir())
	viper.Set("log-format", "xml")

	_, _, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	require.NoError(t, runInit(&out, dir, false, true))
	assert.Contains(t, out.String(), "created ./fourfold.yml")
	assert.Contains(t, out.String(), "created .mcp.json")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().Timeouts, cfg.Timeouts)

	out.Reset()
	require.NoError(t, runInit(&out, dir, false, true))
	assert.Contains(t, out.String(), "skipped ./fourfold.yml")
	assert.Contains(t, out.String(), "skipped .mcp.json")
}

func TestMergeMCPConfig_KeepsOtherServers(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers":{"other":{"command":"other"}}}`), 0o644))

	var out bytes.Buffer
	require.NoError(t, mergeMCPConfig(&out, path, false))
	assert.Contains(t, out.String(), "updated .mcp.json")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cfg mcpConfig
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Contains(t, cfg.MCPServers, "other")
	assert.Contains(t, cfg.MCPServers, "fourfold")
}

func TestRunDiagram_FromJSONReport(t *testing.T) {
	res := synthesis.Result{
		Conclusion: "Integrated conclusion: hold.",
		Conflicts: []conflict.Conflict{{
			Type:     conflict.TypePredictive,
			Severity: conflict.SeverityHigh,
			Sources:  []string{"divergent", "skeptical"},
		}},
	}
	var report bytes.Buffer
	require.NoError(t, export.JSON(&report, res))

	var out bytes.Buffer
	require.NoError(t, runDiagram("-", &report, &out))
	assert.True(t, strings.HasPrefix(out.String(), "graph LR\n"))
	assert.Contains(t, out.String(), `S0 ---|"predictive/high"| S1`)
}

func TestRenderTables(t *testing.T) {
	res := synthesis.Result{
		Conclusion: "Integrated conclusion: ship it.",
		Confidence: 0.8,
		Recommendations: []synthesis.Recommendation{{
			Description: "Roll out behind a flag",
			Sources:     []stream.Kind{stream.KindMethodical},
			Priority:    0.9,
		}},
		Metadata: synthesis.Metadata{Streams: []synthesis.StreamSummary{
			{StreamID: "methodical", Status: stream.StatusCompleted, Confidence: 0.8},
		}},
	}
	var out bytes.Buffer
	require.NoError(t, render(&out, "table", res))

	s := out.String()
	assert.Contains(t, s, "Integrated conclusion: ship it.")
	assert.Contains(t, s, "Roll out behind a flag")
	assert.Contains(t, s, "methodical")
	assert.NotContains(t, s, "Conflicts")
}
