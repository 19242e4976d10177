package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"go-td-core/internal/level"
	"go-td-core/internal/match"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const smallCatalog = `
[[archetype]]
id = "grunt"
max_health = 10.0
speed = 100.0
reward = 1

[[path]]
id = "line"
nodes = [ { x = 0.0, y = 0.0 }, { x = 50.0, y = 0.0 } ]

[[wave]]
name = "only"
  [[wave.group]]
  archetype = "grunt"
  count = 2
  inter_spawn_delay = 0.1
  origin = "line"
`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCmd(t *testing.T) {
	out, err := execute(t, "run", "--catalog", writeCatalog(t, smallCatalog), "--seed", "7", "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, ": Win")
	assert.Contains(t, out, "waves      1/1")
	assert.Contains(t, out, "seed       7")
}

func TestRunCmd_Timeout(t *testing.T) {
	out, err := execute(t, "run", "--catalog", writeCatalog(t, smallCatalog), "--max-time", "1", "--log-level", "error")
	require.NoError(t, err, "a timeout is reported, not failed")
	assert.Contains(t, out, ": Building")
}

func TestRunCmd_BadCatalog(t *testing.T) {
	_, err := execute(t, "run", "--catalog", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestBatchCmd(t *testing.T) {
	defer goleak.VerifyNone(t)

	out, err := execute(t, "batch", "--catalog", writeCatalog(t, smallCatalog), "--matches", "6", "--parallel", "3", "--seed", "1", "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "matches   6")
	assert.Contains(t, out, "wins      6")
	assert.Contains(t, out, "timeouts  0")
}

func TestBatchCmd_InvalidFlags(t *testing.T) {
	_, err := execute(t, "batch", "--matches", "0")
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	outcomes := []batchOutcome{
		{result: match.Result{Phase: level.Win, EnemiesPassed: 1, Elapsed: 10}},
		{result: match.Result{Phase: level.Lose, EnemiesPassed: 5, Elapsed: 20}},
		{result: match.Result{Phase: level.Building, Elapsed: 30}, timedOut: true},
	}
	s := summarize(outcomes)
	assert.Equal(t, Summary{Matches: 3, Wins: 1, Losses: 1, Timeouts: 1, AvgPassed: 2, AvgElapsed: 20}, s)
	assert.Equal(t, Summary{}, summarize(nil))
}
