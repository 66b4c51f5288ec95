//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	out, err := runQueuewait(t, t.TempDir(), nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "queuewait CLI")
}

func TestNewStatTrainEstimate(t *testing.T) {
	home := t.TempDir()
	data := writeSampleRuns(t)
	models := filepath.Join(home, "models")
	model := filepath.Join(models, "10-4-1.json")

	out, err := runQueuewait(t, home, nil, "new", "10-4-1", "--dir", models)
	require.NoError(t, err)
	assert.Contains(t, out, "created model")
	require.FileExists(t, model)

	// Refuses to overwrite without --force
	_, err = runQueuewait(t, home, nil, "new", "10-4-1", "--dir", models)
	assert.Error(t, err)

	out, err = runQueuewait(t, home, nil, "stat", data)
	require.NoError(t, err)
	assert.Contains(t, out, "baseline")

	out, err = runQueuewait(t, home, nil, "stat", data, model, "--output", "json")
	require.NoError(t, err)
	var report struct {
		Points  []json.RawMessage `json:"points"`
		Models  []json.RawMessage `json:"models"`
		Skipped int               `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Len(t, report.Points, 3)
	assert.Len(t, report.Models, 1)
	assert.Equal(t, 1, report.Skipped)

	out, err = runQueuewait(t, home, nil, "train", data, model,
		"--epochs", "20", "--iterations", "2", "--logging=false", "--history-backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "Pass 2:")

	out, err = runQueuewait(t, home, nil, "history", "status", "--history-backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Sessions: 1")
	assert.Contains(t, out, "Total Passes: 2")

	prefix := filepath.Join(home, "history")
	_, err = runQueuewait(t, home, nil, "history", "export", "--history-backend", "sqlite", "--output-file", prefix)
	require.NoError(t, err)
	assert.FileExists(t, prefix+".training_sessions.parquet")
	assert.FileExists(t, prefix+".pass_evaluations.parquet")

	out, err = runQueuewait(t, home, nil, "estimate", "--position", "120", "--length", "400", "--model", model)
	require.NoError(t, err)
	assert.Contains(t, out, "Position 120 of 400")
}

func TestExportExamples(t *testing.T) {
	home := t.TempDir()
	data := writeSampleRuns(t)
	out := filepath.Join(home, "examples.parquet")

	_, err := runQueuewait(t, home, nil, "export", data, "--output-file", out)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// --output-file is required
	_, err = runQueuewait(t, home, nil, "export", data)
	assert.Error(t, err)
}

func TestRunCache(t *testing.T) {
	home := t.TempDir()
	data := writeSampleRuns(t)

	_, err := runQueuewait(t, home, nil, "stat", data)
	require.NoError(t, err)

	out, err := runQueuewait(t, home, nil, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Entries: 3")

	out, err = runQueuewait(t, home, nil, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared successfully.")
	assert.NoFileExists(t, filepath.Join(home, ".queuewait_cache.db"))
}

func TestConfigFileAndEnv(t *testing.T) {
	home := t.TempDir()
	data := writeSampleRuns(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".queuewait.yaml"), []byte("output: csv\nprecision: 1\n"), 0o644))

	out, err := runQueuewait(t, home, nil, "stat", data)
	require.NoError(t, err)
	assert.Contains(t, out, "model,file,position,length")

	out, err = runQueuewait(t, home, []string{"QUEUEWAIT_OUTPUT=json"}, "stat", data)
	require.NoError(t, err)
	assert.Contains(t, out, `"data_dir"`)

	_, err = runQueuewait(t, home, []string{"QUEUEWAIT_CACHE_BACKEND=redis"}, "stat", data)
	assert.Error(t, err)
}
