package outwriter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/schema"
)

func sampleEstimate() *schema.EstimateResult {
	return &schema.EstimateResult{
		Position:      100,
		Length:        400,
		Survival:      0.99994,
		BaselineHours: 1.25,
		Models:        []schema.ModelEstimate{{Name: "/m/10-4-1.json", Hours: 0.5}},
	}
}

func TestWriteEstimateResult(t *testing.T) {
	dir := t.TempDir()

	t.Run("csv", func(t *testing.T) {
		out := filepath.Join(dir, "estimate.csv")
		cfg := &contract.Config{Output: schema.CSVOut, OutputFile: out, Precision: 2}
		require.NoError(t, WriteEstimateResult(sampleEstimate(), cfg))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Equal(t, []string{
			"model,position,length,hours",
			"baseline,100,400,1.25",
			"/m/10-4-1.json,100,400,0.50",
		}, lines)
	})

	t.Run("text", func(t *testing.T) {
		out := filepath.Join(dir, "estimate.txt")
		cfg := &contract.Config{Output: schema.TextOut, OutputFile: out, Precision: 2}
		require.NoError(t, WriteEstimateResult(sampleEstimate(), cfg))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Position 100 of 400")
		assert.Contains(t, string(data), "10-4-1.json")
		assert.Contains(t, string(data), "75.00")
	})

	t.Run("json", func(t *testing.T) {
		out := filepath.Join(dir, "estimate.json")
		cfg := &contract.Config{Output: schema.JSONOut, OutputFile: out, Precision: 2}
		require.NoError(t, WriteEstimateResult(sampleEstimate(), cfg))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"baseline_hours": 1.25`)
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: filepath.Join(dir, "x.parquet"), Precision: 2}
		assert.Error(t, WriteEstimateResult(sampleEstimate(), cfg))
	})
}
