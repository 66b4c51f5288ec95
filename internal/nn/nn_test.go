package nn

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/queuewait/schema"
)

func andSamples() []schema.Sample {
	return []schema.Sample{
		{Inputs: []float64{0, 0}, Targets: []float64{0.1}},
		{Inputs: []float64{0, 1}, Targets: []float64{0.1}},
		{Inputs: []float64{1, 0}, Targets: []float64{0.1}},
		{Inputs: []float64{1, 1}, Targets: []float64{0.9}},
	}
}

func TestNew(t *testing.T) {
	n, err := NewSeeded([]int{10, 6, 2, 4, 1}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 6, 2, 4, 1}, n.Layers())

	// Layers returns a copy
	layers := n.Layers()
	layers[0] = 99
	assert.Equal(t, 10, n.Layers()[0])

	_, err = New([]int{10})
	assert.ErrorIs(t, err, ErrShape)
	_, err = New([]int{10, 0, 1})
	assert.ErrorIs(t, err, ErrShape)
}

func TestRun(t *testing.T) {
	n, err := NewSeeded([]int{3, 4, 2}, 7)
	require.NoError(t, err)

	out, err := n.Run([]float64{0.1, 0.2, 0.3})
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, v := range out {
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}

	again, err := n.Run([]float64{0.1, 0.2, 0.3})
	require.NoError(t, err)
	assert.Equal(t, out, again)

	_, err = n.Run([]float64{1})
	assert.ErrorIs(t, err, ErrShape)
}

func TestSeededIsDeterministic(t *testing.T) {
	a, err := NewSeeded([]int{2, 3, 1}, 42)
	require.NoError(t, err)
	b, err := NewSeeded([]int{2, 3, 1}, 42)
	require.NoError(t, err)
	ja, _ := a.MarshalJSON()
	jb, _ := b.MarshalJSON()
	assert.JSONEq(t, string(ja), string(jb))
}

func TestTrainReducesError(t *testing.T) {
	n, err := NewSeeded([]int{2, 3, 1}, 3)
	require.NoError(t, err)

	var first float64
	opts := schema.TrainOptions{
		Halt:        schema.HaltRule{Kind: schema.HaltEpochs, Epochs: 3000},
		Momentum:    0.1,
		Rate:        0.5,
		LogInterval: 1,
		OnProgress: func(p schema.TrainProgress) {
			if p.Epoch == 1 {
				first = p.MSE
			}
		},
	}
	summary, err := n.Train(context.Background(), andSamples(), opts)
	require.NoError(t, err)
	assert.Equal(t, uint32(3000), summary.Epochs)
	assert.Less(t, summary.MSE, first)
	assert.Less(t, summary.MSE, 0.05)

	hi, err := n.Run([]float64{1, 1})
	require.NoError(t, err)
	lo, err := n.Run([]float64{0, 0})
	require.NoError(t, err)
	assert.Greater(t, hi[0], lo[0])
}

func TestTrainHaltRules(t *testing.T) {
	tests := []struct {
		name   string
		rule   schema.HaltRule
		epochs uint32
	}{
		{"epochs", schema.HaltRule{Kind: schema.HaltEpochs, Epochs: 5}, 5},
		{"loose mse", schema.HaltRule{Kind: schema.HaltMSE, MSE: 1}, 1},
		{"tiny timer", schema.HaltRule{Kind: schema.HaltTimer, Timer: time.Nanosecond}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := NewSeeded([]int{2, 2, 1}, 9)
			require.NoError(t, err)
			summary, err := n.Train(context.Background(), andSamples(), schema.TrainOptions{Halt: tt.rule, Rate: 0.3})
			require.NoError(t, err)
			assert.Equal(t, tt.epochs, summary.Epochs)
		})
	}
}

func TestTrainProgressInterval(t *testing.T) {
	n, err := NewSeeded([]int{2, 2, 1}, 5)
	require.NoError(t, err)

	var seen []uint32
	opts := schema.TrainOptions{
		Halt:        schema.HaltRule{Kind: schema.HaltEpochs, Epochs: 10},
		Rate:        0.3,
		LogInterval: 4,
		OnProgress:  func(p schema.TrainProgress) { seen = append(seen, p.Epoch) },
	}
	_, err = n.Train(context.Background(), andSamples(), opts)
	require.NoError(t, err)
	assert.Equal(t, []uint32{4, 8}, seen)
}

func TestTrainErrors(t *testing.T) {
	n, err := NewSeeded([]int{2, 2, 1}, 5)
	require.NoError(t, err)
	opts := schema.TrainOptions{Halt: schema.HaltRule{Kind: schema.HaltEpochs, Epochs: 1}, Rate: 0.3}

	_, err = n.Train(context.Background(), nil, opts)
	assert.ErrorIs(t, err, ErrNoSamples)

	bad := []schema.Sample{{Inputs: []float64{1}, Targets: []float64{0}}}
	_, err = n.Train(context.Background(), bad, opts)
	assert.ErrorIs(t, err, ErrShape)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := n.Train(ctx, andSamples(), opts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Epochs)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "10-4-1.json")

	n, err := NewSeeded([]int{10, 4, 1}, 11)
	require.NoError(t, err)
	require.NoError(t, Save(n, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, n.Layers(), loaded.Layers())

	in := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}
	want, err := n.Run(in)
	require.NoError(t, err)
	got, err := loaded.Run(in)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-12)

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFromJSONRejectsBadShapes(t *testing.T) {
	cases := map[string]string{
		"garbage":        `{`,
		"one layer":      `{"layers":[2],"weights":[]}`,
		"missing layer":  `{"layers":[2,1],"weights":[]}`,
		"wrong neurons":  `{"layers":[2,1],"weights":[[[0,0,0],[0,0,0]]]}`,
		"wrong fan in":   `{"layers":[2,1],"weights":[[[0,0]]]}`,
		"negative layer": `{"layers":[2,-1],"weights":[[]]}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromJSON([]byte(data))
			assert.Error(t, err)
		})
	}

	n, err := FromJSON([]byte(`{"layers":[2,1],"weights":[[[0,0,0]]]}`))
	require.NoError(t, err)
	out, err := n.Run([]float64{5, 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5}, out)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
