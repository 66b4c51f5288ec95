// Package nn is a small fully connected feedforward network with sigmoid
// activations, trained online by backpropagation with momentum.
package nn

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/schema"
)

// Errors returned by the network.
var (
	ErrShape     = errors.New("vector does not match the network shape")
	ErrNoSamples = errors.New("no samples to train on")
)

// initSpread bounds the initial random weights to [-initSpread, initSpread).
const initSpread = 0.5

// Network is a feedforward network. It is not safe for concurrent training.
type Network struct {
	layers []int

	// weights[l][j] holds the incoming weights of neuron j in layer l+1;
	// the last entry is the bias.
	weights [][][]float64

	// previous weight changes, kept for momentum
	changes [][][]float64

	// scratch buffers reused across samples
	acts   [][]float64
	deltas [][]float64
}

var _ contract.Model = (*Network)(nil) // Compile-time check

// New creates a network with randomly initialized weights.
func New(layers []int) (*Network, error) {
	return NewSeeded(layers, rand.Uint64())
}

// NewSeeded creates a network whose initial weights are derived from seed.
func NewSeeded(layers []int, seed uint64) (*Network, error) {
	if err := validateLayers(layers); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	weights := make([][][]float64, len(layers)-1)
	for l := range weights {
		weights[l] = make([][]float64, layers[l+1])
		for j := range weights[l] {
			row := make([]float64, layers[l]+1)
			for i := range row {
				row[i] = (rng.Float64()*2 - 1) * initSpread
			}
			weights[l][j] = row
		}
	}
	return fromWeights(layers, weights), nil
}

func validateLayers(layers []int) error {
	if len(layers) < 2 {
		return fmt.Errorf("need at least two layers (received %d): %w", len(layers), ErrShape)
	}
	for _, n := range layers {
		if n <= 0 {
			return fmt.Errorf("layer size must be positive (received %d): %w", n, ErrShape)
		}
	}
	return nil
}

func fromWeights(layers []int, weights [][][]float64) *Network {
	n := &Network{layers: slices.Clone(layers), weights: weights}
	n.changes = make([][][]float64, len(weights))
	for l := range weights {
		n.changes[l] = make([][]float64, len(weights[l]))
		for j := range weights[l] {
			n.changes[l][j] = make([]float64, len(weights[l][j]))
		}
	}
	n.acts = make([][]float64, len(layers))
	n.deltas = make([][]float64, len(layers))
	for l, size := range layers {
		n.acts[l] = make([]float64, size)
		n.deltas[l] = make([]float64, size)
	}
	return n
}

// Layers returns the neuron count of every layer.
func (n *Network) Layers() []int {
	return slices.Clone(n.layers)
}

// Run feeds inputs forward and returns a copy of the output layer.
func (n *Network) Run(inputs []float64) ([]float64, error) {
	if len(inputs) != n.layers[0] {
		return nil, fmt.Errorf("got %d inputs, want %d: %w", len(inputs), n.layers[0], ErrShape)
	}
	out := n.forward(inputs)
	return slices.Clone(out), nil
}

func (n *Network) forward(inputs []float64) []float64 {
	copy(n.acts[0], inputs)
	for l, layer := range n.weights {
		prev, next := n.acts[l], n.acts[l+1]
		for j, w := range layer {
			sum := w[len(w)-1]
			for i, a := range prev {
				sum += w[i] * a
			}
			next[j] = sigmoid(sum)
		}
	}
	return n.acts[len(n.acts)-1]
}

// backward applies one online update for the last forward pass and returns
// the squared error summed over the outputs.
func (n *Network) backward(targets []float64, rate, momentum float64) float64 {
	last := len(n.layers) - 1
	out := n.acts[last]
	sq := 0.0
	for j, y := range out {
		diff := y - targets[j]
		sq += diff * diff
		n.deltas[last][j] = diff * y * (1 - y)
	}

	for l := last - 1; l > 0; l-- {
		for i, a := range n.acts[l] {
			sum := 0.0
			for j, w := range n.weights[l] {
				sum += w[i] * n.deltas[l+1][j]
			}
			n.deltas[l][i] = sum * a * (1 - a)
		}
	}

	for l, layer := range n.weights {
		in := n.acts[l]
		for j, w := range layer {
			d := n.deltas[l+1][j]
			ch := n.changes[l][j]
			for i, a := range in {
				ch[i] = -rate*d*a + momentum*ch[i]
				w[i] += ch[i]
			}
			b := len(w) - 1
			ch[b] = -rate*d + momentum*ch[b]
			w[b] += ch[b]
		}
	}
	return sq
}

// Train runs epochs over samples until the halt rule is met or ctx is done.
// On cancellation the weights trained so far are kept and ctx's error is returned.
func (n *Network) Train(ctx context.Context, samples []schema.Sample, opts schema.TrainOptions) (schema.TrainSummary, error) {
	if len(samples) == 0 {
		return schema.TrainSummary{}, ErrNoSamples
	}
	outputs := n.layers[len(n.layers)-1]
	for i, s := range samples {
		if len(s.Inputs) != n.layers[0] || len(s.Targets) != outputs {
			return schema.TrainSummary{}, fmt.Errorf("sample %d has %d inputs and %d targets: %w", i, len(s.Inputs), len(s.Targets), ErrShape)
		}
	}

	start := time.Now()
	var summary schema.TrainSummary
	for {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, err
		}

		total := 0.0
		for _, s := range samples {
			n.forward(s.Inputs)
			total += n.backward(s.Targets, opts.Rate, opts.Momentum)
		}
		summary.Epochs++
		summary.MSE = total / float64(len(samples)*outputs)
		summary.Elapsed = time.Since(start)

		if opts.OnProgress != nil && opts.LogInterval > 0 && summary.Epochs%opts.LogInterval == 0 {
			opts.OnProgress(schema.TrainProgress{Epoch: summary.Epochs, MSE: summary.MSE, Elapsed: summary.Elapsed})
		}
		if halted(opts.Halt, summary) {
			return summary, nil
		}
	}
}

func halted(rule schema.HaltRule, s schema.TrainSummary) bool {
	switch rule.Kind {
	case schema.HaltEpochs:
		return s.Epochs >= rule.Epochs
	case schema.HaltMSE:
		return s.MSE <= rule.MSE || math.IsNaN(s.MSE)
	default:
		return s.Elapsed >= rule.Timer
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
