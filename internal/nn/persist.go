package nn

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// networkJSON is the on-disk form of a network.
type networkJSON struct {
	Layers  []int         `json:"layers"`
	Weights [][][]float64 `json:"weights"`
}

// MarshalJSON implements json.Marshaler.
func (n *Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(networkJSON{Layers: n.layers, Weights: n.weights})
}

// FromJSON decodes a network and checks that the weights match the layers.
func FromJSON(data []byte) (*Network, error) {
	var raw networkJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode network: %w", err)
	}
	if err := validateLayers(raw.Layers); err != nil {
		return nil, err
	}
	if len(raw.Weights) != len(raw.Layers)-1 {
		return nil, fmt.Errorf("%d weight layers for %d layers: %w", len(raw.Weights), len(raw.Layers), ErrShape)
	}
	for l, layer := range raw.Weights {
		if len(layer) != raw.Layers[l+1] {
			return nil, fmt.Errorf("layer %d has %d neurons, want %d: %w", l+1, len(layer), raw.Layers[l+1], ErrShape)
		}
		for j, w := range layer {
			if len(w) != raw.Layers[l]+1 {
				return nil, fmt.Errorf("neuron %d of layer %d has %d weights, want %d: %w", j, l+1, len(w), raw.Layers[l]+1, ErrShape)
			}
		}
	}
	return fromWeights(raw.Layers, raw.Weights), nil
}

// Load reads a network from a JSON file.
func Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", path, err)
	}
	n, err := FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return n, nil
}

// Save writes a model as JSON. The file is written next to path and renamed
// into place so a crash never leaves a truncated model behind.
func Save(model json.Marshaler, path string) error {
	data, err := model.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp model file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close model: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename model into place: %w", err)
	}
	return nil
}
