package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLayers parses a layer specification such as "10-6-2-4-1".
// Every layer must be a positive integer and there must be at least two.
func ParseLayers(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("layer specification is empty")
	}
	var layers []int
	for part := range strings.SplitSeq(spec, "-") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid layer size %q: %w", part, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("layer size must be positive (received %d)", n)
		}
		layers = append(layers, n)
	}
	if len(layers) < 2 {
		return nil, fmt.Errorf("at least an input and an output layer are required (received %d)", len(layers))
	}
	return layers, nil
}

// FormatLayers formats layer sizes as "10-6-2-4-1".
func FormatLayers(layers []int) string {
	parts := make([]string, len(layers))
	for i, l := range layers {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, "-")
}
