package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayers(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []int
		wantErr bool
	}{
		{"five layers", "10-6-2-4-1", []int{10, 6, 2, 4, 1}, false},
		{"two layers", "10-1", []int{10, 1}, false},
		{"surrounding space", " 10-1 ", []int{10, 1}, false},
		{"empty", "", nil, true},
		{"single layer", "10", nil, true},
		{"zero layer", "10-0-1", nil, true},
		{"negative via empty part", "10--1", nil, true},
		{"not a number", "10-x-1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLayers(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatLayers(t *testing.T) {
	assert.Equal(t, "10-6-2-4-1", FormatLayers([]int{10, 6, 2, 4, 1}))
	assert.Equal(t, "", FormatLayers(nil))

	layers, err := ParseLayers(FormatLayers([]int{10, 3, 1}))
	require.NoError(t, err)
	assert.Equal(t, []int{10, 3, 1}, layers)
}
