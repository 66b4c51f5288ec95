package schema_test

import (
	"testing"

	"github.com/huangsam/queuewait/schema"
	"github.com/stretchr/testify/assert"
)

func TestGetErrorBand(t *testing.T) {
	tests := []struct {
		name     string
		diff     float64
		expected string
	}{
		{"Zero", 0, schema.ExactBand},
		{"Exact Upper", 4.9, schema.ExactBand},
		{"Exact Negative", -4.9, schema.ExactBand},
		{"Close Lower", 5, schema.CloseBand},
		{"Close Upper", 29.9, schema.CloseBand},
		{"Off Lower", -30, schema.OffBand},
		{"Off Upper", 119.9, schema.OffBand},
		{"Wrong", 120, schema.WrongBand},
		{"Wrong Negative", -600, schema.WrongBand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, schema.GetErrorBand(tt.diff))
		})
	}
}
