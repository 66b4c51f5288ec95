package contract

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/huangsam/queuewait/schema"
)

// MockModel is a mock implementation of Model for testing.
type MockModel struct {
	mock.Mock
}

var _ Model = &MockModel{} // Compile-time check

// Layers implements the Model interface.
func (m *MockModel) Layers() []int {
	args := m.Called()
	layers, _ := args.Get(0).([]int)
	return layers
}

// Run implements the Model interface.
func (m *MockModel) Run(inputs []float64) ([]float64, error) {
	args := m.Called(inputs)
	out, _ := args.Get(0).([]float64)
	return out, args.Error(1)
}

// Train implements the Model interface.
func (m *MockModel) Train(ctx context.Context, samples []schema.Sample, opts schema.TrainOptions) (schema.TrainSummary, error) {
	args := m.Called(ctx, samples, opts)
	return args.Get(0).(schema.TrainSummary), args.Error(1)
}

// MarshalJSON implements the Model interface.
func (m *MockModel) MarshalJSON() ([]byte, error) {
	args := m.Called()
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
