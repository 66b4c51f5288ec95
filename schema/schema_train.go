package schema

import (
	"fmt"
	"time"
)

// Sample is one encoded training pair handed to a trainable model.
type Sample struct {
	Inputs  []float64 `json:"inputs"`
	Targets []float64 `json:"targets"`
}

// HaltRule decides when a single training pass stops.
type HaltRule struct {
	Kind   HaltKind      `json:"kind"`
	Epochs uint32        `json:"epochs,omitempty"`
	Timer  time.Duration `json:"timer,omitempty"`
	MSE    float64       `json:"mse,omitempty"`
}

// String renders the rule the way it is passed on the command line.
func (h HaltRule) String() string {
	switch h.Kind {
	case HaltEpochs:
		return fmt.Sprintf("epochs=%d", h.Epochs)
	case HaltMSE:
		return fmt.Sprintf("mse=%g", h.MSE)
	default:
		return fmt.Sprintf("timer=%s", h.Timer)
	}
}

// TrainProgress is reported periodically while a pass is running.
type TrainProgress struct {
	Epoch   uint32
	MSE     float64
	Elapsed time.Duration
}

// TrainOptions controls a single training pass.
type TrainOptions struct {
	Halt        HaltRule
	Momentum    float64
	Rate        float64
	LogInterval uint32 // Report every N epochs, 0 disables reporting
	OnProgress  func(TrainProgress)
}

// TrainSummary describes a finished training pass.
type TrainSummary struct {
	Epochs  uint32        `json:"epochs"`
	MSE     float64       `json:"mse"`
	Elapsed time.Duration `json:"elapsed"`
}
