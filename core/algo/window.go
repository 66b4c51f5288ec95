// Package algo holds the pure computations of queuewait: run windowing,
// feature encoding and the baseline wait estimate.
package algo

import (
	"errors"
	"fmt"
	"iter"

	"github.com/huangsam/queuewait/schema"
)

// ErrTimeRegression is returned when an observation is later than the run's end.
var ErrTimeRegression = errors.New("observation time is after the run end")

// RunWindow is a finalized run ready to be expanded into training examples.
type RunWindow struct {
	run schema.Run
	end schema.Observation
}

// NewRunWindow finalizes run by resolving its end anchor.
// The run is copied so later changes to the caller's slice are not observed.
func NewRunWindow(run schema.Run) (*RunWindow, error) {
	end, err := run.End()
	if err != nil {
		return nil, err
	}
	if run.Start.Time > end.Time {
		return nil, fmt.Errorf("start at %d, end at %d: %w", run.Start.Time, end.Time, ErrTimeRegression)
	}
	for i, obs := range run.Subsequent {
		if obs.Time > end.Time {
			return nil, fmt.Errorf("step %d at %d, end at %d: %w", i+1, obs.Time, end.Time, ErrTimeRegression)
		}
	}
	return &RunWindow{run: run.Clone(), end: end}, nil
}

// Len returns the number of examples the window yields.
func (w *RunWindow) Len() int {
	return len(w.run.Subsequent) + 1
}

// End returns the cached end anchor.
func (w *RunWindow) End() schema.Observation {
	return w.end
}

// Start returns the run's first observation.
func (w *RunWindow) Start() schema.Observation {
	return w.run.Start
}

// Examples yields (step, example) pairs. Step 0 uses the start observation as
// the current one; step i uses the i-th subsequent observation.
func (w *RunWindow) Examples() iter.Seq2[int, schema.TrainingExample] {
	return func(yield func(int, schema.TrainingExample) bool) {
		if !yield(0, w.example(w.run.Start)) {
			return
		}
		for i, obs := range w.run.Subsequent {
			if !yield(i+1, w.example(obs)) {
				return
			}
		}
	}
}

// StartExample windows the start observation against itself and the end.
func (w *RunWindow) StartExample() schema.TrainingExample {
	return w.example(w.run.Start)
}

func (w *RunWindow) example(current schema.Observation) schema.TrainingExample {
	return schema.TrainingExample{
		StartTime:       w.run.Start.Time,
		StartPosition:   w.run.Start.Position,
		StartLength:     w.run.Start.Length,
		CurrentTime:     current.Time,
		CurrentPosition: current.Position,
		CurrentLength:   current.Length,
		ElapsedMs:       w.end.Time - current.Time,
	}
}
