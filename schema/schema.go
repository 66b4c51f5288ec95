// Package schema has the data models and constants shared by all parts of queuewait.
package schema

import "errors"

// ErrEmptyRun is returned when a run has a start observation but nothing after it.
// Such a run has no exit time, so it cannot be windowed into training examples.
var ErrEmptyRun = errors.New("run has no subsequent observations")

// Observation is one sample of the queue state at an instant.
// The all-zero observation is reserved as the "unparsed" sentinel and is never
// a valid data point.
type Observation struct {
	Time     uint64 `json:"time"`     // Milliseconds since the Unix epoch
	Position uint16 `json:"position"` // Rank within the queue
	Length   uint16 `json:"length"`   // Total queue size at the time
}

// IsZero reports whether the observation equals the sentinel.
func (o Observation) IsZero() bool {
	return o == Observation{}
}

// Run is one continuous session of observations for a single queued client.
type Run struct {
	Start      Observation   `json:"start"`
	Subsequent []Observation `json:"subsequent"`
}

// End returns the last subsequent observation, which is treated as the moment
// the client left the queue.
func (r Run) End() (Observation, error) {
	if len(r.Subsequent) == 0 {
		return Observation{}, ErrEmptyRun
	}
	return r.Subsequent[len(r.Subsequent)-1], nil
}

// Clone returns a deep copy of the run.
func (r Run) Clone() Run {
	clone := r
	if r.Subsequent != nil {
		clone.Subsequent = make([]Observation, len(r.Subsequent))
		copy(clone.Subsequent, r.Subsequent)
	}
	return clone
}

// TrainingExample is one windowed observation anchored to its run's start and end.
type TrainingExample struct {
	StartTime       uint64 `json:"start_time"`       // ms
	StartPosition   uint16 `json:"start_position"`   // queue position at start
	StartLength     uint16 `json:"start_length"`     // queue length at start
	CurrentTime     uint64 `json:"current_time"`     // ms
	CurrentPosition uint16 `json:"current_position"` // queue position at snapshot
	CurrentLength   uint16 `json:"current_length"`   // queue length at snapshot
	ElapsedMs       uint64 `json:"elapsed_ms"`       // time left until the run's end
}

// LoadResult is the outcome of loading a single directory entry.
// Exactly one of Run and Err is set.
type LoadResult struct {
	Path string `json:"path"`
	Run  *Run   `json:"run,omitempty"`
	Err  error  `json:"-"`
}

// OK reports whether the entry produced a usable run.
func (lr LoadResult) OK() bool {
	return lr.Err == nil && lr.Run != nil
}
