package schema

// ReportPoint is the per-run data used when comparing estimators.
// It is derived from the example that windows the run's start against its end.
type ReportPoint struct {
	FilePath      string    `json:"file_path" yaml:"file_path"`
	Position      uint16    `json:"position" yaml:"position"`
	Length        uint16    `json:"length" yaml:"length"`
	Inputs        []float64 `json:"inputs" yaml:"inputs"`
	ExpectedHours float64   `json:"expected_hours" yaml:"expected_hours"`
	BaselineHours float64   `json:"baseline_hours" yaml:"baseline_hours"`
}

// PointPrediction is one estimator's answer for one report point.
type PointPrediction struct {
	FilePath    string  `json:"file_path" yaml:"file_path"`
	Hours       float64 `json:"hours" yaml:"hours"`
	DiffMinutes float64 `json:"diff_minutes" yaml:"diff_minutes"`
}

// ModelEvaluation aggregates the error of one estimator over every report point.
type ModelEvaluation struct {
	Name           string            `json:"name" yaml:"name"`
	Predictions    []PointPrediction `json:"predictions,omitempty" yaml:"predictions,omitempty"`
	MeanAbsMinutes float64           `json:"mean_abs_minutes" yaml:"mean_abs_minutes"`
	MeanMinutes    float64           `json:"mean_minutes" yaml:"mean_minutes"`
}

// StatReport is the full comparison of trained models against the baseline.
type StatReport struct {
	DataDir  string            `json:"data_dir" yaml:"data_dir"`
	Points   []ReportPoint     `json:"points" yaml:"points"`
	Models   []ModelEvaluation `json:"models" yaml:"models"`
	Baseline ModelEvaluation   `json:"baseline" yaml:"baseline"`
	Skipped  int               `json:"skipped" yaml:"skipped"`
}

// ModelEstimate is a single model's estimate for a live queue position.
type ModelEstimate struct {
	Name  string  `json:"name" yaml:"name"`
	Hours float64 `json:"hours" yaml:"hours"`
}

// EstimateResult answers "how long until I leave the queue" for one position.
type EstimateResult struct {
	Position      uint16          `json:"position" yaml:"position"`
	Length        uint16          `json:"length" yaml:"length"`
	Survival      float64         `json:"survival" yaml:"survival"`
	BaselineHours float64         `json:"baseline_hours" yaml:"baseline_hours"`
	Models        []ModelEstimate `json:"models,omitempty" yaml:"models,omitempty"`
}
