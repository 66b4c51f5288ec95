// Package parquet provides data structures and functions for exporting queuewait
// training data, evaluations and history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/huangsam/queuewait/schema"
)

// TrainingExample is one windowed and encoded example, ready for offline training.
type TrainingExample struct {
	// FilePath is the observation log the example came from
	FilePath string `parquet:"file_path,snappy,dict"`

	// Step is the index of the current observation within its run (0 = start)
	Step int32 `parquet:"step,snappy"`

	// Raw fields of the start and current observations
	StartTime       int64 `parquet:"start_time_ms,snappy"`
	StartPosition   int32 `parquet:"start_position,snappy"`
	StartLength     int32 `parquet:"start_length,snappy"`
	CurrentTime     int64 `parquet:"current_time_ms,snappy"`
	CurrentPosition int32 `parquet:"current_position,snappy"`
	CurrentLength   int32 `parquet:"current_length,snappy"`

	// LabelMs is the remaining wait in milliseconds
	LabelMs int64 `parquet:"label_ms,snappy"`

	// Features is the encoded input vector
	Features []float64 `parquet:"features,list"`

	// Target is the encoded label
	Target float64 `parquet:"target,snappy"`
}

// Prediction is one estimator's answer for one run in a stat report.
type Prediction struct {
	Model         string  `parquet:"model,snappy,dict"`
	FilePath      string  `parquet:"file_path,snappy"`
	Position      int32   `parquet:"position,snappy"`
	Length        int32   `parquet:"length,snappy"`
	ExpectedHours float64 `parquet:"expected_hours,snappy"`
	Hours         float64 `parquet:"hours,snappy"`
	DiffMinutes   float64 `parquet:"diff_minutes,snappy"`
}

// TrainingSession represents a single training session with metadata.
// This struct maps to the queuewait_training_sessions database table.
type TrainingSession struct {
	// SessionID is the unique identifier for this session
	SessionID int64 `parquet:"session_id,snappy"`

	// SessionUUID is the globally unique identifier for this session
	SessionUUID string `parquet:"session_uuid,snappy"`

	// ModelPath is the model file that was trained
	ModelPath string `parquet:"model_path,snappy"`

	// StartTime is when the session began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the session completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// DurationMs is the session duration in milliseconds (nullable)
	DurationMs *int64 `parquet:"duration_ms,optional,snappy"`

	// TotalPasses is the number of training passes in this session
	TotalPasses int32 `parquet:"total_passes,snappy"`

	// ConfigParams contains the JSON-encoded training parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// PassEvaluation is the evaluation recorded after one training pass.
// This struct maps to the queuewait_pass_evaluations database table.
type PassEvaluation struct {
	SessionID              int64     `parquet:"session_id,snappy"`
	Pass                   int32     `parquet:"pass,snappy"`
	RecordedAt             time.Time `parquet:"recorded_at,snappy"`
	Examples               int32     `parquet:"examples,snappy"`
	Epochs                 int64     `parquet:"epochs,snappy"`
	TrainMSE               float64   `parquet:"train_mse,snappy"`
	ModelMeanAbsMinutes    float64   `parquet:"model_mean_abs_minutes,snappy"`
	ModelMeanMinutes       float64   `parquet:"model_mean_minutes,snappy"`
	BaselineMeanAbsMinutes float64   `parquet:"baseline_mean_abs_minutes,snappy"`
	BaselineMeanMinutes    float64   `parquet:"baseline_mean_minutes,snappy"`
}

// writeParquet writes rows of T to a new file at outputPath.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteTrainingExamplesParquet writes training examples to a Parquet file.
func WriteTrainingExamplesParquet(data []TrainingExample, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WritePredictionsParquet writes stat predictions to a Parquet file.
func WritePredictionsParquet(data []Prediction, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteTrainingSessionsParquet writes training sessions to a Parquet file.
func WriteTrainingSessionsParquet(data []TrainingSession, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WritePassEvaluationsParquet writes pass evaluations to a Parquet file.
func WritePassEvaluationsParquet(data []PassEvaluation, outputPath string) error {
	return writeParquet(data, outputPath)
}

// ConvertTrainingExample builds an export row from a windowed example and its encoding.
func ConvertTrainingExample(filePath string, step int, ex schema.TrainingExample, sample schema.Sample) TrainingExample {
	row := TrainingExample{
		FilePath:        filePath,
		Step:            int32(step),
		StartTime:       int64(ex.StartTime),
		StartPosition:   int32(ex.StartPosition),
		StartLength:     int32(ex.StartLength),
		CurrentTime:     int64(ex.CurrentTime),
		CurrentPosition: int32(ex.CurrentPosition),
		CurrentLength:   int32(ex.CurrentLength),
		LabelMs:         int64(ex.ElapsedMs),
		Features:        sample.Inputs,
	}
	if len(sample.Targets) > 0 {
		row.Target = sample.Targets[0]
	}
	return row
}

// ConvertStatReport flattens every prediction of a stat report, baseline first.
func ConvertStatReport(report *schema.StatReport) []Prediction {
	evals := append([]schema.ModelEvaluation{report.Baseline}, report.Models...)
	var rows []Prediction
	for _, eval := range evals {
		for i, p := range eval.Predictions {
			row := Prediction{
				Model:       eval.Name,
				FilePath:    p.FilePath,
				Hours:       p.Hours,
				DiffMinutes: p.DiffMinutes,
			}
			if i < len(report.Points) {
				point := report.Points[i]
				row.Position = int32(point.Position)
				row.Length = int32(point.Length)
				row.ExpectedHours = point.ExpectedHours
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// ConvertTrainingSessionRecords converts schema.TrainingSessionRecord to TrainingSession for Parquet export.
func ConvertTrainingSessionRecords(records []schema.TrainingSessionRecord) []TrainingSession {
	result := make([]TrainingSession, len(records))
	for i, record := range records {
		result[i] = TrainingSession{
			SessionID:    record.SessionID,
			SessionUUID:  record.SessionUUID,
			ModelPath:    record.ModelPath,
			StartTime:    record.StartTime,
			EndTime:      record.EndTime,
			DurationMs:   record.DurationMs,
			TotalPasses:  record.TotalPasses,
			ConfigParams: record.ConfigParams,
		}
	}
	return result
}

// ConvertPassEvaluationRecords converts schema.PassEvaluationRecord to PassEvaluation for Parquet export.
func ConvertPassEvaluationRecords(records []schema.PassEvaluationRecord) []PassEvaluation {
	result := make([]PassEvaluation, len(records))
	for i, r := range records {
		result[i] = PassEvaluation{
			SessionID:              r.SessionID,
			Pass:                   r.Pass,
			RecordedAt:             r.RecordedAt,
			Examples:               r.Examples,
			Epochs:                 r.Epochs,
			TrainMSE:               r.TrainMSE,
			ModelMeanAbsMinutes:    r.ModelMeanAbsMinutes,
			ModelMeanMinutes:       r.ModelMeanMinutes,
			BaselineMeanAbsMinutes: r.BaselineMeanAbsMinutes,
			BaselineMeanMinutes:    r.BaselineMeanMinutes,
		}
	}
	return result
}
