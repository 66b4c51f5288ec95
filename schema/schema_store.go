package schema

import "time"

// PassEvaluation is what gets recorded after one training pass.
type PassEvaluation struct {
	Pass                   int
	RecordedAt             time.Time
	Examples               int
	Epochs                 uint32
	TrainMSE               float64
	ModelMeanAbsMinutes    float64
	ModelMeanMinutes       float64
	BaselineMeanAbsMinutes float64
	BaselineMeanMinutes    float64
}

// TrainingSessionRecord represents a row from the queuewait_training_sessions table.
type TrainingSessionRecord struct {
	SessionID    int64
	SessionUUID  string
	ModelPath    string
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   *int64
	TotalPasses  int32
	ConfigParams *string
}

// PassEvaluationRecord represents a row from the queuewait_pass_evaluations table.
type PassEvaluationRecord struct {
	SessionID              int64
	Pass                   int32
	RecordedAt             time.Time
	Examples               int32
	Epochs                 int64
	TrainMSE               float64
	ModelMeanAbsMinutes    float64
	ModelMeanMinutes       float64
	BaselineMeanAbsMinutes float64
	BaselineMeanMinutes    float64
}
