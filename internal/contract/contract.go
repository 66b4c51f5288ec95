// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"encoding/json"
	"time"

	"github.com/huangsam/queuewait/schema"
)

// Model is a trainable wait-time estimator.
// The feedforward network in internal/nn is the production implementation;
// tests use MockModel.
type Model interface {
	json.Marshaler

	// Layers returns the neuron count of every layer, input layer first.
	Layers() []int

	// Run feeds inputs forward and returns the output layer.
	Run(inputs []float64) ([]float64, error)

	// Train runs one pass over samples until the halt rule is met or ctx is done.
	Train(ctx context.Context, samples []schema.Sample, opts schema.TrainOptions) (schema.TrainSummary, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetRunStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for recording training sessions.
type HistoryStore interface {
	// BeginSession creates a new training session and returns its unique ID
	BeginSession(startTime time.Time, modelPath string, configParams map[string]any) (int64, error)

	// RecordPass stores the evaluation taken after one training pass
	RecordPass(sessionID int64, eval schema.PassEvaluation) error

	// EndSession updates the session with completion data
	EndSession(sessionID int64, endTime time.Time, totalPasses int) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllSessions returns every recorded session, oldest first
	GetAllSessions() ([]schema.TrainingSessionRecord, error)

	// GetAllPassEvaluations returns every recorded pass, by session then pass
	GetAllPassEvaluations() ([]schema.PassEvaluationRecord, error)

	// Close closes the underlying connection
	Close() error
}
