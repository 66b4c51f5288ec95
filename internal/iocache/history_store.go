package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/schema"
)

// Table names for training history.
const (
	trainingSessionsTable = "queuewait_training_sessions"
	passEvaluationsTable  = "queuewait_pass_evaluations"
)

// historyTables lists the history tables, parents first.
var historyTables = []string{trainingSessionsTable, passEvaluationsTable}

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// createHistoryTables runs the embedded schema, so a fresh database works without `history migrate`.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	statements, err := historySchema(backend)
	if err != nil {
		return err
	}
	for _, query := range statements {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// historySchema returns the statements of the initial history migration for a backend.
func historySchema(backend schema.DatabaseBackend) ([]string, error) {
	data, err := migrationsFS.ReadFile(path.Join("migrations", migrationDir(backend), initialHistoryMigration))
	if err != nil {
		return nil, fmt.Errorf("failed to read history schema: %w", err)
	}
	var statements []string
	for stmt := range strings.SplitSeq(string(data), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements, nil
}

// disabled reports whether the store is a no-op.
func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginSession creates a new training session and returns its unique ID.
func (hs *HistoryStoreImpl) BeginSession(startTime time.Time, modelPath string, configParams map[string]any) (int64, error) {
	if hs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(trainingSessionsTable, hs.backend)
	query := fmt.Sprintf(`INSERT INTO %s (session_uuid, model_path, start_time, config_params) VALUES (%s)`,
		quotedTableName, placeholders(hs.backend, 4))
	args := []any{uuid.New().String(), modelPath, formatTime(startTime, hs.backend), string(configJSON)}

	var sessionID int64
	switch hs.backend {
	case schema.PostgreSQLBackend:
		err = hs.db.QueryRow(query+" RETURNING session_id", args...).Scan(&sessionID)
	default: // SQLite and MySQL
		var result sql.Result
		result, err = hs.db.Exec(query, args...)
		if err == nil {
			sessionID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert training session: %w", err)
	}
	return sessionID, nil
}

// RecordPass stores the evaluation taken after one training pass.
func (hs *HistoryStoreImpl) RecordPass(sessionID int64, eval schema.PassEvaluation) error {
	if hs.disabled() {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (session_id, pass, recorded_at, examples, epochs, train_mse,
		model_mean_abs_minutes, model_mean_minutes, baseline_mean_abs_minutes, baseline_mean_minutes)
		VALUES (%s)`, quoteTableName(passEvaluationsTable, hs.backend), placeholders(hs.backend, 10))
	_, err := hs.db.Exec(query,
		sessionID, eval.Pass, formatTime(eval.RecordedAt, hs.backend), eval.Examples, int64(eval.Epochs), eval.TrainMSE,
		eval.ModelMeanAbsMinutes, eval.ModelMeanMinutes, eval.BaselineMeanAbsMinutes, eval.BaselineMeanMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pass %d of session %d: %w", eval.Pass, sessionID, err)
	}
	return nil
}

// EndSession updates the session with completion data.
func (hs *HistoryStoreImpl) EndSession(sessionID int64, endTime time.Time, totalPasses int) error {
	if hs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(trainingSessionsTable, hs.backend)

	// First, get the start_time to calculate duration
	var start timeScanner
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE session_id = %s`, quotedTableName, placeholder(hs.backend, 1))
	if err := hs.db.QueryRow(query, sessionID).Scan(&start); err != nil {
		return fmt.Errorf("failed to get start_time for session %d: %w", sessionID, err)
	}
	durationMs := endTime.Sub(start.Time).Milliseconds()

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, duration_ms = %s, total_passes = %s WHERE session_id = %s`,
		quotedTableName,
		placeholder(hs.backend, 1), placeholder(hs.backend, 2), placeholder(hs.backend, 3), placeholder(hs.backend, 4))
	if _, err := hs.db.Exec(update, formatTime(endTime, hs.backend), durationMs, totalPasses, sessionID); err != nil {
		return fmt.Errorf("failed to update training session: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}

	sessions := quoteTableName(trainingSessionsTable, hs.backend)
	row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(total_passes), 0) FROM %s", sessions))
	if err := row.Scan(&status.TotalSessions, &status.TotalPasses); err != nil {
		return status, fmt.Errorf("failed to get total sessions: %w", err)
	}

	if status.TotalSessions > 0 {
		var last, oldest timeScanner
		row = hs.db.QueryRow(fmt.Sprintf("SELECT session_id, start_time FROM %s ORDER BY session_id DESC LIMIT 1", sessions))
		if err := row.Scan(&status.LastSessionID, &last); err != nil {
			return status, fmt.Errorf("failed to get last session info: %w", err)
		}
		row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY session_id ASC LIMIT 1", sessions))
		if err := row.Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest session time: %w", err)
		}
		status.LastSessionTime = last.Time
		status.OldestSessionTime = oldest.Time
	}

	for _, table := range historyTables {
		var count int64
		row = hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend)))
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllSessions retrieves all training sessions from the store.
func (hs *HistoryStoreImpl) GetAllSessions() ([]schema.TrainingSessionRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT session_id, session_uuid, model_path, start_time, end_time, duration_ms, total_passes, config_params
		FROM %s ORDER BY session_id`, quoteTableName(trainingSessionsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query training sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.TrainingSessionRecord
	for rows.Next() {
		var record schema.TrainingSessionRecord
		var start, end timeScanner
		if err := rows.Scan(&record.SessionID, &record.SessionUUID, &record.ModelPath, &start, &end,
			&record.DurationMs, &record.TotalPasses, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan training session: %w", err)
		}
		record.StartTime = start.Time
		record.EndTime = end.ptr()
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training sessions: %w", err)
	}
	return results, nil
}

// GetAllPassEvaluations retrieves all pass evaluations from the store.
func (hs *HistoryStoreImpl) GetAllPassEvaluations() ([]schema.PassEvaluationRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT session_id, pass, recorded_at, examples, epochs, train_mse,
		model_mean_abs_minutes, model_mean_minutes, baseline_mean_abs_minutes, baseline_mean_minutes
		FROM %s ORDER BY session_id, pass`, quoteTableName(passEvaluationsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pass evaluations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.PassEvaluationRecord
	for rows.Next() {
		var record schema.PassEvaluationRecord
		var recorded timeScanner
		if err := rows.Scan(&record.SessionID, &record.Pass, &recorded, &record.Examples, &record.Epochs, &record.TrainMSE,
			&record.ModelMeanAbsMinutes, &record.ModelMeanMinutes, &record.BaselineMeanAbsMinutes, &record.BaselineMeanMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan pass evaluation: %w", err)
		}
		record.RecordedAt = recorded.Time
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pass evaluations: %w", err)
	}
	return results, nil
}
