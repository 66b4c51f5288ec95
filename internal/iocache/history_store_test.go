package iocache

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/queuewait/schema"
)

func newTestHistoryStore(t *testing.T, path string) *HistoryStoreImpl {
	t.Helper()
	store, err := NewHistoryStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*HistoryStoreImpl)
}

func samplePass(pass int, at time.Time) schema.PassEvaluation {
	return schema.PassEvaluation{
		Pass:                   pass,
		RecordedAt:             at,
		Examples:               120,
		Epochs:                 5000,
		TrainMSE:               0.0125,
		ModelMeanAbsMinutes:    14.5,
		ModelMeanMinutes:       -3.25,
		BaselineMeanAbsMinutes: 21,
		BaselineMeanMinutes:    6.5,
	}
}

func TestHistoryStoreSession(t *testing.T) {
	store := newTestHistoryStore(t, filepath.Join(t.TempDir(), "history.db"))
	start := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)

	params := map[string]any{"data_dir": "/data/queue", "runs": 12}
	id, err := store.BeginSession(start, "models/10-4-1.json", params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.NoError(t, store.RecordPass(id, samplePass(1, start.Add(time.Minute))))
	require.NoError(t, store.RecordPass(id, samplePass(2, start.Add(2*time.Minute))))
	assert.Error(t, store.RecordPass(id, samplePass(2, start)), "duplicate pass")

	end := start.Add(90 * time.Second)
	require.NoError(t, store.EndSession(id, end, 2))

	sessions, err := store.GetAllSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	session := sessions[0]
	assert.Equal(t, id, session.SessionID)
	assert.Len(t, session.SessionUUID, 36)
	assert.Equal(t, "models/10-4-1.json", session.ModelPath)
	assert.True(t, start.Equal(session.StartTime))
	require.NotNil(t, session.EndTime)
	assert.True(t, end.Equal(*session.EndTime))
	require.NotNil(t, session.DurationMs)
	assert.Equal(t, int64(90000), *session.DurationMs)
	assert.Equal(t, int32(2), session.TotalPasses)
	require.NotNil(t, session.ConfigParams)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(*session.ConfigParams), &decoded))
	assert.Equal(t, "/data/queue", decoded["data_dir"])

	passes, err := store.GetAllPassEvaluations()
	require.NoError(t, err)
	require.Len(t, passes, 2)
	assert.Equal(t, int32(1), passes[0].Pass)
	assert.Equal(t, int32(2), passes[1].Pass)
	assert.Equal(t, id, passes[1].SessionID)
	assert.Equal(t, int32(120), passes[1].Examples)
	assert.Equal(t, int64(5000), passes[1].Epochs)
	assert.InDelta(t, 0.0125, passes[1].TrainMSE, 1e-12)
	assert.InDelta(t, -3.25, passes[1].ModelMeanMinutes, 1e-12)
	assert.True(t, start.Add(2*time.Minute).Equal(passes[1].RecordedAt))
}

func TestHistoryStoreOpenSession(t *testing.T) {
	store := newTestHistoryStore(t, filepath.Join(t.TempDir(), "history.db"))
	start := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)

	_, err := store.BeginSession(start, "model.json", nil)
	require.NoError(t, err)

	sessions, err := store.GetAllSessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Nil(t, sessions[0].EndTime)
	assert.Nil(t, sessions[0].DurationMs)
	assert.Zero(t, sessions[0].TotalPasses)

	assert.Error(t, store.EndSession(99, start, 1), "unknown session")
}

func TestHistoryStoreStatus(t *testing.T) {
	store := newTestHistoryStore(t, filepath.Join(t.TempDir(), "history.db"))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Zero(t, status.TotalSessions)
	assert.Equal(t, map[string]int64{trainingSessionsTable: 0, passEvaluationsTable: 0}, status.TableSizes)

	first := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	second := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

	id1, err := store.BeginSession(first, "a.json", nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordPass(id1, samplePass(1, first)))
	require.NoError(t, store.EndSession(id1, first.Add(time.Hour), 1))

	id2, err := store.BeginSession(second, "b.json", nil)
	require.NoError(t, err)
	require.NoError(t, store.RecordPass(id2, samplePass(1, second)))
	require.NoError(t, store.RecordPass(id2, samplePass(2, second)))
	require.NoError(t, store.EndSession(id2, second.Add(time.Hour), 2))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalSessions)
	assert.Equal(t, 3, status.TotalPasses)
	assert.Equal(t, id2, status.LastSessionID)
	assert.True(t, second.Equal(status.LastSessionTime))
	assert.True(t, first.Equal(status.OldestSessionTime))
	assert.Equal(t, int64(2), status.TableSizes[trainingSessionsTable])
	assert.Equal(t, int64(3), status.TableSizes[passEvaluationsTable])
}

func TestHistoryStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	start := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)

	first, err := NewHistoryStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	_, err = first.BeginSession(start, "model.json", nil)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := newTestHistoryStore(t, path)
	sessions, err := second.GetAllSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestHistoryStoreNoneBackend(t *testing.T) {
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)

	id, err := store.BeginSession(time.Now(), "model.json", nil)
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.NoError(t, store.RecordPass(id, samplePass(1, time.Now())))
	assert.NoError(t, store.EndSession(id, time.Now(), 1))

	sessions, err := store.GetAllSessions()
	assert.NoError(t, err)
	assert.Empty(t, sessions)
	passes, err := store.GetAllPassEvaluations()
	assert.NoError(t, err)
	assert.Empty(t, passes)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestHistorySchemaPerBackend(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		marker  string
	}{
		{schema.SQLiteBackend, "AUTOINCREMENT"},
		{schema.MySQLBackend, "AUTO_INCREMENT"},
		{schema.PostgreSQLBackend, "BIGSERIAL"},
	}
	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			statements, err := historySchema(tt.backend)
			require.NoError(t, err)
			require.Len(t, statements, 2)
			assert.Contains(t, statements[0], trainingSessionsTable)
			assert.Contains(t, statements[0], tt.marker)
			assert.Contains(t, statements[1], passEvaluationsTable)
		})
	}
}
