package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/internal/parquet"
)

// ExecuteHistoryExport exports the training history to Parquet files.
func ExecuteHistoryExport(outputFile string) error {
	return exportHistory(Manager.GetHistoryStore(), outputFile)
}

func exportHistory(store contract.HistoryStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalSessions == 0 {
		return errors.New("no training history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total training sessions: %d\n", status.TotalSessions)
	fmt.Printf("Total pass records: %d\n", status.TableSizes[passEvaluationsTable])

	sessions, err := store.GetAllSessions()
	if err != nil {
		return fmt.Errorf("failed to retrieve training sessions: %w", err)
	}
	passes, err := store.GetAllPassEvaluations()
	if err != nil {
		return fmt.Errorf("failed to retrieve pass evaluations: %w", err)
	}

	parquetSessions := parquet.ConvertTrainingSessionRecords(sessions)
	parquetPasses := parquet.ConvertPassEvaluationRecords(passes)

	sessionsFile := outputFile + ".training_sessions.parquet"
	if err := parquet.WriteTrainingSessionsParquet(parquetSessions, sessionsFile); err != nil {
		return fmt.Errorf("failed to write training sessions: %w", err)
	}
	fmt.Printf("Exported %d training sessions to: %s\n", len(parquetSessions), sessionsFile)

	passesFile := outputFile + ".pass_evaluations.parquet"
	if err := parquet.WritePassEvaluationsParquet(parquetPasses, passesFile); err != nil {
		return fmt.Errorf("failed to write pass evaluations: %w", err)
	}
	fmt.Printf("Exported %d pass evaluations to: %s\n", len(parquetPasses), passesFile)

	fmt.Println("\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow) or Spark.")
	return nil
}
