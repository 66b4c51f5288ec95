// Package core has the orchestration of queuewait: loading runs, evaluating
// estimators, training models and exporting examples.
package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/queuewait/core/algo"
	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/internal/nn"
	"github.com/huangsam/queuewait/internal/outwriter"
	"github.com/huangsam/queuewait/internal/parquet"
	"github.com/huangsam/queuewait/schema"
)

// ExecutorFunc defines the function signature for executing a command.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteStat compares the baseline and the given models over a data directory
// and prints the report.
func ExecuteStat(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	report, duration, err := GetStatResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteStatReport(report, cfg, duration)
}

// GetStatResults builds the stat report without printing it.
func GetStatResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.StatReport, time.Duration, error) {
	start := time.Now()
	if !shouldSuppressHeader(ctx) && cfg.Output == schema.TextOut {
		logDataHeader(cfg)
	}

	models, err := loadModels(cfg.ModelPaths)
	if err != nil {
		return nil, 0, err
	}
	ds, err := loadDataset(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}

	points := buildReportPoints(ds)
	baseline, evals, err := Evaluate(points, models)
	if err != nil {
		return nil, 0, err
	}
	return &schema.StatReport{
		DataDir:  cfg.DataDir,
		Points:   points,
		Models:   evals,
		Baseline: baseline,
		Skipped:  ds.Skipped,
	}, time.Since(start), nil
}

// ExecuteEstimate prints the estimated wait for a live queue position.
func ExecuteEstimate(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, err := GetEstimateResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteEstimateResult(result, cfg)
}

// GetEstimateResults estimates the wait of a session that starts now.
func GetEstimateResults(_ context.Context, cfg *contract.Config, _ contract.CacheManager) (*schema.EstimateResult, error) {
	models, err := loadModels(cfg.ModelPaths)
	if err != nil {
		return nil, err
	}
	return estimate(time.Now(), cfg.Position, cfg.Length, models)
}

// estimate answers for a session observed once at now, at the given position.
func estimate(now time.Time, position, length uint16, models []NamedModel) (*schema.EstimateResult, error) {
	ms := uint64(now.UnixMilli())
	ex := schema.TrainingExample{
		StartTime:       ms,
		StartPosition:   position,
		StartLength:     length,
		CurrentTime:     ms,
		CurrentPosition: position,
		CurrentLength:   length,
	}
	inputs := algo.EncodeInputs(ex)

	result := &schema.EstimateResult{
		Position:      position,
		Length:        length,
		Survival:      algo.Survival(length),
		BaselineHours: algo.EstimateHours(position, length),
	}
	for _, m := range models {
		hours, err := predictHours(m.Model, inputs)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", m.Name, err)
		}
		result.Models = append(result.Models, schema.ModelEstimate{Name: m.Name, Hours: hours})
	}
	return result, nil
}

// ExecuteNew creates a freshly initialized model file.
func ExecuteNew(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	path := cfg.New.Path
	if path == "" {
		return errors.New("model path is required")
	}

	_, err := os.Stat(path)
	switch {
	case err == nil && !cfg.New.Force:
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	net, err := nn.New(cfg.New.Layers)
	if err != nil {
		return err
	}
	if err := nn.Save(net, path); err != nil {
		return err
	}

	fmt.Printf("created model %s with layers %s\n", path, schema.FormatLayers(net.Layers()))
	return nil
}

// ExecuteExport writes every windowed and encoded example of a data directory to Parquet.
func ExecuteExport(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if cfg.OutputFile == "" {
		return errors.New("export requires --output-file")
	}

	ds, err := loadDataset(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	rows := buildExportRows(ds)
	if err := parquet.WriteTrainingExamplesParquet(rows, cfg.OutputFile); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote %d training examples from %d runs to %s (%d skipped)\n",
		len(rows), len(ds.Windows), cfg.OutputFile, ds.Skipped)
	return nil
}

// buildExportRows flattens the dataset into one row per example.
func buildExportRows(ds *dataset) []parquet.TrainingExample {
	var rows []parquet.TrainingExample
	for i, w := range ds.Windows {
		for step, ex := range w.Examples() {
			rows = append(rows, parquet.ConvertTrainingExample(ds.Paths[i], step, ex, algo.Encode(ex)))
		}
	}
	return rows
}
