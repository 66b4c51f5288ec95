package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/internal/parquet"
	"github.com/huangsam/queuewait/schema"
)

// WriteStatReport outputs a stat report, dispatching based on the output format configured.
func WriteStatReport(report *schema.StatReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, report)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatCSV(w, report, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeStatParquet(report, cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatTable(w, report, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// writeStatParquet writes one row per (estimator, run) pair.
func writeStatParquet(report *schema.StatReport, outputFile string) error {
	if outputFile == "" {
		return errors.New("parquet output requires --output-file")
	}
	rows := parquet.ConvertStatReport(report)
	if err := parquet.WritePredictionsParquet(rows, outputFile); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stderr, "💾 Wrote %d predictions to %s\n", len(rows), outputFile)
	return nil
}

// writeStatCSV writes the report in long form, one row per (estimator, run) pair.
func writeStatCSV(w io.Writer, report *schema.StatReport, fmtFloat func(float64) string) error {
	header := []string{"model", "file", "position", "length", "expected_hours", "hours", "diff_minutes", "band"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		evals := append([]schema.ModelEvaluation{report.Baseline}, report.Models...)
		for _, eval := range evals {
			for i, p := range eval.Predictions {
				point := report.Points[i]
				rec := []string{
					eval.Name,
					p.FilePath,
					strconv.Itoa(int(point.Position)),
					strconv.Itoa(int(point.Length)),
					fmtFloat(point.ExpectedHours),
					fmtFloat(p.Hours),
					fmtFloat(p.DiffMinutes),
					schema.GetErrorBand(p.DiffMinutes),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeStatTable generates the per-run table followed by the summary table.
func writeStatTable(w io.Writer, report *schema.StatReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	headers := []string{"#", "Path", "Pos", "Len", "Actual h", "Baseline h"}
	for _, m := range report.Models {
		headers = append(headers, modelLabel(m.Name)+" h")
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	// 2. Populate Rows
	pathWidth := GetMaxTablePathWidth(cfg, len(report.Models))
	var data [][]string
	for i, p := range report.Points {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(p.FilePath, pathWidth),
			strconv.Itoa(int(p.Position)),
			strconv.Itoa(int(p.Length)),
			fmtFloat(p.ExpectedHours),
			fmtFloat(p.BaselineHours),
		}
		for _, m := range report.Models {
			row = append(row, fmtFloat(m.Predictions[i].Hours))
		}
		data = append(data, row)
	}

	// 3. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	evals := append([]schema.ModelEvaluation{report.Baseline}, report.Models...)
	if err := WriteEvaluationSummary(w, evals, cfg); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Evaluated %d runs from %s (%d skipped) in %v with %d workers. Cache backend: %s\n",
		len(report.Points), report.DataDir, report.Skipped, duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// WriteEvaluationSummary writes the abs/avg error of every estimator as a table.
func WriteEvaluationSummary(w io.Writer, evals []schema.ModelEvaluation, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Model", "Abs min", "Avg min", "Band"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, e := range evals {
		data = append(data, []string{
			modelLabel(e.Name),
			fmtFloat(e.MeanAbsMinutes),
			fmtFloat(e.MeanMinutes),
			bandLabel(cfg, e.MeanAbsMinutes),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// modelLabel shortens a model path to its file name.
func modelLabel(name string) string {
	if name == schema.BaselineModel {
		return name
	}
	return filepath.Base(name)
}
