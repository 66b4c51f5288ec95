package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/schema"
)

// WriteEstimateResult outputs a live estimate, dispatching based on the output format configured.
func WriteEstimateResult(result *schema.EstimateResult, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.YAMLOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeYAML(w, result)
		}, "Wrote YAML")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEstimateCSV(w, result, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errors.New("parquet output is not supported for estimates")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEstimateTable(w, result, fmtFloat)
		}, "Wrote table")
	}
}

func writeEstimateCSV(w io.Writer, result *schema.EstimateResult, fmtFloat func(float64) string) error {
	header := []string{"model", "position", "length", "hours"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		pos, length := fmt.Sprint(result.Position), fmt.Sprint(result.Length)
		if err := cw.Write([]string{schema.BaselineModel, pos, length, fmtFloat(result.BaselineHours)}); err != nil {
			return err
		}
		for _, m := range result.Models {
			if err := cw.Write([]string{m.Name, pos, length, fmtFloat(m.Hours)}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeEstimateTable(w io.Writer, result *schema.EstimateResult, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "Position %d of %d (survival %.10f)\n", result.Position, result.Length, result.Survival); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Model", "Hours", "Minutes"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := [][]string{{schema.BaselineModel, fmtFloat(result.BaselineHours), fmtFloat(result.BaselineHours * 60)}}
	for _, m := range result.Models {
		data = append(data, []string{modelLabel(m.Name), fmtFloat(m.Hours), fmtFloat(m.Hours * 60)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
