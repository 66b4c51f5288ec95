package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/huangsam/queuewait/core/algo"
	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/internal/nn"
	"github.com/huangsam/queuewait/schema"
)

// outputEpsilon keeps decoded predictions finite when a model saturates.
const outputEpsilon = 1e-12

// ErrNonFiniteOutput is returned when a model answers NaN or an infinity,
// which happens once its weights have diverged.
var ErrNonFiniteOutput = errors.New("model output is not finite")

// NamedModel pairs a model with the name it is reported under.
type NamedModel struct {
	Name  string
	Model contract.Model
}

// loadModels reads every model file, in argument order.
func loadModels(paths []string) ([]NamedModel, error) {
	models := make([]NamedModel, 0, len(paths))
	for _, path := range paths {
		net, err := nn.Load(path)
		if err != nil {
			return nil, err
		}
		models = append(models, NamedModel{Name: path, Model: net})
	}
	return models, nil
}

// BuildReportPoint describes a run by the example that windows its start
// against its end.
func BuildReportPoint(path string, window *algo.RunWindow) schema.ReportPoint {
	ex := window.StartExample()
	return schema.ReportPoint{
		FilePath:      path,
		Position:      ex.StartPosition,
		Length:        ex.StartLength,
		Inputs:        algo.EncodeInputs(ex),
		ExpectedHours: float64(ex.ElapsedMs) / 3_600_000,
		BaselineHours: algo.EstimateHours(ex.StartPosition, ex.StartLength),
	}
}

// buildReportPoints builds one point per run of the dataset.
func buildReportPoints(ds *dataset) []schema.ReportPoint {
	points := make([]schema.ReportPoint, len(ds.Windows))
	for i, w := range ds.Windows {
		points[i] = BuildReportPoint(ds.Paths[i], w)
	}
	return points
}

// Evaluate scores the baseline and every model against the points.
// Differences are signed, in minutes, prediction minus actual.
func Evaluate(points []schema.ReportPoint, models []NamedModel) (schema.ModelEvaluation, []schema.ModelEvaluation, error) {
	baseline := make([]schema.PointPrediction, len(points))
	for i, p := range points {
		baseline[i] = newPrediction(p, p.BaselineHours)
	}

	evals := make([]schema.ModelEvaluation, 0, len(models))
	for _, m := range models {
		preds := make([]schema.PointPrediction, len(points))
		for i, p := range points {
			hours, err := predictHours(m.Model, p.Inputs)
			if err != nil {
				return schema.ModelEvaluation{}, nil, fmt.Errorf("model %s on %s: %w", m.Name, p.FilePath, err)
			}
			preds[i] = newPrediction(p, hours)
		}
		evals = append(evals, summarize(m.Name, preds))
	}
	return summarize(schema.BaselineModel, baseline), evals, nil
}

// predictHours runs the model and decodes its single output into hours.
func predictHours(model contract.Model, inputs []float64) (float64, error) {
	out, err := model.Run(inputs)
	if err != nil {
		return 0, err
	}
	if len(out) != schema.TargetCount {
		return 0, fmt.Errorf("%w: got %d outputs, want %d", nn.ErrShape, len(out), schema.TargetCount)
	}
	if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		return 0, fmt.Errorf("%w: %v", ErrNonFiniteOutput, out[0])
	}
	y := math.Min(math.Max(out[0], outputEpsilon), 1-outputEpsilon)
	return algo.DecodeHours(y), nil
}

func newPrediction(p schema.ReportPoint, hours float64) schema.PointPrediction {
	return schema.PointPrediction{
		FilePath:    p.FilePath,
		Hours:       hours,
		DiffMinutes: (hours - p.ExpectedHours) * 60,
	}
}

// summarize computes the mean absolute and mean signed difference.
func summarize(name string, preds []schema.PointPrediction) schema.ModelEvaluation {
	eval := schema.ModelEvaluation{Name: name, Predictions: preds}
	if len(preds) == 0 {
		return eval
	}
	var absSum, sum float64
	for _, p := range preds {
		absSum += math.Abs(p.DiffMinutes)
		sum += p.DiffMinutes
	}
	n := float64(len(preds))
	eval.MeanAbsMinutes = absSum / n
	eval.MeanMinutes = sum / n
	return eval
}
