package core

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/internal/nn"
	"github.com/huangsam/queuewait/internal/outwriter"
	"github.com/huangsam/queuewait/schema"
)

// saveFunc persists a model after each pass.
type saveFunc func(contract.Model) error

// ExecuteTrain trains one model over a data directory, saving it in place after every pass.
// Cancelling ctx ends the current pass early; the model is still saved.
func ExecuteTrain(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if len(cfg.ModelPaths) != 1 {
		return fmt.Errorf("train requires exactly one model (received %d)", len(cfg.ModelPaths))
	}
	path := cfg.ModelPaths[0]
	net, err := nn.Load(path)
	if err != nil {
		return err
	}

	if !shouldSuppressHeader(ctx) {
		logDataHeader(cfg)
		fmt.Printf("🏋️ Halt: %s (rate %g, momentum %g, loop %t)\n",
			cfg.Train.Halt, cfg.Train.Rate, cfg.Train.Momentum, cfg.Train.Loop)
	}

	ds, err := loadDataset(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	save := func(m contract.Model) error { return nn.Save(m, path) }
	_, err = trainModel(ctx, cfg, mgr, NamedModel{Name: path, Model: net}, ds, save)
	return err
}

// trainModel runs training passes until the loop settings or ctx stop it.
// It returns the number of completed passes.
func trainModel(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, model NamedModel, ds *dataset, save saveFunc) (int, error) {
	samples := encodeSamples(cfg, ds.Windows)
	points := buildReportPoints(ds)

	// --- 0. Begin Session Tracking (if configured) ---
	var history contract.HistoryStore
	if mgr != nil {
		history = mgr.GetHistoryStore()
	}
	if history != nil {
		params := maps.Clone(cfg.Train.Params)
		if params == nil {
			params = map[string]any{}
		}
		params["data_dir"] = cfg.DataDir
		params["runs"] = len(ds.Windows)
		params["examples"] = len(samples)

		sessionID, err := history.BeginSession(time.Now(), model.Name, params)
		if err != nil {
			contract.LogWarn("Training history initialization failed", err)
		} else if sessionID > 0 {
			ctx = withSessionID(ctx, sessionID)
		}
	}

	passes := 0
	for {
		// --- 1. Evaluate before the pass ---
		if cfg.Train.Logging {
			if err := logEvaluation(cfg, points, model); err != nil {
				endSession(ctx, history, passes)
				return passes, err
			}
		}

		// --- 2. Train ---
		summary, err := runPass(ctx, cfg, model.Model, samples, passes+1)
		interrupted := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		if err != nil && !interrupted {
			endSession(ctx, history, passes)
			return passes, err
		}
		passes++

		// --- 3. Save and record ---
		if err := save(model.Model); err != nil {
			endSession(ctx, history, passes)
			return passes, fmt.Errorf("failed to save %s: %w", model.Name, err)
		}
		recordPass(ctx, history, model, points, passes, len(samples), summary)
		fmt.Printf("Pass %d: %d epochs in %v, mse %.6f, saved %s\n",
			passes, summary.Epochs, summary.Elapsed.Round(time.Millisecond), summary.MSE, model.Name)

		if interrupted || !cfg.Train.Loop || (cfg.Train.Iterations > 0 && passes >= cfg.Train.Iterations) {
			break
		}
	}

	// --- 4. End Session Tracking ---
	endSession(ctx, history, passes)
	return passes, nil
}

// runPass trains once, reporting progress on stderr.
func runPass(ctx context.Context, cfg *contract.Config, model contract.Model, samples []schema.Sample, pass int) (schema.TrainSummary, error) {
	bar := newPassBar(cfg.Train, pass)
	opts := schema.TrainOptions{
		Halt:        cfg.Train.Halt,
		Momentum:    cfg.Train.Momentum,
		Rate:        cfg.Train.Rate,
		LogInterval: max(cfg.Train.LogErrRate, 1),
		OnProgress: func(p schema.TrainProgress) {
			if cfg.Train.LogErrRate > 0 {
				bar.Describe(fmt.Sprintf("pass %d mse %.6f", pass, p.MSE))
			}
			_ = bar.Set64(int64(p.Epoch))
		},
	}
	summary, err := model.Train(ctx, samples, opts)
	_ = bar.Finish()
	return summary, err
}

// newPassBar returns a bounded bar for epoch halting and a spinner otherwise.
func newPassBar(tc contract.TrainConfig, pass int) *progressbar.ProgressBar {
	total := int64(-1)
	if tc.Halt.Kind == schema.HaltEpochs {
		total = int64(tc.Halt.Epochs)
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(fmt.Sprintf("pass %d", pass)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// logEvaluation prints the error of the model and the baseline on stdout.
func logEvaluation(cfg *contract.Config, points []schema.ReportPoint, model NamedModel) error {
	baseline, evals, err := Evaluate(points, []NamedModel{model})
	if err != nil {
		return err
	}
	return outwriter.WriteEvaluationSummary(os.Stdout, append(evals, baseline), cfg)
}

// recordPass stores the evaluation taken after a pass in the history store.
func recordPass(ctx context.Context, history contract.HistoryStore, model NamedModel, points []schema.ReportPoint, pass, examples int, summary schema.TrainSummary) {
	sessionID, ok := getSessionID(ctx)
	if history == nil || !ok {
		return
	}

	baseline, evals, err := Evaluate(points, []NamedModel{model})
	if err != nil {
		contract.LogWarn("Training history evaluation failed", err)
		return
	}
	eval := schema.PassEvaluation{
		Pass:                   pass,
		RecordedAt:             time.Now(),
		Examples:               examples,
		Epochs:                 summary.Epochs,
		TrainMSE:               summary.MSE,
		ModelMeanAbsMinutes:    evals[0].MeanAbsMinutes,
		ModelMeanMinutes:       evals[0].MeanMinutes,
		BaselineMeanAbsMinutes: baseline.MeanAbsMinutes,
		BaselineMeanMinutes:    baseline.MeanMinutes,
	}
	if err := history.RecordPass(sessionID, eval); err != nil {
		contract.LogWarn(fmt.Sprintf("Training history failed for pass %d", pass), err)
	}
}

// endSession finalizes the session, if one was started.
func endSession(ctx context.Context, history contract.HistoryStore, passes int) {
	sessionID, ok := getSessionID(ctx)
	if history == nil || !ok {
		return
	}
	if err := history.EndSession(sessionID, time.Now(), passes); err != nil {
		contract.LogWarn("Failed to finalize training history", err)
	}
}
