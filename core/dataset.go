package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/huangsam/queuewait/core/algo"
	"github.com/huangsam/queuewait/core/ingest"
	"github.com/huangsam/queuewait/internal/contract"
	"github.com/huangsam/queuewait/schema"
)

// ErrNoRuns is returned when a data directory holds no usable run.
var ErrNoRuns = errors.New("no usable runs found")

// dataset is the windowed content of a data directory.
// Paths and Windows are parallel slices in directory order.
type dataset struct {
	Paths   []string
	Windows []*algo.RunWindow
	Skipped int
}

// loadDataset loads every entry of cfg.DataDir and windows the usable runs.
// Entries that fail are skipped, with a warning when verbose.
func loadDataset(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*dataset, error) {
	results, err := loadResults(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}

	ds := &dataset{}
	for _, res := range results {
		if !res.OK() {
			ds.skip(cfg, "Skipping entry", res.Err)
			continue
		}
		window, err := algo.NewRunWindow(*res.Run)
		if err != nil {
			ds.skip(cfg, "Skipping run", fmt.Errorf("%s: %w", res.Path, err))
			continue
		}
		ds.Paths = append(ds.Paths, res.Path)
		ds.Windows = append(ds.Windows, window)
	}

	if len(ds.Windows) == 0 {
		return nil, fmt.Errorf("%s: %w", cfg.DataDir, ErrNoRuns)
	}
	return ds, nil
}

func (ds *dataset) skip(cfg *contract.Config, msg string, err error) {
	ds.Skipped++
	if cfg.Verbose {
		contract.LogWarn(msg, err)
	}
}

// loadResults returns one load result per directory entry, in name order.
func loadResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.LoadResult, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetRunStore()
	}

	// Nothing to gain from goroutines or the cache, so read the directory in place
	if store == nil && cfg.Workers <= 1 {
		seq, err := ingest.LoadDir(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		var results []schema.LoadResult
		for res := range seq {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results = append(results, res)
		}
		return results, nil
	}

	paths, err := ingest.EntryPaths(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	results := make([]schema.LoadResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each goroutine writes to a unique index
			results[i] = cachedLoadPath(store, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// encodeSamples windows and encodes every run using a worker pool.
// Samples keep directory order, then step order within a run.
func encodeSamples(cfg *contract.Config, windows []*algo.RunWindow) []schema.Sample {
	perRun := make([][]schema.Sample, len(windows))
	indexCh := make(chan int, len(windows))
	var wg sync.WaitGroup

	for range max(cfg.Workers, 1) {
		wg.Go(func() {
			for i := range indexCh {
				samples := make([]schema.Sample, 0, windows[i].Len())
				for _, ex := range windows[i].Examples() {
					samples = append(samples, algo.Encode(ex))
				}
				perRun[i] = samples
			}
		})
	}

	for i := range windows {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	total := 0
	for _, s := range perRun {
		total += len(s)
	}
	samples := make([]schema.Sample, 0, total)
	for _, s := range perRun {
		samples = append(samples, s...)
	}
	return samples
}
