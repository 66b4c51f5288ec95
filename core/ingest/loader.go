package ingest

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/huangsam/queuewait/schema"
)

// ErrIsDirectory is reported for sub-directories found while loading a directory.
var ErrIsDirectory = errors.New("entry is a directory")

// LoadFile parses a single observation log and checks that it can be windowed.
func LoadFile(path string) (schema.Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.Run{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	run, err := ParseRun(f)
	if err != nil {
		return schema.Run{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(run.Subsequent) == 0 {
		return schema.Run{}, fmt.Errorf("parse %s: %w", path, schema.ErrEmptyRun)
	}
	return run, nil
}

// LoadDir lists dir and yields one result per entry in name order.
// Only the listing itself can fail; per-entry failures are yielded as results.
func LoadDir(dir string) (iter.Seq[schema.LoadResult], error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	return func(yield func(schema.LoadResult) bool) {
		for _, entry := range entries {
			if !yield(loadEntry(dir, entry)) {
				return
			}
		}
	}, nil
}

// EntryPaths lists dir and returns the path of every entry in name order.
func EntryPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

func loadEntry(dir string, entry os.DirEntry) schema.LoadResult {
	path := filepath.Join(dir, entry.Name())
	if entry.IsDir() {
		return schema.LoadResult{Path: path, Err: fmt.Errorf("%s: %w", path, ErrIsDirectory)}
	}
	return LoadPath(path)
}

// LoadPath loads one file into a tagged result.
func LoadPath(path string) schema.LoadResult {
	run, err := LoadFile(path)
	if err != nil {
		return schema.LoadResult{Path: path, Err: err}
	}
	return schema.LoadResult{Path: path, Run: &run}
}

// Successes keeps only the results that carry a run.
func Successes(results iter.Seq[schema.LoadResult]) iter.Seq[schema.LoadResult] {
	return func(yield func(schema.LoadResult) bool) {
		for res := range results {
			if res.OK() && !yield(res) {
				return
			}
		}
	}
}
