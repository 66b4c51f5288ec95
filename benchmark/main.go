// Package main provides a performance benchmarking tool for the queuewait CLI.
// It generates synthetic data directories of different sizes, runs each command
// multiple times, treating the first successful cached run as cold and averaging
// the rest as warm, and writes CSV output for performance analysis.
//
// Prerequisites:
// - queuewait binary installed and available in PATH
//
// Usage: go run benchmark/main.go [data-base-dir]
//
//	data-base-dir: Directory where the synthetic data sets are generated
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	DataSet     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DataBase    string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	DataSets    map[string]int // name -> number of run files
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [data-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		DataBase:    os.Args[1],
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		DataSets: map[string]int{
			"small":  100,
			"medium": 1000,
			"large":  5000,
		},
	}

	if _, err := exec.LookPath("queuewait"); err != nil {
		fmt.Printf("Prerequisites check failed: queuewait binary not found in PATH\n")
		os.Exit(1)
	}

	for name, runs := range config.DataSets {
		dir := filepath.Join(config.DataBase, name)
		if err := generateDataSet(dir, runs); err != nil {
			fmt.Printf("Failed to generate %s data set: %v\n", name, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("queuewait", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// generateDataSet writes n synthetic run logs that drain to the front of the queue.
func generateDataSet(dir string, n int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	rng := rand.New(rand.NewPCG(uint64(n), 42))
	for i := range n {
		length := 50 + rng.IntN(800)
		position := 1 + rng.IntN(length)
		t := int64(1_700_000_000_000) + int64(i)*3_600_000

		var b strings.Builder
		b.WriteString("time,position,length\n")
		for position > 0 {
			fmt.Fprintf(&b, "%d,%d,%d\n", t, position, length)
			t += int64(30_000 + rng.IntN(90_000))
			position -= 1 + rng.IntN(10)
		}
		fmt.Fprintf(&b, "%d,0,%d\n", t, length)

		path := filepath.Join(dir, fmt.Sprintf("run_%05d.csv", i))
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// runBenchmarks executes all benchmark tests across configured data sets
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d data sets, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.DataSets), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, name := range []string{"small", "medium", "large"} {
		if _, ok := config.DataSets[name]; !ok {
			continue
		}
		fmt.Printf("Benchmarking %s\n", name)
		dataDir := filepath.Join(config.DataBase, name)

		results = append(results, runBenchmarkSuite(config, name, "stat", []string{"stat", dataDir}))

		out := filepath.Join(os.TempDir(), fmt.Sprintf("queuewait_bench_%s.parquet", name))
		results = append(results, runBenchmarkSuite(config, name, "export",
			[]string{"export", dataDir, "--output-file", out}))
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataSet, command string, args []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, dataSet)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, args, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		DataSet:     dataSet,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a queuewait command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command string, baseArgs []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, baseArgs...)
	args = append(args, "--cache-backend", cacheBackend, "--workers", fmt.Sprint(config.Workers))

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "queuewait", args...).CombinedOutput()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && isSuccess(output, command) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)
	if command == "export" {
		return strings.Contains(outputStr, "Wrote") && strings.Contains(outputStr, "training examples")
	}
	return strings.Contains(outputStr, "Evaluated") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("queuewait_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"data_set", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.DataSet, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "stat", "Stat:")
	printCommandSummary(results, "export", "Export:")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.DataSet, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
