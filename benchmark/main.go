// Package main provides a performance benchmarking tool for the codescore analyzer.
// It measures analysis times over every Python file in a directory, comparing
// runs with the result cache cleared against a cold first run and warm cached runs,
// and writes CSV output for performance analysis and documentation.
//
// Usage: go run benchmark/main.go [source-dir]
//
//	source-dir: Directory containing Python files to analyze
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/codescore/core"
	"github.com/huangsam/codescore/core/tools"
	"github.com/huangsam/codescore/internal/contract"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	File        string
	Lines       int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	SourceDir   string
	MaxFiles    int
	NoCacheRuns int
	CacheRuns   int
	Predict     bool
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [source-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		SourceDir:   os.Args[1],
		MaxFiles:    50,
		NoCacheRuns: 3,
		CacheRuns:   5,
		Predict:     true,
	}

	files, err := collectFiles(config)
	if err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config, files)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// collectFiles finds up to MaxFiles Python files under the source directory
func collectFiles(config BenchmarkConfig) ([]string, error) {
	if _, err := os.Stat(config.SourceDir); err != nil {
		return nil, fmt.Errorf("source directory %s not found: %w", config.SourceDir, err)
	}

	var files []string
	err := filepath.WalkDir(config.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), ".") && path != config.SourceDir {
			return filepath.SkipDir
		}
		if !d.IsDir() && strings.HasSuffix(path, ".py") {
			files = append(files, path)
			if len(files) >= config.MaxFiles {
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Python files found under %s", config.SourceDir)
	}
	return files, nil
}

// newAnalyzer builds the same analyzer the server uses, with its own cache
func newAnalyzer(config BenchmarkConfig) *core.Analyzer {
	detector := tools.NewSmellDetector()
	opts := []core.Option{
		core.WithToolTimeout(contract.DefaultToolTimeout),
		core.WithSingleFlight(true),
	}
	if config.Predict {
		opts = append(opts, core.WithPredictor(tools.NewSmellPredictor(detector)))
	}
	return core.NewAnalyzer(nil, []contract.Tool{
		tools.NewLinter(),
		tools.NewStyleChecker(),
		tools.NewSecurityScanner(),
	}, opts...)
}

// runBenchmarks executes the benchmark suite for every file
func runBenchmarks(config BenchmarkConfig, files []string) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d files, no-cache: %d runs, cache: %d runs\n",
		len(files), config.NoCacheRuns, config.CacheRuns)

	analyzer := newAnalyzer(config)
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", file, err)
			continue
		}
		rel, _ := filepath.Rel(config.SourceDir, file)
		results = append(results, runBenchmarkSuite(config, analyzer, rel, string(data)))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for one file
func runBenchmarkSuite(config BenchmarkConfig, analyzer *core.Analyzer, file, source string) BenchmarkResult {
	// Phase 1: every run misses because the cache is cleared first
	_, noCacheTimes := runBenchmark(analyzer, source, config.NoCacheRuns, true)

	// Phase 2: the first run fills the cache and the rest are served from it
	analyzer.ClearCache()
	coldTime, warmTimes := runBenchmark(analyzer, source, config.CacheRuns, false)

	coldTimeStr := "FAILED"
	if coldTime > 0 {
		coldTimeStr = formatSeconds(coldTime)
	}

	result := BenchmarkResult{
		File:        file,
		Lines:       strings.Count(source, "\n") + 1,
		NoCacheTime: average(noCacheTimes),
		ColdTime:    coldTimeStr,
		WarmTime:    average(warmTimes),
	}
	fmt.Printf("  %s: No-cache average: %s, Cold time: %s, Warm average: %s\n",
		file, result.NoCacheTime, result.ColdTime, result.WarmTime)
	return result
}

// runBenchmark analyzes source numRuns times and returns the first time and the remaining times.
// With clearFirst set, every time is returned as a warm time.
func runBenchmark(analyzer *core.Analyzer, source string, numRuns int, clearFirst bool) (coldTime float64, warmTimes []float64) {
	var times []float64
	for range numRuns {
		if clearFirst {
			analyzer.ClearCache()
		}
		start := time.Now()
		if _, err := analyzer.Analyze(context.Background(), source); err != nil {
			continue
		}
		times = append(times, time.Since(start).Seconds())
	}

	if clearFirst {
		return 0, times
	}
	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return coldTime, warmTimes
}

func average(times []float64) string {
	if len(times) == 0 {
		return "FAILED"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return formatSeconds(sum / float64(len(times)))
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.6fs", s)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("codescore_benchmark_%s.csv", timestamp))

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

	if err := writer.Write([]string{"file", "lines", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.File, fmt.Sprint(result.Lines), result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete: %d files\n", len(results))
	for _, result := range results {
		fmt.Printf("  %-40s %5d lines  No-cache: %s, Cold: %s, Warm: %s\n",
			result.File, result.Lines, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
