// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
)

// OutWriter provides a unified interface for all CLI output operations.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAnalysis prints a single analysis result using the configured output format.
func (ow *OutWriter) WriteAnalysis(result *schema.AnalysisResult, cfg *contract.Config, duration time.Duration) error {
	return PrintAnalysisResult(result, cfg, duration)
}

// WriteRecords prints stored analyses using the configured output format.
func (ow *OutWriter) WriteRecords(records []schema.AnalysisRecord, cfg *contract.Config) error {
	return PrintAnalysisRecords(records, cfg)
}

// WriteSmells prints a smell report using the configured output format.
func (ow *OutWriter) WriteSmells(report schema.SmellReport, cfg *contract.Config) error {
	return PrintSmellReport(report, cfg)
}

// WriteCacheStats prints result cache counters using the configured output format.
func (ow *OutWriter) WriteCacheStats(stats schema.CacheStats, cfg *contract.Config) error {
	return PrintCacheStats(stats, cfg)
}
