// Package core has the analysis orchestrator that ties the result cache,
// the analysis collaborators and the score aggregator together.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/huangsam/codescore/core/score"
	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/internal/ttlcache"
	"github.com/huangsam/codescore/schema"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrAllToolsFailed is returned when every configured collaborator failed for one source.
var ErrAllToolsFailed = errors.New("all analysis tools failed")

// DefaultTTL is how long an analysis result stays cached.
const DefaultTTL = time.Hour

// Analyzer runs collaborators over source text and memoizes the aggregated result.
type Analyzer struct {
	cache       *ttlcache.Cache[*schema.AnalysisResult]
	tools       []contract.Tool
	weights     score.Weights
	ttl         time.Duration
	toolTimeout time.Duration
	predictor   contract.Predictor
	logger      *slog.Logger

	dedupe bool
	flight singleflight.Group
}

var _ contract.CodeAnalyzer = &Analyzer{} // Compile-time check

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWeights overrides the default score weights.
func WithWeights(w score.Weights) Option {
	return func(a *Analyzer) { a.weights = w }
}

// WithTTL overrides how long results stay cached. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(a *Analyzer) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithPredictor attaches a per-call prediction to every result.
func WithPredictor(p contract.Predictor) Option {
	return func(a *Analyzer) { a.predictor = p }
}

// WithSingleFlight makes concurrent misses for the same source share one computation.
func WithSingleFlight(enabled bool) Option {
	return func(a *Analyzer) { a.dedupe = enabled }
}

// WithLogger sets the logger used for degraded collaborators.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithToolTimeout bounds each collaborator run. Zero disables the bound.
func WithToolTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d >= 0 {
			a.toolTimeout = d
		}
	}
}

// NewAnalyzer builds an orchestrator around an injected cache. A nil cache gets a default one.
func NewAnalyzer(cache *ttlcache.Cache[*schema.AnalysisResult], tools []contract.Tool, opts ...Option) *Analyzer {
	if cache == nil {
		cache = ttlcache.New[*schema.AnalysisResult]()
	}
	a := &Analyzer{
		cache:   cache,
		tools:   tools,
		weights: score.DefaultWeights(),
		ttl:     DefaultTTL,
		logger:  contract.DiscardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze returns the scored analysis of source. Identical source within the
// TTL is served from the cache without running the collaborators again.
// The returned result is owned by the caller.
func (a *Analyzer) Analyze(ctx context.Context, source string) (*schema.AnalysisResult, error) {
	key := CacheKey(source)

	result, err := a.lookupOrCompute(ctx, key, source)
	if err != nil {
		return nil, err
	}

	out := result.Clone()
	out.Prediction = nil
	if a.predictor != nil {
		a.attachPrediction(ctx, out, source)
	}
	return out, nil
}

// ClearCache drops every cached result and resets the counters.
func (a *Analyzer) ClearCache() {
	a.cache.Clear()
}

// CacheStats reports the cache counters and occupancy.
func (a *Analyzer) CacheStats() schema.CacheStats {
	s := a.cache.Stats()
	return schema.CacheStats{
		Hits:        s.Hits,
		Misses:      s.Misses,
		Evictions:   s.Evictions,
		CurrentSize: a.cache.Len(),
		MaxSize:     a.cache.MaxSize(),
	}
}

func (a *Analyzer) attachPrediction(ctx context.Context, out *schema.AnalysisResult, source string) {
	pred, err := a.predictor.Predict(ctx, source)
	if err != nil {
		a.logger.Warn("prediction failed", "error", err)
		return
	}
	out.Prediction = &pred
}

// compute runs every collaborator and aggregates their reports into a result.
func (a *Analyzer) compute(ctx context.Context, source string) (*schema.AnalysisResult, error) {
	metrics, err := score.ComputeMetrics(source)
	if err != nil {
		return nil, err
	}

	reports, failures := a.runTools(ctx, source)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}
	if len(a.tools) > 0 && len(failures) == len(a.tools) {
		return nil, fmt.Errorf("%w: %d of %d", ErrAllToolsFailed, len(failures), len(a.tools))
	}

	result := &schema.AnalysisResult{
		StyleIssues:    []schema.Finding{},
		SecurityIssues: []schema.Finding{},
		LintIssues:     []schema.Finding{},
	}
	lintScore, haveLint := 0.0, false
	for _, r := range reports {
		switch r.Kind {
		case schema.StyleTool:
			result.StyleIssues = append(result.StyleIssues, r.Findings...)
		case schema.SecurityTool:
			result.SecurityIssues = append(result.SecurityIssues, r.Findings...)
		case schema.LintTool:
			result.LintIssues = append(result.LintIssues, r.Findings...)
			if r.Score != nil && !haveLint {
				lintScore, haveLint = *r.Score, true
			}
		}
	}
	if len(failures) > 0 {
		result.ToolErrors = failures
	}

	metrics.PylintScore = lintScore
	result.Metrics = metrics
	result.PylintScore = lintScore
	result.ScoreBundle = score.Aggregate(metrics, len(result.SecurityIssues), lintScore, a.weights)
	return result, nil
}

// runTools fans the collaborators out and collects every report in tool order.
// A failed collaborator contributes no report and an entry in the failure map.
func (a *Analyzer) runTools(ctx context.Context, source string) ([]schema.ToolReport, map[string]string) {
	reports := make([]schema.ToolReport, len(a.tools))
	errs := make([]error, len(a.tools))

	g, gCtx := errgroup.WithContext(ctx)
	for i, tool := range a.tools {
		g.Go(func() error {
			toolCtx := gCtx
			if a.toolTimeout > 0 {
				var cancel context.CancelFunc
				toolCtx, cancel = context.WithTimeout(gCtx, a.toolTimeout)
				defer cancel()
			}
			start := time.Now()
			report, err := tool.Run(toolCtx, source)
			if err != nil {
				errs[i] = err
				a.logger.Warn("analysis tool failed",
					"tool", tool.Name(), "duration", time.Since(start), "error", err)
				return nil // a failed tool degrades, it never cancels its siblings
			}
			if report.Kind == "" {
				report.Kind = tool.Kind()
			}
			reports[i] = report
			return nil
		})
	}
	_ = g.Wait()

	var ok []schema.ToolReport
	var failures map[string]string
	for i, tool := range a.tools {
		if errs[i] != nil {
			if failures == nil {
				failures = make(map[string]string)
			}
			failures[tool.Name()] = errs[i].Error()
			continue
		}
		ok = append(ok, reports[i])
	}
	return ok, failures
}
