package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
	"golang.org/x/sync/errgroup"
)

// Delivery outcomes reported in Result.Status.
const (
	StatusSuccess = "success" // every file analyzed and stored
	StatusPartial = "partial" // at least one file failed
	StatusIgnored = "ignored" // not a push event
	StatusSkipped = "skipped" // push acknowledged without analysis
)

// DefaultFileConcurrency bounds how many files of one push are analyzed at once.
const DefaultFileConcurrency = 4

// Result is the JSON body returned for a delivery.
type Result struct {
	Status     string                  `json:"status"`
	Event      string                  `json:"event,omitempty"`
	Reason     string                  `json:"reason,omitempty"`
	Repository string                  `json:"repository,omitempty"`
	Commit     string                  `json:"commit,omitempty"`
	Analyses   []schema.AnalysisRecord `json:"analyses,omitempty"`
	Errors     map[string]string       `json:"errors,omitempty"`
}

// Processor turns push deliveries into stored analyses.
type Processor struct {
	analyzer    contract.CodeAnalyzer
	store       contract.AnalysisStore
	fetcher     contract.SourceFetcher
	logger      *slog.Logger
	concurrency int
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithLogger sets the processor logger.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithFileConcurrency bounds concurrent file analyses per push.
func WithFileConcurrency(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewProcessor creates a Processor. A nil fetcher makes every push a skipped delivery.
func NewProcessor(analyzer contract.CodeAnalyzer, store contract.AnalysisStore, fetcher contract.SourceFetcher, opts ...ProcessorOption) *Processor {
	p := &Processor{
		analyzer:    analyzer,
		store:       store,
		fetcher:     fetcher,
		logger:      contract.DiscardLogger(),
		concurrency: DefaultFileConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle processes one verified delivery. Only a malformed push payload is an error;
// per-file failures are reported in Result.Errors.
func (p *Processor) Handle(ctx context.Context, event string, payload []byte) (Result, error) {
	if event != "push" {
		return Result{Status: StatusIgnored, Event: event}, nil
	}

	push, err := ParsePushEvent(payload)
	if err != nil {
		return Result{}, err
	}
	res := Result{Status: StatusSkipped, Event: event, Repository: push.Repository.FullName}
	if push.HeadCommit == nil {
		res.Reason = "push has no head commit"
		return res, nil
	}
	res.Commit = push.HeadCommit.ID
	if p.fetcher == nil {
		res.Reason = "no source fetcher configured"
		return res, nil
	}

	files := push.PythonFiles()
	if len(files) == 0 {
		res.Reason = "no python files changed"
		return res, nil
	}

	logger := p.logger.With("repository", res.Repository, "commit", res.Commit)
	records := make([]*schema.AnalysisRecord, len(files))
	var mu sync.Mutex
	failures := make(map[string]string)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, path := range files {
		g.Go(func() error {
			rec, err := p.analyzeFile(gctx, push, path)
			if err != nil {
				logger.Warn("webhook file failed", "path", path, "error", err)
				mu.Lock()
				failures[path] = err.Error()
				mu.Unlock()
				return nil
			}
			records[i] = &rec
			return nil
		})
	}
	_ = g.Wait()

	res.Status = StatusSuccess
	res.Analyses = []schema.AnalysisRecord{}
	for _, rec := range records {
		if rec != nil {
			res.Analyses = append(res.Analyses, *rec)
		}
	}
	if len(failures) > 0 {
		res.Status = StatusPartial
		res.Errors = failures
	}
	logger.Info("webhook push processed", "files", len(files), "stored", len(res.Analyses), "failed", len(failures))
	return res, nil
}

func (p *Processor) analyzeFile(ctx context.Context, push PushEvent, path string) (schema.AnalysisRecord, error) {
	commit := push.HeadCommit
	source, err := p.fetcher.Fetch(ctx, push.Repository.FullName, commit.ID, path)
	if err != nil {
		return schema.AnalysisRecord{}, fmt.Errorf("fetch: %w", err)
	}
	result, err := p.analyzer.Analyze(ctx, source)
	if err != nil {
		return schema.AnalysisRecord{}, fmt.Errorf("analyze: %w", err)
	}

	at := commit.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	info := schema.CommitInfo{
		Repository:    &push.Repository.FullName,
		CommitSHA:     &commit.ID,
		CommitMessage: &commit.Message,
		CommitAuthor:  &commit.Author.Name,
		FilePath:      &path,
	}
	rec := schema.NewAnalysisRecord(source, result, info, at)
	id, err := p.store.SaveAnalysis(ctx, rec)
	if err != nil {
		return schema.AnalysisRecord{}, fmt.Errorf("save: %w", err)
	}
	rec.ID = id
	return rec, nil
}
