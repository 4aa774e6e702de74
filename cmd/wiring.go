package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/huangsam/codescore/core"
	"github.com/huangsam/codescore/core/tools"
	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/internal/gitclient"
	"github.com/huangsam/codescore/internal/persist"
	"github.com/huangsam/codescore/internal/ttlcache"
	"github.com/huangsam/codescore/schema"
)

// app holds the collaborators shared by the serve, mcp and analyze commands.
type app struct {
	analyzer *core.Analyzer
	detector *tools.SmellDetector
	store    contract.AnalysisStore
}

// newApp builds the result cache, the analysis tools and the orchestrator from cfg.
// The store is opened only when withStore is set.
func newApp(withStore bool) (*app, error) {
	cache := ttlcache.New[*schema.AnalysisResult](
		ttlcache.WithMaxSize(cfg.CacheMaxSize),
		ttlcache.WithCleanupInterval(cfg.CacheCleanupInterval),
	)
	detector := tools.NewSmellDetector()

	opts := []core.Option{
		core.WithWeights(cfg.Weights),
		core.WithTTL(cfg.CacheTTL),
		core.WithToolTimeout(cfg.ToolTimeout),
		core.WithSingleFlight(cfg.DedupeInflight),
		core.WithLogger(logger),
	}
	if cfg.Predict {
		opts = append(opts, core.WithPredictor(tools.NewSmellPredictor(detector)))
	}
	analyzer := core.NewAnalyzer(cache, defaultTools(), opts...)

	a := &app{analyzer: analyzer, detector: detector}
	if !withStore {
		return a, nil
	}
	store, err := persist.NewAnalysisStore(cfg.AnalysisBackend, cfg.AnalysisDBConnect)
	if err != nil {
		return nil, fmt.Errorf("failed to open analysis store: %w", err)
	}
	a.store = store
	return a, nil
}

// Close releases the store.
func (a *app) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		contract.LogWarn("Failed to close analysis store", err)
	}
}

func defaultTools() []contract.Tool {
	return []contract.Tool{
		tools.NewLinter(),
		tools.NewStyleChecker(),
		tools.NewSecurityScanner(),
	}
}

// sourceFetcher returns the webhook source fetcher, or nil when no mirror directory is configured.
func sourceFetcher() contract.SourceFetcher {
	if cfg.SourceMirrorDir == "" {
		return nil
	}
	return gitclient.NewFetcher(cfg.SourceMirrorDir)
}

// readSource reads code from a file path, or from stdin when the path is "-" or absent.
func readSource(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}
