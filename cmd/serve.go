package cmd

import (
	"os/signal"
	"syscall"

	"github.com/huangsam/codescore/internal/server"
	"github.com/huangsam/codescore/internal/webhook"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serve the code quality API over HTTP.

Routes:
- POST /analyze            analyze and store a snippet
- GET  /analyses           list stored analyses
- GET  /analyses/:id       fetch one analysis
- PUT  /analyses/:id/label attach a clean/smell label
- POST /ml/analyze         smell report and AI score
- GET  /cache/stats        result cache counters
- DELETE /cache            clear the result cache
- POST /webhook/github     analyze Python files from push events
- GET  /healthz, /metrics  health and Prometheus metrics

Examples:
  # Serve on the default address
  codescore serve

  # Serve with MySQL storage and a webhook secret taken from the environment
  CODESCORE_WEBHOOK_SECRET=s3cret codescore serve --analysis-backend mysql \
    --analysis-db-connect 'user:pass@tcp(localhost:3306)/codescore'`,
	PreRunE: sharedSetup,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		processor := webhook.NewProcessor(a.analyzer, a.store, sourceFetcher(), webhook.WithLogger(logger))
		srv := server.New(server.Config{
			WebhookSecret: cfg.WebhookSecret,
			RateLimit:     cfg.RateLimit,
			RateBurst:     cfg.RateBurst,
		}, a.analyzer, a.store, a.detector, processor, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger.Info("starting server",
			"addr", cfg.ListenAddr,
			"backend", cfg.AnalysisBackend,
			"cache_max_size", cfg.CacheMaxSize,
			"predict", cfg.Predict)
		return srv.Run(ctx, cfg.ListenAddr)
	},
}
