// Package server exposes the analyzer, the analysis store and the webhook
// processor over a gin REST API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/internal/webhook"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default server limits.
const (
	DefaultMaxBodyBytes    = 5 << 20
	DefaultShutdownTimeout = 10 * time.Second
	readHeaderTimeout      = 10 * time.Second
)

// Config holds the HTTP-facing settings.
type Config struct {
	WebhookSecret   string
	RateLimit       float64 // requests per second per client IP; 0 disables
	RateBurst       int
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// Server wires the HTTP routes to their collaborators.
type Server struct {
	cfg       Config
	analyzer  contract.CodeAnalyzer
	store     contract.AnalysisStore
	detector  contract.SmellDetector
	processor *webhook.Processor
	metrics   *Metrics
	logger    *slog.Logger
	engine    *gin.Engine
}

// New builds a Server and its routes.
func New(cfg Config, analyzer contract.CodeAnalyzer, store contract.AnalysisStore, detector contract.SmellDetector, processor *webhook.Processor, logger *slog.Logger) *Server {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if logger == nil {
		logger = contract.DiscardLogger()
	}
	s := &Server{
		cfg:       cfg,
		analyzer:  analyzer,
		store:     store,
		detector:  detector,
		processor: processor,
		metrics:   NewMetrics(analyzer),
		logger:    logger,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.logger, s.metrics))

	var limiter *ipLimiter
	if s.cfg.RateLimit > 0 {
		limiter = newIPLimiter(s.cfg.RateLimit, s.cfg.RateBurst)
	}
	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if limiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{rateLimit(limiter), h}
	}

	r.GET("/", s.handleRoot)
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	r.POST("/analyze", limited(s.handleAnalyze)...)
	r.GET("/analyses", s.handleListAnalyses)
	r.GET("/analyses/:id", s.handleGetAnalysis)
	r.PUT("/analyses/:id/label", s.handleSetLabel)

	r.POST("/ml/analyze", s.handleSmells)

	cache := r.Group("/cache")
	{
		cache.GET("/stats", s.handleCacheStats)
		cache.DELETE("", s.handleClearCache)
	}

	r.POST("/webhook/github", limited(s.handleWebhook)...)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down", "timeout", s.cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
