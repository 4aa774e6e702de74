package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/codescore/core"
	"github.com/huangsam/codescore/core/score"
	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/internal/persist"
	"github.com/huangsam/codescore/internal/webhook"
	"github.com/huangsam/codescore/schema"
)

type codeSubmission struct {
	Code *string `json:"code" binding:"required"`
}

type labelRequest struct {
	Label *int `json:"label" binding:"required"`
}

type errorResponse struct {
	Detail    string `json:"detail"`
	RequestID string `json:"request_id,omitempty"`
}

func abortWithError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail, RequestID: c.GetString(requestIDKey)})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrAllToolsFailed), errors.Is(err, score.ErrUnparseable), errors.Is(err, persist.ErrInvalidLabel):
		return http.StatusUnprocessableEntity
	case errors.Is(err, persist.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, webhook.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, webhook.ErrMalformedPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err, requestIDKey, c.GetString(requestIDKey))
	}
	abortWithError(c, status, err.Error())
}

// bindJSON decodes a size-limited JSON body into v and aborts with 413 or 400 on failure.
func (s *Server) bindJSON(c *gin.Context, v any, detail string) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	err := c.ShouldBindJSON(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abortWithError(c, http.StatusRequestEntityTooLarge, "payload too large")
		return false
	}
	abortWithError(c, http.StatusBadRequest, detail)
	return false
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the codescore API"})
}

func (s *Server) handleHealth(c *gin.Context) {
	status, err := s.store.GetStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "store": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": status.Backend, "connected": status.Connected})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req codeSubmission
	if !s.bindJSON(c, &req, "request body must be a JSON object with a code field") {
		return
	}

	ctx := c.Request.Context()
	result, err := s.analyzer.Analyze(ctx, *req.Code)
	if err != nil {
		s.metrics.analyses.WithLabelValues("failed").Inc()
		s.fail(c, err)
		return
	}
	s.metrics.analyses.WithLabelValues("ok").Inc()

	rec := schema.NewAnalysisRecord(*req.Code, result, schema.CommitInfo{}, time.Now().UTC())
	id, err := s.store.SaveAnalysis(ctx, rec)
	if err != nil {
		s.fail(c, err)
		return
	}
	rec.ID = id
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleListAnalyses(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(c, "limit", contract.DefaultPageLimit)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if limit > contract.MaxPageLimit {
		limit = contract.MaxPageLimit
	}

	q := schema.ListQuery{Skip: skip, Limit: limit, Repository: c.Query("repository")}
	records, err := s.store.ListAnalyses(c.Request.Context(), q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleGetAnalysis(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rec, err := s.store.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleSetLabel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req labelRequest
	if !s.bindJSON(c, &req, "request body must be a JSON object with a label field") {
		return
	}

	ctx := c.Request.Context()
	if err := s.store.SetLabel(ctx, id, *req.Label); err != nil {
		s.fail(c, err)
		return
	}
	rec, err := s.store.GetAnalysis(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleSmells(c *gin.Context) {
	var req codeSubmission
	if !s.bindJSON(c, &req, "request body must be a JSON object with a code field") {
		return
	}
	report, err := s.detector.Detect(c.Request.Context(), *req.Code)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.analyzer.CacheStats())
}

func (s *Server) handleClearCache(c *gin.Context) {
	s.analyzer.ClearCache()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (s *Server) handleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		abortWithError(c, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}
	if err := webhook.VerifySignature(s.cfg.WebhookSecret, payload, c.GetHeader(webhook.SignatureHeader)); err != nil {
		s.metrics.deliveries.WithLabelValues("unauthorized").Inc()
		abortWithError(c, http.StatusUnauthorized, "Invalid signature")
		return
	}

	event := c.GetHeader(webhook.EventHeader)
	res, err := s.processor.Handle(c.Request.Context(), event, payload)
	if err != nil {
		s.metrics.deliveries.WithLabelValues("rejected").Inc()
		s.fail(c, err)
		return
	}
	s.metrics.deliveries.WithLabelValues(res.Status).Inc()
	s.logger.Info("webhook delivery", "event", event, "status", res.Status,
		"delivery", c.GetHeader(webhook.DeliveryHeader), requestIDKey, c.GetString(requestIDKey))
	c.JSON(http.StatusOK, res)
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return v, nil
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}
