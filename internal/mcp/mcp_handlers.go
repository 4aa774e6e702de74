package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	analyzer contract.CodeAnalyzer
	detector contract.SmellDetector
	store    contract.AnalysisStore
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleAnalyzeCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := h.analyzer.Analyze(ctx, code)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	if !request.GetBool("save", false) {
		return jsonResult(result), nil
	}

	rec := schema.NewAnalysisRecord(code, result, schema.CommitInfo{}, time.Now().UTC())
	id, err := h.store.SaveAnalysis(ctx, rec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save analysis: %v", err)), nil
	}
	rec.ID = id
	return jsonResult(rec), nil
}

func (h *toolHandler) handleDetectSmells(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := h.detector.Detect(ctx, code)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("smell detection failed: %v", err)), nil
	}
	return jsonResult(report), nil
}

func (h *toolHandler) handleListAnalyses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", contract.DefaultPageLimit)
	skip := request.GetInt("skip", 0)
	if limit < 0 || skip < 0 {
		return mcp.NewToolResultError("limit and skip must not be negative"), nil
	}
	q := schema.ListQuery{
		Skip:       skip,
		Limit:      min(limit, contract.MaxPageLimit),
		Repository: request.GetString("repository", ""),
	}
	records, err := h.store.ListAnalyses(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list analyses: %v", err)), nil
	}
	return jsonResult(records), nil
}

func (h *toolHandler) handleCacheStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.analyzer.CacheStats()), nil
}

func (h *toolHandler) handleClearCache(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.analyzer.ClearCache()
	return mcp.NewToolResultText(`{"status": "cleared"}`), nil
}
