// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the codescore MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(analyzer contract.CodeAnalyzer, detector contract.SmellDetector, store contract.AnalysisStore, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"codescore",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		analyzer: analyzer,
		detector: detector,
		store:    store,
	}

	s.AddTool(mcp.NewTool("analyze_code",
		mcp.WithDescription("Score Python source for complexity, maintainability, security and lint quality. Results are cached by exact source text."),
		mcp.WithString("code", mcp.Description("The Python source code to analyze."), mcp.Required()),
		mcp.WithBoolean("save", mcp.Description("Persist the analysis to the configured store. Defaults to false.")),
	), h.handleAnalyzeCode)

	s.AddTool(mcp.NewTool("detect_smells",
		mcp.WithDescription("Detect code smells and improvement suggestions and compute an AI quality score."),
		mcp.WithString("code", mcp.Description("The Python or JavaScript source code to inspect."), mcp.Required()),
	), h.handleDetectSmells)

	s.AddTool(mcp.NewTool("list_analyses",
		mcp.WithDescription("List stored analyses, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of analyses to return (default 10, max 100).")),
		mcp.WithNumber("skip", mcp.Description("Number of analyses to skip.")),
		mcp.WithString("repository", mcp.Description("Only return analyses of this repository (owner/name).")),
	), h.handleListAnalyses)

	s.AddTool(mcp.NewTool("get_cache_stats",
		mcp.WithDescription("Report result cache hits, misses, evictions and occupancy."),
	), h.handleCacheStats)

	s.AddTool(mcp.NewTool("clear_cache",
		mcp.WithDescription("Drop every cached analysis result and reset the cache counters."),
	), h.handleClearCache)

	return s
}

// StartMCPServer starts the codescore MCP server on stdio.
func StartMCPServer(_ context.Context, analyzer contract.CodeAnalyzer, detector contract.SmellDetector, store contract.AnalysisStore, version string) error {
	s := NewMCPServer(analyzer, detector, store, version)
	return server.ServeStdio(s)
}
