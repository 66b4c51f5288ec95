// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huangsam/queuewait/internal/contract"
)

// NewMCPServer initializes and configures the queuewait MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Queue Wait Estimation Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: estimate_wait ---
	s.AddTool(mcp.NewTool("estimate_wait",
		mcp.WithDescription("Estimate the remaining wait in hours for a client at a queue position, starting now."),
		mcp.WithNumber("position", mcp.Description("Current position in the queue."), mcp.Required()),
		mcp.WithNumber("length", mcp.Description("Current total length of the queue."), mcp.Required()),
		mcp.WithString("model_path", mcp.Description("Optional trained model file to ask alongside the baseline.")),
	), h.handleEstimateWait)

	// --- 2. Tool: stat_runs ---
	s.AddTool(mcp.NewTool("stat_runs",
		mcp.WithDescription("Evaluate the baseline and trained models against a directory of recorded queue runs."),
		mcp.WithString("data_dir", mcp.Description("Directory of observation logs, one run per file."), mcp.Required()),
		mcp.WithString("models", mcp.Description("Comma-separated model files to evaluate.")),
	), h.handleStatRuns)

	return s
}

// StartMCPServer starts the queuewait MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
