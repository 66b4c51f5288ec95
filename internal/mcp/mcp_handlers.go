package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/huangsam/queuewait/core"
	"github.com/huangsam/queuewait/internal/contract"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

func (h *toolHandler) handleEstimateWait(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	var models []string
	if p := request.GetString("model_path", ""); p != "" {
		models = []string{p}
	}

	position := request.GetInt("position", -1)
	length := request.GetInt("length", -1)
	if err := contract.RevalidateEstimate(cfg, position, length, models); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid estimate parameters: %v", err)), nil
	}

	result, err := core.GetEstimateResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("estimate failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleStatRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	var models []string
	if m := request.GetString("models", ""); m != "" {
		models = strings.Split(m, ",")
	}

	if err := contract.RevalidateStat(cfg, request.GetString("data_dir", ""), models); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid stat parameters: %v", err)), nil
	}

	report, _, err := core.GetStatResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stat failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
