// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes flowkit operations as MCP tools over stdio.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	flowlog "github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/internal/workbench"
)

// maxDocumentSize bounds graph and agent documents passed to tools.
const maxDocumentSize = 5 * 1024 * 1024

// Server wraps the MCP server and the workbench its tools call.
type Server struct {
	mcpServer *server.MCPServer
	wb        *workbench.Workbench
	limiter   *RateLimiter
	version   string
	logger    *slog.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server name (default: "flowkit").
	Name string

	Version string

	// CallsPerMinute limits tool calls. 0 disables the limit.
	CallsPerMinute int

	// Logger must not write to stdout, which carries the protocol.
	Logger *slog.Logger
}

// New creates a server with every flowkit tool registered.
func New(wb *workbench.Workbench, cfg Config) *Server {
	if cfg.Name == "" {
		cfg.Name = "flowkit"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Logger == nil {
		cfg.Logger = flowlog.Discard()
	}
	s := &Server{
		mcpServer: server.NewMCPServer(cfg.Name, cfg.Version, server.WithToolCapabilities(false)),
		wb:        wb,
		limiter:   NewRateLimiter(cfg.CallsPerMinute),
		version:   cfg.Version,
		logger:    flowlog.WithComponent(cfg.Logger, "mcp"),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("flowkit_catalog_search",
		mcp.WithDescription("Search the Flowise node catalog by keyword, category or agent type. Returns node descriptors."),
		mcp.WithString("query", mcp.Description("Case-insensitive text matched against label, description and category")),
		mcp.WithString("category", mcp.Description("Exact category name, e.g. 'Chat Models'")),
		mcp.WithString("agent_type", mcp.Description("Recommend nodes for an agent type: chat, rag or assistant")),
	), s.guard(s.handleCatalogSearch))

	s.mcpServer.AddTool(mcp.NewTool("flowkit_models_recommend",
		mcp.WithDescription("Recommend LLM models for a use case, budget and performance preference."),
		mcp.WithString("use_case", mcp.Required(), mcp.Description("What the model is for, e.g. 'customer support chat'")),
		mcp.WithString("budget", mcp.Description("low, medium or high (default: medium)")),
		mcp.WithString("performance", mcp.Description("speed, quality or balanced (default: balanced)")),
		mcp.WithString("expected_load", mcp.Description("low, medium or high (default: medium)")),
		mcp.WithString("capabilities", mcp.Description("Comma-separated required capabilities, e.g. 'vision,function-calling'")),
		mcp.WithString("region", mcp.Description("Deployment region the model must be available in")),
	), s.guard(s.handleModelsRecommend))

	s.mcpServer.AddTool(mcp.NewTool("flowkit_generate",
		mcp.WithDescription("Generate a Flowise workflow graph from an agent definition and validate it. Credentials are redacted in the output."),
		mcp.WithString("agent_yaml", mcp.Required(), mcp.Description("Agent definition as YAML or JSON (name, type, systemPrompt, model, ...)")),
		mcp.WithString("provider", mcp.Description("Provider id to use (default: the configured default)")),
	), s.guard(s.handleGenerate))

	s.mcpServer.AddTool(mcp.NewTool("flowkit_validate",
		mcp.WithDescription("Validate a workflow graph. Returns a scored report, per-node status, flow paths and metrics."),
		mcp.WithString("graph", mcp.Required(), mcp.Description("Workflow graph as YAML or JSON")),
		mcp.WithBoolean("strict", mcp.Description("Treat warnings as errors")),
		mcp.WithBoolean("include_performance", mcp.Description("Include execution time and memory estimates")),
		mcp.WithBoolean("include_cost", mcp.Description("Include cost estimate")),
	), s.guard(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("flowkit_modify",
		mcp.WithDescription("Apply node parameter changes to a workflow graph as one batch, or list suggested changes. The graph is unchanged if any change is invalid."),
		mcp.WithString("graph", mcp.Required(), mcp.Description("Workflow graph as YAML or JSON")),
		mcp.WithString("requests", mcp.Description(`JSON array of {"nodeId": "...", "modifications": {...}}`)),
		mcp.WithBoolean("suggest", mcp.Description("Return suggested modifications instead of applying changes")),
	), s.guard(s.handleModify))

	s.mcpServer.AddTool(mcp.NewTool("flowkit_export",
		mcp.WithDescription("Render a workflow graph as a Flowise chatflow document without uploading it."),
		mcp.WithString("graph", mcp.Required(), mcp.Description("Workflow graph as YAML or JSON")),
	), s.guard(s.handleExport))
}

// guard applies the rate limit and logs each call.
func (s *Server) guard(h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !s.limiter.Allow() {
			return mcp.NewToolResultError("Rate limit exceeded. Please try again later."), nil
		}
		s.logger.Debug("tool call", slog.String("tool", req.Params.Name))
		return h(ctx, req)
	}
}

// Run serves on stdio until the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting flowkit MCP server", slog.String("version", s.version))
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("internal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
