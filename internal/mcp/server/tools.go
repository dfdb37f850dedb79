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

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/flowkit/internal/workbench"
	"github.com/tombee/flowkit/pkg/catalog"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/workflow"
	"github.com/tombee/flowkit/pkg/workflow/generator"
	"github.com/tombee/flowkit/pkg/workflow/modifier"
	"github.com/tombee/flowkit/pkg/workflow/validator"
)

func (s *Server) handleCatalogSearch(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	c := s.wb.Catalog()
	var nodes []catalog.NodeDescriptor
	switch {
	case req.GetString("agent_type", "") != "":
		nodes = c.RecommendedFor(req.GetString("agent_type", ""))
	case req.GetString("category", "") != "":
		nodes = c.FindByCategory(req.GetString("category", ""))
	default:
		nodes = c.Search(req.GetString("query", ""))
	}
	if nodes == nil {
		nodes = []catalog.NodeDescriptor{}
	}
	return jsonResult(map[string]any{
		"nodes":      nodes,
		"count":      len(nodes),
		"categories": c.Categories(),
	})
}

func (s *Server) handleModelsRecommend(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	useCase, err := req.RequireString("use_case")
	if err != nil {
		return mcp.NewToolResultError("use_case is required"), nil
	}
	rctx := llm.RecommendationContext{
		UseCase:      useCase,
		Budget:       llm.Budget(req.GetString("budget", string(llm.BudgetMedium))),
		Performance:  llm.Preference(req.GetString("performance", string(llm.PreferBalanced))),
		ExpectedLoad: llm.Load(req.GetString("expected_load", string(llm.LoadMedium))),
		Region:       req.GetString("region", ""),
	}
	for _, c := range strings.Split(req.GetString("capabilities", ""), ",") {
		if c = strings.TrimSpace(c); c != "" {
			rctx.RequiredCapabilities = append(rctx.RequiredCapabilities, c)
		}
	}
	recs := s.wb.Registry().Recommend(rctx)
	if recs == nil {
		recs = []llm.Recommendation{}
	}
	return jsonResult(map[string]any{"recommendations": recs})
}

func (s *Server) handleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, errResult := requireDocument(req, "agent_yaml")
	if errResult != nil {
		return errResult, nil
	}
	agent, err := generator.ParseAgent([]byte(doc))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.wb.Generate(ctx, agent, req.GetString("provider", ""))
	if err != nil {
		return mcp.NewToolResultError(s.wb.MaskString(err.Error())), nil
	}
	out.Graph = s.wb.Mask(out.Graph)
	return jsonResult(out)
}

func (s *Server) handleValidate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, errResult := requireGraph(req)
	if errResult != nil {
		return errResult, nil
	}
	preview, err := s.wb.Validate(ctx, g, validator.Options{
		StrictMode:                 req.GetBool("strict", false),
		IncludePerformanceAnalysis: req.GetBool("include_performance", false),
		IncludeCostAnalysis:        req.GetBool("include_cost", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(preview)
}

func (s *Server) handleModify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, errResult := requireGraph(req)
	if errResult != nil {
		return errResult, nil
	}
	mctx := modifier.Context{WorkflowType: workbench.WorkflowTypeOf(g)}

	if req.GetBool("suggest", false) {
		suggestions := s.wb.Suggest(g, mctx)
		if suggestions == nil {
			suggestions = []modifier.Request{}
		}
		return jsonResult(map[string]any{"suggestions": suggestions})
	}

	raw := req.GetString("requests", "")
	if raw == "" {
		return mcp.NewToolResultError("requests is required unless suggest is true"), nil
	}
	var requests []modifier.Request
	if err := json.Unmarshal([]byte(raw), &requests); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("requests must be a JSON array: %v", err)), nil
	}

	out, err := s.wb.Modify(ctx, g, requests, mctx)
	if err != nil {
		return mcp.NewToolResultError(s.wb.MaskString(err.Error())), nil
	}
	return jsonResult(map[string]any{
		"graph":           s.wb.Mask(out.Result.Graph),
		"modifiedNodeIds": out.Result.ModifiedNodeIDs,
		"validation":      out.Preview.Validation,
	})
}

func (s *Server) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, errResult := requireGraph(req)
	if errResult != nil {
		return errResult, nil
	}
	flow, err := s.wb.Export(ctx, s.wb.Mask(g))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(flow)
}

func requireDocument(req mcp.CallToolRequest, key string) (string, *mcp.CallToolResult) {
	doc, err := req.RequireString(key)
	if err != nil || strings.TrimSpace(doc) == "" {
		return "", mcp.NewToolResultError(key + " is required")
	}
	if len(doc) > maxDocumentSize {
		return "", mcp.NewToolResultError(fmt.Sprintf("%s exceeds maximum size of %d bytes", key, maxDocumentSize))
	}
	return doc, nil
}

func requireGraph(req mcp.CallToolRequest) (*workflow.Graph, *mcp.CallToolResult) {
	doc, errResult := requireDocument(req, "graph")
	if errResult != nil {
		return nil, errResult
	}
	g, err := workflow.ParseGraph([]byte(doc))
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	return g, nil
}
