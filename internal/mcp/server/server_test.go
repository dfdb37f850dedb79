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
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/internal/config"
	"github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/internal/workbench"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/workflow/generator"
)

const testKey = "sk-test-mcp-0123456789"

func newTestServer(t *testing.T, callsPerMinute int) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.DefaultProvider = "openai"
	cfg.Providers = []llm.Provider{
		{ID: "openai", APIKey: testKey, Models: []string{"gpt-4o"}, IsActive: true},
	}
	wb, err := workbench.New(context.Background(), cfg, workbench.WithLogger(log.Discard()))
	require.NoError(t, err)
	return New(wb, Config{Version: "test", CallsPerMinute: callsPerMinute})
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

// graphJSON generates a chat graph through the workbench so tests work
// on the same documents a client would round-trip.
func graphJSON(t *testing.T, s *Server) string {
	t.Helper()
	out, err := s.wb.Generate(context.Background(), &generator.AgentDefinition{Name: "helper"}, "")
	require.NoError(t, err)
	data, err := out.Graph.JSON()
	require.NoError(t, err)
	return string(data)
}

func TestCatalogSearch(t *testing.T) {
	s := newTestServer(t, 0)

	res, err := s.handleCatalogSearch(context.Background(), call(map[string]any{"category": "Chat Models"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var body struct {
		Nodes []struct {
			Category string `json:"category"`
		} `json:"nodes"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &body))
	assert.Equal(t, len(body.Nodes), body.Count)
	for _, n := range body.Nodes {
		assert.Equal(t, "Chat Models", n.Category)
	}
}

func TestModelsRecommend(t *testing.T) {
	s := newTestServer(t, 0)

	res, err := s.handleModelsRecommend(context.Background(), call(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleModelsRecommend(context.Background(), call(map[string]any{
		"use_case":    "customer support chat",
		"budget":      "high",
		"performance": "quality",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var body struct {
		Recommendations []llm.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &body))
	assert.LessOrEqual(t, len(body.Recommendations), 5)
	for _, r := range body.Recommendations {
		assert.Greater(t, r.Confidence, 0.3)
	}
}

func TestGenerate_MasksCredentials(t *testing.T) {
	s := newTestServer(t, 0)

	res, err := s.handleGenerate(context.Background(), call(map[string]any{
		"agent_yaml": "name: helper\ntype: chat\nsystemPrompt: Be brief.\n",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	text := resultText(t, res)
	assert.NotContains(t, text, testKey)
	assert.Contains(t, text, `"provider": "openai"`)
}

func TestGenerate_Errors(t *testing.T) {
	s := newTestServer(t, 0)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing", map[string]any{}, "agent_yaml is required"},
		{"blank", map[string]any{"agent_yaml": "   "}, "agent_yaml is required"},
		{"unknown type", map[string]any{"agent_yaml": "name: x\ntype: workflow\n"}, "unknown agent type"},
		{"unknown provider", map[string]any{"agent_yaml": "name: x\n", "provider": "cohere"}, "not found"},
		{"too large", map[string]any{"agent_yaml": strings.Repeat("a", maxDocumentSize+1)}, "exceeds maximum size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleGenerate(ctx, call(tt.args))
			require.NoError(t, err)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}
}

func TestValidate(t *testing.T) {
	s := newTestServer(t, 0)

	res, err := s.handleValidate(context.Background(), call(map[string]any{
		"graph":               graphJSON(t, s),
		"include_performance": true,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var preview struct {
		Validation struct {
			Valid bool `json:"valid"`
			Score int  `json:"score"`
		} `json:"validation"`
		Nodes []json.RawMessage `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &preview))
	assert.True(t, preview.Validation.Valid)
	assert.Len(t, preview.Nodes, 4)
}

func TestValidate_BadGraph(t *testing.T) {
	s := newTestServer(t, 0)
	res, err := s.handleValidate(context.Background(), call(map[string]any{"graph": "nodes: [unterminated"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestModify(t *testing.T) {
	s := newTestServer(t, 0)
	ctx := context.Background()
	doc := graphJSON(t, s)

	res, err := s.handleModify(ctx, call(map[string]any{
		"graph":    doc,
		"requests": `[{"nodeId": "llm", "modifications": {"temperature": 0.3}}]`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	text := resultText(t, res)
	assert.NotContains(t, text, testKey)
	var body struct {
		ModifiedNodeIDs []string `json:"modifiedNodeIds"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &body))
	assert.Equal(t, []string{"llm"}, body.ModifiedNodeIDs)

	res, err = s.handleModify(ctx, call(map[string]any{
		"graph":    doc,
		"requests": `[{"nodeId": "llm", "modifications": {"temperature": 9}}]`,
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleModify(ctx, call(map[string]any{"graph": doc, "requests": "{not json"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "JSON array")

	res, err = s.handleModify(ctx, call(map[string]any{"graph": doc}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestModify_Suggest(t *testing.T) {
	s := newTestServer(t, 0)
	res, err := s.handleModify(context.Background(), call(map[string]any{
		"graph":   graphJSON(t, s),
		"suggest": true,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"suggestions"`)
}

func TestExport(t *testing.T) {
	s := newTestServer(t, 0)
	res, err := s.handleExport(context.Background(), call(map[string]any{"graph": graphJSON(t, s)}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	text := resultText(t, res)
	assert.Contains(t, text, "flowData")
	assert.NotContains(t, text, testKey)
}

func TestGuard_RateLimit(t *testing.T) {
	s := newTestServer(t, 1)
	h := s.guard(s.handleCatalogSearch)

	res, err := h(context.Background(), call(map[string]any{"query": "chat"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = h(context.Background(), call(map[string]any{"query": "chat"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Rate limit exceeded")
}

func TestRateLimiter_Unlimited(t *testing.T) {
	rl := NewRateLimiter(0)
	for i := 0; i < 1000; i++ {
		if !rl.Allow() {
			t.Fatalf("call %d was limited", i)
		}
	}
}
