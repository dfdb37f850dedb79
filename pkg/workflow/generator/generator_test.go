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

package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/workflow"
)

func openAI() *llm.Provider {
	return &llm.Provider{ID: "openai", APIKey: "sk-x", Models: []string{"gpt-4"}, IsActive: true}
}

func newGenerator() *Generator {
	return New(WithLogger(log.Discard()), WithSearchAPIKey("serp-key"))
}

func edgePairs(g *workflow.Graph) [][2]string {
	pairs := make([][2]string, len(g.Edges))
	for i, e := range g.Edges {
		pairs[i] = [2]string{e.Source, e.Target}
	}
	return pairs
}

func TestGenerate_Chat(t *testing.T) {
	g, err := newGenerator().Generate(&AgentDefinition{Name: "A", Type: AgentChat}, openAI())
	require.NoError(t, err)

	assert.Equal(t, "A", g.Name)
	require.Len(t, g.Nodes, 4)
	assert.Equal(t, [][2]string{
		{NodeChatInput, NodePrompt},
		{NodePrompt, NodeLLM},
		{NodeLLM, NodeChatOutput},
	}, edgePairs(g))

	llmNode := g.Node(NodeLLM)
	require.NotNil(t, llmNode)
	assert.Equal(t, workflow.TypeChatOpenAI, llmNode.Type)
	assert.Equal(t, "gpt-4", llmNode.Data["modelName"])
	assert.Equal(t, "gpt-4", llmNode.Data["model"])
	assert.Equal(t, "sk-x", llmNode.Data["apiKey"])
	assert.Equal(t, 0.7, llmNode.Data["temperature"])
	assert.Equal(t, 2048, llmNode.Data["maxTokens"])
	assert.Equal(t, true, llmNode.Data["streaming"])

	assert.Equal(t, DefaultPrompt, g.Node(NodePrompt).Data["template"])

	res := ValidateConfig(g)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestGenerate_DefaultTypeIsChat(t *testing.T) {
	for _, typ := range []AgentType{"", AgentDefault, "CHAT"} {
		g, err := newGenerator().Generate(&AgentDefinition{Name: "x", Type: typ}, openAI())
		require.NoError(t, err, "type %q", typ)
		assert.Len(t, g.Nodes, 4)
		assert.Len(t, g.Edges, 3)
	}
}

func TestGenerate_RAG(t *testing.T) {
	topK := 6
	agent := &AgentDefinition{
		Name:         "docs",
		Type:         AgentRAG,
		SystemPrompt: "Answer from the handbook.",
		Documents:    []string{"handbook.pdf"},
		TopK:         &topK,
	}
	g, err := newGenerator().Generate(agent, openAI())
	require.NoError(t, err)

	assert.Len(t, g.Nodes, 9)
	assert.Len(t, g.Edges, 8)

	retriever := g.Node(NodeRetriever)
	require.NotNil(t, retriever)
	assert.Equal(t, workflow.CategoryRetriever, retriever.Category())
	assert.Equal(t, 6, retriever.Data["topK"])

	splitter := g.Node(NodeTextSplitter)
	assert.Equal(t, 1000, splitter.Data["chunkSize"])
	assert.Equal(t, 200, splitter.Data["chunkOverlap"])
	assert.Equal(t, "text-embedding-ada-002", g.Node(NodeEmbeddings).Data["modelName"])
	assert.Equal(t, "docs", g.Node(NodeVectorStore).Data["indexName"])
	assert.Contains(t, g.Node(NodePrompt).Data["template"], "Answer from the handbook.")

	d := workflow.NewDAG(g)
	assert.Nil(t, d.FindCycle())
	assert.ElementsMatch(t, []string{NodeDocumentLoader, NodeChatInput}, d.Roots())
	assert.Equal(t, []string{NodeChatOutput}, d.Sinks())
}

func TestGenerate_RAGDefaultTopK(t *testing.T) {
	g, err := newGenerator().Generate(&AgentDefinition{Name: "docs", Type: AgentRAG}, openAI())
	require.NoError(t, err)
	assert.Equal(t, 4, g.Node(NodeRetriever).Data["topK"])
}

func TestGenerate_Assistant(t *testing.T) {
	g, err := newGenerator().Generate(&AgentDefinition{Name: "helper", Type: AgentAssistant}, openAI())
	require.NoError(t, err)

	assert.Len(t, g.Nodes, 6)
	assert.Len(t, g.Edges, 5)
	assert.Equal(t, 3, workflow.NewDAG(g).OutDegree(NodeAgentExecutor))
	assert.Len(t, g.NodesOf(workflow.CategoryTool), 2)
	assert.Equal(t, "serp-key", g.Node(NodeSearch).Data["apiKey"])
	assert.Equal(t, workflow.CategoryAgent, g.Node(NodeAgentExecutor).Category())
}

func TestGenerate_WellFormed(t *testing.T) {
	for _, typ := range []AgentType{AgentChat, AgentRAG, AgentAssistant, AgentDefault} {
		t.Run(string(typ), func(t *testing.T) {
			g, err := newGenerator().Generate(&AgentDefinition{Name: "agent", Type: typ}, openAI())
			require.NoError(t, err)
			require.NotEmpty(t, g.Edges)

			ids := make(map[string]bool, len(g.Nodes))
			for _, n := range g.Nodes {
				assert.False(t, ids[n.ID], "duplicate node %s", n.ID)
				ids[n.ID] = true
			}
			for _, e := range g.Edges {
				assert.True(t, g.HasNode(e.Source), "edge %s source %s", e.ID, e.Source)
				assert.True(t, g.HasNode(e.Target), "edge %s target %s", e.ID, e.Target)
			}
			assert.Nil(t, workflow.NewDAG(g).FindCycle())
			assert.True(t, ValidateConfig(g).Valid)
		})
	}
}

func TestGenerate_Overrides(t *testing.T) {
	temp, maxTokens := 0.2, 512
	agent := &AgentDefinition{
		Name:        "tuned",
		Model:       "gpt-4o",
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}
	g, err := newGenerator().Generate(agent, openAI())
	require.NoError(t, err)

	data := g.Node(NodeLLM).Data
	assert.Equal(t, "gpt-4o", data["modelName"])
	assert.Equal(t, 0.2, data["temperature"])
	assert.Equal(t, 512, data["maxTokens"])
	assert.Equal(t, 1.0, data["topP"])
}

func TestGenerate_ProviderNodeTypes(t *testing.T) {
	tests := []struct {
		provider llm.Provider
		want     string
	}{
		{llm.Provider{ID: "anthropic", APIKey: "k", Models: []string{"claude-3-haiku"}, IsActive: true}, "chatAnthropic"},
		{llm.Provider{ID: "work", Kind: "google", APIKey: "k", Models: []string{"gemini-1.5-pro"}, IsActive: true}, "chatGoogleGenerativeAI"},
		{llm.Provider{ID: "groq", APIKey: "k", Models: []string{"mixtral"}, IsActive: true}, workflow.TypeChatCustom},
		{llm.Provider{ID: "local", BaseURL: "http://localhost:11434", Models: []string{"llama3"}, IsActive: true}, workflow.TypeChatOllama},
	}

	for _, tt := range tests {
		t.Run(tt.provider.ID, func(t *testing.T) {
			p := tt.provider
			g, err := newGenerator().Generate(&AgentDefinition{Name: "x"}, &p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Node(NodeLLM).Type)
			assert.Equal(t, p.APIKey != "", ValidateConfig(g).Valid)
		})
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	agent := &AgentDefinition{Name: "docs", Type: AgentRAG, Documents: []string{"a.txt", "b.txt"}}
	a, err := newGenerator().Generate(agent, openAI())
	require.NoError(t, err)
	b, err := newGenerator().Generate(agent, openAI())
	require.NoError(t, err)

	aj, err := a.JSON()
	require.NoError(t, err)
	bj, err := b.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, string(aj), string(bj))
}

func TestGenerate_Errors(t *testing.T) {
	agent := &AgentDefinition{Name: "x"}

	t.Run("no provider", func(t *testing.T) {
		_, err := newGenerator().Generate(agent, nil)
		assert.ErrorIs(t, err, llm.ErrNoActiveProvider)
	})

	t.Run("inactive provider", func(t *testing.T) {
		p := openAI()
		p.IsActive = false
		_, err := newGenerator().Generate(agent, p)
		assert.ErrorIs(t, err, llm.ErrProviderInactive)
	})

	t.Run("no model", func(t *testing.T) {
		p := openAI()
		p.Models = nil
		_, err := newGenerator().Generate(agent, p)
		assert.ErrorIs(t, err, llm.ErrNoModel)
	})

	t.Run("unknown agent type", func(t *testing.T) {
		_, err := newGenerator().Generate(&AgentDefinition{Name: "x", Type: "swarm"}, openAI())
		require.Error(t, err)
		var mve *errors.MultiValidationError
		require.True(t, errors.As(err, &mve))
		assert.Equal(t, "type", mve.Errors[0].Field)
	})

	t.Run("out of range temperature", func(t *testing.T) {
		temp := 3.0
		_, err := newGenerator().Generate(&AgentDefinition{Name: "x", Temperature: &temp}, openAI())
		assert.ErrorContains(t, err, "temperature")
	})
}

func TestWithDefaults(t *testing.T) {
	d := DefaultDefaults()
	d.Temperature = 0.3
	d.ChunkSize = 500

	g, err := New(WithDefaults(d), WithLogger(log.Discard())).
		Generate(&AgentDefinition{Name: "docs", Type: AgentRAG}, openAI())
	require.NoError(t, err)
	assert.Equal(t, 0.3, g.Node(NodeLLM).Data["temperature"])
	assert.Equal(t, 500, g.Node(NodeTextSplitter).Data["chunkSize"])
}

func TestParseAgent(t *testing.T) {
	a, err := ParseAgent([]byte(`
name: support
type: rag
systemPrompt: Be brief.
temperature: 0.4
documents:
  - faq.md
`))
	require.NoError(t, err)
	assert.Equal(t, "support", a.Name)
	assert.Equal(t, AgentRAG, a.Type)
	require.NotNil(t, a.Temperature)
	assert.Equal(t, 0.4, *a.Temperature)
	assert.Equal(t, []string{"faq.md"}, a.Documents)

	_, err = ParseAgent([]byte(`{"name": "x", "type": "swarm"}`))
	assert.ErrorContains(t, err, "unknown agent type")
}
