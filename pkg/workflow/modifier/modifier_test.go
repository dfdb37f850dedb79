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

package modifier

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/param"
	"github.com/tombee/flowkit/pkg/workflow"
)

func newModifier(t *testing.T) *Modifier {
	t.Helper()
	reg, err := llm.NewRegistry()
	require.NoError(t, err)
	return New(reg, WithLogger(log.Discard()))
}

func ragGraph() *workflow.Graph {
	g := &workflow.Graph{
		Name: "rag",
		Nodes: []workflow.Node{
			{ID: "splitter", Type: workflow.TypeTextSplitter, Data: map[string]any{"chunkSize": 1000, "chunkOverlap": 200}},
			{ID: "prompt", Type: workflow.TypePromptTemplate, Data: map[string]any{"template": "Q: {question}"}},
			{ID: "llm", Type: workflow.TypeChatOpenAI, Data: map[string]any{
				"modelName":   "gpt-4",
				"model":       "gpt-4",
				"apiKey":      "sk-x",
				"temperature": 0.7,
				"maxTokens":   2048,
				"streaming":   false,
			}},
			{ID: "out", Type: workflow.TypeChatOutput},
		},
	}
	g.Connect("splitter", "prompt")
	g.Connect("prompt", "llm")
	g.Connect("llm", "out")
	return g
}

func TestAvailableModifications(t *testing.T) {
	m := newModifier(t)
	g := ragGraph()

	names := func(specs []param.Spec) []string { return specNames(specs) }

	assert.Equal(t, []string{"modelName", "temperature", "maxTokens", "streaming", "allowImageUploads"},
		names(m.AvailableModifications(*g.Node("llm"))))
	assert.Equal(t, []string{"chunkSize", "chunkOverlap"}, names(m.AvailableModifications(*g.Node("splitter"))))
	assert.Equal(t, []string{"template"}, names(m.AvailableModifications(*g.Node("prompt"))))

	t.Run("model options from registry", func(t *testing.T) {
		spec, ok := param.Find(m.AvailableModifications(*g.Node("llm")), "modelName")
		require.True(t, ok)
		assert.Equal(t, param.TypeSelect, spec.Type)
		assert.Contains(t, spec.Options, "gpt-4o")
		assert.NotContains(t, spec.Options, "text-embedding-ada-002")
	})

	t.Run("max tokens bounded by model", func(t *testing.T) {
		spec, ok := param.Find(m.AvailableModifications(*g.Node("llm")), "maxTokens")
		require.True(t, ok)
		require.NotNil(t, spec.Max)
		assert.Equal(t, 8192.0, *spec.Max)
	})

	t.Run("generic fallback", func(t *testing.T) {
		node := workflow.Node{ID: "x", Type: "somethingCustom", Data: map[string]any{
			"url":     "https://example.com",
			"retries": 3,
			"enabled": true,
			"headers": map[string]any{"a": "b"},
		}}
		specs := m.AvailableModifications(node)
		require.Len(t, specs, 3)
		assert.Equal(t, "enabled", specs[0].Name)
		assert.Equal(t, param.TypeBoolean, specs[0].Type)
		assert.Equal(t, param.TypeNumber, specs[1].Type)
		assert.Equal(t, param.TypeString, specs[2].Type)
	})

	t.Run("credentials are not editable", func(t *testing.T) {
		for _, typ := range []string{"chatOpenAI", "chatOllama", "openAI", workflow.TypeChatCustom} {
			node := workflow.Node{ID: "m", Type: typ, Data: map[string]any{"apiKey": "sk-test", "modelName": "gpt-4o"}}
			require.True(t, workflow.IsModelType(typ), typ)
			_, ok := param.Find(m.AvailableModifications(node), "apiKey")
			assert.False(t, ok, typ)
		}
	})

	t.Run("nil registry", func(t *testing.T) {
		spec, ok := param.Find(New(nil).AvailableModifications(*g.Node("llm")), "modelName")
		require.True(t, ok)
		assert.Empty(t, spec.Options)
	})
}

func TestBatch_Stage(t *testing.T) {
	var b Batch
	b.Stage("llm", "temperature", 0.5)
	b.Stage("splitter", "chunkSize", 800)
	b.Stage("llm", "streaming", true)
	b.Stage("llm", "temperature", 0.3)

	reqs := b.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "llm", reqs[0].NodeID)
	assert.Equal(t, map[string]any{"temperature": 0.3, "streaming": true}, reqs[0].Modifications)
	assert.Equal(t, "splitter", reqs[1].NodeID)

	reqs[0].Modifications["temperature"] = 9.0
	assert.Equal(t, 0.3, b.Requests()[0].Modifications["temperature"])

	b.Reset()
	assert.Equal(t, 0, b.Len())
}

func TestApply(t *testing.T) {
	m := newModifier(t)
	g := ragGraph()

	var b Batch
	b.Stage("llm", "temperature", 0.2)
	b.Stage("llm", "modelName", "gpt-4o")
	b.Stage("splitter", "chunkSize", 1500)

	res, err := m.Apply(g, b.Requests(), Context{WorkflowType: Chatflow})
	require.NoError(t, err)
	assert.Equal(t, []string{"llm", "splitter"}, res.ModifiedNodeIDs)
	assert.Same(t, g, res.Graph)

	llmNode := g.Node("llm")
	assert.Equal(t, 0.2, llmNode.Data["temperature"])
	assert.Equal(t, "gpt-4o", llmNode.Data["modelName"])
	assert.Equal(t, "gpt-4o", llmNode.Data["model"])
	assert.Equal(t, 1500, g.Node("splitter").Data["chunkSize"])
}

func TestApply_Atomic(t *testing.T) {
	tests := []struct {
		name     string
		requests []Request
		field    string
	}{
		{
			name: "out of range number",
			requests: []Request{
				{NodeID: "llm", Modifications: map[string]any{"temperature": 0.1}},
				{NodeID: "splitter", Modifications: map[string]any{"chunkSize": 50}},
			},
			field: "splitter.chunkSize",
		},
		{
			name: "unknown node",
			requests: []Request{
				{NodeID: "llm", Modifications: map[string]any{"temperature": 0.1}},
				{NodeID: "ghost", Modifications: map[string]any{"temperature": 0.1}},
			},
			field: "ghost",
		},
		{
			name: "not editable",
			requests: []Request{
				{NodeID: "llm", Modifications: map[string]any{"apiKey": "sk-new", "temperature": 0.1}},
			},
			field: "llm.apiKey",
		},
		{
			name: "wrong type",
			requests: []Request{
				{NodeID: "llm", Modifications: map[string]any{"streaming": "yes"}},
			},
			field: "llm.streaming",
		},
		{
			name: "overlap not below size",
			requests: []Request{
				{NodeID: "splitter", Modifications: map[string]any{"chunkOverlap": 1000}},
			},
			field: "splitter.chunkOverlap",
		},
		{
			name: "model limit after switch",
			requests: []Request{
				{NodeID: "llm", Modifications: map[string]any{"maxTokens": 8000}},
				{NodeID: "llm", Modifications: map[string]any{"modelName": "gpt-3.5-turbo"}},
			},
			field: "llm.maxTokens",
		},
		{
			name: "NaN temperature",
			requests: []Request{
				{NodeID: "llm", Modifications: map[string]any{"temperature": math.NaN()}},
			},
			field: "llm.temperature",
		},
		{
			name: "infinite maxTokens",
			requests: []Request{
				{NodeID: "llm", Modifications: map[string]any{"maxTokens": math.Inf(1)}},
			},
			field: "llm.maxTokens",
		},
		{
			name: "empty template",
			requests: []Request{
				{NodeID: "prompt", Modifications: map[string]any{"template": ""}},
			},
			field: "prompt.template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModifier(t)
			g := ragGraph()
			before, err := g.JSON()
			require.NoError(t, err)

			res, err := m.Apply(g, tt.requests, Context{})
			require.Error(t, err)
			assert.Nil(t, res)

			var me *ModificationError
			require.True(t, errors.As(err, &me))
			var fields []string
			for _, ve := range me.Err.Errors {
				fields = append(fields, ve.Field)
			}
			assert.Contains(t, fields, tt.field)

			after, err := g.JSON()
			require.NoError(t, err)
			assert.Equal(t, string(before), string(after))
		})
	}
}

func TestApply_NilGraph(t *testing.T) {
	_, err := newModifier(t).Apply(nil, nil, Context{})
	assert.Error(t, err)
}

func TestApply_CustomModelKeepsCurrentValue(t *testing.T) {
	m := newModifier(t)
	g := ragGraph()
	g.Node("llm").Data["modelName"] = "gpt-4-custom"

	_, err := m.Apply(g, []Request{{NodeID: "llm", Modifications: map[string]any{"modelName": "gpt-4-custom"}}}, Context{})
	assert.NoError(t, err)

	_, err = m.Apply(g, []Request{{NodeID: "llm", Modifications: map[string]any{"modelName": "not-a-model"}}}, Context{})
	assert.Error(t, err)
}

func TestSuggest(t *testing.T) {
	m := newModifier(t)
	g := ragGraph()
	g.Node("llm").Data["temperature"] = 1.4
	g.Node("llm").Data["maxTokens"] = 6000
	g.Node("splitter").Data["chunkOverlap"] = 600

	suggestions := m.Suggest(g, Context{WorkflowType: Chatflow})
	keys := map[string]any{}
	for _, s := range suggestions {
		assert.NotEmpty(t, s.Reason)
		for k, v := range s.Modifications {
			keys[s.NodeID+"."+k] = v
		}
	}
	assert.Equal(t, map[string]any{
		"llm.streaming":         true,
		"llm.temperature":       0.7,
		"llm.maxTokens":         2048,
		"splitter.chunkOverlap": 200,
	}, keys)

	res, err := m.Apply(g, suggestions, Context{WorkflowType: Chatflow})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"llm", "splitter"}, res.ModifiedNodeIDs)
	assert.Empty(t, m.Suggest(g, Context{WorkflowType: Chatflow}))
}

func TestSuggest_Agentflow(t *testing.T) {
	m := newModifier(t)
	suggestions := m.Suggest(ragGraph(), Context{WorkflowType: Agentflow})
	require.Len(t, suggestions, 1)
	assert.Equal(t, map[string]any{"temperature": 0.2}, suggestions[0].Modifications)
}
