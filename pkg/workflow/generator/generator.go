// Package generator builds Flowise workflow graphs from agent definitions.
//
// Each agent type maps to a fixed template. Node ids and canvas positions
// are constants, so generating the same definition twice yields identical
// graphs.
package generator

import (
	"fmt"
	"log/slog"

	flowlog "github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/workflow"
)

// Node ids used by the templates.
const (
	NodeChatInput      = "chat-input"
	NodeChatOutput     = "chat-output"
	NodePrompt         = "prompt-template"
	NodeLLM            = "llm"
	NodeDocumentLoader = "document-loader"
	NodeTextSplitter   = "text-splitter"
	NodeEmbeddings     = "embeddings"
	NodeVectorStore    = "vector-store"
	NodeRetriever      = "retriever"
	NodeAgentExecutor  = "agent-executor"
	NodeCalculator     = "tool-calculator"
	NodeSearch         = "tool-search"
)

// DefaultPrompt is used when an agent has no system prompt.
const DefaultPrompt = "You are a helpful AI assistant."

const ragPrompt = "Use the following context to answer the question.\n\nContext:\n{context}\n\nQuestion: {question}"

// Defaults are the parameter values used when an agent leaves them unset.
type Defaults struct {
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	TopP             float64 `yaml:"top_p"`
	FrequencyPenalty float64 `yaml:"frequency_penalty"`
	PresencePenalty  float64 `yaml:"presence_penalty"`
	ChunkSize        int     `yaml:"chunk_size"`
	ChunkOverlap     int     `yaml:"chunk_overlap"`
	TopK             int     `yaml:"top_k"`
	EmbeddingsModel  string  `yaml:"embeddings_model"`
}

// DefaultDefaults returns the built-in generator defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		Temperature:      0.7,
		MaxTokens:        2048,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
		ChunkSize:        1000,
		ChunkOverlap:     200,
		TopK:             4,
		EmbeddingsModel:  "text-embedding-ada-002",
	}
}

// Generator builds graphs. The zero value is not usable; use New.
type Generator struct {
	defaults     Defaults
	searchAPIKey string
	logger       *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithDefaults overrides the parameter defaults.
func WithDefaults(d Defaults) Option {
	return func(g *Generator) { g.defaults = d }
}

// WithSearchAPIKey sets the credential placed on assistant search tools.
func WithSearchAPIKey(key string) Option {
	return func(g *Generator) { g.searchAPIKey = key }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		defaults: DefaultDefaults(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the graph for an agent using the resolved provider.
// It fails if the agent is invalid, the provider is missing or inactive,
// or no model can be resolved.
func (g *Generator) Generate(agent *AgentDefinition, provider *llm.Provider) (*workflow.Graph, error) {
	if agent == nil {
		return nil, fmt.Errorf("agent definition is required")
	}
	if err := agent.Validate(); err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, llm.ErrNoActiveProvider
	}
	if !provider.IsActive {
		return nil, fmt.Errorf("%w: %s", llm.ErrProviderInactive, provider.ID)
	}

	model := agent.Model
	if model == "" {
		m, err := provider.DefaultModel()
		if err != nil {
			return nil, err
		}
		model = m
	}

	tmpl, _ := agent.Template()
	graph := &workflow.Graph{Name: agent.Name, Description: agent.Description}
	b := &builder{g: g, agent: agent, provider: provider, model: model, graph: graph}

	switch tmpl {
	case AgentRAG:
		b.rag()
	case AgentAssistant:
		b.assistant()
	default:
		b.chat()
	}

	g.logger.Debug("generated workflow graph",
		slog.String(flowlog.GraphKey, graph.Name),
		slog.String(flowlog.AgentTypeKey, string(tmpl)),
		slog.String(flowlog.ProviderKey, provider.ID),
		slog.String(flowlog.ModelKey, model),
		slog.Int("nodes", len(graph.Nodes)),
		slog.Int("edges", len(graph.Edges)),
	)
	return graph, nil
}

type builder struct {
	g        *Generator
	agent    *AgentDefinition
	provider *llm.Provider
	model    string
	graph    *workflow.Graph
}

func (b *builder) add(id, nodeType string, x, y float64, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	b.graph.Nodes = append(b.graph.Nodes, workflow.Node{
		ID:       id,
		Type:     nodeType,
		Position: workflow.Position{X: x, Y: y},
		Data:     data,
	})
}

func (b *builder) chat() {
	b.add(NodeChatInput, workflow.TypeChatInput, 100, 200, nil)
	b.add(NodePrompt, workflow.TypePromptTemplate, 400, 200, map[string]any{"template": b.systemPrompt()})
	b.add(NodeLLM, workflow.ChatModelType(b.provider.Vendor()), 700, 200, b.llmData())
	b.add(NodeChatOutput, workflow.TypeChatOutput, 1000, 200, nil)

	b.graph.Connect(NodeChatInput, NodePrompt)
	b.graph.Connect(NodePrompt, NodeLLM)
	b.graph.Connect(NodeLLM, NodeChatOutput)
}

func (b *builder) rag() {
	d := b.g.defaults
	topK := d.TopK
	if b.agent.TopK != nil {
		topK = *b.agent.TopK
	}
	indexName := b.agent.IndexName
	if indexName == "" {
		indexName = b.agent.Name
	}
	documents := make([]any, len(b.agent.Documents))
	for i, doc := range b.agent.Documents {
		documents[i] = doc
	}
	template := ragPrompt
	if b.agent.SystemPrompt != "" {
		template = b.agent.SystemPrompt + "\n\n" + ragPrompt
	}

	// ingestion
	b.add(NodeDocumentLoader, workflow.TypeDocumentLoader, 100, 100, map[string]any{"documents": documents})
	b.add(NodeTextSplitter, workflow.TypeTextSplitter, 400, 100, map[string]any{
		"chunkSize":    d.ChunkSize,
		"chunkOverlap": d.ChunkOverlap,
	})
	b.add(NodeEmbeddings, workflow.TypeEmbeddings, 700, 100, map[string]any{
		"modelName": d.EmbeddingsModel,
		"apiKey":    b.provider.APIKey,
	})
	b.add(NodeVectorStore, workflow.TypeVectorStore, 1000, 100, map[string]any{"indexName": indexName})

	// query
	b.add(NodeChatInput, workflow.TypeChatInput, 100, 400, nil)
	b.add(NodeRetriever, workflow.TypeRetriever, 1300, 250, map[string]any{"topK": topK})
	b.add(NodePrompt, workflow.TypePromptTemplate, 1600, 400, map[string]any{"template": template})
	b.add(NodeLLM, workflow.ChatModelType(b.provider.Vendor()), 1900, 400, b.llmData())
	b.add(NodeChatOutput, workflow.TypeChatOutput, 2200, 400, nil)

	b.graph.Connect(NodeDocumentLoader, NodeTextSplitter)
	b.graph.Connect(NodeTextSplitter, NodeEmbeddings)
	b.graph.Connect(NodeEmbeddings, NodeVectorStore)
	b.graph.Connect(NodeVectorStore, NodeRetriever)
	b.graph.Connect(NodeChatInput, NodeRetriever)
	b.graph.Connect(NodeRetriever, NodePrompt)
	b.graph.Connect(NodePrompt, NodeLLM)
	b.graph.Connect(NodeLLM, NodeChatOutput)
}

func (b *builder) assistant() {
	b.add(NodeChatInput, workflow.TypeChatInput, 100, 200, nil)
	b.add(NodeAgentExecutor, workflow.TypeAgentExecutor, 400, 200, map[string]any{"systemMessage": b.systemPrompt()})
	b.add(NodeLLM, workflow.ChatModelType(b.provider.Vendor()), 700, 200, b.llmData())
	b.add(NodeChatOutput, workflow.TypeChatOutput, 1000, 200, nil)
	b.add(NodeCalculator, workflow.TypeCalculator, 400, 400, map[string]any{"tool": "calculator"})
	b.add(NodeSearch, workflow.TypeSearchTool, 700, 400, map[string]any{
		"tool":   "serpAPI",
		"apiKey": b.g.searchAPIKey,
	})

	b.graph.Connect(NodeChatInput, NodeAgentExecutor)
	b.graph.Connect(NodeAgentExecutor, NodeLLM)
	b.graph.Connect(NodeLLM, NodeChatOutput)
	b.graph.Connect(NodeAgentExecutor, NodeCalculator)
	b.graph.Connect(NodeAgentExecutor, NodeSearch)
}

func (b *builder) systemPrompt() string {
	if b.agent.SystemPrompt != "" {
		return b.agent.SystemPrompt
	}
	return DefaultPrompt
}

func (b *builder) llmData() map[string]any {
	d := b.g.defaults
	a := b.agent

	temperature := d.Temperature
	if a.Temperature != nil {
		temperature = *a.Temperature
	}
	maxTokens := d.MaxTokens
	if a.MaxTokens != nil {
		maxTokens = *a.MaxTokens
	}
	topP := d.TopP
	if a.TopP != nil {
		topP = *a.TopP
	}
	freq := d.FrequencyPenalty
	if a.FrequencyPenalty != nil {
		freq = *a.FrequencyPenalty
	}
	presence := d.PresencePenalty
	if a.PresencePenalty != nil {
		presence = *a.PresencePenalty
	}

	return map[string]any{
		"modelName":        b.model,
		"model":            b.model,
		"apiKey":           b.provider.APIKey,
		"baseUrl":          b.provider.BaseURL,
		"temperature":      temperature,
		"maxTokens":        maxTokens,
		"topP":             topP,
		"frequencyPenalty": freq,
		"presencePenalty":  presence,
		"streaming":        true,
	}
}
