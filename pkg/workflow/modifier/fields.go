package modifier

import (
	"slices"
	"sort"

	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/param"
	"github.com/tombee/flowkit/pkg/workflow"
)

var (
	memoryTypes    = []string{"bufferMemory", "bufferWindowMemory", "conversationSummaryMemory", "redisBackedChatMemory"}
	toolNames      = []string{"calculator", "serpAPI", "customTool", "requestsGet", "requestsPost"}
	documentStores = []string{"memoryVectorStore", "pinecone", "chroma", "qdrant", "postgres"}
)

// defaultMaxTokens bounds maxTokens when the node's model is not registered.
const defaultMaxTokens = 32000

// AvailableModifications returns the editable fields of a node. Known
// categories use a fixed table; anything else exposes its existing
// string, number and boolean data keys.
func (m *Modifier) AvailableModifications(node workflow.Node) []param.Spec {
	switch node.Category() {
	case workflow.CategoryChatModel:
		return m.chatModelFields(node)
	case workflow.CategoryLLM:
		return []param.Spec{
			m.modelSelect("model", "Model", llm.CategoryCompletion, node.Data["model"]),
		}
	case workflow.CategoryPrompt:
		return []param.Spec{{
			Name:        "template",
			Label:       "Template",
			Type:        param.TypeString,
			Description: "Prompt template text",
			Required:    true,
			Validator:   "length(value) > 0",
		}}
	case workflow.CategoryMemory:
		return []param.Spec{
			selectField("memoryType", "Memory Type", memoryTypes, node.Data["memoryType"]),
			{
				Name:    "bufferSize",
				Label:   "Buffer Size",
				Type:    param.TypeNumber,
				Default: 10,
				Min:     param.Float(1),
				Max:     param.Float(100),
				Step:    param.Float(1),
			},
		}
	case workflow.CategoryTool:
		return []param.Spec{selectField("tool", "Tool", toolNames, node.Data["tool"])}
	case workflow.CategoryDocumentStore:
		return []param.Spec{selectField("documentStore", "Document Store", documentStores, node.Data["documentStore"])}
	case workflow.CategoryEmbeddings:
		return []param.Spec{
			m.modelSelect("embeddingsModel", "Embeddings Model", llm.CategoryEmbedding, node.Data["embeddingsModel"]),
		}
	case workflow.CategoryTextSplitter:
		return []param.Spec{
			{
				Name:    "chunkSize",
				Label:   "Chunk Size",
				Type:    param.TypeNumber,
				Default: 1000,
				Min:     param.Float(100),
				Max:     param.Float(8000),
				Step:    param.Float(50),
			},
			{
				Name:    "chunkOverlap",
				Label:   "Chunk Overlap",
				Type:    param.TypeNumber,
				Default: 200,
				Min:     param.Float(0),
				Max:     param.Float(2000),
				Step:    param.Float(10),
			},
		}
	default:
		return introspect(node)
	}
}

func (m *Modifier) chatModelFields(node workflow.Node) []param.Spec {
	maxTokens := float64(defaultMaxTokens)
	if spec, ok := m.modelParameter(node, "maxTokens"); ok && spec.Max != nil {
		maxTokens = *spec.Max
	}

	return []param.Spec{
		m.modelSelect("modelName", "Model Name", llm.CategoryChat, node.Data["modelName"]),
		{
			Name:    "temperature",
			Label:   "Temperature",
			Type:    param.TypeNumber,
			Default: 0.7,
			Min:     param.Float(0),
			Max:     param.Float(2),
			Step:    param.Float(0.1),
		},
		{
			Name:    "maxTokens",
			Label:   "Max Tokens",
			Type:    param.TypeNumber,
			Default: 2048,
			Min:     param.Float(1),
			Max:     param.Float(maxTokens),
			Step:    param.Float(1),
		},
		{Name: "streaming", Label: "Streaming", Type: param.TypeBoolean, Default: true},
		{Name: "allowImageUploads", Label: "Allow Image Uploads", Type: param.TypeBoolean, Default: false},
	}
}

// modelParameter looks up a parameter of the registered model a node uses.
func (m *Modifier) modelParameter(node workflow.Node, name string) (param.Spec, bool) {
	if m.registry == nil {
		return param.Spec{}, false
	}
	id, _ := workflow.AsString(node.Data["modelName"])
	if id == "" {
		id, _ = workflow.AsString(node.Data["model"])
	}
	md, ok := m.registry.FindByIdentifier(id)
	if !ok {
		return param.Spec{}, false
	}
	return md.Parameter(name)
}

func (m *Modifier) modelSelect(name, label string, category llm.ModelCategory, current any) param.Spec {
	var options []string
	if m.registry != nil {
		options = m.registry.ModelIDs("", category)
	}
	return selectField(name, label, options, current)
}

// selectField builds a select spec. The node's current value stays
// selectable even when it is not one of the listed options.
func selectField(name, label string, options []string, current any) param.Spec {
	opts := slices.Clone(options)
	if cur, ok := current.(string); ok && cur != "" && len(opts) > 0 && !slices.Contains(opts, cur) {
		opts = append(opts, cur)
	}
	return param.Spec{Name: name, Label: label, Type: param.TypeSelect, Options: opts}
}

func introspect(node workflow.Node) []param.Spec {
	keys := make([]string, 0, len(node.Data))
	for k := range node.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var specs []param.Spec
	for _, k := range keys {
		v := node.Data[k]
		var t param.Type
		switch {
		case isString(v):
			t = param.TypeString
		case isBool(v):
			t = param.TypeBoolean
		case isNumber(v):
			t = param.TypeNumber
		default:
			continue
		}
		specs = append(specs, param.Spec{Name: k, Label: k, Type: t})
	}
	return specs
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isNumber(v any) bool {
	_, ok := param.Number(v)
	return ok
}
