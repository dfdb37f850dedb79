package workflow

// Params is the typed view of a node's Data map. Each known category has
// one concrete variant; everything else decodes to GenericParams.
type Params interface {
	Category() Category
}

// ChatModelParams is the payload of chat model nodes.
type ChatModelParams struct {
	ModelName         string
	APIKey            string
	BaseURL           string
	Temperature       *float64
	MaxTokens         *int
	TopP              *float64
	FrequencyPenalty  *float64
	PresencePenalty   *float64
	Streaming         *bool
	AllowImageUploads *bool
}

// LLMParams is the payload of completion model nodes.
type LLMParams struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature *float64
	MaxTokens   *int
}

// PromptParams is the payload of prompt template nodes.
type PromptParams struct {
	Template string
}

// MemoryParams is the payload of memory nodes.
type MemoryParams struct {
	MemoryType string
	BufferSize *int
}

// ToolParams is the payload of tool nodes.
type ToolParams struct {
	Tool   string
	APIKey string
}

// DocumentStoreParams is the payload of vector and document store nodes.
type DocumentStoreParams struct {
	DocumentStore string
	IndexName     string
}

// EmbeddingsParams is the payload of embeddings nodes.
type EmbeddingsParams struct {
	Model  string
	APIKey string
}

// TextSplitterParams is the payload of text splitter nodes.
type TextSplitterParams struct {
	ChunkSize    *int
	ChunkOverlap *int
}

// RetrieverParams is the payload of retriever nodes.
type RetrieverParams struct {
	TopK *int
}

// GenericParams carries the raw payload of nodes with no typed variant.
type GenericParams struct {
	Kind Category
	Data map[string]any
}

func (ChatModelParams) Category() Category     { return CategoryChatModel }
func (LLMParams) Category() Category           { return CategoryLLM }
func (PromptParams) Category() Category        { return CategoryPrompt }
func (MemoryParams) Category() Category        { return CategoryMemory }
func (ToolParams) Category() Category          { return CategoryTool }
func (DocumentStoreParams) Category() Category { return CategoryDocumentStore }
func (EmbeddingsParams) Category() Category    { return CategoryEmbeddings }
func (TextSplitterParams) Category() Category  { return CategoryTextSplitter }
func (RetrieverParams) Category() Category     { return CategoryRetriever }
func (p GenericParams) Category() Category     { return p.Kind }

// DecodeParams lifts a node's Data into its typed variant. Values of the
// wrong type are treated as absent rather than failing.
func DecodeParams(n Node) Params {
	d := n.Data
	switch n.Category() {
	case CategoryChatModel:
		model := str(d["modelName"])
		if model == "" {
			model = str(d["model"])
		}
		return ChatModelParams{
			ModelName:         model,
			APIKey:            str(d["apiKey"]),
			BaseURL:           str(d["baseUrl"]),
			Temperature:       floatPtr(d["temperature"]),
			MaxTokens:         intPtr(d["maxTokens"]),
			TopP:              floatPtr(d["topP"]),
			FrequencyPenalty:  floatPtr(d["frequencyPenalty"]),
			PresencePenalty:   floatPtr(d["presencePenalty"]),
			Streaming:         boolPtr(d["streaming"]),
			AllowImageUploads: boolPtr(d["allowImageUploads"]),
		}
	case CategoryLLM:
		model := str(d["model"])
		if model == "" {
			model = str(d["modelName"])
		}
		return LLMParams{
			Model:       model,
			APIKey:      str(d["apiKey"]),
			BaseURL:     str(d["baseUrl"]),
			Temperature: floatPtr(d["temperature"]),
			MaxTokens:   intPtr(d["maxTokens"]),
		}
	case CategoryPrompt:
		return PromptParams{Template: str(d["template"])}
	case CategoryMemory:
		return MemoryParams{MemoryType: str(d["memoryType"]), BufferSize: intPtr(d["bufferSize"])}
	case CategoryTool:
		return ToolParams{Tool: str(d["tool"]), APIKey: str(d["apiKey"])}
	case CategoryDocumentStore:
		return DocumentStoreParams{DocumentStore: str(d["documentStore"]), IndexName: str(d["indexName"])}
	case CategoryEmbeddings:
		model := str(d["embeddingsModel"])
		if model == "" {
			model = str(d["modelName"])
		}
		return EmbeddingsParams{Model: model, APIKey: str(d["apiKey"])}
	case CategoryTextSplitter:
		return TextSplitterParams{ChunkSize: intPtr(d["chunkSize"]), ChunkOverlap: intPtr(d["chunkOverlap"])}
	case CategoryRetriever:
		return RetrieverParams{TopK: intPtr(d["topK"])}
	default:
		return GenericParams{Kind: n.Category(), Data: d}
	}
}

// Credential returns the apiKey of a model node and whether the node is a model.
func Credential(n Node) (string, bool) {
	switch p := DecodeParams(n).(type) {
	case ChatModelParams:
		return p.APIKey, true
	case LLMParams:
		return p.APIKey, true
	default:
		return "", false
	}
}

// Temperature returns the temperature of a model node, if set.
func Temperature(n Node) (float64, bool) {
	switch p := DecodeParams(n).(type) {
	case ChatModelParams:
		if p.Temperature != nil {
			return *p.Temperature, true
		}
	case LLMParams:
		if p.Temperature != nil {
			return *p.Temperature, true
		}
	}
	return 0, false
}
