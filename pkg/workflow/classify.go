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

package workflow

import "strings"

// Category is the coarse kind of a node, derived from its type.
type Category string

const (
	CategoryChatModel      Category = "Chat Models"
	CategoryLLM            Category = "LLM"
	CategoryPrompt         Category = "Prompts"
	CategoryMemory         Category = "Memory"
	CategoryTool           Category = "Tools"
	CategoryDocumentStore  Category = "Document Stores"
	CategoryDocumentLoader Category = "Document Loaders"
	CategoryEmbeddings     Category = "Embeddings"
	CategoryTextSplitter   Category = "Text Splitters"
	CategoryRetriever      Category = "Retrievers"
	CategoryAgent          Category = "Agents"
	CategoryInput          Category = "Input"
	CategoryOutput         Category = "Output"
	CategoryUnknown        Category = "Unknown"
)

// Node types emitted by the generator.
const (
	TypeChatInput      = "chatInput"
	TypeChatOutput     = "chatOutput"
	TypePromptTemplate = "promptTemplate"
	TypeDocumentLoader = "documentLoader"
	TypeTextSplitter   = "recursiveCharacterTextSplitter"
	TypeEmbeddings     = "openAIEmbeddings"
	TypeVectorStore    = "memoryVectorStore"
	TypeRetriever      = "vectorStoreRetriever"
	TypeAgentExecutor  = "agentExecutor"
	TypeCalculator     = "calculator"
	TypeSearchTool     = "serpAPI"
	TypeBufferMemory   = "bufferMemory"
	TypeChatOpenAI     = "chatOpenAI"
	TypeChatCustom     = "chatOpenAICustom"
	TypeChatOllama     = "chatOllama"
	TypeOllama         = "ollama"
)

// llmTypes maps model node types to chat (true) or completion (false).
var llmTypes = map[string]bool{
	"chatOpenAI":             true,
	"azureChatOpenAI":        true,
	"chatAnthropic":          true,
	"chatGoogleGenerativeAI": true,
	"chatGoogleVertexAI":     true,
	"chatMistralAI":          true,
	"chatCohere":             true,
	"chatOllama":             true,
	"chatOpenAICustom":       true,
	"chatLocalAI":            true,
	"chatMeta":               true,
	"openAI":                 false,
	"ollama":                 false,
	"cohere":                 false,
	"huggingFaceInference":   false,
}

// keylessTypes run against local runtimes and need no credential.
var keylessTypes = map[string]bool{
	"chatOllama":  true,
	"ollama":      true,
	"chatLocalAI": true,
}

var knownTypes = map[string]Category{
	TypeChatInput:               CategoryInput,
	TypeChatOutput:              CategoryOutput,
	TypePromptTemplate:          CategoryPrompt,
	"chatPromptTemplate":        CategoryPrompt,
	"fewShotPromptTemplate":     CategoryPrompt,
	TypeBufferMemory:            CategoryMemory,
	"bufferWindowMemory":        CategoryMemory,
	"conversationSummaryMemory": CategoryMemory,
	"redisBackedChatMemory":     CategoryMemory,
	TypeCalculator:              CategoryTool,
	TypeSearchTool:              CategoryTool,
	"customTool":                CategoryTool,
	"requestsGet":               CategoryTool,
	"requestsPost":              CategoryTool,
	TypeVectorStore:             CategoryDocumentStore,
	"pinecone":                  CategoryDocumentStore,
	"chroma":                    CategoryDocumentStore,
	"qdrant":                    CategoryDocumentStore,
	"postgres":                  CategoryDocumentStore,
	"documentStore":             CategoryDocumentStore,
	TypeDocumentLoader:          CategoryDocumentLoader,
	"pdfFile":                   CategoryDocumentLoader,
	"textFile":                  CategoryDocumentLoader,
	"cheerioWebScraper":         CategoryDocumentLoader,
	TypeEmbeddings:              CategoryEmbeddings,
	"cohereEmbeddings":          CategoryEmbeddings,
	"ollamaEmbeddings":          CategoryEmbeddings,
	TypeTextSplitter:            CategoryTextSplitter,
	"characterTextSplitter":     CategoryTextSplitter,
	"tokenTextSplitter":         CategoryTextSplitter,
	TypeRetriever:               CategoryRetriever,
	"multiQueryRetriever":       CategoryRetriever,
	TypeAgentExecutor:           CategoryAgent,
	"toolAgent":                 CategoryAgent,
	"conversationalAgent":       CategoryAgent,
	"openAIFunctionAgent":       CategoryAgent,
}

// keywordRules classify unknown types by substring, checked in order.
var keywordRules = []struct {
	keyword  string
	category Category
}{
	{"embedding", CategoryEmbeddings},
	{"splitter", CategoryTextSplitter},
	{"retriever", CategoryRetriever},
	{"memory", CategoryMemory},
	{"vectorstore", CategoryDocumentStore},
	{"loader", CategoryDocumentLoader},
	{"prompt", CategoryPrompt},
	{"agent", CategoryAgent},
	{"tool", CategoryTool},
	{"input", CategoryInput},
	{"output", CategoryOutput},
}

// Classify maps a node type to its category. Model node types are matched
// by an explicit table; other unknown types fall back to keyword rules.
func Classify(nodeType string) Category {
	if chat, ok := llmTypes[nodeType]; ok {
		if chat {
			return CategoryChatModel
		}
		return CategoryLLM
	}
	if c, ok := knownTypes[nodeType]; ok {
		return c
	}
	lower := strings.ToLower(nodeType)
	for _, rule := range keywordRules {
		if strings.Contains(lower, rule.keyword) {
			return rule.category
		}
	}
	return CategoryUnknown
}

// IsModelType reports whether nodeType is a chat model or completion LLM.
func IsModelType(nodeType string) bool {
	_, ok := llmTypes[nodeType]
	return ok
}

// IsModel reports whether the category is a chat model or completion LLM.
func (c Category) IsModel() bool {
	return c == CategoryChatModel || c == CategoryLLM
}

// RequiresCredential reports whether a model node of this type needs an apiKey.
func RequiresCredential(nodeType string) bool {
	return IsModelType(nodeType) && !keylessTypes[nodeType]
}

var providerNodeTypes = map[string]string{
	"openai":    "chatOpenAI",
	"anthropic": "chatAnthropic",
	"google":    "chatGoogleGenerativeAI",
	"meta":      "chatMeta",
	"cohere":    "chatCohere",
	"local":     "chatOllama",
	"ollama":    "chatOllama",
	"mistral":   "chatMistralAI",
	"azure":     "azureChatOpenAI",
}

// ChatModelType returns the chat model node type for a provider id.
// Unknown providers map to the OpenAI-compatible custom node.
func ChatModelType(provider string) string {
	if t, ok := providerNodeTypes[strings.ToLower(provider)]; ok {
		return t
	}
	return TypeChatCustom
}
