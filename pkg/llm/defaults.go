package llm

import (
	"github.com/tombee/flowkit/pkg/llm/pricing"
	"github.com/tombee/flowkit/pkg/param"
)

var (
	globalRegions = []string{"global"}
	cloudRegions  = []string{"us-east", "us-west", "eu-west", "ap-southeast"}
	usRegions     = []string{"us-east", "us-west"}
	allLanguages  = []string{"en", "es", "fr", "de", "it", "pt", "ja", "ko", "zh"}
)

// chatParameters is the common parameter set of chat models.
// maxOutput bounds maxTokens.
func chatParameters(maxOutput float64, penalties bool) []param.Spec {
	specs := []param.Spec{
		{
			Name:        "temperature",
			Label:       "Temperature",
			Type:        param.TypeNumber,
			Description: "Sampling temperature; higher values give more varied output",
			Default:     0.7,
			Min:         param.Float(0),
			Max:         param.Float(2),
			Step:        param.Float(0.1),
		},
		{
			Name:        "maxTokens",
			Label:       "Max Tokens",
			Type:        param.TypeNumber,
			Description: "Upper bound on generated tokens per response",
			Default:     2048,
			Min:         param.Float(1),
			Max:         param.Float(maxOutput),
			Step:        param.Float(1),
		},
		{
			Name:        "topP",
			Label:       "Top P",
			Type:        param.TypeNumber,
			Description: "Nucleus sampling probability mass",
			Default:     1.0,
			Min:         param.Float(0),
			Max:         param.Float(1),
			Step:        param.Float(0.05),
		},
	}
	if penalties {
		specs = append(specs,
			param.Spec{
				Name:        "frequencyPenalty",
				Label:       "Frequency Penalty",
				Type:        param.TypeNumber,
				Description: "Penalize tokens by how often they already appeared",
				Default:     0.0,
				Min:         param.Float(-2),
				Max:         param.Float(2),
				Step:        param.Float(0.1),
			},
			param.Spec{
				Name:        "presencePenalty",
				Label:       "Presence Penalty",
				Type:        param.TypeNumber,
				Description: "Penalize tokens that already appeared at all",
				Default:     0.0,
				Min:         param.Float(-2),
				Max:         param.Float(2),
				Step:        param.Float(0.1),
			},
		)
	}
	return append(specs, param.Spec{
		Name:        "streaming",
		Label:       "Streaming",
		Type:        param.TypeBoolean,
		Description: "Stream tokens as they are generated",
		Default:     true,
	})
}

func withResponseFormat(specs []param.Spec) []param.Spec {
	return append(specs, param.Spec{
		Name:        "responseFormat",
		Label:       "Response Format",
		Type:        param.TypeSelect,
		Description: "Force plain text or JSON object output",
		Default:     "text",
		Options:     []string{"text", "json_object"},
	})
}

func localParameters() []param.Spec {
	return append(chatParameters(8192, false), param.Spec{
		Name:        "baseUrl",
		Label:       "Base URL",
		Type:        param.TypeString,
		Description: "Ollama endpoint, e.g. http://localhost:11434",
		Default:     "http://localhost:11434",
		Required:    true,
		Validator:   "isURL(value)",
	})
}

func usd(in, out float64) pricing.Rate {
	return pricing.Rate{InputPerKTokens: in, OutputPerKTokens: out, Currency: "USD"}
}

// BuiltinModels returns the default model table. Prices are per 1K tokens
// and can be overridden with a pricing file.
func BuiltinModels() []ModelDescriptor {
	return []ModelDescriptor{
		{
			ID:              "gpt-4o",
			DisplayName:     "GPT-4o",
			Provider:        ProviderOpenAI,
			ModelIdentifier: "gpt-4o",
			Category:        CategoryChat,
			Capabilities:    []string{"chat", "code", "analysis", "vision", "function-calling", "json"},
			Parameters:      withResponseFormat(chatParameters(16384, true)),
			Pricing:         usd(0.0025, 0.01),
			Performance:     Performance{Speed: SpeedFast, Quality: QualityVeryHigh, ContextLength: 128000, SupportedLanguages: allLanguages},
			Features:        Features{Streaming: true, FunctionCalling: true, Vision: true, JSONMode: true, ParallelProcessing: true},
			Availability:    Availability{Regions: globalRegions, RateLimits: RateLimits{Requests: 10000, Tokens: 2000000}},
		},
		{
			ID:              "gpt-4o-mini",
			DisplayName:     "GPT-4o mini",
			Provider:        ProviderOpenAI,
			ModelIdentifier: "gpt-4o-mini",
			Category:        CategoryChat,
			Capabilities:    []string{"chat", "code", "vision", "function-calling", "json"},
			Parameters:      withResponseFormat(chatParameters(16384, true)),
			Pricing:         usd(0.00015, 0.0006),
			Performance:     Performance{Speed: SpeedFast, Quality: QualityHigh, ContextLength: 128000, SupportedLanguages: allLanguages},
			Features:        Features{Streaming: true, FunctionCalling: true, Vision: true, JSONMode: true, ParallelProcessing: true},
			Availability:    Availability{Regions: globalRegions, RateLimits: RateLimits{Requests: 30000, Tokens: 150000000}},
		},
		{
			ID:              "gpt-4",
			DisplayName:     "GPT-4",
			Provider:        ProviderOpenAI,
			ModelIdentifier: "gpt-4",
			Category:        CategoryChat,
			Capabilities:    []string{"chat", "code", "analysis", "function-calling"},
			Parameters:      chatParameters(8192, true),
			Pricing:         usd(0.03, 0.06),
			Performance:     Performance{Speed: SpeedSlow, Quality: QualityVeryHigh, ContextLength: 8192, SupportedLanguages: allLanguages},
			Features:        Features{Streaming: true, FunctionCalling: true},
			Availability:    Availability{Regions: globalRegions, RateLimits: RateLimits{Requests: 10000, Tokens: 300000}},
		},
		{
			ID:              "gpt-3.5-turbo",
			DisplayName:     "GPT-3.5 Turbo",
			Provider:        ProviderOpenAI,
			ModelIdentifier: "gpt-3.5-turbo",
			Category:        CategoryChat,
			Capabilities:    []string{"chat", "code", "function-calling", "json"},
			Parameters:      withResponseFormat(chatParameters(4096, true)),
			Pricing:         usd(0.0005, 0.0015),
			Performance:     Performance{Speed: SpeedFast, Quality: QualityGood, ContextLength: 16385, SupportedLanguages: allLanguages},
			Features:        Features{Streaming: true, FunctionCalling: true, JSONMode: true, ParallelProcessing: true},
			Availability:    Availability{Regions: globalRegions, RateLimits: RateLimits{Requests: 10000, Tokens: 2000000}},
		},
		{
			ID:              "text-embedding-ada-002",
			DisplayName:     "Ada Embeddings v2",
			Provider:        ProviderOpenAI,
			ModelIdentifier: "text-embedding-ada-002",
			Category:        CategoryEmbedding,
			Capabilities:    []string{"embeddings"},
			Pricing:         usd(0.0001, 0),
			Performance:     Performance{Speed: SpeedFast, Quality: QualityGood, ContextLength: 8191, SupportedLanguages: allLanguages},
			Features:        Features{ParallelProcessing: true},
			Availability:    Availability{Regions: globalRegions, RateLimits: RateLimits{Requests: 3000, Tokens: 1000000}},
		},
		{
			ID:              "claude-3-5-sonnet",
			DisplayName:     "Claude 3.5 Sonnet",
			Provider:        ProviderAnthropic,
			ModelIdentifier: "claude-3-5-sonnet-20241022",
			Category:        CategoryChat,
			Capabilities:    []string{"chat", "code", "analysis", "vision", "function-calling", "creative"},
			Parameters:      chatParameters(8192, false),
			Pricing:         usd(0.003, 0.015),
			Performance:     Performance{Speed: SpeedMedium, Quality: QualityVeryHigh, ContextLength: 200000, SupportedLanguages: allLanguages},
			Features:        Features{Streaming: true, FunctionCalling: true, Vision: true},
			Availability:    Availability{Regions: cloudRegions, RateLimits: RateLimits{Requests: 4000, Tokens: 400000}},
		},
		{
			ID:              "claude-3-haiku",
			DisplayName:     "Claude 3 Haiku",
			Provider:        ProviderAnthropic,
			ModelIdentifier: "claude-3-haiku-20240307",
			Category:        CategoryChat,
			Capabilities:    []string{"chat", "code", "vision"},
			Parameters:      chatParameters(4096, false),
			Pricing:         usd(0.00025, 0.00125),
			Performance:     Performance{Speed: SpeedFast, Quality: QualityGood, ContextLength: 200000, SupportedLanguages: allLanguages},
			Features:        Features{Streaming: true, FunctionCalling: true, Vision: true},
			Availability:    Availability{Regions: cloudRegions, RateLimits: RateLimits{Requests: 4000, Tokens: 400000}},
		},
		{
			ID:              "claude-3-opus",
			DisplayName:     "Claude 3 Opus",
			Provider:        ProviderAnthropic,
			ModelIdentifier: "claude-3-opus-20240229",
			Category:        CategoryChat,
			Capabilities:    []string{"chat", "code", "analysis", "vision", "creative"},
			Parameters:      chatParameters(4096, false),
			Pricing:         usd(0.015, 0.075),
			Performance:     Performance{Speed: SpeedSlow, Quality: QualityVeryHigh, ContextLength: 200000, SupportedLanguages: allLanguages},
			Features:        Features{Streaming: true, FunctionCalling: true, Vision: true},
			Availability:    Availability{Regions: usRegions, RateLimits: RateLimits{Requests: 4000, Tokens: 400000}},
		},
		{
			ID:              "gemini-1.5-pro",
			DisplayName:     "Gemini 1.5 Pro",
			Provider:        ProviderGoogle,
			ModelIdentifier: "gemini-1.5-pro",
			Category:        CategoryChat,
			Capabilities:    []string{"chat", "code", "analysis", "vision", "function-calling", "json"},
			Parameters:      withResponseFormat(chatParameters(8192, false)),
			Pricing:         usd(0.00125, 0.005),
			Performance:     Performance{Speed: SpeedMedium, Quality: QualityVeryHigh, ContextLength: 2000000, SupportedLanguages: allLanguages},
			Features:        Features{Streaming: true, FunctionCalling: true, Vision: true, JSONMode: true},
			Availability:    Availability{Regions: cloudRegions, RateLimits: RateLimits{Requests: 1000, Tokens: 4000000}},
		},
		{
			ID:              "gemini-1.5-flash",
			DisplayName:     "Gemini 1.5 Flash",
			Provider:        ProviderGoogle,
			ModelIdentifier: "gemini-1.5-flash",
			Category:        CategoryChat,
			Capabilities:    []string{"chat", "code", "vision", "function-calling", "json"},
			Parameters:      withResponseFormat(chatParameters(8192, false)),
			Pricing:         usd(0.000075, 0.0003),
			Performance:     Performance{Speed: SpeedFast, Quality: QualityHigh, ContextLength: 1000000, SupportedLanguages: allLanguages},
			Features:        Features{Streaming: true, FunctionCalling: true, Vision: true, JSONMode: true, ParallelProcessing: true},
			Availability:    Availability{Regions: cloudRegions, RateLimits: RateLimits{Requests: 2000, Tokens: 4000000}},
		},
		{
			ID:              "llama-3-70b",
			DisplayName:     "Llama 3 70B",
			Provider:        ProviderMeta,
			ModelIdentifier: "meta-llama/Meta-Llama-3-70B-Instruct",
			Category:        CategoryChat,
			Capabilities:    []string{"chat", "code", "creative"},
			Parameters:      chatParameters(8192, true),
			Pricing:         usd(0.00059, 0.00079),
			Performance:     Performance{Speed: SpeedMedium, Quality: QualityHigh, ContextLength: 8192, SupportedLanguages: []string{"en"}},
			Features:        Features{Streaming: true},
			Availability:    Availability{Regions: usRegions, RateLimits: RateLimits{Requests: 600, Tokens: 1000000}},
		},
		{
			ID:              "command-r-plus",
			DisplayName:     "Command R+",
			Provider:        ProviderCohere,
			ModelIdentifier: "command-r-plus",
			Category:        CategoryChat,
			Capabilities:    []string{"chat", "analysis", "function-calling", "rag"},
			Parameters:      chatParameters(4096, true),
			Pricing:         usd(0.0025, 0.01),
			Performance:     Performance{Speed: SpeedMedium, Quality: QualityHigh, ContextLength: 128000, SupportedLanguages: allLanguages},
			Features:        Features{Streaming: true, FunctionCalling: true},
			Availability:    Availability{Regions: cloudRegions, RateLimits: RateLimits{Requests: 10000, Tokens: 1000000}},
		},
		{
			ID:              "llama3-local",
			DisplayName:     "Llama 3 8B (Ollama)",
			Provider:        ProviderLocal,
			ModelIdentifier: "llama3",
			Category:        CategoryChat,
			Capabilities:    []string{"chat", "code", "offline"},
			Parameters:      localParameters(),
			Pricing:         usd(0, 0),
			Performance:     Performance{Speed: SpeedMedium, Quality: QualityGood, ContextLength: 8192, SupportedLanguages: []string{"en"}},
			Features:        Features{Streaming: true},
			Availability:    Availability{Regions: globalRegions},
		},
	}
}
