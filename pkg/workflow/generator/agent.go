package generator

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tombee/flowkit/pkg/errors"
)

// AgentType selects the graph template.
type AgentType string

const (
	AgentChat      AgentType = "chat"
	AgentRAG       AgentType = "rag"
	AgentAssistant AgentType = "assistant"
	AgentDefault   AgentType = "default"
)

// AgentDefinition is the abstract description of an agent that a graph
// is generated from. Optional tuning fields are pointers; nil means use
// the generator default.
type AgentDefinition struct {
	Name             string    `yaml:"name" json:"name"`
	Description      string    `yaml:"description,omitempty" json:"description,omitempty"`
	Type             AgentType `yaml:"type" json:"type"`
	SystemPrompt     string    `yaml:"systemPrompt,omitempty" json:"systemPrompt,omitempty"`
	Model            string    `yaml:"model,omitempty" json:"model,omitempty"`
	Temperature      *float64  `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	MaxTokens        *int      `yaml:"maxTokens,omitempty" json:"maxTokens,omitempty"`
	TopP             *float64  `yaml:"topP,omitempty" json:"topP,omitempty"`
	FrequencyPenalty *float64  `yaml:"frequencyPenalty,omitempty" json:"frequencyPenalty,omitempty"`
	PresencePenalty  *float64  `yaml:"presencePenalty,omitempty" json:"presencePenalty,omitempty"`
	Documents        []string  `yaml:"documents,omitempty" json:"documents,omitempty"`
	IndexName        string    `yaml:"indexName,omitempty" json:"indexName,omitempty"`
	TopK             *int      `yaml:"topK,omitempty" json:"topK,omitempty"`
}

// ParseAgent decodes an agent definition from YAML or JSON and validates it.
func ParseAgent(data []byte) (*AgentDefinition, error) {
	var a AgentDefinition
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse agent definition: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent definition: %w", err)
	}
	return &a, nil
}

// Template returns the graph template for the agent type. Empty and
// "default" map to chat. The type is matched case-insensitively.
func (a *AgentDefinition) Template() (AgentType, error) {
	switch t := AgentType(strings.ToLower(string(a.Type))); t {
	case AgentChat, AgentRAG, AgentAssistant:
		return t, nil
	case "", AgentDefault:
		return AgentChat, nil
	default:
		return "", &errors.ValidationError{
			Field:      "type",
			Message:    fmt.Sprintf("unknown agent type %q", a.Type),
			Suggestion: "use one of: chat, rag, assistant, default",
		}
	}
}

// Validate checks the agent type and the bounds of the tuning fields.
func (a *AgentDefinition) Validate() error {
	var errs errors.MultiValidationError

	if _, err := a.Template(); err != nil {
		var ve *errors.ValidationError
		errors.As(err, &ve)
		errs.Errors = append(errs.Errors, ve)
	}
	checkRange(&errs, "temperature", a.Temperature, 0, 2)
	checkRange(&errs, "topP", a.TopP, 0, 1)
	checkRange(&errs, "frequencyPenalty", a.FrequencyPenalty, -2, 2)
	checkRange(&errs, "presencePenalty", a.PresencePenalty, -2, 2)
	if a.MaxTokens != nil && *a.MaxTokens < 1 {
		errs.Add("maxTokens", "must be at least 1", "")
	}
	if a.TopK != nil && *a.TopK < 1 {
		errs.Add("topK", "must be at least 1", "")
	}

	if errs.HasErrors() {
		return &errs
	}
	return nil
}

func checkRange(errs *errors.MultiValidationError, field string, v *float64, lo, hi float64) {
	if v == nil || (*v >= lo && *v <= hi) {
		return
	}
	errs.Add(field, fmt.Sprintf("%g is out of range [%g, %g]", *v, lo, hi), "")
}
