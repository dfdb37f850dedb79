package llm

import (
	"fmt"
	"strings"

	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/param"
)

// ConfigValidation is the outcome of ValidateConfiguration.
type ConfigValidation struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

const (
	highTemperature    = 1.5
	highMaxTokens      = 8000
	analysisTokenCap   = 4096
	creativePenalty    = 0.3
	speedTemperature   = 0.1
	qualityTemperature = 0.7
)

// useCaseIs reports whether a free-text use case mentions any of kinds.
func useCaseIs(useCase string, kinds ...string) bool {
	lower := strings.ToLower(useCase)
	for _, k := range kinds {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// GenerateOptimalConfiguration derives parameter values for a model and
// use case. Parameters without a rule keep their default; parameters
// with no default are omitted.
func (r *Registry) GenerateOptimalConfiguration(m ModelDescriptor, ctx RecommendationContext) map[string]any {
	config := make(map[string]any, len(m.Parameters))
	for _, spec := range m.Parameters {
		switch spec.Name {
		case "temperature":
			switch ctx.Performance {
			case PreferSpeed:
				config[spec.Name] = speedTemperature
				continue
			case PreferQuality:
				config[spec.Name] = qualityTemperature
				continue
			}
		case "maxTokens":
			if useCaseIs(ctx.UseCase, "code", "analysis") {
				limit := float64(analysisTokenCap)
				if spec.Max != nil && *spec.Max < limit {
					limit = *spec.Max
				}
				config[spec.Name] = int(limit)
				continue
			}
		case "frequencyPenalty", "presencePenalty":
			if useCaseIs(ctx.UseCase, "creative") {
				config[spec.Name] = creativePenalty
			} else {
				config[spec.Name] = 0.0
			}
			continue
		}
		if spec.Default != nil {
			config[spec.Name] = spec.Default
		}
	}
	return config
}

// ValidateConfiguration checks config against the model's parameters.
// Missing optional parameters are filled with their defaults in config.
func (r *Registry) ValidateConfiguration(modelID string, config map[string]any) ConfigValidation {
	result := ConfigValidation{Valid: true}

	m, err := r.GetModel(modelID)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	for _, spec := range m.Parameters {
		value, present := config[spec.Name]
		if !present || value == nil {
			if spec.Required {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: is required", spec.Name))
				continue
			}
			if spec.Default != nil {
				config[spec.Name] = spec.Default
			}
			continue
		}
		if err := r.checker.Check(spec, value, config); err != nil {
			result.Errors = append(result.Errors, describeError(spec, err))
		}
	}

	if t, ok := param.Number(config["temperature"]); ok && t > highTemperature {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("temperature %.2f is very high and may produce incoherent output", t))
	}
	if mt, ok := param.Number(config["maxTokens"]); ok && mt > highMaxTokens {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("maxTokens %d is very large and increases cost and latency", int(mt)))
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// CheckParameter validates one value against a model parameter. Unknown
// parameter names pass.
func (r *Registry) CheckParameter(m ModelDescriptor, name string, value any, siblings map[string]any) error {
	spec, ok := m.Parameter(name)
	if !ok {
		return nil
	}
	return r.checker.Check(spec, value, siblings)
}

func describeError(spec param.Spec, err error) string {
	var ve *errors.ValidationError
	if errors.As(err, &ve) {
		return fmt.Sprintf("%s: %s", spec.Name, ve.Message)
	}
	return fmt.Sprintf("%s: %s", spec.Name, err.Error())
}
