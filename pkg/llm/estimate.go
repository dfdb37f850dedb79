package llm

import (
	"fmt"

	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/llm/pricing"
	"github.com/tombee/flowkit/pkg/param"
)

// Usage is the expected traffic for a cost estimate.
type Usage struct {
	RequestsPerDay      int `json:"requestsPerDay"`
	AverageInputTokens  int `json:"averageInputTokens"`
	AverageOutputTokens int `json:"averageOutputTokens"`
	Days                int `json:"days"`
}

// CostEstimate is the projected spend for a model under a usage profile.
type CostEstimate struct {
	ModelID      string        `json:"modelId"`
	TotalCost    float64       `json:"totalCost"`
	Breakdown    CostBreakdown `json:"breakdown"`
	Optimization Optimization  `json:"optimization"`
}

// CostBreakdown splits the total by token direction.
type CostBreakdown struct {
	InputCost  float64 `json:"inputCost"`
	OutputCost float64 `json:"outputCost"`
	Currency   string  `json:"currency"`
}

// Optimization describes the best saving found and generic advice.
type Optimization struct {
	PotentialSavings float64  `json:"potentialSavings"`
	Alternative      string   `json:"alternative,omitempty"`
	Suggestions      []string `json:"suggestions"`
}

const (
	// cappedMaxTokens is the output cap considered as a saving.
	cappedMaxTokens = 2048

	// cachingThreshold is the daily request volume above which response
	// caching is suggested.
	cachingThreshold = 1000
)

// EstimateCost projects the spend of modelID over usage. config is the
// model configuration in effect; only maxTokens and temperature are read.
func (r *Registry) EstimateCost(modelID string, config map[string]any, usage Usage) (*CostEstimate, error) {
	m, err := r.GetModel(modelID)
	if err != nil {
		return nil, err
	}
	if usage.RequestsPerDay < 0 || usage.Days < 0 || usage.AverageInputTokens < 0 || usage.AverageOutputTokens < 0 {
		return nil, &errors.ValidationError{
			Field:   "usage",
			Message: "usage values must not be negative",
		}
	}

	requests := float64(usage.RequestsPerDay) * float64(usage.Days)
	in := float64(usage.AverageInputTokens)
	out := float64(usage.AverageOutputTokens)

	current := pricing.Calculate(m.Pricing, requests, in, out)
	estimate := &CostEstimate{
		ModelID:   m.ID,
		TotalCost: current.Total,
		Breakdown: CostBreakdown{
			InputCost:  current.InputCost,
			OutputCost: current.OutputCost,
			Currency:   current.Currency,
		},
	}

	var bestSaving float64
	var bestSuggestion string

	for _, alt := range r.models {
		if alt.ID == m.ID || alt.Provider != m.Provider {
			continue
		}
		if alt.Pricing.InputPerKTokens >= m.Pricing.InputPerKTokens || !alt.SharesCapability(m) {
			continue
		}
		saving := current.Total - pricing.Calculate(alt.Pricing, requests, in, out).Total
		if saving > bestSaving {
			bestSaving = saving
			estimate.Optimization.Alternative = alt.ID
			bestSuggestion = fmt.Sprintf("Switch to %s to save %s over %d days", alt.DisplayName,
				pricing.FormatCost(saving, current.Currency), usage.Days)
		}
	}

	if capSaving := maxTokensCapSaving(m, config, requests, in, out, current.Total); capSaving > bestSaving {
		bestSaving = capSaving
		estimate.Optimization.Alternative = ""
		bestSuggestion = fmt.Sprintf("Cap maxTokens at %d to save %s over %d days", cappedMaxTokens,
			pricing.FormatCost(capSaving, current.Currency), usage.Days)
	}

	estimate.Optimization.PotentialSavings = bestSaving
	if bestSuggestion != "" {
		estimate.Optimization.Suggestions = append(estimate.Optimization.Suggestions, bestSuggestion)
	}
	if t, ok := param.Number(config["temperature"]); ok && t > 0.7 {
		estimate.Optimization.Suggestions = append(estimate.Optimization.Suggestions,
			"Reduce temperature to get shorter, more focused responses")
	}
	if usage.RequestsPerDay > cachingThreshold {
		estimate.Optimization.Suggestions = append(estimate.Optimization.Suggestions,
			fmt.Sprintf("Cache responses for repeated queries; %d requests/day is above %d", usage.RequestsPerDay, cachingThreshold))
	}
	return estimate, nil
}

// maxTokensCapSaving is the saving from limiting output to cappedMaxTokens.
// It is zero when the configuration already caps output at or below it.
func maxTokensCapSaving(m ModelDescriptor, config map[string]any, requests, in, out, total float64) float64 {
	if mt, ok := param.Number(config["maxTokens"]); ok && mt <= cappedMaxTokens {
		return 0
	}
	if out <= cappedMaxTokens {
		return 0
	}
	return total - pricing.Calculate(m.Pricing, requests, in, cappedMaxTokens).Total
}
