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

package llm

import (
	"fmt"
	"sort"
	"strings"
)

// Budget is the spending appetite of a recommendation request.
type Budget string

const (
	BudgetLow    Budget = "low"
	BudgetMedium Budget = "medium"
	BudgetHigh   Budget = "high"
)

// Preference is what to optimize for.
type Preference string

const (
	PreferSpeed    Preference = "speed"
	PreferQuality  Preference = "quality"
	PreferBalanced Preference = "balanced"
)

// Load is the expected request volume.
type Load string

const (
	LoadLow    Load = "low"
	LoadMedium Load = "medium"
	LoadHigh   Load = "high"
)

// RecommendationContext describes what the caller needs from a model.
type RecommendationContext struct {
	UseCase              string     `json:"useCase"`
	Budget               Budget     `json:"budget"`
	Performance          Preference `json:"performance"`
	RequiredCapabilities []string   `json:"requiredCapabilities,omitempty"`
	ExpectedLoad         Load       `json:"expectedLoad"`
	Region               string     `json:"region,omitempty"`
}

// Recommendation is a scored model suggestion.
type Recommendation struct {
	Model      ModelDescriptor `json:"model"`
	Confidence float64         `json:"confidence"`
	Reasons    []string        `json:"reasons"`
}

// Confidence is scored in integer tenths so threshold comparisons are exact.
const (
	baseConfidence    = 5
	minConfidence     = 3
	maxRecommendation = 5

	// lowBudgetInputPrice is the per-1K input price above which a model
	// is considered too expensive for a low budget.
	lowBudgetInputPrice = 0.001
)

// Recommend returns up to five models ranked by confidence. Models with
// confidence at or below 0.3 are dropped.
func (r *Registry) Recommend(ctx RecommendationContext) []Recommendation {
	var recs []Recommendation
	for _, m := range r.models {
		tenths, reasons := confidenceTenths(m, ctx)
		if tenths <= minConfidence {
			continue
		}
		recs = append(recs, Recommendation{Model: m, Confidence: float64(tenths) / 10, Reasons: reasons})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Confidence != recs[j].Confidence {
			return recs[i].Confidence > recs[j].Confidence
		}
		return recs[i].Model.ID < recs[j].Model.ID
	})
	if len(recs) > maxRecommendation {
		recs = recs[:maxRecommendation]
	}
	return recs
}

func confidence(m ModelDescriptor, ctx RecommendationContext) (float64, []string) {
	tenths, reasons := confidenceTenths(m, ctx)
	return float64(tenths) / 10, reasons
}

func confidenceTenths(m ModelDescriptor, ctx RecommendationContext) (int, []string) {
	score := baseConfidence
	var reasons []string

	var missing []string
	for _, c := range ctx.RequiredCapabilities {
		if !m.HasCapability(c) {
			missing = append(missing, c)
			score -= 2
		}
	}
	if len(missing) > 0 {
		reasons = append(reasons, fmt.Sprintf("missing capabilities: %s", strings.Join(missing, ", ")))
	}

	if ctx.Budget == BudgetLow && m.Pricing.InputPerKTokens > lowBudgetInputPrice {
		score -= 3
		reasons = append(reasons, "input price is high for a low budget")
	}
	if ctx.Budget == BudgetHigh && m.Performance.Quality == QualityVeryHigh {
		score += 2
		reasons = append(reasons, "top quality tier fits a high budget")
	}

	switch {
	case ctx.Performance == PreferSpeed && m.Performance.Speed == SpeedFast:
		score += 3
		reasons = append(reasons, "fast model for a speed preference")
	case ctx.Performance == PreferQuality && m.Performance.Quality == QualityVeryHigh:
		score += 3
		reasons = append(reasons, "very-high quality for a quality preference")
	case ctx.Performance == PreferBalanced:
		score++
	}

	if ctx.ExpectedLoad == LoadHigh && m.Performance.Speed == SpeedSlow {
		score -= 2
		reasons = append(reasons, "slow model under high load")
	}
	if ctx.Region != "" && !m.AvailableIn(ctx.Region) {
		score -= 4
		reasons = append(reasons, fmt.Sprintf("not available in %s", ctx.Region))
	}

	return clamp(score, 0, 10), reasons
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
