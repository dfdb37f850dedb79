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

// Package llm is the model registry: a curated table of LLM models with
// their pricing, performance, features and tunable parameters, plus the
// scoring, recommendation, configuration and cost logic built over it.
// It also carries the provider records that supply credentials to the
// workflow generator.
package llm

import (
	"slices"

	"github.com/tombee/flowkit/pkg/llm/pricing"
	"github.com/tombee/flowkit/pkg/param"
)

// ProviderName identifies a model vendor.
type ProviderName string

const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderGoogle    ProviderName = "google"
	ProviderMeta      ProviderName = "meta"
	ProviderCohere    ProviderName = "cohere"
	ProviderLocal     ProviderName = "local"
)

// ModelCategory is the kind of endpoint a model serves.
type ModelCategory string

const (
	CategoryChat            ModelCategory = "chat"
	CategoryCompletion      ModelCategory = "completion"
	CategoryEmbedding       ModelCategory = "embedding"
	CategoryFunctionCalling ModelCategory = "function-calling"
)

// SpeedTier is a coarse latency class.
type SpeedTier string

const (
	SpeedFast   SpeedTier = "fast"
	SpeedMedium SpeedTier = "medium"
	SpeedSlow   SpeedTier = "slow"
)

// QualityTier is a coarse output quality class.
type QualityTier string

const (
	QualityBasic    QualityTier = "basic"
	QualityGood     QualityTier = "good"
	QualityHigh     QualityTier = "high"
	QualityVeryHigh QualityTier = "very-high"
)

// ModelDescriptor describes one model. Descriptors are reference data and
// are never mutated after the registry is built.
type ModelDescriptor struct {
	ID              string        `json:"id"`
	DisplayName     string        `json:"displayName"`
	Provider        ProviderName  `json:"provider"`
	ModelIdentifier string        `json:"modelIdentifier"`
	Category        ModelCategory `json:"category"`
	Capabilities    []string      `json:"capabilities"`
	Parameters      []param.Spec  `json:"parameters"`
	Pricing         pricing.Rate  `json:"pricing"`
	Performance     Performance   `json:"performance"`
	Features        Features      `json:"features"`
	Availability    Availability  `json:"availability"`
}

// Performance describes speed, quality and context size.
type Performance struct {
	Speed              SpeedTier   `json:"speed"`
	Quality            QualityTier `json:"quality"`
	ContextLength      int         `json:"contextLength"`
	SupportedLanguages []string    `json:"supportedLanguages"`
}

// Features are the optional API features a model supports.
type Features struct {
	Streaming          bool `json:"streaming"`
	FunctionCalling    bool `json:"functionCalling"`
	Vision             bool `json:"vision"`
	JSONMode           bool `json:"jsonMode"`
	ParallelProcessing bool `json:"parallelProcessing"`
}

// Count returns the number of supported features.
func (f Features) Count() int {
	n := 0
	for _, on := range []bool{f.Streaming, f.FunctionCalling, f.Vision, f.JSONMode, f.ParallelProcessing} {
		if on {
			n++
		}
	}
	return n
}

// Availability lists where and how much a model can be used.
type Availability struct {
	Regions    []string   `json:"regions"`
	RateLimits RateLimits `json:"rateLimits"`
}

// RateLimits are per-minute request and token limits.
type RateLimits struct {
	Requests int `json:"requests"`
	Tokens   int `json:"tokens"`
}

// HasCapability reports whether the model lists capability.
func (m ModelDescriptor) HasCapability(capability string) bool {
	return slices.Contains(m.Capabilities, capability)
}

// SharesCapability reports whether two models have any capability in common.
func (m ModelDescriptor) SharesCapability(other ModelDescriptor) bool {
	for _, c := range m.Capabilities {
		if other.HasCapability(c) {
			return true
		}
	}
	return false
}

// AvailableIn reports whether the model is offered in region.
// Models listing "global" are available everywhere.
func (m ModelDescriptor) AvailableIn(region string) bool {
	return slices.Contains(m.Availability.Regions, "global") || slices.Contains(m.Availability.Regions, region)
}

// Parameter returns the spec of a named parameter.
func (m ModelDescriptor) Parameter(name string) (param.Spec, bool) {
	return param.Find(m.Parameters, name)
}
