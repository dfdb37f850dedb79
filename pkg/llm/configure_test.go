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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOptimalConfiguration(t *testing.T) {
	r := newRegistry(t)

	t.Run("code with speed preference", func(t *testing.T) {
		cfg := r.GenerateOptimalConfiguration(mustModel(t, "gpt-4o"), RecommendationContext{
			UseCase:     "code review",
			Performance: PreferSpeed,
		})
		assert.Equal(t, 0.1, cfg["temperature"])
		assert.Equal(t, 4096, cfg["maxTokens"])
		assert.Equal(t, 0.0, cfg["frequencyPenalty"])
		assert.Equal(t, 0.0, cfg["presencePenalty"])
		assert.Equal(t, 1.0, cfg["topP"])
		assert.Equal(t, true, cfg["streaming"])
		assert.Equal(t, "text", cfg["responseFormat"])
	})

	t.Run("analysis caps at model max", func(t *testing.T) {
		cfg := r.GenerateOptimalConfiguration(mustModel(t, "claude-3-haiku"), RecommendationContext{UseCase: "Analysis"})
		assert.Equal(t, 4096, cfg["maxTokens"])
		assert.Equal(t, 0.7, cfg["temperature"])
		assert.NotContains(t, cfg, "frequencyPenalty")
	})

	t.Run("creative penalties", func(t *testing.T) {
		cfg := r.GenerateOptimalConfiguration(mustModel(t, "llama-3-70b"), RecommendationContext{
			UseCase:     "creative writing",
			Performance: PreferQuality,
		})
		assert.Equal(t, 0.3, cfg["frequencyPenalty"])
		assert.Equal(t, 0.3, cfg["presencePenalty"])
		assert.Equal(t, 0.7, cfg["temperature"])
		assert.Equal(t, 2048, cfg["maxTokens"])
	})

	t.Run("result validates", func(t *testing.T) {
		m := mustModel(t, "gemini-1.5-pro")
		cfg := r.GenerateOptimalConfiguration(m, RecommendationContext{UseCase: "code", Performance: PreferBalanced})
		res := r.ValidateConfiguration(m.ID, cfg)
		assert.True(t, res.Valid, res.Errors)
	})
}

func TestValidateConfiguration(t *testing.T) {
	r := newRegistry(t)

	t.Run("fills defaults", func(t *testing.T) {
		cfg := map[string]any{"temperature": 0.2}
		res := r.ValidateConfiguration("gpt-4o", cfg)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Warnings)
		assert.Equal(t, 0.2, cfg["temperature"])
		assert.Equal(t, 2048, cfg["maxTokens"])
		assert.Equal(t, true, cfg["streaming"])
	})

	t.Run("range, type and option errors", func(t *testing.T) {
		res := r.ValidateConfiguration("gpt-4o", map[string]any{
			"temperature":    3.0,
			"maxTokens":      "lots",
			"responseFormat": "yaml",
		})
		assert.False(t, res.Valid)
		require.Len(t, res.Errors, 3)
		assert.Equal(t, "temperature: 3 is out of range [0, 2]", res.Errors[0])
		assert.Contains(t, res.Errors[1], "maxTokens: expected number")
		assert.Contains(t, res.Errors[2], "responseFormat")
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "temperature 3.00 is very high")
	})

	t.Run("high maxTokens warns", func(t *testing.T) {
		res := r.ValidateConfiguration("gpt-4o", map[string]any{"maxTokens": 9000, "temperature": 1.6})
		assert.True(t, res.Valid)
		assert.Len(t, res.Warnings, 2)
	})

	t.Run("required and validator", func(t *testing.T) {
		res := r.ValidateConfiguration("llama3-local", map[string]any{})
		assert.Equal(t, []string{"baseUrl: is required"}, res.Errors)

		res = r.ValidateConfiguration("llama3-local", map[string]any{"baseUrl": "localhost"})
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "rejected by validator")

		res = r.ValidateConfiguration("llama3-local", map[string]any{"baseUrl": "http://gpu-box:11434"})
		assert.True(t, res.Valid)
	})

	t.Run("unknown model", func(t *testing.T) {
		res := r.ValidateConfiguration("gpt-7", map[string]any{})
		assert.False(t, res.Valid)
		assert.Equal(t, []string{"model not found: gpt-7"}, res.Errors)
	})
}
