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

package model

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/internal/testing/fixture"
	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/llm"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestModelsList_Filters(t *testing.T) {
	fixture.Isolate(t)
	shared.SetJSONForTest(true)

	out, err := execute(t, "list", "--provider", "anthropic")
	require.NoError(t, err)

	var resp struct {
		Models []ModelInfo `json:"models"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Models)
	for _, m := range resp.Models {
		assert.Equal(t, "anthropic", m.Provider)
	}
	for i := 1; i < len(resp.Models); i++ {
		assert.GreaterOrEqual(t, resp.Models[i-1].Score, resp.Models[i].Score)
	}
}

func TestModelsInfo(t *testing.T) {
	fixture.Isolate(t)

	out, err := execute(t, "info", "gpt-4o")
	require.NoError(t, err)
	assert.Contains(t, out, "gpt-4o")
	assert.Contains(t, out, "temperature")

	_, err = execute(t, "info", "gpt-9")
	var nf *errors.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Equal(t, shared.ExitNotFound, shared.ExitCodeFor(err))
}

func TestModelsRecommend(t *testing.T) {
	fixture.Isolate(t)

	_, err := execute(t, "recommend")
	assert.Error(t, err, "--use-case is required")

	_, err = execute(t, "recommend", "--use-case", "chat", "--budget", "huge")
	assert.Error(t, err)

	shared.SetJSONForTest(true)
	out, err := execute(t, "recommend", "--use-case", "customer support chat", "--budget", "HIGH")
	require.NoError(t, err)
	var resp struct {
		Recommendations []llm.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.LessOrEqual(t, len(resp.Recommendations), 5)
}

func TestModelsConfigure(t *testing.T) {
	fixture.Isolate(t)
	shared.SetJSONForTest(true)

	out, err := execute(t, "configure", "gpt-4o", "--performance", "speed")
	require.NoError(t, err)

	var resp struct {
		Config     map[string]any       `json:"config"`
		Validation llm.ConfigValidation `json:"validation"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 0.1, resp.Config["temperature"])
	assert.True(t, resp.Validation.Valid)
}

func TestModelsValidate(t *testing.T) {
	fixture.Isolate(t)

	out, err := execute(t, "validate", "gpt-4o", "--set", "temperature=0.3")
	require.NoError(t, err)
	assert.Contains(t, out, "configuration is valid")

	_, err = execute(t, "validate", "gpt-4o", "--set", "temperature=5")
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCodeFor(err))

	_, err = execute(t, "validate", "gpt-4o", "--set", "temperature")
	var ve *errors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestModelsCost(t *testing.T) {
	fixture.Isolate(t)
	shared.SetJSONForTest(true)

	out, err := execute(t, "cost", "gpt-4o", "--requests-per-day", "100", "--days", "10")
	require.NoError(t, err)

	var resp struct {
		Estimate llm.CostEstimate `json:"estimate"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "gpt-4o", resp.Estimate.ModelID)
	assert.Greater(t, resp.Estimate.TotalCost, 0.0)
	assert.InDelta(t, resp.Estimate.TotalCost,
		resp.Estimate.Breakdown.InputCost+resp.Estimate.Breakdown.OutputCost, 1e-9)
}

func TestParseSettings(t *testing.T) {
	reg, err := llm.NewRegistry()
	require.NoError(t, err)
	m, err := reg.GetModel("gpt-4o")
	require.NoError(t, err)

	got, err := parseSettings(m, []string{"temperature=0.5", "custom=x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"temperature": 0.5, "custom": "x"}, got)

	_, err = parseSettings(m, []string{"temperature=hot"})
	assert.Error(t, err)

	_, err = parseSettings(m, []string{"=1"})
	assert.Error(t, err)
}

func TestEnumValue(t *testing.T) {
	var v string
	e := newEnum(&v, "medium", "low", "medium", "high")
	assert.Equal(t, "medium", e.String())
	require.NoError(t, e.Set("Low"))
	assert.Equal(t, "low", v)
	assert.Error(t, e.Set("extreme"))
	assert.Equal(t, "low|medium|high", e.Type())
}
