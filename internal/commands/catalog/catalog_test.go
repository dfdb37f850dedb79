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

package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/internal/testing/fixture"
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

func TestCatalogList(t *testing.T) {
	fixture.Isolate(t)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "NODE"))
	assert.Contains(t, out, "Chat Models")
}

func TestCatalogCategory_JSON(t *testing.T) {
	fixture.Isolate(t)
	shared.SetJSONForTest(true)

	out, err := execute(t, "category", "Chat Models")
	require.NoError(t, err)

	var resp struct {
		Success bool `json:"success"`
		Nodes   []struct {
			Category string `json:"category"`
		} `json:"nodes"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.NotZero(t, resp.Count)
	for _, n := range resp.Nodes {
		assert.Equal(t, "Chat Models", n.Category)
	}
}

func TestCatalogSearch_NoMatch(t *testing.T) {
	fixture.Isolate(t)

	out, err := execute(t, "search", "zzz-no-such-node")
	require.NoError(t, err)
	assert.Equal(t, "No matching nodes.\n", out)
}

func TestCatalogRecommend_RequiresArg(t *testing.T) {
	fixture.Isolate(t)
	_, err := execute(t, "recommend")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
