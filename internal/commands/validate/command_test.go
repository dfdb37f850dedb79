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

package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/internal/testing/fixture"
	"github.com/tombee/flowkit/pkg/workflow/generator"
)

func execute(args ...string) (string, error) {
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()

	if cmd.Use != "validate <graph>" {
		t.Errorf("expected use 'validate <graph>', got %q", cmd.Use)
	}
	for _, name := range []string{"strict", "performance", "cost", "watch"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("--%s flag not defined", name)
		}
	}
}

func TestValidateValidGraph(t *testing.T) {
	dir := fixture.Isolate(t)
	path := fixture.WriteGraph(t, dir, fixture.Graph(t, "helper", generator.AgentChat))

	out, err := execute(path, "--performance")
	require.NoError(t, err, out)
	assert.Contains(t, out, "[OK]")
	assert.Contains(t, out, "helper")
	assert.Contains(t, out, "perf:")
}

func TestValidateInvalidGraph(t *testing.T) {
	dir := fixture.Isolate(t)
	path := fixture.WriteFile(t, dir, "empty.yaml", "name: empty\nnodes: []\nedges: []\n")

	out, err := execute(path)
	require.Error(t, err)
	assert.Equal(t, shared.ExitFailed, shared.ExitCodeFor(err))
	assert.Contains(t, out, "[INVALID]")
	assert.Contains(t, out, "workflow has no nodes")
}

func TestValidateJSON(t *testing.T) {
	dir := fixture.Isolate(t)
	shared.SetJSONForTest(true)
	path := fixture.WriteGraph(t, dir, fixture.Graph(t, "assistant", generator.AgentChat))

	out, err := execute(path, "--cost")
	require.NoError(t, err, out)

	var resp struct {
		Success    bool `json:"success"`
		Validation struct {
			Valid bool `json:"valid"`
			Score int  `json:"score"`
		} `json:"validation"`
		Metrics struct {
			CostEstimate string `json:"costEstimate"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Validation.Valid)
	assert.NotEmpty(t, resp.Metrics.CostEstimate)
}

func TestValidateJSON_MissingFile(t *testing.T) {
	dir := fixture.Isolate(t)
	shared.SetJSONForTest(true)

	out, err := execute(filepath.Join(dir, "nope.json"))
	require.Error(t, err)
	assert.Equal(t, shared.ExitInvalidInput, shared.ExitCodeFor(err))
	assert.Empty(t, err.Error())
	assert.Contains(t, out, `"success": false`)
}

func TestValidateQuery(t *testing.T) {
	dir := fixture.Isolate(t)
	shared.SetQueryForTest(".validation.valid")
	path := fixture.WriteGraph(t, dir, fixture.Graph(t, "helper", generator.AgentChat))

	out, err := execute(path)
	require.NoError(t, err)
	assert.Equal(t, "true", strings.TrimSpace(out))
}

func TestRunWatch_Revalidates(t *testing.T) {
	dir := fixture.Isolate(t)
	path := fixture.WriteGraph(t, dir, fixture.Graph(t, "helper", generator.AgentChat))

	env, err := shared.NewEnv(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- runWatch(ctx, out, env, path, defaultOpts()) }()

	require.Eventually(t, func() bool { return strings.Count(out.String(), "[OK]") == 1 }, 2*time.Second, 10*time.Millisecond)

	// Give the watcher time to register before changing the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("name: broken\nnodes: []\nedges: []\n"), 0o600))

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "[INVALID]") }, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
