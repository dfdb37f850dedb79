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

// Package fixture provides graphs, agent files and an isolated
// environment for command and server tests.
package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/internal/commands/shared"
	secretstore "github.com/tombee/flowkit/internal/secrets"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/workflow"
	"github.com/tombee/flowkit/pkg/workflow/generator"
)

// APIKey is the OpenAI key placed in fixture graphs and in the isolated
// environment.
const APIKey = "sk-fixture-0123456789abcdef"

// Isolate points the config dir at a temp dir, sets OPENAI_API_KEY to
// APIKey and restricts secret lookup to the environment. It returns the
// temp dir and resets the global output flags on cleanup.
func Isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("OPENAI_API_KEY", APIKey)

	orig := shared.SecretBackends
	shared.SecretBackends = func() []secretstore.Backend {
		return []secretstore.Backend{secretstore.NewEnvBackend()}
	}
	t.Cleanup(func() {
		shared.SecretBackends = orig
		shared.SetJSONForTest(false)
		shared.SetQueryForTest("")
		shared.SetConfigPathForTest("")
	})
	return dir
}

// Provider returns the active OpenAI provider used by fixture graphs.
func Provider() *llm.Provider {
	return &llm.Provider{ID: "openai", APIKey: APIKey, Models: []string{"gpt-4o"}, IsActive: true}
}

// Graph generates a graph of the given agent type with default settings.
func Graph(t *testing.T, name string, agentType generator.AgentType) *workflow.Graph {
	t.Helper()
	g, err := generator.New().Generate(&generator.AgentDefinition{Name: name, Type: agentType}, Provider())
	require.NoError(t, err)
	return g
}

// WriteGraph writes g as JSON under dir and returns the path.
func WriteGraph(t *testing.T, dir string, g *workflow.Graph) string {
	t.Helper()
	data, err := g.JSON()
	require.NoError(t, err)
	return WriteFile(t, dir, g.Name+".json", string(data))
}

// WriteFile writes body to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}
