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

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/flowkit/internal/testing/fixture"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "flowkit", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"verbose", "quiet", "json", "config", "trace", "query"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2025-12-22")
	defer SetVersion("dev", "unknown", "unknown")

	v, c, b := GetVersion()
	assert.Equal(t, "1.2.3", v)
	assert.Equal(t, "abc123", c)
	assert.Equal(t, "2025-12-22", b)
}

func TestNewApp_Commands(t *testing.T) {
	app := NewApp()

	want := map[string]string{
		"generate":   "workflow",
		"validate":   "workflow",
		"modify":     "workflow",
		"export":     "workflow",
		"catalog":    "discovery",
		"models":     "discovery",
		"mcp-server": "integration",
		"config":     "configuration",
		"secrets":    "configuration",
		"completion": "configuration",
		"version":    "",
	}
	got := map[string]string{}
	for _, c := range app.Commands() {
		got[c.Name()] = c.GroupID
	}
	for name, group := range want {
		assert.Contains(t, got, name)
		assert.Equal(t, group, got[name], name)
	}
}

func TestNewApp_QueryEndToEnd(t *testing.T) {
	fixture.Isolate(t)

	app := NewApp()
	var out bytes.Buffer
	app.SetOut(&out)
	app.SetErr(&out)
	app.SetArgs([]string{"models", "info", "gpt-4o", "--query", ".model.id"})
	require.NoError(t, app.Execute())
	assert.Equal(t, "\"gpt-4o\"\n", out.String())
}
