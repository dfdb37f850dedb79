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
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoot() *cobra.Command {
	rootCmd := &cobra.Command{Use: "test", Short: "Test command"}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddGroup(&cobra.Group{ID: "testing", Title: "Testing:"})
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "Sample subcommand",
		Long:  "This is a sample subcommand for testing",
		Example: `  test sample
  test sample --flag value`,
		Annotations: map[string]string{
			"group": "testing",
		},
		Run: func(*cobra.Command, []string) {},
	}
	sampleCmd.Flags().String("flag", "", "A sample flag")
	sampleCmd.Flags().String("needed", "", "A required flag")
	_ = sampleCmd.MarkFlagRequired("needed")
	rootCmd.AddCommand(sampleCmd)

	rootCmd.SetHelpCommand(NewHelpCommand(rootCmd))
	return rootCmd
}

func runHelp(t *testing.T, root *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"help"}, args...))
	err := root.Execute()
	return buf.String(), err
}

func TestHelpCommandJSON_All(t *testing.T) {
	out, err := runHelp(t, sampleRoot(), "--json")
	require.NoError(t, err)

	var resp HelpResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "1.0", resp.Version)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Command)
	require.Len(t, resp.Commands, 1, "help itself is not listed")
	assert.Equal(t, "sample", resp.Commands[0].Name)
	assert.Equal(t, "test sample", resp.Commands[0].Path)
	assert.Equal(t, []GroupMetadata{{ID: "testing", Title: "Testing:"}}, resp.Groups)
	require.Len(t, resp.GlobalFlags, 1)
	assert.Equal(t, "bool", resp.GlobalFlags[0].Type)
}

func TestHelpCommandJSON_One(t *testing.T) {
	out, err := runHelp(t, sampleRoot(), "sample", "--json")
	require.NoError(t, err)

	var resp HelpResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "help sample", resp.JSONResponse.Command)
	require.NotNil(t, resp.Command)
	assert.Equal(t, "sample", resp.Command.Name)
	assert.Equal(t, "testing", resp.Command.Group)
	assert.NotEmpty(t, resp.Command.Examples)
	assert.Empty(t, resp.Commands)

	required := map[string]bool{}
	for _, f := range resp.Command.Flags {
		required[f.Name] = f.Required
	}
	assert.True(t, required["needed"])
	assert.False(t, required["flag"])
}

func TestHelpCommandHumanOutput(t *testing.T) {
	out, err := runHelp(t, sampleRoot())
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "expected human output")
	assert.Contains(t, out, "sample")
}

func TestDescribe(t *testing.T) {
	cmd := &cobra.Command{
		Use:     "testcmd",
		Short:   "Test command",
		Long:    "This is a longer description",
		Example: "testcmd --flag value",
		Aliases: []string{"tc", "test"},
		GroupID: "testing",
	}
	cmd.Flags().String("flag", "default", "A test flag")
	cmd.Flags().Bool("bool-flag", false, "A boolean flag")
	child := &cobra.Command{Use: "child", Short: "Child command"}
	child.Flags().Int("count", 3, "How many")
	cmd.AddCommand(child, &cobra.Command{Use: "secret", Hidden: true})

	metadata := describe(cmd)
	assert.Equal(t, "testcmd", metadata.Name)
	assert.Equal(t, "Test command", metadata.Short)
	assert.Equal(t, "testing", metadata.Group)
	assert.Len(t, metadata.Aliases, 2)
	assert.Len(t, metadata.Flags, 2)

	require.Len(t, metadata.Subcommands, 1)
	sub := metadata.Subcommands[0]
	assert.Equal(t, "testcmd child", sub.Path)
	require.Len(t, sub.Flags, 1)
	assert.Equal(t, FlagMetadata{Name: "count", Type: "int", Usage: "How many", Default: "3"}, sub.Flags[0])
}

func TestDescribe_AnnotationGroup(t *testing.T) {
	cmd := &cobra.Command{Use: "x", Annotations: map[string]string{"group": "workflow"}}
	assert.Equal(t, "workflow", describe(cmd).Group)
}

func TestDescribeFlags(t *testing.T) {
	rootCmd := &cobra.Command{Use: "test"}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file")
	rootCmd.PersistentFlags().String("internal", "", "")
	_ = rootCmd.PersistentFlags().MarkHidden("internal")

	flags := describeFlags(rootCmd.PersistentFlags())
	require.Len(t, flags, 2)

	byName := map[string]FlagMetadata{}
	for _, f := range flags {
		byName[f.Name] = f
	}
	assert.Equal(t, "v", byName["verbose"].Shorthand)
	assert.Equal(t, "string", byName["config"].Type)
}
