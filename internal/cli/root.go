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
	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/catalog"
	"github.com/tombee/flowkit/internal/commands/completion"
	"github.com/tombee/flowkit/internal/commands/config"
	"github.com/tombee/flowkit/internal/commands/export"
	"github.com/tombee/flowkit/internal/commands/generate"
	"github.com/tombee/flowkit/internal/commands/mcpserver"
	"github.com/tombee/flowkit/internal/commands/model"
	"github.com/tombee/flowkit/internal/commands/modify"
	"github.com/tombee/flowkit/internal/commands/secrets"
	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/internal/commands/validate"
	versioncmd "github.com/tombee/flowkit/internal/commands/version"
)

// Command groups, keyed by the "group" annotation each command carries.
var groups = []*cobra.Group{
	{ID: "workflow", Title: "Workflow Commands:"},
	{ID: "discovery", Title: "Catalog and Model Commands:"},
	{ID: "integration", Title: "Integration Commands:"},
	{ID: "configuration", Title: "Configuration Commands:"},
}

// SetVersion sets the version information (called from main)
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for flowkit
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flowkit",
		Short: "flowkit - build, check and tune Flowise workflows",
		Long: `flowkit generates Flowise workflow graphs from short agent definitions,
validates and scores them, applies parameter changes safely, and exports
them as Flowise chatflows.

It also answers questions about the Flowise node catalog and the LLM
models a workflow can use: listings, recommendations, tuned parameter
sets and cost estimates.

Run 'flowkit generate agent.yaml' to get started.`,
		SilenceUsage:  true, // Don't show usage on errors
		SilenceErrors: true, // We handle errors ourselves for proper exit codes
	}

	flags := shared.RegisterFlagPointers()

	cmd.PersistentFlags().BoolVarP(flags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(flags.Quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().BoolVar(flags.JSON, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(flags.Config, "config", "", "Path to config file (default: ~/.config/flowkit/config.yaml)")
	cmd.PersistentFlags().StringVar(flags.Trace, "trace", "", "Export spans and metrics: stdout, otlp-grpc or otlp-http")
	cmd.PersistentFlags().StringVar(flags.Query, "query", "", "jq expression applied to JSON output (implies --json)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	_ = cmd.RegisterFlagCompletionFunc("trace", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"stdout", "otlp-grpc", "otlp-http"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// NewApp returns the root command with every flowkit command attached.
func NewApp() *cobra.Command {
	root := NewRootCommand()
	root.AddGroup(groups...)

	commands := []*cobra.Command{
		generate.NewCommand(),
		validate.NewCommand(),
		modify.NewCommand(),
		export.NewCommand(),
		catalog.NewCommand(),
		model.NewCommand(),
		mcpserver.NewCommand(),
		config.NewConfigCommand(),
		secrets.NewCommand(),
		completion.NewCommand(),
		versioncmd.NewVersionCommand(),
	}
	for _, c := range commands {
		if g, ok := c.Annotations["group"]; ok && root.ContainsGroup(g) {
			c.GroupID = g
		}
		root.AddCommand(c)
	}

	root.SetHelpCommand(NewHelpCommand(root))
	return root
}

// GetVersion returns version information
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
