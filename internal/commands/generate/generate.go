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

// Package generate implements "flowkit generate".
package generate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/completion"
	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/internal/workbench"
)

// NewCommand creates the generate command
func NewCommand() *cobra.Command {
	var (
		provider    string
		output      string
		showSecrets bool
	)

	cmd := &cobra.Command{
		Use:   "generate <agent.yaml>",
		Short: "Generate a Flowise workflow graph from an agent definition",
		Annotations: map[string]string{
			"group": "workflow",
		},
		Long: `Generate builds a chat, RAG or assistant workflow graph from an agent
definition, fills the LLM node from the selected provider and validates
the result.

The graph is printed to stdout with credentials masked. Use --output to
write the full graph, including credentials, to a file readable only by
you. Use "-" to read the agent definition from stdin.`,
		Example: `  # Generate a chat graph with the default provider
  flowkit generate agent.yaml

  # Use a specific provider and save the graph
  flowkit generate agent.yaml --provider anthropic -o graph.json

  # Machine-readable output
  flowkit generate agent.yaml --json --query '.preview.validation.score'`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteAgentFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, err := shared.ReadAgent(args[0])
			if err != nil {
				return err
			}

			env, err := shared.NewEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())

			out, err := env.Workbench.Generate(cmd.Context(), agent, provider)
			if err != nil {
				return err
			}

			if output != "" {
				if err := shared.WriteGraph(nil, output, out.Graph); err != nil {
					return err
				}
			}

			display := out.Graph
			if !showSecrets {
				display = env.Workbench.Mask(out.Graph)
			}

			if shared.GetJSON() {
				resp := struct {
					shared.JSONResponse
					workbench.Generated
				}{shared.NewJSONResponse("generate"), *out}
				resp.Graph = display
				return shared.EmitJSON(cmd.OutOrStdout(), resp)
			}

			if output == "" {
				if err := shared.WriteGraph(cmd.OutOrStdout(), "", display); err != nil {
					return err
				}
				shared.PrintPreview(cmd.ErrOrStderr(), out.Graph.Name, out.Preview)
				return nil
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, shared.RenderOK(fmt.Sprintf("wrote %s (%d nodes, provider %s)", output, len(out.Graph.Nodes), out.Provider)))
			for _, e := range out.Config.Errors {
				fmt.Fprintln(w, shared.RenderWarn("not exportable: "+e))
			}
			shared.PrintPreview(w, out.Graph.Name, out.Preview)
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Provider id (default: the configured default provider)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the graph to this file")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print credentials unmasked")
	_ = cmd.RegisterFlagCompletionFunc("provider", completion.CompleteProviderIDs)

	return cmd
}
