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

// Package export implements "flowkit export".
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/completion"
	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/internal/history"
	flowlog "github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/pkg/flowise"
	"github.com/tombee/flowkit/pkg/workflow"
)

// NewCommand creates the export command
func NewCommand() *cobra.Command {
	var (
		push        bool
		newFlow     bool
		id          string
		output      string
		showSecrets bool
	)

	cmd := &cobra.Command{
		Use:   "export <graph>",
		Short: "Render a graph as a Flowise chatflow, or push it to Flowise",
		Annotations: map[string]string{
			"group": "workflow",
		},
		Long: `Export converts a workflow graph into the chatflow document Flowise
stores, with the canvas layout in flowData.

With --push the chatflow is sent to the Flowise instance configured by
flowise.base_url (or FLOWISE_BASE_URL). The first push of a graph creates
a chatflow and remembers its id; later pushes of the same graph replace
that chatflow. --id names the chatflow to replace explicitly and --new
always creates a fresh one. "flowkit export history" lists what was pushed.

Credentials are masked when the document is printed. Files written with
-o and pushed chatflows keep them.`,
		Example: `  # Print the chatflow document
  flowkit export graph.json

  # Save it for import in the Flowise UI
  flowkit export graph.json -o chatflow.json

  # Create the chatflow on the server
  flowkit export graph.json --push

  # Create a second copy instead of replacing the first
  flowkit export graph.json --push --new

  # Replace an existing chatflow
  flowkit export graph.json --push --id 2f1c5d3e-8a4b-4c6d-9e0f-1a2b3c4d5e6f`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteGraphFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (id != "" || newFlow) && !push {
				return shared.NewInvalidInputError("--id and --new require --push", nil)
			}
			if id != "" {
				if err := flowise.ValidateID(id); err != nil {
					return err
				}
			}

			g, err := shared.ReadGraph(args[0])
			if err != nil {
				return err
			}
			env, err := shared.NewEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())
			wb := env.Workbench
			out := cmd.OutOrStdout()

			if push {
				return runPush(cmd, env, g, id, newFlow)
			}

			if output != "" {
				flow, err := wb.Export(cmd.Context(), g)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(flow, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, append(data, '\n'), 0o600); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Fprintln(out, shared.RenderOK("wrote "+output))
				return nil
			}

			if !showSecrets {
				g = wb.Mask(g)
			}
			flow, err := wb.Export(cmd.Context(), g)
			if err != nil {
				return err
			}
			if shared.GetJSON() {
				return shared.EmitJSON(out, struct {
					shared.JSONResponse
					Chatflow *flowise.Chatflow `json:"chatflow"`
				}{shared.NewJSONResponse("export"), flow})
			}
			data, err := json.MarshalIndent(flow, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&push, "push", false, "Send the chatflow to Flowise")
	cmd.Flags().BoolVar(&newFlow, "new", false, "Create a new chatflow even if this graph was pushed before")
	cmd.Flags().StringVar(&id, "id", "", "Chatflow id to replace (with --push)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the chatflow document to this file")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print credentials unmasked")
	cmd.MarkFlagsMutuallyExclusive("push", "output")
	cmd.MarkFlagsMutuallyExclusive("id", "new")

	cmd.AddCommand(newHistoryCommand())
	return cmd
}

func runPush(cmd *cobra.Command, env *shared.Env, g *workflow.Graph, id string, newFlow bool) error {
	ctx := cmd.Context()
	baseURL := env.Config.Flowise.BaseURL

	store, err := shared.OpenHistory(ctx)
	if err != nil {
		env.Logger.Warn("push history unavailable", flowlog.Error(err))
	} else {
		defer store.Close()
	}

	if id == "" && !newFlow && store != nil && baseURL != "" {
		prev, err := store.Latest(ctx, baseURL, g.Name)
		switch {
		case err == nil:
			id = prev.ChatflowID
			env.Logger.Debug("replacing previously pushed chatflow",
				"chatflow_id", id, flowlog.GraphKey, g.Name)
		case !errors.Is(err, history.ErrNotFound):
			env.Logger.Warn("failed to read push history", flowlog.Error(err))
		}
	}

	flow, err := env.Workbench.Push(ctx, g, id)
	if err != nil {
		return err
	}

	if store != nil {
		rec := history.Push{
			BaseURL:      baseURL,
			GraphName:    g.Name,
			ChatflowID:   flow.ID,
			ChatflowName: flow.Name,
			FlowType:     string(flow.Type),
		}
		if err := store.Record(ctx, rec); err != nil {
			env.Logger.Warn("failed to record push", flowlog.Error(err))
		}
	}

	out := cmd.OutOrStdout()
	if shared.GetJSON() {
		return shared.EmitJSON(out, struct {
			shared.JSONResponse
			ID      string           `json:"id"`
			Name    string           `json:"name"`
			Type    flowise.FlowType `json:"type"`
			Updated bool             `json:"updated"`
		}{shared.NewJSONResponse("export"), flow.ID, flow.Name, flow.Type, id != ""})
	}
	verb := "created"
	if id != "" {
		verb = "updated"
	}
	fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("%s chatflow %s (%s)", verb, flow.ID, flow.Name)))
	return nil
}
