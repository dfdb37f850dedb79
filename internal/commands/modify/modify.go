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

// Package modify implements "flowkit modify".
package modify

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/completion"
	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/internal/workbench"
	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/param"
	"github.com/tombee/flowkit/pkg/workflow"
	"github.com/tombee/flowkit/pkg/workflow/modifier"
	"github.com/tombee/flowkit/pkg/workflow/validator"
)

type options struct {
	sets             []string
	suggest          bool
	applySuggestions bool
	interactive      bool
	output           string
	inPlace          bool
	showSecrets      bool
}

// NewCommand creates the modify command
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "modify <graph>",
		Short: "Change node parameters in a workflow graph",
		Annotations: map[string]string{
			"group": "workflow",
		},
		Long: `Modify applies parameter changes to the nodes of a workflow graph. All
changes are applied as one batch: if any change is invalid the graph is
left untouched and every problem is reported. The graph is re-validated
after a successful change.

Changes are given as --set <node-id>.<key>=<value>, picked from the
suggested improvements with --apply-suggestions, or edited in a form
with --interactive.`,
		Example: `  # Lower the temperature of the LLM node
  flowkit modify graph.json --set llm.temperature=0.2 --in-place

  # Show suggested changes
  flowkit modify graph.json --suggest

  # Apply the suggestions and save to a new file
  flowkit modify graph.json --apply-suggestions -o tuned.json

  # Edit node fields in a form
  flowkit modify graph.json --interactive --in-place`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteGraphFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "Change as <node-id>.<key>=<value> (repeatable)")
	cmd.Flags().BoolVar(&opts.suggest, "suggest", false, "List suggested changes without applying them")
	cmd.Flags().BoolVar(&opts.applySuggestions, "apply-suggestions", false, "Apply every suggested change")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Edit node fields in a form")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the modified graph to this file")
	cmd.Flags().BoolVar(&opts.inPlace, "in-place", false, "Overwrite the input graph")
	cmd.Flags().BoolVar(&opts.showSecrets, "show-secrets", false, "Print credentials unmasked")
	_ = cmd.RegisterFlagCompletionFunc("set", completion.CompleteSetPairs)
	cmd.MarkFlagsMutuallyExclusive("output", "in-place")
	cmd.MarkFlagsMutuallyExclusive("suggest", "apply-suggestions")
	cmd.MarkFlagsMutuallyExclusive("suggest", "interactive")

	return cmd
}

func run(cmd *cobra.Command, path string, opts options) error {
	g, err := shared.ReadGraph(path)
	if err != nil {
		return err
	}

	env, err := shared.NewEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.Close(cmd.Context())
	wb := env.Workbench
	mctx := modifier.Context{WorkflowType: workbench.WorkflowTypeOf(g)}
	out := cmd.OutOrStdout()

	if opts.suggest {
		suggestions := wb.Suggest(g, mctx)
		if shared.GetJSON() {
			if suggestions == nil {
				suggestions = []modifier.Request{}
			}
			return shared.EmitJSON(out, struct {
				shared.JSONResponse
				Suggestions []modifier.Request `json:"suggestions"`
			}{shared.NewJSONResponse("modify"), suggestions})
		}
		printSuggestions(out, suggestions)
		return nil
	}

	var batch modifier.Batch
	if opts.applySuggestions {
		for _, r := range wb.Suggest(g, mctx) {
			for k, v := range r.Modifications {
				batch.Stage(r.NodeID, k, v)
			}
		}
	}
	if err := stageSettings(&batch, wb, g, opts.sets); err != nil {
		return err
	}
	if opts.interactive {
		if shared.IsNonInteractive() {
			return shared.NewInvalidInputError("--interactive needs a terminal", nil)
		}
		if err := editInteractively(&batch, wb, g); err != nil {
			return err
		}
	}
	if batch.Len() == 0 {
		return &errors.ValidationError{
			Field:      "set",
			Message:    "no changes given",
			Suggestion: "use --set <node-id>.<key>=<value>, --apply-suggestions or --interactive",
		}
	}

	result, err := wb.Modify(cmd.Context(), g, batch.Requests(), mctx)
	if err != nil {
		return err
	}

	target := opts.output
	if opts.inPlace {
		target = path
	}
	if target != "" {
		if err := shared.WriteGraph(nil, target, g); err != nil {
			return err
		}
	}

	display := g
	if !opts.showSecrets {
		display = wb.Mask(g)
	}

	if shared.GetJSON() {
		resp := struct {
			shared.JSONResponse
			Graph           *workflow.Graph  `json:"graph"`
			ModifiedNodeIDs []string         `json:"modified_node_ids"`
			Validation      validator.Report `json:"validation"`
		}{shared.NewJSONResponse("modify"), display, result.Result.ModifiedNodeIDs, result.Preview.Validation}
		return shared.EmitJSON(out, resp)
	}

	if target == "" {
		if err := shared.WriteGraph(out, "", display); err != nil {
			return err
		}
		out = cmd.ErrOrStderr()
	} else {
		fmt.Fprintln(out, shared.RenderOK(fmt.Sprintf("wrote %s", target)))
	}
	fmt.Fprintln(out, shared.RenderInfo("modified nodes: "+strings.Join(result.Result.ModifiedNodeIDs, ", ")))
	shared.PrintPreview(out, g.Name, result.Preview)
	return nil
}

// stageSettings parses <node-id>.<key>=<value> pairs. Values are typed by
// the node's editable field, when there is one; anything else is passed
// through as a string and left to the modifier to reject.
func stageSettings(batch *modifier.Batch, wb *workbench.Workbench, g *workflow.Graph, sets []string) error {
	var errs errors.MultiValidationError
	for _, s := range sets {
		target, raw, ok := strings.Cut(s, "=")
		nodeID, key, okKey := strings.Cut(target, ".")
		if !ok || !okKey || nodeID == "" || key == "" {
			errs.Add("set", fmt.Sprintf("%q is not <node-id>.<key>=<value>", s), "e.g. --set llm.temperature=0.2")
			continue
		}
		fields, err := wb.Fields(g, nodeID)
		if err != nil {
			errs.Add(nodeID, err.Error(), "")
			continue
		}
		var value any = raw
		if spec, found := param.Find(fields, key); found {
			value, err = param.Parse(spec, raw)
			if err != nil {
				errs.Add(nodeID+"."+key, err.Error(), "")
				continue
			}
		}
		batch.Stage(nodeID, key, value)
	}
	if errs.HasErrors() {
		return &errs
	}
	return nil
}

func printSuggestions(out io.Writer, suggestions []modifier.Request) {
	if len(suggestions) == 0 {
		fmt.Fprintln(out, shared.RenderOK("no suggested changes"))
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tCHANGE\tREASON")
	for _, s := range suggestions {
		for _, k := range sortedKeys(s.Modifications) {
			fmt.Fprintf(w, "%s\t%s=%v\t%s\n", s.NodeID, k, s.Modifications[k], s.Reason)
		}
	}
	w.Flush()
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
