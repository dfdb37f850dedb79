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

// Package validate implements "flowkit validate".
package validate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/completion"
	"github.com/tombee/flowkit/internal/commands/shared"
	flowlog "github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/internal/watch"
	"github.com/tombee/flowkit/internal/workbench"
	"github.com/tombee/flowkit/pkg/workflow/validator"
)

// NewCommand creates the validate command
func NewCommand() *cobra.Command {
	var (
		opts  validator.Options
		watchFile bool
	)

	cmd := &cobra.Command{
		Use:   "validate <graph>",
		Short: "Validate a workflow graph",
		Annotations: map[string]string{
			"group": "workflow",
		},
		Long: `Validate checks a workflow graph for structural, connectivity and
configuration problems and scores it from 0 to 100. Critical issues and
errors make the graph invalid; warnings only lower the score unless
--strict is given.

With --watch the graph is re-validated every time the file changes,
until interrupted.

See also: flowkit modify, flowkit export`,
		Example: `  # Validate a graph
  flowkit validate graph.json

  # Include execution time and cost estimates
  flowkit validate graph.json --performance --cost

  # Fail on warnings too
  flowkit validate graph.json --strict

  # Re-validate on every save
  flowkit validate graph.json --watch`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteGraphFiles,
		SilenceUsage:      true, // Don't print usage on validation errors
		SilenceErrors:     true, // Don't print error message (we handle it ourselves)
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := shared.NewEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())

			if watchFile {
				return runWatch(cmd.Context(), cmd.OutOrStdout(), env, args[0], opts)
			}
			return runValidate(cmd.Context(), cmd.OutOrStdout(), env.Workbench, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.StrictMode, "strict", false, "Treat warnings as errors")
	cmd.Flags().BoolVar(&opts.IncludePerformanceAnalysis, "performance", false, "Estimate execution time and memory use")
	cmd.Flags().BoolVar(&opts.IncludeCostAnalysis, "cost", false, "Estimate relative cost")
	cmd.Flags().BoolVarP(&watchFile, "watch", "w", false, "Re-validate when the file changes")

	return cmd
}

func runValidate(ctx context.Context, out io.Writer, wb *workbench.Workbench, path string, opts validator.Options) error {
	useJSON := shared.GetJSON()

	g, err := shared.ReadGraph(path)
	if err != nil {
		if useJSON {
			if emitErr := shared.EmitJSONError(out, "validate", err); emitErr != nil {
				return emitErr
			}
			return &shared.ExitError{Code: shared.ExitCodeFor(err)}
		}
		return err
	}

	preview, err := wb.Validate(ctx, g, opts)
	if err != nil {
		return err
	}

	if useJSON {
		resp := struct {
			shared.JSONResponse
			*validator.Preview
		}{shared.NewJSONResponse("validate"), preview}
		resp.Success = preview.Validation.Valid
		if err := shared.EmitJSON(out, resp); err != nil {
			return err
		}
		if !preview.Validation.Valid {
			return &shared.ExitError{Code: shared.ExitFailed}
		}
		return nil
	}

	name := g.Name
	if name == "" {
		name = filepath.Base(path)
	}
	shared.PrintPreview(out, name, preview)
	if !preview.Validation.Valid {
		return &shared.ExitError{Code: shared.ExitFailed, Message: "validation failed"}
	}
	return nil
}

func runWatch(ctx context.Context, out io.Writer, env *shared.Env, path string, opts validator.Options) error {
	check := func() {
		if err := runValidate(ctx, out, env.Workbench, path, opts); err != nil {
			if msg := err.Error(); msg != "" {
				fmt.Fprintln(out, shared.RenderError(msg))
			}
		}
	}

	w, err := watch.New([]string{path}, func(string) {
		fmt.Fprintln(out)
		check()
	}, watch.WithLogger(flowlog.WithComponent(env.Logger, "watch")))
	if err != nil {
		return err
	}

	check()
	env.Logger.Info("watching for changes", slog.String("file", path))
	return w.Run(ctx)
}
