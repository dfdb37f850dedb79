package model

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/completion"
	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/param"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "info <model-id>",
		Short:             "Show details for a model",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteModelIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := shared.NewEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())

			m, err := env.Workbench.Registry().GetModel(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.EmitJSON(out, struct {
					shared.JSONResponse
					Model llm.ModelDescriptor `json:"model"`
				}{shared.NewJSONResponse("models info"), m})
			}

			fmt.Fprintln(out, shared.Header.Render(m.DisplayName))
			fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("id:        "), m.ID)
			fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("provider:  "), m.Provider)
			fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("model:     "), m.ModelIdentifier)
			fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("category:  "), m.Category)
			fmt.Fprintf(out, "  %s %s / %s\n", shared.RenderLabel("speed/qual:"), m.Performance.Speed, m.Performance.Quality)
			fmt.Fprintf(out, "  %s %d tokens\n", shared.RenderLabel("context:   "), m.Performance.ContextLength)
			fmt.Fprintf(out, "  %s $%.5f in / $%.5f out per 1K tokens\n", shared.RenderLabel("pricing:   "),
				m.Pricing.InputPerKTokens, m.Pricing.OutputPerKTokens)
			if len(m.Capabilities) > 0 {
				fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("caps:      "), strings.Join(m.Capabilities, ", "))
			}
			if len(m.Availability.Regions) > 0 {
				fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("regions:   "), strings.Join(m.Availability.Regions, ", "))
			}

			if len(m.Parameters) == 0 {
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, shared.Bold.Render("Parameters"))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "  NAME\tTYPE\tDEFAULT\tRANGE")
			for _, p := range m.Parameters {
				fmt.Fprintf(w, "  %s\t%s\t%v\t%s\n", p.Name, p.Type, valueOrDash(p.Default), rangeOf(p))
			}
			w.Flush()
			return nil
		},
	}
}

func valueOrDash(v any) any {
	if v == nil {
		return "-"
	}
	return v
}

func rangeOf(p param.Spec) string {
	switch {
	case len(p.Options) > 0:
		return strings.Join(p.Options, "|")
	case p.Min != nil && p.Max != nil:
		return fmt.Sprintf("%g..%g", *p.Min, *p.Max)
	case p.Min != nil:
		return fmt.Sprintf(">= %g", *p.Min)
	case p.Max != nil:
		return fmt.Sprintf("<= %g", *p.Max)
	}
	return "-"
}
