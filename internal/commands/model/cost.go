package model

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/completion"
	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/pkg/llm"
)

func newCostCmd() *cobra.Command {
	var (
		usage llm.Usage
		sets  []string
	)

	cmd := &cobra.Command{
		Use:               "cost <model-id>",
		Short:             "Estimate spend for a model under a usage profile",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteModelIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := shared.NewEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())

			reg := env.Workbench.Registry()
			m, err := reg.GetModel(args[0])
			if err != nil {
				return err
			}
			config, err := parseSettings(m, sets)
			if err != nil {
				return err
			}
			est, err := reg.EstimateCost(m.ID, config, usage)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.EmitJSON(out, struct {
					shared.JSONResponse
					Estimate *llm.CostEstimate `json:"estimate"`
				}{shared.NewJSONResponse("models cost"), est})
			}

			cur := est.Breakdown.Currency
			fmt.Fprintln(out, shared.Header.Render(fmt.Sprintf("Estimated cost for %s over %d days", m.ID, usage.Days)))
			fmt.Fprintf(out, "  %s %.2f %s\n", shared.RenderLabel("input: "), est.Breakdown.InputCost, cur)
			fmt.Fprintf(out, "  %s %.2f %s\n", shared.RenderLabel("output:"), est.Breakdown.OutputCost, cur)
			fmt.Fprintf(out, "  %s %s\n", shared.RenderLabel("total: "), shared.Bold.Render(fmt.Sprintf("%.2f %s", est.TotalCost, cur)))
			if est.Optimization.PotentialSavings > 0 {
				msg := fmt.Sprintf("potential savings %.2f %s", est.Optimization.PotentialSavings, cur)
				if est.Optimization.Alternative != "" {
					msg += " with " + est.Optimization.Alternative
				}
				fmt.Fprintln(out, shared.RenderInfo(msg))
			}
			for _, s := range est.Optimization.Suggestions {
				fmt.Fprintln(out, shared.RenderInfo(s))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&usage.RequestsPerDay, "requests-per-day", 1000, "Requests per day")
	cmd.Flags().IntVar(&usage.AverageInputTokens, "input-tokens", 500, "Average input tokens per request")
	cmd.Flags().IntVar(&usage.AverageOutputTokens, "output-tokens", 500, "Average output tokens per request")
	cmd.Flags().IntVar(&usage.Days, "days", 30, "Days to project over")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Model parameter as key=value (repeatable)")
	return cmd
}
