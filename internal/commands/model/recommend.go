package model

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/pkg/llm"
)

func newRecommendCmd() *cobra.Command {
	var flags contextFlags

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend models for a use case",
		Long: `Rank models for a use case, budget and performance preference. At most
five models are returned, each with a confidence and the reasons behind it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := shared.NewEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())

			recs := env.Workbench.Registry().Recommend(flags.context())
			if recs == nil {
				recs = []llm.Recommendation{}
			}

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.EmitJSON(out, struct {
					shared.JSONResponse
					Recommendations []llm.Recommendation `json:"recommendations"`
				}{shared.NewJSONResponse("models recommend"), recs})
			}

			if len(recs) == 0 {
				fmt.Fprintln(out, "No model is a confident match. Try relaxing --budget or --capability.")
				return nil
			}
			for i, r := range recs {
				fmt.Fprintf(out, "%d. %s %s\n", i+1, shared.Bold.Render(r.Model.ID),
					shared.Muted.Render(fmt.Sprintf("(%s, confidence %.0f%%)", r.Model.Provider, r.Confidence*100)))
				if len(r.Reasons) > 0 {
					fmt.Fprintf(out, "   %s\n", strings.Join(r.Reasons, "; "))
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("use-case")
	return cmd
}
