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

package model

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/pkg/llm"
)

// ModelInfo represents a model for display purposes
type ModelInfo struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Provider      string  `json:"provider"`
	Category      string  `json:"category"`
	ContextLength int     `json:"context_length"`
	InputPrice    float64 `json:"input_price_per_1k"`
	OutputPrice   float64 `json:"output_price_per_1k"`
	Score         float64 `json:"score"`
}

func newListCmd() *cobra.Command {
	var (
		provider     string
		category     string
		capabilities []string
		maxPrice     float64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List models, most suitable first",
		Long: `List registry models ordered by their weighted score (quality, speed,
cost and features). Filters combine; a model must match all of them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := shared.NewEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())

			reg := env.Workbench.Registry()
			models := reg.ListModels(llm.Filters{
				Provider:     llm.ProviderName(strings.ToLower(provider)),
				Category:     llm.ModelCategory(strings.ToLower(category)),
				Capabilities: capabilities,
				MaxPrice:     maxPrice,
			})

			infos := make([]ModelInfo, 0, len(models))
			for _, m := range models {
				infos = append(infos, ModelInfo{
					ID:            m.ID,
					Name:          m.DisplayName,
					Provider:      string(m.Provider),
					Category:      string(m.Category),
					ContextLength: m.Performance.ContextLength,
					InputPrice:    m.Pricing.InputPerKTokens,
					OutputPrice:   m.Pricing.OutputPerKTokens,
					Score:         reg.Score(m.ID),
				})
			}

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.EmitJSON(out, struct {
					shared.JSONResponse
					Models []ModelInfo `json:"models"`
				}{shared.NewJSONResponse("models list"), infos})
			}

			if len(infos) == 0 {
				fmt.Fprintln(out, "No models match the given filters.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tPROVIDER\tCATEGORY\tCONTEXT\tINPUT/1K\tOUTPUT/1K\tSCORE")
			for _, m := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t$%.5f\t$%.5f\t%.2f\n",
					m.ID, m.Provider, m.Category, m.ContextLength, m.InputPrice, m.OutputPrice, m.Score)
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Only models from this provider")
	cmd.Flags().StringVar(&category, "category", "", "Only models in this category (chat, completion, embedding, function-calling)")
	cmd.Flags().StringSliceVar(&capabilities, "capability", nil, "Required capability (repeatable)")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "Maximum input price per 1K tokens")

	return cmd
}
