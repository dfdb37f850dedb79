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
	"sort"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/completion"
	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/pkg/llm"
)

func newConfigureCmd() *cobra.Command {
	var flags contextFlags

	cmd := &cobra.Command{
		Use:   "configure <model-id>",
		Short: "Derive parameter values for a model and use case",
		Long: `Derive a parameter set for a model from the use case and performance
preference. Parameters without a tuning rule keep their defaults.`,
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
			config := reg.GenerateOptimalConfiguration(m, flags.context())
			check := reg.ValidateConfiguration(m.ID, config)

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				return shared.EmitJSON(out, struct {
					shared.JSONResponse
					ModelID    string               `json:"model_id"`
					Config     map[string]any       `json:"config"`
					Validation llm.ConfigValidation `json:"validation"`
				}{shared.NewJSONResponse("models configure"), m.ID, config, check})
			}

			fmt.Fprintln(out, shared.Header.Render("Configuration for "+m.ID))
			printConfig(cmd, config)
			printValidation(cmd, check)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func printConfig(cmd *cobra.Command, config map[string]any) {
	keys := make([]string, 0, len(config))
	for k := range config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s %v\n", shared.RenderLabel(k+":"), config[k])
	}
}

func printValidation(cmd *cobra.Command, check llm.ConfigValidation) {
	out := cmd.OutOrStdout()
	for _, e := range check.Errors {
		fmt.Fprintln(out, shared.RenderError(e))
	}
	for _, w := range check.Warnings {
		fmt.Fprintln(out, shared.RenderWarn(w))
	}
	if check.Valid && len(check.Warnings) == 0 {
		fmt.Fprintln(out, shared.RenderOK("configuration is valid"))
	}
}
