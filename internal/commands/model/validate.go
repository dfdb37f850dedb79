package model

import (
	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/completion"
	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/pkg/llm"
)

func newValidateCmd() *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "validate <model-id>",
		Short: "Check parameter values against a model",
		Long: `Check a configuration against the model's parameter constraints.
Missing optional parameters are filled with their defaults. Exits with
status 2 when the configuration is invalid.`,
		Example:           `  flowkit models validate gpt-4o --set temperature=0.2 --set maxTokens=1024`,
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
			check := reg.ValidateConfiguration(m.ID, config)

			if shared.GetJSON() {
				resp := struct {
					shared.JSONResponse
					ModelID    string               `json:"model_id"`
					Config     map[string]any       `json:"config"`
					Validation llm.ConfigValidation `json:"validation"`
				}{shared.NewJSONResponse("models validate"), m.ID, config, check}
				resp.Success = check.Valid
				if err := shared.EmitJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
			} else {
				printConfig(cmd, config)
				printValidation(cmd, check)
			}

			if !check.Valid {
				return &shared.ExitError{Code: shared.ExitInvalidInput}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Parameter value as key=value (repeatable)")
	return cmd
}
