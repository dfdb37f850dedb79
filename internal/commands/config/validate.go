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

package config

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/shared"
	flowerrors "github.com/tombee/flowkit/pkg/errors"
)

// ValidationResult represents the result of config validation.
type ValidationResult struct {
	shared.JSONResponse
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the 'config validate' subcommand.
func NewValidateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate the configuration file and environment overrides.

Errors:
  - Malformed YAML or out-of-range settings
  - Duplicate or unknown provider ids
  - Active providers without models

Warnings:
  - API keys written in plaintext
  - No active provider
  - No Flowise base URL (needed by export --push)

With --strict, warnings are treated as errors.`,
		Example: `  flowkit config validate
  flowkit --config ./flowkit.yaml config validate --strict --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := check()
			if strict && len(result.Warnings) > 0 {
				result.Valid = false
			}
			result.Success = result.Valid

			out := cmd.OutOrStdout()
			if shared.GetJSON() {
				if err := shared.EmitJSON(out, result); err != nil {
					return err
				}
			} else {
				for _, e := range result.Errors {
					fmt.Fprintln(out, shared.RenderError("error: "+e))
				}
				for _, w := range result.Warnings {
					fmt.Fprintln(out, shared.RenderWarn("warning: "+w))
				}
				if result.Valid {
					fmt.Fprintln(out, shared.RenderOK("configuration is valid"))
				}
			}

			if !result.Valid {
				return &shared.ExitError{Code: shared.ExitConfig}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	return cmd
}

func check() ValidationResult {
	result := ValidationResult{JSONResponse: shared.NewJSONResponse("config validate"), Valid: true}

	cfg, err := shared.LoadConfig()
	if err != nil {
		result.Valid = false
		var mve *flowerrors.MultiValidationError
		if errors.As(err, &mve) {
			result.Errors = mve.Messages()
		} else {
			result.Errors = []string{errorChain(err)}
		}
		return result
	}

	for _, id := range cfg.PlaintextKeyProviders() {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("provider %q stores its API key in plaintext; use ${ENV_VAR} or 'flowkit secrets set %s'", id, id))
	}
	if _, err := cfg.ProviderSet().Resolve(""); err != nil {
		result.Warnings = append(result.Warnings, "no active provider; set OPENAI_API_KEY or configure providers")
	}
	if cfg.Flowise.BaseURL == "" {
		result.Warnings = append(result.Warnings, "flowise.base_url is not set; export --push will fail")
	}
	return result
}

// errorChain appends the cause a ConfigError leaves out of its message.
func errorChain(err error) string {
	var ce *flowerrors.ConfigError
	if errors.As(err, &ce) && ce.Cause != nil {
		return ce.Error() + ": " + ce.Cause.Error()
	}
	return err.Error()
}
