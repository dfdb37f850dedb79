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
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/internal/config"
	secretstore "github.com/tombee/flowkit/internal/secrets"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and check configuration",
		Annotations: map[string]string{
			"group": "configuration",
		},
		Long: `View and check flowkit configuration.

Settings are read from the file given by --config, else from
$XDG_CONFIG_HOME/flowkit/config.yaml (~/.config/flowkit/config.yaml),
and then overridden by environment variables such as OPENAI_API_KEY,
FLOWISE_BASE_URL and LOG_LEVEL.`,
		RunE: runShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long:  `Display the effective configuration after defaults and environment overrides. API keys are masked.`,
		Args:  cobra.NoArgs,
		RunE:  runShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show config file location",
		Args:  cobra.NoArgs,
		RunE:  runPath,
	})
	cmd.AddCommand(NewValidateCommand())

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := shared.LoadConfig()
	if err != nil {
		return err
	}
	masked := maskSensitiveConfig(cfg)

	if shared.GetJSON() {
		return shared.EmitJSON(cmd.OutOrStdout(), struct {
			shared.JSONResponse
			Config *config.Config `json:"config"`
		}{shared.NewJSONResponse("config show"), masked})
	}

	data, err := yaml.Marshal(masked)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if path := configPath(); path != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", path)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "# built-in defaults")
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runPath(cmd *cobra.Command, args []string) error {
	path := shared.GetConfigPath()
	if path == "" {
		var err error
		path, err = config.ConfigPath()
		if err != nil {
			return shared.NewConfigError("failed to determine config path", err)
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// configPath returns the file the configuration was loaded from, if any.
func configPath() string {
	if p := shared.GetConfigPath(); p != "" {
		return p
	}
	return config.DefaultPath()
}

// maskSensitiveConfig returns a copy with API keys masked. Secret
// references are kept since they reveal nothing.
func maskSensitiveConfig(cfg *config.Config) *config.Config {
	masked := *cfg
	masked.Providers = append(masked.Providers[:0:0], cfg.Providers...)
	for i := range masked.Providers {
		masked.Providers[i].APIKey = maskValue(masked.Providers[i].APIKey)
	}
	masked.Flowise.APIKey = maskValue(cfg.Flowise.APIKey)
	masked.Generator.SearchAPIKey = maskValue(cfg.Generator.SearchAPIKey)
	return &masked
}

func maskValue(v string) string {
	if v == "" || strings.HasPrefix(v, secretstore.ReferencePrefix) {
		return v
	}
	return "****"
}
