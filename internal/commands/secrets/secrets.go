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

package secrets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tombee/flowkit/internal/commands/completion"
	"github.com/tombee/flowkit/internal/commands/shared"
	secretstore "github.com/tombee/flowkit/internal/secrets"
)

// NewCommand creates the secrets command for secret management.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage provider and Flowise API keys",
		Annotations: map[string]string{
			"group": "configuration",
		},
		Long: `Manage API keys outside the config file.

Secrets are looked up in order:
  1. Environment variables (read-only)
  2. System keychain
  3. Encrypted file (needs FLOWKIT_MASTER_KEY or master.key in the config dir)

Keys may be given in full (providers/openai/api_key) or as a shorthand:
a provider id ("openai") or "flowise".

A provider whose api_key is empty, or set to "secret:<key>", is filled
from these backends when flowkit loads its configuration.`,
	}

	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newDeleteCommand())
	cmd.AddCommand(newBackendsCommand())

	return cmd
}

func newSetCommand() *cobra.Command {
	var backend string
	cmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Store a secret",
		Long: `Store a secret in a writable backend.

The value is read from standard input when it is piped, otherwise it is
prompted for with hidden input.`,
		Example: `  flowkit secrets set openai
  echo "$FLOWISE_TOKEN" | flowkit secrets set flowise --backend file`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := expandKey(args[0])
			if err != nil {
				return err
			}
			value, err := readValue(cmd)
			if err != nil {
				return err
			}
			if value == "" {
				return shared.NewInvalidInputError("secret value cannot be empty", nil)
			}

			resolver := newResolver()
			if err := resolver.Set(cmd.Context(), key, value, backend); err != nil {
				if errors.Is(err, secretstore.ErrBackendUnavailable) {
					return shared.NewConfigError(
						fmt.Sprintf("no usable backend for %s (active: %s); set %s to enable the encrypted file",
							key, strings.Join(resolver.Backends(), ", "), secretstore.MasterKeyEnv), err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("stored "+key))
			return nil
		},
	}
	cmd.Flags().StringVar(&backend, "backend", "", "Target backend (keychain, file)")
	_ = cmd.RegisterFlagCompletionFunc("backend", completion.CompleteSecretsBackend)
	return cmd
}

func newGetCommand() *cobra.Command {
	var unmask bool
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Show a secret",
		Long:  `Show a secret from the first backend that has it. The value is masked unless --unmask is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := expandKey(args[0])
			if err != nil {
				return err
			}
			value, err := newResolver().Get(cmd.Context(), key)
			if err != nil {
				return notFound(key, err)
			}
			if !unmask {
				value = maskSecret(value)
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
	cmd.Flags().BoolVar(&unmask, "unmask", false, "Show the full value")
	return cmd
}

func newDeleteCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a secret from every writable backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := expandKey(args[0])
			if err != nil {
				return err
			}
			if !force {
				if shared.IsNonInteractive() {
					return shared.NewInvalidInputError("refusing to delete without --force in a non-interactive session", nil)
				}
				confirmed := false
				err := huh.NewConfirm().
					Title(fmt.Sprintf("Delete %s?", key)).
					Affirmative("Delete").
					Negative("Cancel").
					Value(&confirmed).
					Run()
				if err != nil && !errors.Is(err, huh.ErrUserAborted) {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
					return nil
				}
			}

			if err := newResolver().Delete(cmd.Context(), key); err != nil {
				return notFound(key, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("deleted "+key))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}

func newBackendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the active secret backends in lookup order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := newResolver().Backends()
			if shared.GetJSON() {
				return shared.EmitJSON(cmd.OutOrStdout(), struct {
					shared.JSONResponse
					Backends []string `json:"backends"`
				}{shared.NewJSONResponse("secrets backends"), names})
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newResolver() *secretstore.Resolver {
	return secretstore.NewResolver(shared.SecretBackends()...)
}

// expandKey turns "flowise" and bare provider ids into full secret keys.
func expandKey(key string) (string, error) {
	switch {
	case key == "":
		return "", shared.NewInvalidInputError("secret key cannot be empty", nil)
	case strings.ContainsAny(key, " \\"):
		return "", shared.NewInvalidInputError(fmt.Sprintf("invalid secret key %q: use forward slashes and no spaces", key), nil)
	case key == "flowise":
		return secretstore.FlowiseKey, nil
	case !strings.Contains(key, "/"):
		return secretstore.ProviderKey(key), nil
	default:
		return key, nil
	}
}

// readValue reads piped input, or prompts with hidden input on a terminal.
func readValue(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), "Enter secret value (hidden): ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read secret value: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read secret value: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func notFound(key string, err error) error {
	if errors.Is(err, secretstore.ErrSecretNotFound) {
		return &shared.ExitError{Code: shared.ExitNotFound, Message: fmt.Sprintf("secret not found: %s", key), Cause: err}
	}
	return err
}

func maskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
