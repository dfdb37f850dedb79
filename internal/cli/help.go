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

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/flowkit/internal/commands/shared"
)

// CommandMetadata describes a command and its visible subcommands.
type CommandMetadata struct {
	Path        string            `json:"path"`
	Name        string            `json:"name"`
	Short       string            `json:"short"`
	Long        string            `json:"long,omitempty"`
	Usage       string            `json:"usage"`
	Group       string            `json:"group,omitempty"`
	Aliases     []string          `json:"aliases,omitempty"`
	Examples    string            `json:"examples,omitempty"`
	Flags       []FlagMetadata    `json:"flags,omitempty"`
	Subcommands []CommandMetadata `json:"subcommands,omitempty"`
}

// FlagMetadata describes one flag.
type FlagMetadata struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Type      string `json:"type"`
	Usage     string `json:"usage"`
	Default   string `json:"default,omitempty"`
	Required  bool   `json:"required"`
}

// GroupMetadata is a command group shown in the root help.
type GroupMetadata struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// HelpResponse is the JSON form of "flowkit help".
type HelpResponse struct {
	shared.JSONResponse
	Groups      []GroupMetadata   `json:"groups,omitempty"`
	Commands    []CommandMetadata `json:"commands,omitempty"`
	Command     *CommandMetadata  `json:"command,omitempty"`
	GlobalFlags []FlagMetadata    `json:"global_flags,omitempty"`
}

// NewHelpCommand creates a help command that can also describe the
// command tree as JSON, for scripts and assistants that drive flowkit.
func NewHelpCommand(rootCmd *cobra.Command) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "help [command]",
		Short: "Help about any command",
		Long: `Help shows the usage of a command.

With --json the whole command tree (or the named command) is printed with
its flags, groups and examples.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := rootCmd
			if len(args) > 0 {
				found, _, err := rootCmd.Find(args)
				if err != nil {
					return shared.NewInvalidInputError(fmt.Sprintf("command %q not found", args[0]), err)
				}
				target = found
			}

			if !shared.GetJSON() && !jsonOutput {
				return target.Help()
			}

			resp := HelpResponse{GlobalFlags: describeFlags(rootCmd.PersistentFlags())}
			if target == rootCmd {
				resp.JSONResponse = shared.NewJSONResponse("help")
				for _, g := range rootCmd.Groups() {
					resp.Groups = append(resp.Groups, GroupMetadata{ID: g.ID, Title: g.Title})
				}
				resp.Commands = describeChildren(rootCmd)
			} else {
				resp.JSONResponse = shared.NewJSONResponse("help " + target.Name())
				meta := describe(target)
				resp.Command = &meta
			}
			return shared.EmitJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func describe(cmd *cobra.Command) CommandMetadata {
	group := cmd.GroupID
	if group == "" {
		group = cmd.Annotations["group"]
	}
	return CommandMetadata{
		Path:        cmd.CommandPath(),
		Name:        cmd.Name(),
		Short:       cmd.Short,
		Long:        cmd.Long,
		Usage:       cmd.UseLine(),
		Group:       group,
		Aliases:     cmd.Aliases,
		Examples:    cmd.Example,
		Flags:       describeFlags(cmd.LocalNonPersistentFlags()),
		Subcommands: describeChildren(cmd),
	}
}

func describeChildren(cmd *cobra.Command) []CommandMetadata {
	var out []CommandMetadata
	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" {
			continue
		}
		out = append(out, describe(sub))
	}
	return out
}

func describeFlags(fs *pflag.FlagSet) []FlagMetadata {
	var out []FlagMetadata
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		_, required := f.Annotations[cobra.BashCompOneRequiredFlag]
		out = append(out, FlagMetadata{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Type:      f.Value.Type(),
			Usage:     f.Usage,
			Default:   f.DefValue,
			Required:  required,
		})
	})
	return out
}
