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

// Package catalog implements the "flowkit catalog" command group.
package catalog

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/completion"
	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/pkg/catalog"
)

// NewCommand creates the catalog command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the Flowise node catalog",
		Annotations: map[string]string{
			"group": "discovery",
		},
		Long: `Browse the Flowise node types flowkit knows about.

The built-in catalog can be replaced or extended with catalog.path and
catalog.patterns in the config file.`,
		Example: `  # List every node
  flowkit catalog list

  # Search labels, descriptions and categories
  flowkit catalog search "vector"

  # Nodes in one category
  flowkit catalog category "Chat Models"

  # Nodes suited to a RAG agent
  flowkit catalog recommend rag`,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newCategoryCmd())
	cmd.AddCommand(newRecommendCmd())

	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all nodes and categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "catalog list", func(c *catalog.Catalog) []catalog.NodeDescriptor {
				return c.Nodes()
			})
		},
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search nodes by label, description or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "catalog search", func(c *catalog.Catalog) []catalog.NodeDescriptor {
				return c.Search(args[0])
			})
		},
	}
}

func newCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "category <name>",
		Short:             "List the nodes in one category",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompleteCategories,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "catalog category", func(c *catalog.Catalog) []catalog.NodeDescriptor {
				return c.FindByCategory(args[0])
			})
		},
	}
}

func newRecommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "recommend <agent-type>",
		Short:     "Recommend nodes for an agent type",
		Long:      `Recommend nodes for an agent type (chat, rag or assistant).`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"chat", "rag", "assistant"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, "catalog recommend", func(c *catalog.Catalog) []catalog.NodeDescriptor {
				return c.RecommendedFor(args[0])
			})
		},
	}
}

func run(cmd *cobra.Command, command string, query func(*catalog.Catalog) []catalog.NodeDescriptor) error {
	env, err := shared.NewEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer env.Close(cmd.Context())

	c := env.Workbench.Catalog()
	nodes := query(c)
	out := cmd.OutOrStdout()

	if shared.GetJSON() {
		if nodes == nil {
			nodes = []catalog.NodeDescriptor{}
		}
		resp := struct {
			shared.JSONResponse
			Nodes      []catalog.NodeDescriptor `json:"nodes"`
			Categories []string                 `json:"categories"`
			Count      int                      `json:"count"`
		}{
			JSONResponse: shared.NewJSONResponse(command),
			Nodes:        nodes,
			Categories:   c.Categories(),
			Count:        len(nodes),
		}
		return shared.EmitJSON(out, resp)
	}

	if len(nodes) == 0 {
		fmt.Fprintln(out, "No matching nodes.")
		return nil
	}
	printNodes(out, nodes)
	return nil
}

func printNodes(out io.Writer, nodes []catalog.NodeDescriptor) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tLABEL\tCATEGORY\tDESCRIPTION")
	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.PathID, n.Label, n.Category, truncate(n.Description, 60))
	}
	w.Flush()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
