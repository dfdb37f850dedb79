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

package export

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/shared"
	"github.com/tombee/flowkit/internal/history"
)

func newHistoryCommand() *cobra.Command {
	var (
		limit  int
		forget string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List chatflows pushed from this machine",
		Long: `History lists the chatflows created or replaced by "flowkit export --push",
newest first. --forget drops the record for a graph on the configured
Flowise instance, so its next push creates a new chatflow.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := shared.OpenHistory(ctx)
			if err != nil {
				return shared.NewConfigError("failed to open push history", err)
			}
			defer store.Close()
			out := cmd.OutOrStdout()

			if forget != "" {
				cfg, err := shared.LoadConfig()
				if err != nil {
					return err
				}
				ok, err := store.Forget(ctx, cfg.Flowise.BaseURL, forget)
				if err != nil {
					return err
				}
				if !ok {
					return &shared.ExitError{
						Code:    shared.ExitNotFound,
						Message: fmt.Sprintf("no push recorded for %q", forget),
					}
				}
				fmt.Fprintln(out, shared.RenderOK("forgot "+forget))
				return nil
			}

			pushes, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if shared.GetJSON() {
				if pushes == nil {
					pushes = []history.Push{}
				}
				return shared.EmitJSON(out, struct {
					shared.JSONResponse
					Pushes []history.Push `json:"pushes"`
				}{shared.NewJSONResponse("export history"), pushes})
			}
			if len(pushes) == 0 {
				fmt.Fprintln(out, "no chatflows pushed yet")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GRAPH\tCHATFLOW\tTYPE\tINSTANCE\tPUSHED")
			for _, p := range pushes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					p.GraphName, p.ChatflowID, p.FlowType, p.BaseURL, p.PushedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to list (0 for all)")
	cmd.Flags().StringVar(&forget, "forget", "", "Drop the record for this graph name")
	return cmd
}
