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

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/flowkit/internal/commands/shared"
	flowlog "github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/internal/mcp/server"
	"github.com/tombee/flowkit/internal/metrics"
)

// NewCommand creates the mcp-server command
func NewCommand() *cobra.Command {
	var (
		metricsAddr    string
		callsPerMinute int
	)

	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Start the flowkit MCP server",
		Annotations: map[string]string{
			"group": "integration",
		},
		Long: `Start the flowkit MCP (Model Context Protocol) server on stdio.

The server exposes catalog search, model recommendation, graph generation,
validation, modification and export as tools an AI assistant can call.
Credentials are redacted in every tool result.

Configuration example:
  {
    "mcpServers": {
      "flowkit": {
        "command": "flowkit",
        "args": ["mcp-server"]
      }
    }
  }

Tools:
  - flowkit_catalog_search:   Search the node catalog
  - flowkit_models_recommend: Recommend models for a use case
  - flowkit_generate:         Generate a graph from an agent definition
  - flowkit_validate:         Validate and score a graph
  - flowkit_modify:           Apply or suggest node parameter changes
  - flowkit_export:           Render a graph as a Flowise chatflow

Tool calls are rate limited by mcp.calls_per_minute in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := -1
			if cmd.Flags().Changed("calls-per-minute") {
				limit = callsPerMinute
			}
			return run(cmd.Context(), metricsAddr, limit)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
	cmd.Flags().IntVar(&callsPerMinute, "calls-per-minute", 0, "Override the tool call rate limit (0 disables it)")

	return cmd
}

// run serves until ctx is cancelled or the client disconnects. A negative
// limit keeps the configured rate limit.
func run(ctx context.Context, metricsAddr string, limit int) error {
	env, err := shared.NewEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close(context.Background())

	if limit < 0 {
		limit = env.Config.MCP.CallsPerMinute
	}
	version, _, _ := shared.GetVersion()
	srv := server.New(env.Workbench, server.Config{
		Version:        version,
		CallsPerMinute: limit,
		Logger:         env.Logger,
	})

	if metricsAddr != "" {
		stop, err := serveMetrics(metricsAddr, env.Logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	return srv.Run(ctx)
}

// serveMetrics starts the metrics listener and returns a function that
// shuts it down.
func serveMetrics(addr string, logger *slog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, shared.NewConfigError(fmt.Sprintf("failed to listen on %s", addr), err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	httpSrv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", flowlog.Error(err))
		}
	}()
	logger.Info("serving metrics", slog.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(ctx)
	}, nil
}
