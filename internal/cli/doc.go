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

/*
Package cli provides the root command and shared configuration for the flowkit CLI.

This package creates the main Cobra command tree and handles global concerns like
version information, persistent flags, and error handling. Individual commands
are implemented in the internal/commands subpackages.

# Command Tree

	flowkit
	├── generate      Generate a workflow graph from an agent definition
	├── validate      Validate a workflow graph
	├── modify        Change node parameters in a workflow graph
	├── export        Export or push a graph as a Flowise chatflow
	├── catalog       Browse the node catalog
	├── models        Browse and configure LLM models
	├── mcp-server    Serve the workbench over MCP (stdio)
	├── config        Show and validate configuration
	├── secrets       Manage provider and Flowise credentials
	├── completion    Generate shell completion scripts
	├── version       Show version
	└── help          Show help

# Usage

From main.go:

	cli.SetVersion(version, commit, date)
	if err := cli.NewApp().ExecuteContext(ctx); err != nil {
	    cli.HandleExitError(err)
	}

# Global Flags

	--verbose, -v    Enable verbose output
	--quiet, -q      Suppress non-error output
	--json           Output in JSON format
	--query          jq expression applied to JSON output (implies --json)
	--config         Path to config file
	--trace          Trace exporter (stdout, otlp-http, otlp-grpc)

# Exit Codes

  - 0: Success
  - 1: General failure
  - 2: Invalid input or a rejected graph
  - 3: Configuration problem
  - 4: Model, node or secret not found
  - 5: Flowise API failure
*/
package cli
