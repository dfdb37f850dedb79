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

package shared

import (
	"fmt"
	"io"
	"os"

	"github.com/tombee/flowkit/pkg/workflow"
	"github.com/tombee/flowkit/pkg/workflow/generator"
)

// ReadInput reads a file, or stdin when path is "-".
func ReadInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, NewInvalidInputError("failed to read stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewInvalidInputError(fmt.Sprintf("failed to read %s", path), err)
	}
	return data, nil
}

// ReadGraph loads a workflow graph from a YAML or JSON file.
func ReadGraph(path string) (*workflow.Graph, error) {
	data, err := ReadInput(path)
	if err != nil {
		return nil, err
	}
	g, err := workflow.ParseGraph(data)
	if err != nil {
		return nil, NewInvalidInputError(fmt.Sprintf("invalid graph %s", path), err)
	}
	return g, nil
}

// ReadAgent loads and validates an agent definition.
func ReadAgent(path string) (*generator.AgentDefinition, error) {
	data, err := ReadInput(path)
	if err != nil {
		return nil, err
	}
	agent, err := generator.ParseAgent(data)
	if err != nil {
		return nil, NewInvalidInputError(fmt.Sprintf("invalid agent definition %s", path), err)
	}
	return agent, nil
}

// WriteGraph writes g as indented JSON to path, or to w when path is "".
func WriteGraph(w io.Writer, path string, g *workflow.Graph) error {
	data, err := g.JSON()
	if err != nil {
		return err
	}
	if path == "" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
