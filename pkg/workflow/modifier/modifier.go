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

// Package modifier edits node parameters of a workflow graph.
//
// Edits are staged into a Batch and applied together. A batch either
// applies completely or leaves the graph untouched.
package modifier

import (
	"fmt"
	"log/slog"
	"sort"

	flowlog "github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/param"
	"github.com/tombee/flowkit/pkg/workflow"
)

// WorkflowType is the kind of Flowise flow being edited.
type WorkflowType string

const (
	Chatflow  WorkflowType = "CHATFLOW"
	Agentflow WorkflowType = "AGENTFLOW"
)

// Context describes the flow a modification or suggestion applies to.
type Context struct {
	WorkflowType WorkflowType `json:"workflowType"`
}

// Request holds the changes for one node.
type Request struct {
	NodeID        string         `json:"nodeId"`
	Modifications map[string]any `json:"modifications"`
	Reason        string         `json:"reason,omitempty"`
}

// Result is the outcome of a successful Apply.
type Result struct {
	Graph           *workflow.Graph `json:"graph"`
	ModifiedNodeIDs []string        `json:"modifiedNodeIds"`
}

// ModificationError reports why a batch was rejected.
type ModificationError struct {
	Err *errors.MultiValidationError
}

func (e *ModificationError) Error() string {
	return "modification batch rejected: " + e.Err.Error()
}

func (e *ModificationError) Unwrap() error {
	return e.Err
}

// Modifier applies parameter edits to graphs. It is safe for concurrent
// use; callers serialize edits to any one graph.
type Modifier struct {
	registry *llm.Registry
	checker  *param.Checker
	logger   *slog.Logger
}

// Option configures a Modifier.
type Option func(*Modifier)

// WithChecker sets the parameter checker.
func WithChecker(c *param.Checker) Option {
	return func(m *Modifier) { m.checker = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Modifier) { m.logger = l }
}

// New creates a Modifier. The registry supplies model select options and
// per-model limits; it may be nil.
func New(registry *llm.Registry, opts ...Option) *Modifier {
	m := &Modifier{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.checker == nil {
		m.checker = param.NewChecker(nil)
	}
	return m
}

// Apply merges every request into the graph. All requests are checked
// against a copy first; if any fails, the graph is left unchanged and a
// *ModificationError describing every failure is returned. On success the
// graph is updated in place and the touched node ids are returned in
// request order.
func (m *Modifier) Apply(g *workflow.Graph, requests []Request, ctx Context) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("graph is required")
	}

	working := g.Clone()
	var errs errors.MultiValidationError
	var touched []string
	seen := make(map[string]bool)

	for _, req := range requests {
		node := working.Node(req.NodeID)
		if node == nil {
			errs.Add(req.NodeID, "node not found", "check the node id against the graph")
			continue
		}
		if len(req.Modifications) == 0 {
			continue
		}
		if node.Data == nil {
			node.Data = map[string]any{}
		}

		specs := m.AvailableModifications(*node)
		for _, key := range sortedKeys(req.Modifications) {
			value := req.Modifications[key]
			spec, ok := param.Find(specs, key)
			if !ok {
				errs.Add(req.NodeID+"."+key, fmt.Sprintf("field is not editable on %s nodes", node.Category()),
					fmt.Sprintf("editable fields: %v", specNames(specs)))
				continue
			}
			if err := m.checker.Check(spec, value, node.Data); err != nil {
				addFailure(&errs, req.NodeID, key, err)
				continue
			}
			node.Data[key] = value
			if key == "modelName" {
				if _, synced := node.Data["model"]; synced {
					node.Data["model"] = value
				}
			}
		}

		if !seen[req.NodeID] {
			seen[req.NodeID] = true
			touched = append(touched, req.NodeID)
		}
	}

	for _, id := range touched {
		m.checkNode(&errs, working.Node(id))
	}

	if errs.HasErrors() {
		m.logger.Debug("rejected modification batch",
			slog.String(flowlog.GraphKey, g.Name),
			slog.Int("requests", len(requests)),
			slog.Int("errors", len(errs.Errors)),
		)
		return nil, &ModificationError{Err: &errs}
	}

	*g = *working
	m.logger.Debug("applied modification batch",
		slog.String(flowlog.GraphKey, g.Name),
		slog.String("workflow_type", string(ctx.WorkflowType)),
		slog.Any("nodes", touched),
	)
	return &Result{Graph: g, ModifiedNodeIDs: touched}, nil
}

// checkNode runs cross-field checks on a node after its edits are merged.
func (m *Modifier) checkNode(errs *errors.MultiValidationError, node *workflow.Node) {
	switch p := workflow.DecodeParams(*node).(type) {
	case workflow.TextSplitterParams:
		if p.ChunkSize != nil && p.ChunkOverlap != nil && *p.ChunkOverlap >= *p.ChunkSize {
			errs.Add(node.ID+".chunkOverlap",
				fmt.Sprintf("chunk overlap %d must be smaller than chunk size %d", *p.ChunkOverlap, *p.ChunkSize),
				"lower chunkOverlap or raise chunkSize")
		}
	case workflow.ChatModelParams:
		spec, ok := m.modelParameter(*node, "maxTokens")
		if !ok || spec.Max == nil || p.MaxTokens == nil {
			return
		}
		if float64(*p.MaxTokens) > *spec.Max {
			errs.Add(node.ID+".maxTokens",
				fmt.Sprintf("maxTokens %d exceeds the model limit of %g", *p.MaxTokens, *spec.Max),
				"lower maxTokens or choose a larger model")
		}
	}
}

func addFailure(errs *errors.MultiValidationError, nodeID, key string, err error) {
	var ve *errors.ValidationError
	if errors.As(err, &ve) {
		errs.Add(nodeID+"."+key, ve.Message, ve.Suggestion)
		return
	}
	errs.Add(nodeID+"."+key, err.Error(), "")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func specNames(specs []param.Spec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
