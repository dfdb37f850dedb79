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

// Package validator checks workflow graphs and previews how they execute.
//
// Validation never fails on a malformed graph. Problems become issues in
// the report and lower its score; only a nil graph is rejected.
package validator

import (
	"log/slog"

	flowlog "github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/workflow"
)

// ErrNilGraph is returned when Validate is called without a graph.
var ErrNilGraph = errors.New("graph is required")

// DefaultMaxPaths caps path enumeration.
const DefaultMaxPaths = 64

// Options select what Validate reports.
type Options struct {
	// StrictMode promotes warnings to errors.
	StrictMode bool `json:"strictMode"`

	IncludePerformanceAnalysis bool `json:"includePerformanceAnalysis"`
	IncludeCostAnalysis        bool `json:"includeCostAnalysis"`
}

// NodeStatus is the worst severity found on a node.
type NodeStatus string

const (
	StatusValid   NodeStatus = "valid"
	StatusWarning NodeStatus = "warning"
	StatusError   NodeStatus = "error"
)

// NodePreview is the per-node view of a validation.
type NodePreview struct {
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	Category       workflow.Category `json:"category"`
	Status         NodeStatus        `json:"status"`
	Issues         []string          `json:"issues"`
	ExecutionOrder int               `json:"executionOrder"`

	IncomingCount          int    `json:"incomingCount"`
	OutgoingCount          int    `json:"outgoingCount"`
	EstimatedExecutionTime string `json:"estimatedExecutionTime"`
	EstimatedCost          Level  `json:"estimatedCost"`
}

// Preview is the full result of Validate.
type Preview struct {
	Validation Report        `json:"validation"`
	Nodes      []NodePreview `json:"nodes"`
	Flow       Flow          `json:"flow"`
	Metrics    Metrics       `json:"metrics"`
}

// Validator checks graphs. It holds no per-call state.
type Validator struct {
	penalties Penalties
	maxPaths  int
	logger    *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithPenalties overrides the per-severity score deductions.
func WithPenalties(p Penalties) Option {
	return func(v *Validator) { v.penalties = p }
}

// WithMaxPaths caps path enumeration. Values <= 0 keep the default.
func WithMaxPaths(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxPaths = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		penalties: DefaultPenalties(),
		maxPaths:  DefaultMaxPaths,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks g and builds its preview.
func (v *Validator) Validate(g *workflow.Graph, opts Options) (*Preview, error) {
	if g == nil {
		return nil, ErrNilGraph
	}

	d := workflow.NewDAG(g)
	var f findings
	checkStructure(g, &f)
	checkConnectivity(g, d, &f)
	checkConfiguration(g, &f)

	report := Report{Errors: []Issue{}, Warnings: []Issue{}}
	for _, is := range f.issues {
		if is.Severity == SeverityWarning && opts.StrictMode {
			is.Severity = SeverityError
		}
		is.Description = is.describe()
		if is.Severity == SeverityWarning {
			report.Warnings = append(report.Warnings, is)
		} else {
			report.Errors = append(report.Errors, is)
		}
	}
	report.Valid = len(report.Errors) == 0
	report.Score = v.penalties.score(report.Errors, report.Warnings)

	flow := extractFlow(g, d, v.maxPaths)
	metrics := computeMetrics(g, d, flow, opts)
	report.Suggestions = suggest(g, d, metrics)
	if report.Suggestions == nil {
		report.Suggestions = []Suggestion{}
	}

	preview := &Preview{
		Validation: report,
		Nodes:      nodePreviews(g, d, flow, report),
		Flow:       flow,
		Metrics:    metrics,
	}

	v.logger.Debug("validated workflow graph",
		slog.String(flowlog.GraphKey, g.Name),
		slog.Bool("valid", report.Valid),
		slog.Int("score", report.Score),
		slog.Int("errors", len(report.Errors)),
		slog.Int("warnings", len(report.Warnings)),
	)
	return preview, nil
}

func nodePreviews(g *workflow.Graph, d *workflow.DAG, flow Flow, report Report) []NodePreview {
	order := make(map[string]int, len(flow.Order))
	for i, id := range flow.Order {
		order[id] = i
	}

	previews := make([]NodePreview, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		p := NodePreview{
			ID:             n.ID,
			Type:           n.Type,
			Category:       n.Category(),
			Status:         StatusValid,
			Issues:         []string{},
			ExecutionOrder: -1,

			IncomingCount:          d.InDegree(n.ID),
			OutgoingCount:          d.OutDegree(n.ID),
			EstimatedExecutionTime: formatLatency(nodeLatency(g, n.ID)),
			EstimatedCost:          bucket(costWeight[n.Category()], 1, 3),
		}
		if i, ok := order[n.ID]; ok {
			p.ExecutionOrder = i
		}
		for _, is := range report.Warnings {
			if is.NodeID == n.ID && n.ID != "" {
				p.Status = StatusWarning
				p.Issues = append(p.Issues, is.Message)
			}
		}
		for _, is := range report.Errors {
			if is.NodeID == n.ID && n.ID != "" {
				p.Status = StatusError
				p.Issues = append(p.Issues, is.Message)
			}
		}
		previews = append(previews, p)
	}
	return previews
}
