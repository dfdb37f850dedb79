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

package validator

import (
	"time"

	"github.com/tombee/flowkit/pkg/workflow"
)

// Level is a coarse resource bucket.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Metrics summarizes the size and expected cost of a graph. Performance
// and cost fields are only filled when requested in Options.
type Metrics struct {
	NodeCount          int     `json:"nodeCount"`
	EdgeCount          int     `json:"edgeCount"`
	MaxDepth           int     `json:"maxDepth"`
	ParallelPaths      int     `json:"parallelPaths"`
	CriticalPathLength float64 `json:"criticalPathLength"`
	ComplexityScore    float64 `json:"complexityScore"`

	EstimatedExecutionTime string `json:"estimatedExecutionTime,omitempty"`
	MemoryUsage            Level  `json:"memoryUsage,omitempty"`
	CostEstimate           Level  `json:"costEstimate,omitempty"`
}

// Estimated latency per node category, in milliseconds.
var latencyMS = map[workflow.Category]float64{
	workflow.CategoryChatModel:      1500,
	workflow.CategoryLLM:            1500,
	workflow.CategoryAgent:          500,
	workflow.CategoryTool:           400,
	workflow.CategoryRetriever:      250,
	workflow.CategoryEmbeddings:     300,
	workflow.CategoryDocumentLoader: 800,
	workflow.CategoryDocumentStore:  150,
	workflow.CategoryTextSplitter:   100,
	workflow.CategoryMemory:         50,
}

const defaultLatencyMS = 10

// Relative memory weight per node category.
var memoryWeight = map[workflow.Category]int{
	workflow.CategoryDocumentStore:  4,
	workflow.CategoryEmbeddings:     2,
	workflow.CategoryDocumentLoader: 2,
	workflow.CategoryMemory:         2,
	workflow.CategoryChatModel:      1,
	workflow.CategoryLLM:            1,
	workflow.CategoryAgent:          1,
}

// Relative spend per node category; only nodes that call paid APIs count.
var costWeight = map[workflow.Category]int{
	workflow.CategoryChatModel:  3,
	workflow.CategoryLLM:        3,
	workflow.CategoryAgent:      2,
	workflow.CategoryEmbeddings: 1,
	workflow.CategoryTool:       1,
}

func nodeLatency(g *workflow.Graph, id string) float64 {
	n := g.Node(id)
	if n == nil {
		return 0
	}
	if ms, ok := latencyMS[n.Category()]; ok {
		return ms
	}
	return defaultLatencyMS
}

func computeMetrics(g *workflow.Graph, d *workflow.DAG, flow Flow, opts Options) Metrics {
	m := Metrics{
		NodeCount: len(g.Nodes),
		EdgeCount: len(g.Edges),
	}

	if _, depth := d.LongestPath(nil); depth > 0 {
		m.MaxDepth = int(depth)
	} else {
		for _, p := range flow.Paths {
			m.MaxDepth = max(m.MaxDepth, len(p.Nodes))
		}
	}

	for _, id := range d.IDs() {
		if out := d.OutDegree(id); out > 1 {
			m.ParallelPaths += out - 1
		}
	}

	if _, ms := d.LongestPath(func(id string) float64 { return nodeLatency(g, id) }); ms > 0 {
		m.CriticalPathLength = ms
	} else {
		for _, p := range flow.Paths {
			var sum float64
			for _, id := range p.Nodes {
				sum += nodeLatency(g, id)
			}
			m.CriticalPathLength = max(m.CriticalPathLength, sum)
		}
	}

	m.ComplexityScore = float64(m.NodeCount) + 1.5*float64(m.EdgeCount) + 2*float64(m.MaxDepth) + 3*float64(m.ParallelPaths)

	if opts.IncludePerformanceAnalysis {
		m.EstimatedExecutionTime = formatLatency(m.CriticalPathLength)
		mem := 0
		for _, n := range g.Nodes {
			mem += memoryWeight[n.Category()]
		}
		m.MemoryUsage = bucket(mem, 4, 10)
	}
	if opts.IncludeCostAnalysis {
		cost := 0
		for _, n := range g.Nodes {
			cost += costWeight[n.Category()]
		}
		m.CostEstimate = bucket(cost, 4, 10)
	}
	return m
}

// bucket maps a weight to low (< mid), medium (< high) or high.
func bucket(weight, mid, high int) Level {
	switch {
	case weight < mid:
		return LevelLow
	case weight < high:
		return LevelMedium
	default:
		return LevelHigh
	}
}

func formatLatency(ms float64) string {
	d := time.Duration(ms * float64(time.Millisecond))
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
