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

package workflow

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/tombee/flowkit/pkg/errors"
)

// Graph is a workflow: a named set of nodes and the directed edges between them.
type Graph struct {
	// Name is the chatflow name shown in Flowise.
	Name string `yaml:"name" json:"name"`

	// Description is free text carried into the export.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Nodes in declaration order. Ids are unique within a graph.
	Nodes []Node `yaml:"nodes" json:"nodes"`

	// Edges in declaration order.
	Edges []Edge `yaml:"edges" json:"edges"`
}

// Node is one component instance in a graph.
type Node struct {
	ID       string         `yaml:"id" json:"id"`
	Type     string         `yaml:"type" json:"type"`
	Position Position       `yaml:"position" json:"position"`
	Data     map[string]any `yaml:"data,omitempty" json:"data,omitempty"`
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Edge connects the output of Source to an input of Target.
type Edge struct {
	ID           string `yaml:"id" json:"id"`
	Source       string `yaml:"source" json:"source"`
	Target       string `yaml:"target" json:"target"`
	SourceHandle string `yaml:"sourceHandle,omitempty" json:"sourceHandle,omitempty"`
	TargetHandle string `yaml:"targetHandle,omitempty" json:"targetHandle,omitempty"`
}

// EdgeID returns the conventional id for an edge between two nodes.
func EdgeID(source, target string) string {
	return source + "->" + target
}

// Connect appends an edge from source to target using the conventional id.
func (g *Graph) Connect(source, target string) {
	g.Edges = append(g.Edges, Edge{
		ID:     EdgeID(source, target),
		Source: source,
		Target: target,
	})
}

// Node returns a pointer to the node with the given id, or nil.
// The pointer aliases the graph's slice and is invalidated by appends.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	return g.Node(id) != nil
}

// NodesOf returns the nodes whose type classifies as the given category.
func (g *Graph) NodesOf(category Category) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Category() == category {
			out = append(out, n)
		}
	}
	return out
}

// Category classifies the node by its type.
func (n Node) Category() Category {
	return Classify(n.Type)
}

// Clone returns a deep copy of the graph, including every node's Data.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	out := &Graph{
		Name:        g.Name,
		Description: g.Description,
		Nodes:       make([]Node, len(g.Nodes)),
		Edges:       make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		n.Data = cloneMap(n.Data)
		out.Nodes[i] = n
	}
	copy(out.Edges, g.Edges)
	return out
}

// JSON renders the graph as indented JSON.
func (g *Graph) JSON() ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// ParseGraph decodes a graph from YAML or JSON.
func ParseGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse workflow graph: %w", err)
	}
	if len(g.Nodes) == 0 && len(g.Edges) == 0 && g.Name == "" {
		return nil, &errors.ValidationError{
			Field:      "graph",
			Message:    "document contains no graph",
			Suggestion: "expected top-level name, nodes and edges keys",
		}
	}
	for i := range g.Nodes {
		g.Nodes[i].Data = normalizeMap(g.Nodes[i].Data)
	}
	return &g, nil
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

// normalizeMap converts the map[any]any values yaml.v3 can produce for
// nested mappings with non-string keys into map[string]any.
func normalizeMap(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = normalizeValue(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = normalizeValue(e)
		}
		return t
	default:
		return v
	}
}
