package validator

import (
	"github.com/tombee/flowkit/pkg/workflow"
)

// PathType labels an execution path.
type PathType string

const (
	PathMain      PathType = "main"
	PathAlternate PathType = "alternate"
)

// Path is one root-to-sink chain of node ids.
type Path struct {
	ID             string   `json:"id"`
	Type           PathType `json:"type"`
	Nodes          []string `json:"nodes"`
	ExecutionOrder int      `json:"executionOrder"`
}

// Flow describes how execution moves through the graph.
type Flow struct {
	Paths       []Path   `json:"paths"`
	EntryPoints []string `json:"entryPoints"`
	ExitPoints  []string `json:"exitPoints"`

	// Order is a topological order of all nodes; empty when the graph has a cycle.
	Order     []string `json:"order"`
	Truncated bool     `json:"truncated,omitempty"`
}

// extractFlow enumerates up to limit paths. The path covering the most
// nodes is main; ties go to the path that runs from an input to an output
// node, then to the first discovered.
func extractFlow(g *workflow.Graph, d *workflow.DAG, limit int) Flow {
	flow := Flow{
		Paths:       []Path{},
		EntryPoints: d.Roots(),
		ExitPoints:  d.Sinks(),
		Order:       []string{},
	}
	if order, err := d.TopoOrder(); err == nil {
		flow.Order = order
	}

	raw := d.Paths(limit)
	flow.Truncated = limit > 0 && len(raw) >= limit

	main := -1
	for i, nodes := range raw {
		if main < 0 || len(nodes) > len(raw[main]) ||
			(len(nodes) == len(raw[main]) && endToEnd(g, nodes) && !endToEnd(g, raw[main])) {
			main = i
		}
	}

	for i, nodes := range raw {
		typ := PathAlternate
		if i == main {
			typ = PathMain
		}
		flow.Paths = append(flow.Paths, Path{
			ID:             stableID(append([]string{"path"}, nodes...)...),
			Type:           typ,
			Nodes:          nodes,
			ExecutionOrder: i,
		})
	}
	return flow
}

func endToEnd(g *workflow.Graph, nodes []string) bool {
	first, last := g.Node(nodes[0]), g.Node(nodes[len(nodes)-1])
	return first != nil && last != nil &&
		first.Category() == workflow.CategoryInput && last.Category() == workflow.CategoryOutput
}
