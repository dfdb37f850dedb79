package workflow

import (
	"fmt"
	"strings"
)

// DAG is an adjacency view of a Graph. Edges whose endpoints do not
// resolve are skipped, and a duplicated node id keeps its first position.
// The view is a snapshot; rebuild it after editing the graph.
type DAG struct {
	order []string
	index map[string]int
	out   map[string][]string
	in    map[string][]string
}

// NewDAG builds the adjacency view of g.
func NewDAG(g *Graph) *DAG {
	d := &DAG{
		index: make(map[string]int, len(g.Nodes)),
		out:   make(map[string][]string, len(g.Nodes)),
		in:    make(map[string][]string, len(g.Nodes)),
	}
	for _, n := range g.Nodes {
		if _, dup := d.index[n.ID]; dup {
			continue
		}
		d.index[n.ID] = len(d.order)
		d.order = append(d.order, n.ID)
	}
	for _, e := range g.Edges {
		if !d.Has(e.Source) || !d.Has(e.Target) {
			continue
		}
		d.out[e.Source] = append(d.out[e.Source], e.Target)
		d.in[e.Target] = append(d.in[e.Target], e.Source)
	}
	return d
}

// Has reports whether id is a node of the view.
func (d *DAG) Has(id string) bool {
	_, ok := d.index[id]
	return ok
}

// IDs returns node ids in declaration order.
func (d *DAG) IDs() []string {
	return d.order
}

// Successors returns the targets of id's outgoing edges.
func (d *DAG) Successors(id string) []string { return d.out[id] }

// Predecessors returns the sources of id's incoming edges.
func (d *DAG) Predecessors(id string) []string { return d.in[id] }

// InDegree returns the number of resolved incoming edges of id.
func (d *DAG) InDegree(id string) int { return len(d.in[id]) }

// OutDegree returns the number of resolved outgoing edges of id.
func (d *DAG) OutDegree(id string) int { return len(d.out[id]) }

// Roots returns nodes with no incoming edges, in declaration order.
func (d *DAG) Roots() []string {
	var roots []string
	for _, id := range d.order {
		if len(d.in[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// Sinks returns nodes with no outgoing edges, in declaration order.
func (d *DAG) Sinks() []string {
	var sinks []string
	for _, id := range d.order {
		if len(d.out[id]) == 0 {
			sinks = append(sinks, id)
		}
	}
	return sinks
}

// FindCycle returns one cycle as a closed list of ids (first == last),
// or nil if the graph is acyclic. Search starts from nodes in declaration
// order so the reported cycle is stable.
func (d *DAG) FindCycle() []string {
	const (
		unvisited = iota
		onStack
		done
	)
	state := make(map[string]int, len(d.order))
	var stack []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		state[id] = onStack
		stack = append(stack, id)
		for _, next := range d.out[id] {
			switch state[next] {
			case onStack:
				for i, s := range stack {
					if s == next {
						cycle = append(append([]string{}, stack[i:]...), next)
						return true
					}
				}
			case unvisited:
				if visit(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
		return false
	}

	for _, id := range d.order {
		if state[id] == unvisited && visit(id) {
			return cycle
		}
	}
	return nil
}

// CycleError reports a cycle found while ordering a graph.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Path, " -> "))
}

// TopoOrder returns a topological order of all nodes. Ties are broken by
// declaration order. Returns a *CycleError if the graph has a cycle.
func (d *DAG) TopoOrder() ([]string, error) {
	indeg := make(map[string]int, len(d.order))
	for _, id := range d.order {
		indeg[id] = len(d.in[id])
	}

	var ready, order []string
	for _, id := range d.order {
		if indeg[id] == 0 {
			ready = append(ready, id)
		}
	}
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, next := range d.out[id] {
			indeg[next]--
			if indeg[next] == 0 {
				ready = d.insertByIndex(ready, next)
			}
		}
	}

	if len(order) != len(d.order) {
		return nil, &CycleError{Path: d.FindCycle()}
	}
	return order, nil
}

func (d *DAG) insertByIndex(ids []string, id string) []string {
	pos := len(ids)
	for i, other := range ids {
		if d.index[id] < d.index[other] {
			pos = i
			break
		}
	}
	ids = append(ids, "")
	copy(ids[pos+1:], ids[pos:])
	ids[pos] = id
	return ids
}

// Reachable returns every node reachable from the given starting ids,
// including the starting ids themselves.
func (d *DAG) Reachable(from ...string) map[string]bool {
	seen := make(map[string]bool)
	queue := append([]string{}, from...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] || !d.Has(id) {
			continue
		}
		seen[id] = true
		queue = append(queue, d.out[id]...)
	}
	return seen
}

// Ancestors returns every node that can reach one of the given ids,
// including the ids themselves.
func (d *DAG) Ancestors(of ...string) map[string]bool {
	seen := make(map[string]bool)
	queue := append([]string{}, of...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] || !d.Has(id) {
			continue
		}
		seen[id] = true
		queue = append(queue, d.in[id]...)
	}
	return seen
}

// LongestPath returns the heaviest root-to-sink chain where each node
// contributes weight(id). A nil weight counts every node as 1. Returns
// nil, 0 if the graph has a cycle or no nodes.
func (d *DAG) LongestPath(weight func(id string) float64) ([]string, float64) {
	order, err := d.TopoOrder()
	if err != nil || len(order) == 0 {
		return nil, 0
	}
	if weight == nil {
		weight = func(string) float64 { return 1 }
	}

	best := make(map[string]float64, len(order))
	prev := make(map[string]string, len(order))
	for _, id := range order {
		w := weight(id)
		best[id] = w
		for _, p := range d.in[id] {
			if best[p]+w > best[id] {
				best[id] = best[p] + w
				prev[id] = p
			}
		}
	}

	end := order[0]
	for _, id := range order {
		if best[id] > best[end] {
			end = id
		}
	}

	var path []string
	for id := end; id != ""; id = prev[id] {
		path = append([]string{id}, path...)
	}
	return path, best[end]
}

// Paths enumerates root-to-sink paths depth-first, visiting successors
// in edge declaration order. Enumeration stops after limit paths; a
// limit <= 0 means no limit. Nodes already on the current path are not
// revisited, so cyclic graphs still terminate.
func (d *DAG) Paths(limit int) [][]string {
	var paths [][]string
	onPath := make(map[string]bool)
	var current []string

	var walk func(id string) bool
	walk = func(id string) bool {
		if limit > 0 && len(paths) >= limit {
			return false
		}
		current = append(current, id)
		onPath[id] = true
		defer func() {
			current = current[:len(current)-1]
			onPath[id] = false
		}()

		extended := false
		for _, next := range d.out[id] {
			if onPath[next] {
				continue
			}
			extended = true
			if !walk(next) {
				return false
			}
		}
		if !extended {
			paths = append(paths, append([]string{}, current...))
		}
		return true
	}

	for _, root := range d.Roots() {
		if !walk(root) {
			break
		}
	}
	return paths
}
