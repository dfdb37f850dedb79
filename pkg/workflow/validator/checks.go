package validator

import (
	"fmt"
	"strings"

	"github.com/tombee/flowkit/pkg/workflow"
)

// findings collects issues in detection order.
type findings struct {
	issues []Issue
}

func (f *findings) add(sev Severity, cat IssueCategory, nodeID, msg, suggestion string) {
	f.issues = append(f.issues, Issue{
		ID:          stableID(string(sev), string(cat), nodeID, msg),
		Severity:    sev,
		Category:    cat,
		NodeID:      nodeID,
		Message:     msg,
		Suggestion:  suggestion,
	})
}

func (f *findings) addEdge(sev Severity, edgeID, msg, suggestion string) {
	f.issues = append(f.issues, Issue{
		ID:          stableID(string(sev), string(CategoryConnectivity), edgeID, msg),
		Severity:    sev,
		Category:    CategoryConnectivity,
		EdgeID:      edgeID,
		Message:     msg,
		Suggestion:  suggestion,
	})
}

// describe says where an issue sits and how much it matters.
func (is Issue) describe() string {
	where := "the workflow"
	switch {
	case is.NodeID != "":
		where = fmt.Sprintf("node %q", is.NodeID)
	case is.EdgeID != "":
		where = fmt.Sprintf("edge %q", is.EdgeID)
	}
	switch is.Severity {
	case SeverityCritical:
		return fmt.Sprintf("Critical %s problem in %s; the flow cannot run until it is fixed.", is.Category, where)
	case SeverityError:
		return fmt.Sprintf("%s error in %s; the workflow is invalid until it is fixed.", capitalize(string(is.Category)), where)
	default:
		return fmt.Sprintf("%s warning in %s; the workflow still runs.", capitalize(string(is.Category)), where)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// checkStructure validates node identity and edge endpoints.
func checkStructure(g *workflow.Graph, f *findings) {
	if len(g.Nodes) == 0 {
		f.add(SeverityError, CategoryStructure, "", "workflow has no nodes", "add at least an input, a model and an output node")
		return
	}

	seen := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		switch {
		case n.ID == "":
			f.add(SeverityError, CategoryStructure, "", fmt.Sprintf("node at index %d has no id", i), "give every node a unique id")
			continue
		case seen[n.ID]:
			f.add(SeverityError, CategoryStructure, n.ID, fmt.Sprintf("duplicate node id %q", n.ID), "give every node a unique id")
			continue
		}
		seen[n.ID] = true

		if n.Type == "" {
			f.add(SeverityError, CategoryStructure, n.ID, "node has no type", "set the Flowise node type")
		} else if n.Category() == workflow.CategoryUnknown {
			f.add(SeverityWarning, CategoryStructure, n.ID, fmt.Sprintf("unrecognized node type %q", n.Type), "")
		}
	}

	for _, e := range g.Edges {
		id := e.ID
		if id == "" {
			id = workflow.EdgeID(e.Source, e.Target)
		}
		if !seen[e.Source] {
			f.addEdge(SeverityError, id, fmt.Sprintf("edge source %q does not exist", e.Source), "remove the edge or add the node")
		}
		if !seen[e.Target] {
			f.addEdge(SeverityError, id, fmt.Sprintf("edge target %q does not exist", e.Target), "remove the edge or add the node")
		}
	}
}

// checkConnectivity reports cycles, detached nodes and missing entry or exit nodes.
func checkConnectivity(g *workflow.Graph, d *workflow.DAG, f *findings) {
	if len(g.Nodes) == 0 {
		return
	}

	if cycle := d.FindCycle(); cycle != nil {
		f.add(SeverityError, CategoryConnectivity, cycle[0],
			fmt.Sprintf("cycle detected: %s", strings.Join(cycle, " -> ")),
			"remove an edge so the flow has a well-defined execution order")
	}

	if len(d.IDs()) > 1 {
		linked := linkedToEntry(g, d)
		for _, id := range d.IDs() {
			switch {
			case d.InDegree(id) == 0 && d.OutDegree(id) == 0:
				f.add(SeverityWarning, CategoryConnectivity, id, "node is not connected to the flow", "connect the node or remove it")
			case linked != nil && !linked[id]:
				f.add(SeverityWarning, CategoryConnectivity, id, "node is not reachable from an entry node",
					"connect the node to the path that starts at the chat input or agent")
			}
		}
	}

	if len(g.NodesOf(workflow.CategoryInput)) == 0 && len(g.NodesOf(workflow.CategoryAgent)) == 0 {
		f.add(SeverityWarning, CategoryConnectivity, "", "workflow has no input node", "add a chat input node")
	}
	if len(g.NodesOf(workflow.CategoryOutput)) == 0 {
		f.add(SeverityWarning, CategoryConnectivity, "", "workflow has no output node", "add a chat output node")
	}
}

// linkedToEntry returns the nodes downstream of an input or agent node,
// plus the nodes that feed into them. Nil when the graph has no entry node.
func linkedToEntry(g *workflow.Graph, d *workflow.DAG) map[string]bool {
	var entries []string
	for _, n := range g.Nodes {
		if c := n.Category(); c == workflow.CategoryInput || c == workflow.CategoryAgent {
			entries = append(entries, n.ID)
		}
	}
	if len(entries) == 0 {
		return nil
	}
	downstream := d.Reachable(entries...)
	ids := make([]string, 0, len(downstream))
	for id := range downstream {
		ids = append(ids, id)
	}
	return d.Ancestors(ids...)
}

// checkConfiguration validates credentials and parameter sanity per node.
func checkConfiguration(g *workflow.Graph, f *findings) {
	models := 0
	for _, n := range g.Nodes {
		if n.ID == "" {
			continue
		}
		switch p := workflow.DecodeParams(n).(type) {
		case workflow.ChatModelParams:
			models++
			checkModel(n, p.APIKey, p.BaseURL, p.Temperature, p.MaxTokens, f)
		case workflow.LLMParams:
			models++
			checkModel(n, p.APIKey, p.BaseURL, p.Temperature, p.MaxTokens, f)
		case workflow.PromptParams:
			if strings.TrimSpace(p.Template) == "" {
				f.add(SeverityWarning, CategoryConfiguration, n.ID, "prompt template is empty", "write the prompt text")
			}
		case workflow.TextSplitterParams:
			if p.ChunkSize != nil && *p.ChunkSize < 1 {
				f.add(SeverityError, CategoryConfiguration, n.ID, "chunkSize must be positive", "")
			}
			if p.ChunkSize != nil && p.ChunkOverlap != nil && *p.ChunkOverlap >= *p.ChunkSize {
				f.add(SeverityError, CategoryConfiguration, n.ID,
					fmt.Sprintf("chunkOverlap %d is not smaller than chunkSize %d", *p.ChunkOverlap, *p.ChunkSize),
					"lower chunkOverlap")
			}
		case workflow.RetrieverParams:
			if p.TopK != nil && *p.TopK < 1 {
				f.add(SeverityError, CategoryConfiguration, n.ID, "topK must be at least 1", "")
			}
		case workflow.MemoryParams:
			if p.BufferSize != nil && *p.BufferSize < 1 {
				f.add(SeverityError, CategoryConfiguration, n.ID, "bufferSize must be at least 1", "")
			}
		case workflow.ToolParams:
			if n.Type == workflow.TypeSearchTool {
				if key, _ := workflow.AsString(n.Data["apiKey"]); key == "" {
					f.add(SeverityWarning, CategorySecurity, n.ID, "search tool has no API key", "set the search API key in configuration")
				}
			}
		}
	}

	if models == 0 && len(g.Nodes) > 0 {
		f.add(SeverityWarning, CategoryConfiguration, "", "workflow has no model node", "add a chat model or LLM node")
	}
}

func checkModel(n workflow.Node, apiKey, baseURL string, temperature *float64, maxTokens *int, f *findings) {
	if workflow.RequiresCredential(n.Type) {
		if apiKey == "" {
			f.add(SeverityCritical, CategorySecurity, n.ID, "model node is missing an API key", "set the provider credential")
		}
	} else if baseURL == "" {
		f.add(SeverityWarning, CategoryConfiguration, n.ID, "local model node has no baseUrl", "point baseUrl at the local runtime")
	}

	if temperature != nil {
		switch t := *temperature; {
		case !(t >= 0 && t <= 2):
			f.add(SeverityError, CategoryConfiguration, n.ID,
				fmt.Sprintf("temperature %g is out of range [0, 2]", t), "use a temperature between 0 and 2")
		case t > 1.5:
			f.add(SeverityWarning, CategoryConfiguration, n.ID,
				fmt.Sprintf("temperature %g is very high", t), "responses may be incoherent; consider 0.7")
		}
	}
	if maxTokens != nil && *maxTokens < 1 {
		f.add(SeverityError, CategoryConfiguration, n.ID, "maxTokens must be at least 1", "")
	}
}
