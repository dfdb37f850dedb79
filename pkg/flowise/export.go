// Package flowise maps workflow graphs to Flowise chatflows and talks to
// the Flowise REST API.
package flowise

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/workflow"
	"github.com/tombee/flowkit/pkg/workflow/generator"
)

// FlowType is the chatflow type stored by Flowise.
type FlowType string

const (
	TypeChatflow  FlowType = "CHATFLOW"
	TypeAgentflow FlowType = "AGENTFLOW"
)

// Chatflow is the Flowise representation of a graph.
type Chatflow struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	FlowData string   `json:"flowData"`
	Deployed bool     `json:"deployed"`
	IsPublic bool     `json:"isPublic"`
	Type     FlowType `json:"type"`
}

// flowDataQuery renders the canvas document Flowise stores in flowData.
// $categories maps node ids to their category label.
const flowDataQuery = `{
  nodes: [.nodes[] | {
    id: .id,
    type: "customNode",
    position: .position,
    positionAbsolute: .position,
    width: 300,
    data: {
      id: .id,
      name: .type,
      label: .type,
      category: ($categories[.id] // "Unknown"),
      inputs: (.data // {})
    }
  }],
  edges: [.edges[] | {
    id: .id,
    source: .source,
    target: .target,
    sourceHandle: (.sourceHandle // (.source + "-output")),
    targetHandle: (.targetHandle // (.target + "-input")),
    type: "buttonedge"
  }]
}`

var flowDataCode = mustCompile(flowDataQuery)

func mustCompile(src string) *gojq.Code {
	q, err := gojq.Parse(src)
	if err != nil {
		panic(fmt.Sprintf("flowise: parse flowData query: %v", err))
	}
	code, err := gojq.Compile(q, gojq.WithVariables([]string{"$categories"}))
	if err != nil {
		panic(fmt.Sprintf("flowise: compile flowData query: %v", err))
	}
	return code
}

// Export converts a graph into a chatflow. The graph must pass
// generator.ValidateConfig. Graphs containing an agent node are exported
// as agent flows.
func Export(ctx context.Context, g *workflow.Graph) (*Chatflow, error) {
	if g == nil {
		return nil, fmt.Errorf("graph is required")
	}
	if res := generator.ValidateConfig(g); !res.Valid {
		return nil, &errors.ValidationError{
			Field:      "graph",
			Message:    strings.Join(res.Errors, "; "),
			Suggestion: "run validate and fix the reported problems before exporting",
		}
	}

	input, err := toPlain(g)
	if err != nil {
		return nil, err
	}
	categories := make(map[string]any, len(g.Nodes))
	for _, n := range g.Nodes {
		categories[n.ID] = string(n.Category())
	}

	iter := flowDataCode.RunWithContext(ctx, input, categories)
	v, ok := iter.Next()
	if !ok {
		return nil, fmt.Errorf("flowData query produced no output")
	}
	if err, isErr := v.(error); isErr {
		return nil, errors.Wrap(err, "render flowData")
	}
	flowData, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode flowData")
	}

	typ := TypeChatflow
	if len(g.NodesOf(workflow.CategoryAgent)) > 0 {
		typ = TypeAgentflow
	}
	return &Chatflow{
		Name:     g.Name,
		FlowData: string(flowData),
		Type:     typ,
	}, nil
}

// toPlain converts g into the map/slice form gojq operates on.
func toPlain(g *workflow.Graph) (any, error) {
	data, err := g.JSON()
	if err != nil {
		return nil, errors.Wrap(err, "encode graph")
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(err, "decode graph")
	}
	return v, nil
}
