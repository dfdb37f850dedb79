package generator

import (
	"github.com/tombee/flowkit/pkg/workflow"
)

// ConfigResult is the outcome of ValidateConfig.
type ConfigResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Export precondition messages.
const (
	ErrMsgNoName       = "workflow name is required"
	ErrMsgNoNodes      = "workflow must contain at least one node"
	ErrMsgNoEdges      = "workflow must contain at least one edge"
	ErrMsgNoCredential = "workflow must contain an LLM node with an API key"
)

// ValidateConfig checks the preconditions for exporting a graph: a name,
// at least one node and edge, and a model node carrying a non-empty apiKey.
func ValidateConfig(g *workflow.Graph) ConfigResult {
	res := ConfigResult{Errors: []string{}}
	if g == nil {
		res.Errors = append(res.Errors, ErrMsgNoNodes)
		return res
	}

	if g.Name == "" {
		res.Errors = append(res.Errors, ErrMsgNoName)
	}
	if len(g.Nodes) == 0 {
		res.Errors = append(res.Errors, ErrMsgNoNodes)
	}
	if len(g.Edges) == 0 {
		res.Errors = append(res.Errors, ErrMsgNoEdges)
	}
	if !HasCredentialedModel(g) {
		res.Errors = append(res.Errors, ErrMsgNoCredential)
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// HasCredentialedModel reports whether any model node carries an apiKey.
func HasCredentialedModel(g *workflow.Graph) bool {
	for _, n := range g.Nodes {
		if key, isModel := workflow.Credential(n); isModel && key != "" {
			return true
		}
	}
	return false
}
