package modifier

import (
	"fmt"

	"github.com/tombee/flowkit/pkg/workflow"
)

// Suggestion thresholds.
const (
	highTemperature  = 1.0
	agentTemperature = 0.3
	largeMaxTokens   = 4096
	largeBuffer      = 50
)

// Suggest proposes edits for the graph. Suggestions are advisory; pass
// them to Apply to take effect. Every suggestion is valid on its own.
func (m *Modifier) Suggest(g *workflow.Graph, ctx Context) []Request {
	if g == nil {
		return nil
	}

	var out []Request
	for _, n := range g.Nodes {
		switch p := workflow.DecodeParams(n).(type) {
		case workflow.ChatModelParams:
			if ctx.WorkflowType != Agentflow && (p.Streaming == nil || !*p.Streaming) {
				out = append(out, suggestion(n.ID, "streaming", true,
					"streaming lowers perceived latency in chat flows"))
			}
			switch {
			case ctx.WorkflowType == Agentflow && p.Temperature != nil && *p.Temperature > agentTemperature:
				out = append(out, suggestion(n.ID, "temperature", 0.2,
					"agents choose tools more reliably at low temperature"))
			case p.Temperature != nil && *p.Temperature > highTemperature:
				out = append(out, suggestion(n.ID, "temperature", 0.7,
					fmt.Sprintf("temperature %.2f makes answers unpredictable", *p.Temperature)))
			}
			if p.MaxTokens != nil && *p.MaxTokens > largeMaxTokens {
				out = append(out, suggestion(n.ID, "maxTokens", 2048,
					fmt.Sprintf("maxTokens %d raises cost for most chat turns", *p.MaxTokens)))
			}
		case workflow.TextSplitterParams:
			if p.ChunkSize != nil && p.ChunkOverlap != nil && *p.ChunkOverlap*2 > *p.ChunkSize {
				out = append(out, suggestion(n.ID, "chunkOverlap", *p.ChunkSize/5,
					"overlap above half the chunk size duplicates most content"))
			}
		case workflow.MemoryParams:
			if p.BufferSize != nil && *p.BufferSize > largeBuffer {
				out = append(out, suggestion(n.ID, "bufferSize", 20,
					"large memory buffers inflate every prompt"))
			}
		}
	}
	return out
}

func suggestion(nodeID, key string, value any, reason string) Request {
	return Request{
		NodeID:        nodeID,
		Modifications: map[string]any{key: value},
		Reason:        reason,
	}
}
