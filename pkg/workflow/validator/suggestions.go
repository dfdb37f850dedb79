package validator

import (
	"fmt"

	"github.com/tombee/flowkit/pkg/workflow"
)

const (
	deepFlow   = 8
	manyModels = 2
	largeTopK  = 10
)

func suggest(g *workflow.Graph, d *workflow.DAG, m Metrics) []Suggestion {
	var out []Suggestion
	add := func(typ string, pri Priority, msg, desc, impact, impl string, nodes ...string) {
		out = append(out, Suggestion{
			ID:             stableID(append([]string{typ, msg}, nodes...)...),
			Type:           typ,
			Priority:       pri,
			Message:        msg,
			Description:    desc,
			Impact:         impact,
			Implementation: impl,
			NodeIDs:        nodes,
		})
	}

	var models []string
	for _, n := range g.Nodes {
		if n.Category().IsModel() {
			models = append(models, n.ID)
		}
	}

	hasInput := len(g.NodesOf(workflow.CategoryInput)) > 0
	if hasInput && len(models) > 0 && len(g.NodesOf(workflow.CategoryMemory)) == 0 && len(g.NodesOf(workflow.CategoryAgent)) == 0 {
		add("best-practice", PriorityMedium,
			"Add conversation memory",
			"The chat flow has no memory node, so each turn is answered without earlier context.",
			"more coherent multi-turn conversations",
			"add a bufferMemory node and connect it to the model")
	}

	for _, n := range g.Nodes {
		if n.Category() != workflow.CategoryPrompt || d.OutDegree(n.ID) != 1 || d.InDegree(n.ID) > 1 {
			continue
		}
		next := g.Node(d.Successors(n.ID)[0])
		if next != nil && next.Category().IsModel() {
			add("optimization", PriorityLow,
				"Merge prompt into model node",
				fmt.Sprintf("Prompt %q only feeds model %q.", n.ID, next.ID),
				"one node fewer to maintain",
				"use a chat prompt on the model node or an LLM chain that takes the template directly",
				n.ID, next.ID)
		}
	}

	for _, n := range g.Nodes {
		p, ok := workflow.DecodeParams(n).(workflow.ChatModelParams)
		if ok && p.Streaming != nil && !*p.Streaming {
			add("performance", PriorityLow,
				"Enable streaming",
				fmt.Sprintf("Model %q returns whole responses at once.", n.ID),
				"lower perceived latency",
				"set streaming to true", n.ID)
		}
		if r, ok := workflow.DecodeParams(n).(workflow.RetrieverParams); ok && r.TopK != nil && *r.TopK > largeTopK {
			add("cost", PriorityMedium,
				"Retrieve fewer documents",
				fmt.Sprintf("Retriever %q returns %d documents per query.", n.ID, *r.TopK),
				"smaller prompts and lower token spend",
				"lower topK to 4-6", n.ID)
		}
	}

	if len(models) > manyModels {
		add("cost", PriorityMedium,
			"Consolidate model nodes",
			fmt.Sprintf("The flow calls %d model nodes per run.", len(models)),
			"fewer model calls per request",
			"route steps through a shared model node or use a cheaper model for simple steps",
			models...)
	}

	if m.MaxDepth > deepFlow {
		add("performance", PriorityHigh,
			"Shorten the longest chain",
			fmt.Sprintf("The longest chain has %d sequential nodes.", m.MaxDepth),
			"lower end-to-end latency",
			"run independent steps in parallel or remove pass-through nodes")
	}
	return out
}
