package catalog

import (
	"strings"

	"golang.org/x/text/cases"
)

// recommendedKeywords maps agent types to the category/label keywords
// that make a node relevant to them.
var recommendedKeywords = map[string][]string{
	"chat":      {"Chat", "Prompt", "Memory", "LLM"},
	"assistant": {"Assistant", "Tools", "Agent", "Memory"},
	"rag":       {"Document", "Embeddings", "Vector Store", "Retriever"},
	"workflow":  {"Logic", "Condition", "Loop", "Variable"},
	"api":       {"HTTP Request", "Webhook", "API", "Function"},
	"default":   {"Chat", "Prompt", "LLM", "Memory"},
}

// KeywordsFor returns the recommendation keywords for an agent type.
// Unknown types get the default set.
func KeywordsFor(agentType string) []string {
	if kw, ok := recommendedKeywords[strings.ToLower(agentType)]; ok {
		return kw
	}
	return recommendedKeywords["default"]
}

// FindByCategory returns nodes whose category equals category, ignoring case.
func (c *Catalog) FindByCategory(category string) []NodeDescriptor {
	want := cases.Fold().String(category)
	var out []NodeDescriptor
	for _, e := range c.entries {
		if e.category == want {
			out = append(out, e.NodeDescriptor)
		}
	}
	return out
}

// Search returns nodes whose label or description contains query,
// ignoring case. An empty query matches everything.
func (c *Catalog) Search(query string) []NodeDescriptor {
	q := cases.Fold().String(query)
	var out []NodeDescriptor
	for _, e := range c.entries {
		if strings.Contains(e.label, q) || strings.Contains(e.desc, q) {
			out = append(out, e.NodeDescriptor)
		}
	}
	return out
}

// RecommendedFor returns nodes whose category or label contains any of
// the agent type's keywords, ignoring case.
func (c *Catalog) RecommendedFor(agentType string) []NodeDescriptor {
	fold := cases.Fold()
	keywords := KeywordsFor(agentType)
	folded := make([]string, len(keywords))
	for i, k := range keywords {
		folded[i] = fold.String(k)
	}

	var out []NodeDescriptor
	for _, e := range c.entries {
		for _, k := range folded {
			if strings.Contains(e.category, k) || strings.Contains(e.label, k) {
				out = append(out, e.NodeDescriptor)
				break
			}
		}
	}
	return out
}
