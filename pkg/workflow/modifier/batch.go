package modifier

import "maps"

// Batch accumulates pending edits. Edits to the same node are coalesced
// into one request; a later value for the same key replaces the earlier one.
type Batch struct {
	requests []Request
	index    map[string]int
}

// Stage records one edit.
func (b *Batch) Stage(nodeID, key string, value any) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	i, ok := b.index[nodeID]
	if !ok {
		i = len(b.requests)
		b.index[nodeID] = i
		b.requests = append(b.requests, Request{NodeID: nodeID, Modifications: map[string]any{}})
	}
	b.requests[i].Modifications[key] = value
}

// Requests returns a copy of the pending requests in first-staged order.
func (b *Batch) Requests() []Request {
	out := make([]Request, len(b.requests))
	for i, r := range b.requests {
		out[i] = Request{NodeID: r.NodeID, Modifications: maps.Clone(r.Modifications)}
	}
	return out
}

// Len returns the number of nodes with pending edits.
func (b *Batch) Len() int {
	return len(b.requests)
}

// Reset discards every pending edit.
func (b *Batch) Reset() {
	b.requests = nil
	b.index = nil
}
