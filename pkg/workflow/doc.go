// Package workflow defines the workflow graph IR: typed nodes with a
// parameter payload, directed edges between them, and the graph helpers
// the generator, modifier and validator share.
//
// A Graph is the unit handed to Flowise. Node.Type carries the Flowise
// component name (for example "chatOpenAI" or "bufferMemory"); Classify
// maps it to a coarse Category, and DecodeParams lifts the free-form Data
// map into a typed payload for the categories that have one.
//
// Graphs are plain values. Nothing in this package locks; callers that
// share a graph across goroutines must serialize edits themselves.
package workflow
