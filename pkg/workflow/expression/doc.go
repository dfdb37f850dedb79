// Package expression evaluates the boolean validator expressions attached
// to node and model parameter specs.
//
// Expressions use the expr-lang syntax and see two variables:
//
//   - value: the candidate parameter value
//   - params: the full parameter map of the node or configuration being checked
//
// Example validators:
//
//	value >= 0 && value <= 2
//	value matches "^sk-" || value == ""
//	params.chunkOverlap < value
//	isURL(value)
package expression
