// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shared

import (
	"fmt"
	"io"

	"github.com/tombee/flowkit/pkg/workflow/validator"
)

// PrintPreview renders a validation preview for terminals.
func PrintPreview(w io.Writer, name string, p *validator.Preview) {
	r := p.Validation
	status := RenderStatus(r.Valid, "OK")
	if !r.Valid {
		status = RenderStatus(false, "INVALID")
	}
	fmt.Fprintf(w, "%s %s score %s\n", status, Bold.Render(name), RenderScore(r.Score))

	for _, is := range r.Errors {
		fmt.Fprintln(w, "  "+RenderError(issueLine(is)))
		if is.Suggestion != "" {
			fmt.Fprintln(w, "    "+Muted.Render(is.Suggestion))
		}
	}
	for _, is := range r.Warnings {
		fmt.Fprintln(w, "  "+RenderWarn(issueLine(is)))
		if is.Suggestion != "" {
			fmt.Fprintln(w, "    "+Muted.Render(is.Suggestion))
		}
	}

	m := p.Metrics
	fmt.Fprintf(w, "  %s %d nodes, %d edges, depth %d, %d paths\n",
		RenderLabel("shape:"), m.NodeCount, m.EdgeCount, m.MaxDepth, m.ParallelPaths)
	if m.EstimatedExecutionTime != "" {
		fmt.Fprintf(w, "  %s ~%s, memory %s\n", RenderLabel("perf: "), m.EstimatedExecutionTime, m.MemoryUsage)
	}
	if m.CostEstimate != "" {
		fmt.Fprintf(w, "  %s %s\n", RenderLabel("cost: "), m.CostEstimate)
	}

	for _, s := range r.Suggestions {
		fmt.Fprintln(w, "  "+RenderInfo(fmt.Sprintf("[%s] %s", s.Priority, s.Message)))
	}
}

func issueLine(is validator.Issue) string {
	switch {
	case is.NodeID != "":
		return fmt.Sprintf("%s: %s", is.NodeID, is.Message)
	case is.EdgeID != "":
		return fmt.Sprintf("edge %s: %s", is.EdgeID, is.Message)
	}
	return is.Message
}
