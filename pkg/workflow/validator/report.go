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

package validator

import (
	"github.com/google/uuid"
)

// Severity ranks an issue. Critical and error issues make a graph invalid.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
)

// IssueCategory groups issues by what they concern.
type IssueCategory string

const (
	CategoryStructure     IssueCategory = "structure"
	CategoryConnectivity  IssueCategory = "connectivity"
	CategoryConfiguration IssueCategory = "configuration"
	CategorySecurity      IssueCategory = "security"
)

// Issue is one finding about a graph.
type Issue struct {
	ID          string        `json:"id"`
	Severity    Severity      `json:"severity"`
	Category    IssueCategory `json:"category"`
	NodeID      string        `json:"nodeId,omitempty"`
	EdgeID      string        `json:"edgeId,omitempty"`
	Message     string        `json:"message"`
	Description string        `json:"description"`
	Suggestion  string        `json:"suggestion,omitempty"`
}

// Priority orders suggestions.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Suggestion is an improvement that is independent of errors and warnings.
type Suggestion struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Priority       Priority `json:"priority"`
	Message        string   `json:"message"`
	Description    string   `json:"description"`
	Impact         string   `json:"impact"`
	Implementation string   `json:"implementation"`
	NodeIDs        []string `json:"nodeIds,omitempty"`
}

// Report is the validation outcome. Valid is true iff Errors is empty.
type Report struct {
	Valid       bool         `json:"valid"`
	Score       int          `json:"score"`
	Errors      []Issue      `json:"errors"`
	Warnings    []Issue      `json:"warnings"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Penalties are the score deductions per issue severity.
type Penalties struct {
	Critical int `yaml:"critical" json:"critical"`
	Error    int `yaml:"error" json:"error"`
	Warning  int `yaml:"warning" json:"warning"`
}

// DefaultPenalties returns the built-in deductions.
func DefaultPenalties() Penalties {
	return Penalties{Critical: 30, Error: 20, Warning: 5}
}

func (p Penalties) of(s Severity) int {
	switch s {
	case SeverityCritical:
		return p.Critical
	case SeverityError:
		return p.Error
	default:
		return p.Warning
	}
}

// score deducts a penalty per issue from 100, floored at 0.
func (p Penalties) score(errs, warnings []Issue) int {
	score := 100
	for _, is := range errs {
		score -= p.of(is.Severity)
	}
	for _, is := range warnings {
		score -= p.of(is.Severity)
	}
	return max(score, 0)
}

var namespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("flowkit.validator"))

// stableID derives a name-based id so repeated runs report the same ids.
func stableID(parts ...string) string {
	var b []byte
	for i, p := range parts {
		if i > 0 {
			b = append(b, 0)
		}
		b = append(b, p...)
	}
	return uuid.NewSHA1(namespace, b).String()
}
