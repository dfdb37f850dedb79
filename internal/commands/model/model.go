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

// Package model implements the "flowkit models" command group.
package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/flowkit/internal/commands/completion"
	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/param"
)

// NewCommand creates the models command group
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"model"},
		Short:   "Explore LLM models, recommendations and costs",
		Annotations: map[string]string{
			"group": "discovery",
		},
		Long: `Explore the model registry: list and inspect models, get recommendations
for a use case, derive tuned parameter sets, check configurations and
project costs.

Examples:
  # List chat models that support vision
  flowkit models list --category chat --capability vision

  # Show a model's parameters
  flowkit models info gpt-4o

  # Recommend models for a use case
  flowkit models recommend --use-case "code review" --performance quality

  # Derive a configuration and estimate monthly cost
  flowkit models configure gpt-4o --use-case "creative writing"
  flowkit models cost gpt-4o --requests-per-day 500 --days 30`,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newRecommendCmd())
	cmd.AddCommand(newConfigureCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newCostCmd())

	// Default to list if no subcommand specified
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return newListCmd().RunE(cmd, args)
	}

	return cmd
}

// enumValue is a string flag restricted to a fixed set of values.
type enumValue struct {
	value   *string
	allowed []string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnum(p *string, def string, allowed ...string) *enumValue {
	*p = def
	return &enumValue{value: p, allowed: allowed}
}

func (e *enumValue) String() string { return *e.value }
func (e *enumValue) Type() string   { return strings.Join(e.allowed, "|") }

func (e *enumValue) Set(v string) error {
	v = strings.ToLower(v)
	if !slices.Contains(e.allowed, v) {
		return fmt.Errorf("must be one of %s", strings.Join(e.allowed, ", "))
	}
	*e.value = v
	return nil
}

// contextFlags are the recommendation inputs shared by recommend and
// configure.
type contextFlags struct {
	useCase      string
	budget       string
	performance  string
	load         string
	capabilities []string
	region       string
}

func (f *contextFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.useCase, "use-case", "", "What the model is for, e.g. \"customer support\"")
	fs.Var(newEnum(&f.budget, string(llm.BudgetMedium), "low", "medium", "high"), "budget", "Spending appetite")
	fs.Var(newEnum(&f.performance, string(llm.PreferBalanced), "speed", "quality", "balanced"), "performance", "What to optimize for")
	fs.Var(newEnum(&f.load, string(llm.LoadMedium), "low", "medium", "high"), "load", "Expected request volume")
	fs.StringSliceVar(&f.capabilities, "capability", nil, "Required capability (repeatable)")
	fs.StringVar(&f.region, "region", "", "Region the model must be available in")

	_ = cmd.RegisterFlagCompletionFunc("budget", completion.CompleteLevels)
	_ = cmd.RegisterFlagCompletionFunc("performance", completion.CompletePerformance)
	_ = cmd.RegisterFlagCompletionFunc("load", completion.CompleteLevels)
}

func (f *contextFlags) context() llm.RecommendationContext {
	return llm.RecommendationContext{
		UseCase:              f.useCase,
		Budget:               llm.Budget(f.budget),
		Performance:          llm.Preference(f.performance),
		RequiredCapabilities: f.capabilities,
		ExpectedLoad:         llm.Load(f.load),
		Region:               f.region,
	}
}

// parseSettings turns key=value pairs into a configuration typed by the
// model's parameter specs. Unknown keys are kept as strings.
func parseSettings(m llm.ModelDescriptor, pairs []string) (map[string]any, error) {
	config := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &errors.ValidationError{
				Field:      "set",
				Message:    fmt.Sprintf("%q is not key=value", pair),
				Suggestion: "use --set temperature=0.7",
			}
		}
		spec, known := m.Parameter(key)
		if !known {
			config[key] = raw
			continue
		}
		v, err := param.Parse(spec, raw)
		if err != nil {
			return nil, err
		}
		config[key] = v
	}
	return config, nil
}
