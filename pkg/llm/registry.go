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

package llm

import (
	"fmt"
	"slices"
	"sort"

	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/llm/pricing"
	"github.com/tombee/flowkit/pkg/param"
)

// Registry is an immutable model table with lookup, filtering and
// recommendation. Build one at startup and share it; it is safe for
// concurrent use.
type Registry struct {
	models   []ModelDescriptor
	byID     map[string]int
	weights  ScoreWeights
	checker  *param.Checker
	scores   map[string]float64
	warnings []string
}

// Option configures a Registry.
type Option func(*registryOptions)

type registryOptions struct {
	models  []ModelDescriptor
	weights ScoreWeights
	checker *param.Checker
	pricing *pricing.Manager
}

// WithModels replaces the built-in model table.
func WithModels(models []ModelDescriptor) Option {
	return func(o *registryOptions) { o.models = models }
}

// WithWeights sets the desirability score weights.
func WithWeights(w ScoreWeights) Option {
	return func(o *registryOptions) { o.weights = w }
}

// WithChecker shares a parameter checker (and its expression cache).
func WithChecker(c *param.Checker) Option {
	return func(o *registryOptions) { o.checker = c }
}

// WithPricing applies price overrides on top of the model table.
func WithPricing(m *pricing.Manager) Option {
	return func(o *registryOptions) { o.pricing = m }
}

// NewRegistry builds a registry. Without options it holds BuiltinModels
// scored with DefaultWeights.
func NewRegistry(opts ...Option) (*Registry, error) {
	o := registryOptions{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.models == nil {
		o.models = BuiltinModels()
	}
	if o.checker == nil {
		o.checker = param.NewChecker(nil)
	}

	r := &Registry{
		models:  make([]ModelDescriptor, 0, len(o.models)),
		byID:    make(map[string]int, len(o.models)),
		weights: o.weights,
		checker: o.checker,
		scores:  make(map[string]float64, len(o.models)),
	}
	for _, m := range o.models {
		if m.ID == "" {
			return nil, &errors.ValidationError{Field: "models", Message: "model id is required"}
		}
		if _, dup := r.byID[m.ID]; dup {
			return nil, &errors.ValidationError{Field: "models", Message: fmt.Sprintf("duplicate model id %q", m.ID)}
		}
		if o.pricing != nil {
			mp, warning := o.pricing.LookupWithWarning(string(m.Provider), m.ID)
			if mp != nil {
				m.Pricing = mp.Rate
			}
			if warning != "" {
				r.warnings = append(r.warnings, warning)
			}
		}
		r.byID[m.ID] = len(r.models)
		r.models = append(r.models, m)
		r.scores[m.ID] = r.weights.Score(m)
	}
	return r, nil
}

// Warnings lists stale pricing overrides found while building the registry.
func (r *Registry) Warnings() []string {
	return append([]string(nil), r.warnings...)
}

// Filters narrow ListModels. Zero-valued fields are ignored.
type Filters struct {
	Provider     ProviderName
	Category     ModelCategory
	Capabilities []string
	// MaxPrice bounds the input price per 1K tokens. Zero means no bound.
	MaxPrice float64
}

func (f Filters) match(m ModelDescriptor) bool {
	if f.Provider != "" && m.Provider != f.Provider {
		return false
	}
	if f.Category != "" && m.Category != f.Category {
		return false
	}
	for _, c := range f.Capabilities {
		if !m.HasCapability(c) {
			return false
		}
	}
	if f.MaxPrice > 0 && m.Pricing.InputPerKTokens > f.MaxPrice {
		return false
	}
	return true
}

// ListModels returns the models matching every filter, most desirable first.
func (r *Registry) ListModels(f Filters) []ModelDescriptor {
	var out []ModelDescriptor
	for _, m := range r.models {
		if f.match(m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := r.scores[out[i].ID], r.scores[out[j].ID]
		if si != sj {
			return si > sj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// GetModel returns the model with the given id.
func (r *Registry) GetModel(id string) (ModelDescriptor, error) {
	i, ok := r.byID[id]
	if !ok {
		return ModelDescriptor{}, &errors.NotFoundError{Resource: "model", ID: id}
	}
	return r.models[i], nil
}

// Score returns the desirability score of a model id (0 if unknown).
func (r *Registry) Score(id string) float64 {
	return r.scores[id]
}

// ModelIDs returns every model id for a provider (all providers if empty),
// sorted. Node modifiers use it for model select options.
func (r *Registry) ModelIDs(provider ProviderName, category ModelCategory) []string {
	var ids []string
	for _, m := range r.models {
		if provider != "" && m.Provider != provider {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		ids = append(ids, m.ID)
	}
	slices.Sort(ids)
	return ids
}

// FindByIdentifier resolves a model by id or by its provider identifier.
func (r *Registry) FindByIdentifier(name string) (ModelDescriptor, bool) {
	if m, err := r.GetModel(name); err == nil {
		return m, true
	}
	for _, m := range r.models {
		if m.ModelIdentifier == name {
			return m, true
		}
	}
	return ModelDescriptor{}, false
}
