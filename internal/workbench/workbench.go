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

// Package workbench wires the catalog, model registry, generator,
// modifier, validator and Flowise client into the operations the CLI and
// MCP server expose. Each operation is traced and counted.
package workbench

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/flowkit/internal/config"
	flowlog "github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/internal/metrics"
	secretstore "github.com/tombee/flowkit/internal/secrets"
	"github.com/tombee/flowkit/pkg/catalog"
	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/flowise"
	"github.com/tombee/flowkit/pkg/llm"
	"github.com/tombee/flowkit/pkg/llm/pricing"
	"github.com/tombee/flowkit/pkg/param"
	"github.com/tombee/flowkit/pkg/secrets"
	"github.com/tombee/flowkit/pkg/workflow"
	"github.com/tombee/flowkit/pkg/workflow/generator"
	"github.com/tombee/flowkit/pkg/workflow/modifier"
	"github.com/tombee/flowkit/pkg/workflow/validator"
)

const instrumentationName = "github.com/tombee/flowkit/internal/workbench"

// Workbench holds the long-lived components. It is safe for concurrent
// use; the graphs passed to it are not.
type Workbench struct {
	cfg       *config.Config
	catalog   *catalog.Catalog
	registry  *llm.Registry
	providers *llm.ProviderSet
	generator *generator.Generator
	modifier  *modifier.Modifier
	validator *validator.Validator
	masker    *secrets.Masker
	resolver  *secretstore.Resolver

	mu         sync.Mutex
	flowise    *flowise.Client
	flowiseKey string

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	graphNodes     metric.Int64Histogram
	logger         *slog.Logger

	warnings []string
}

// Option configures a Workbench.
type Option func(*Workbench)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workbench) { w.logger = l }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(w *Workbench) { w.tracerProvider = tp }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(w *Workbench) { w.meterProvider = mp }
}

// WithSecrets resolves "secret:" provider keys and missing keys through r.
func WithSecrets(r *secretstore.Resolver) Option {
	return func(w *Workbench) { w.resolver = r }
}

// WithFlowiseClient uses c instead of building one from configuration.
func WithFlowiseClient(c *flowise.Client) Option {
	return func(w *Workbench) { w.flowise = c }
}

// New builds the components described by cfg. A catalog that cannot be
// loaded degrades to an empty catalog and is reported by Warnings.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Workbench, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	w := &Workbench{cfg: cfg, logger: flowlog.Discard()}
	for _, opt := range opts {
		opt(w)
	}
	if w.tracerProvider == nil {
		w.tracerProvider = otel.GetTracerProvider()
	}
	if w.meterProvider == nil {
		w.meterProvider = otel.GetMeterProvider()
	}
	w.tracer = w.tracerProvider.Tracer(instrumentationName)
	hist, err := w.meterProvider.Meter(instrumentationName).Int64Histogram("flowkit.graph.nodes",
		metric.WithDescription("Node count of validated graphs"))
	if err != nil {
		return nil, fmt.Errorf("failed to create graph size instrument: %w", err)
	}
	w.graphNodes = hist

	w.catalog = w.loadCatalog()

	pm := pricing.NewManager()
	if cfg.Pricing.Path != "" {
		pm, err = pricing.NewManagerWithConfig(cfg.Pricing.Path)
		if err != nil {
			return nil, &errors.ConfigError{Key: "pricing.path", Reason: err.Error(), Cause: err}
		}
	}
	if cfg.Pricing.StalenessDays > 0 {
		pm.SetStalenessThreshold(time.Duration(cfg.Pricing.StalenessDays) * 24 * time.Hour)
	}
	w.registry, err = llm.NewRegistry(llm.WithWeights(cfg.Models.Weights), llm.WithPricing(pm))
	if err != nil {
		return nil, err
	}
	w.warnings = append(w.warnings, w.registry.Warnings()...)

	providers := cfg.Providers
	if w.resolver != nil {
		providers, err = w.resolver.ResolveProviders(ctx, providers)
		if err != nil {
			return nil, &errors.ConfigError{Key: "providers", Reason: "failed to resolve provider keys", Cause: err}
		}
	}
	w.providers = llm.NewProviderSet(cfg.DefaultProvider, providers...)

	w.masker = secrets.NewMasker()
	for _, p := range providers {
		w.masker.AddSecret(p.APIKey)
	}
	w.masker.AddSecret(cfg.Generator.SearchAPIKey)
	w.masker.AddSecretsFromEnv(environ())

	w.flowiseKey = cfg.Flowise.APIKey
	if w.flowiseKey == "" && w.resolver != nil {
		if v, err := w.resolver.Get(ctx, secretstore.FlowiseKey); err == nil {
			w.flowiseKey = v
		}
	}
	w.masker.AddSecret(w.flowiseKey)

	genLogger := flowlog.WithComponent(w.logger, "generator")
	w.generator = generator.New(
		generator.WithDefaults(cfg.Generator.Defaults),
		generator.WithSearchAPIKey(cfg.Generator.SearchAPIKey),
		generator.WithLogger(genLogger),
	)
	w.modifier = modifier.New(w.registry, modifier.WithLogger(flowlog.WithComponent(w.logger, "modifier")))
	w.validator = validator.New(
		validator.WithPenalties(cfg.Validator.Penalties),
		validator.WithMaxPaths(cfg.Validator.MaxPaths),
		validator.WithLogger(flowlog.WithComponent(w.logger, "validator")),
	)
	return w, nil
}

func (w *Workbench) loadCatalog() *catalog.Catalog {
	var (
		c   *catalog.Catalog
		err error
	)
	switch {
	case w.cfg.Catalog.Path != "":
		c, err = catalog.LoadFile(w.cfg.Catalog.Path)
	default:
		c, err = catalog.Default()
	}
	for _, pattern := range w.cfg.Catalog.Patterns {
		if err != nil {
			break
		}
		var extra *catalog.Catalog
		if extra, err = catalog.LoadGlob(pattern); err == nil {
			c, err = c.Extend(extra.Nodes())
		}
	}
	if err != nil {
		w.warnings = append(w.warnings, err.Error())
		w.logger.Warn("node catalog unavailable, continuing with an empty catalog", flowlog.Error(err))
		return catalog.Empty()
	}
	return c
}

// Catalog returns the node catalog.
func (w *Workbench) Catalog() *catalog.Catalog { return w.catalog }

// Registry returns the model registry.
func (w *Workbench) Registry() *llm.Registry { return w.registry }

// Providers returns the provider resolver.
func (w *Workbench) Providers() *llm.ProviderSet { return w.providers }

// Modifier returns the node modifier.
func (w *Workbench) Modifier() *modifier.Modifier { return w.modifier }

// Warnings lists problems that were degraded rather than returned.
func (w *Workbench) Warnings() []string { return append([]string(nil), w.warnings...) }

// Mask returns a copy of g with credentials redacted.
func (w *Workbench) Mask(g *workflow.Graph) *workflow.Graph { return w.masker.MaskGraph(g) }

// MaskString redacts known secrets in s.
func (w *Workbench) MaskString(s string) string { return w.masker.Mask(s) }

// start opens a span for op.
func (w *Workbench) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	ctx, span := w.tracer.Start(ctx, "flowkit."+op, trace.WithAttributes(attrs...))
	return ctx, span, time.Now()
}

// finish records the outcome of op on its span and in the metrics.
func (w *Workbench) finish(span trace.Span, op string, start time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	metrics.RecordOperation(op, start, err)
}

// WorkflowTypeOf returns Agentflow for graphs containing an agent node.
func WorkflowTypeOf(g *workflow.Graph) modifier.WorkflowType {
	if g != nil && len(g.NodesOf(workflow.CategoryAgent)) > 0 {
		return modifier.Agentflow
	}
	return modifier.Chatflow
}

// Fields lists the editable parameters of one node.
func (w *Workbench) Fields(g *workflow.Graph, nodeID string) ([]param.Spec, error) {
	if g == nil {
		return nil, validator.ErrNilGraph
	}
	n := g.Node(nodeID)
	if n == nil {
		return nil, &errors.NotFoundError{Resource: "node", ID: nodeID}
	}
	return w.modifier.AvailableModifications(*n), nil
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
