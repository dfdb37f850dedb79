package workbench

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	flowlog "github.com/tombee/flowkit/internal/log"
	"github.com/tombee/flowkit/internal/metrics"
	"github.com/tombee/flowkit/pkg/errors"
	"github.com/tombee/flowkit/pkg/flowise"
	"github.com/tombee/flowkit/pkg/workflow"
	"github.com/tombee/flowkit/pkg/workflow/generator"
	"github.com/tombee/flowkit/pkg/workflow/modifier"
	"github.com/tombee/flowkit/pkg/workflow/validator"
)

// Generated is the result of Generate.
type Generated struct {
	Graph    *workflow.Graph        `json:"graph"`
	Provider string                 `json:"provider"`
	Config   generator.ConfigResult `json:"config"`
	Preview  *validator.Preview     `json:"preview"`
}

// Modified is the result of Modify.
type Modified struct {
	Result  *modifier.Result   `json:"result"`
	Preview *validator.Preview `json:"preview"`
}

// Generate builds a graph for agent using the provider with providerID
// ("" selects the default) and validates it.
func (w *Workbench) Generate(ctx context.Context, agent *generator.AgentDefinition, providerID string) (out *Generated, err error) {
	ctx, span, start := w.start(ctx, metrics.OpGenerate, attribute.String("provider.requested", providerID))
	defer func() { w.finish(span, metrics.OpGenerate, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, &errors.ValidationError{Field: "agent", Message: "agent definition is required"}
	}
	agentType, err := agent.Template()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("agent.type", string(agentType)))

	provider, err := w.providers.Resolve(providerID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("provider.id", provider.ID))

	g, err := w.generator.Generate(agent, provider)
	if err != nil {
		return nil, err
	}
	metrics.RecordGenerated(string(agentType))

	preview, err := w.Validate(ctx, g, validator.Options{IncludePerformanceAnalysis: true, IncludeCostAnalysis: true})
	if err != nil {
		return nil, err
	}

	w.logger.Info("generated workflow",
		slog.String(flowlog.GraphKey, g.Name),
		slog.String(flowlog.AgentTypeKey, string(agentType)),
		slog.String(flowlog.ProviderKey, provider.ID),
		slog.Int("nodes", len(g.Nodes)),
	)
	return &Generated{
		Graph:    g,
		Provider: provider.ID,
		Config:   generator.ValidateConfig(g),
		Preview:  preview,
	}, nil
}

// Validate scores g.
func (w *Workbench) Validate(ctx context.Context, g *workflow.Graph, opts validator.Options) (out *validator.Preview, err error) {
	ctx, span, start := w.start(ctx, metrics.OpValidate, attribute.Bool("strict", opts.StrictMode))
	defer func() { w.finish(span, metrics.OpValidate, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	preview, err := w.validator.Validate(g, opts)
	if err != nil {
		return nil, err
	}

	bySeverity := map[string]int{}
	for _, list := range [][]validator.Issue{preview.Validation.Errors, preview.Validation.Warnings} {
		for _, is := range list {
			bySeverity[string(is.Severity)]++
		}
	}
	metrics.RecordValidation(preview.Validation.Score, bySeverity)
	w.graphNodes.Record(ctx, int64(len(g.Nodes)),
		metric.WithAttributes(attribute.Bool("valid", preview.Validation.Valid)))

	span.SetAttributes(
		attribute.Int("graph.nodes", len(g.Nodes)),
		attribute.Int("validation.score", preview.Validation.Score),
		attribute.Bool("validation.valid", preview.Validation.Valid),
	)
	return preview, nil
}

// Modify applies requests to g and re-validates it. On rejection g is
// unchanged and the *modifier.ModificationError is returned.
func (w *Workbench) Modify(ctx context.Context, g *workflow.Graph, requests []modifier.Request, mctx modifier.Context) (out *Modified, err error) {
	ctx, span, start := w.start(ctx, metrics.OpModify, attribute.Int("requests", len(requests)))
	defer func() { w.finish(span, metrics.OpModify, start, err) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mctx.WorkflowType == "" {
		mctx.WorkflowType = WorkflowTypeOf(g)
	}
	res, err := w.modifier.Apply(g, requests, mctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordModified(len(res.ModifiedNodeIDs))

	preview, err := w.Validate(ctx, g, validator.Options{})
	if err != nil {
		return nil, err
	}
	return &Modified{Result: res, Preview: preview}, nil
}

// Suggest proposes parameter changes for g.
func (w *Workbench) Suggest(g *workflow.Graph, mctx modifier.Context) []modifier.Request {
	if mctx.WorkflowType == "" {
		mctx.WorkflowType = WorkflowTypeOf(g)
	}
	return w.modifier.Suggest(g, mctx)
}

// Export renders g as a Flowise chatflow.
func (w *Workbench) Export(ctx context.Context, g *workflow.Graph) (out *flowise.Chatflow, err error) {
	ctx, span, start := w.start(ctx, metrics.OpExport)
	defer func() { w.finish(span, metrics.OpExport, start, err) }()
	return flowise.Export(ctx, g)
}

// Push exports g and stores it in Flowise. An empty id creates a new
// chatflow; otherwise the chatflow with that id is replaced.
func (w *Workbench) Push(ctx context.Context, g *workflow.Graph, id string) (*flowise.Chatflow, error) {
	client, err := w.flowiseClient()
	if err != nil {
		return nil, err
	}
	flow, err := w.Export(ctx, g)
	if err != nil {
		return nil, err
	}

	ctx, span, start := w.start(ctx, metrics.OpPush, attribute.String("chatflow.id", id))
	if id == "" {
		flow, err = client.CreateChatflow(ctx, flow)
	} else {
		flow, err = client.UpdateChatflow(ctx, id, flow)
	}
	w.finish(span, metrics.OpPush, start, err)
	return flow, err
}

func (w *Workbench) flowiseClient() (*flowise.Client, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.flowise != nil {
		return w.flowise, nil
	}
	fc := w.cfg.Flowise
	if fc.BaseURL == "" {
		return nil, &errors.ConfigError{
			Key:    "flowise.base_url",
			Reason: "Flowise base URL is not configured (set flowise.base_url or FLOWISE_BASE_URL)",
		}
	}
	client, err := flowise.NewClient(fc.BaseURL, w.flowiseKey, w.cfg.HTTPClientConfig(),
		flowise.WithLogger(flowlog.WithComponent(w.logger, "flowise")))
	if err != nil {
		return nil, err
	}
	w.flowise = client
	return client, nil
}
