// Package metrics holds the Prometheus collectors for workflow
// operations. Collectors register with the default registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation names used as label values.
const (
	OpGenerate = "generate"
	OpValidate = "validate"
	OpModify   = "modify"
	OpExport   = "export"
	OpPush     = "push"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// operationsTotal counts operations by name and outcome
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowkit_operations_total",
			Help: "Total workflow operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// operationDuration tracks how long each operation takes
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowkit_operation_duration_seconds",
			Help:    "Duration of workflow operations",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)

	// generatedGraphs counts generated graphs by agent type
	generatedGraphs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowkit_generated_graphs_total",
			Help: "Total generated graphs by agent type",
		},
		[]string{"agent_type"},
	)

	// validationScore records quality scores
	validationScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flowkit_validation_score",
			Help:    "Validation quality scores",
			Buckets: []float64{0, 25, 50, 70, 80, 90, 100},
		},
	)

	// validationIssues counts reported issues by severity
	validationIssues = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowkit_validation_issues_total",
			Help: "Total validation issues by severity",
		},
		[]string{"severity"},
	)

	// modifiedNodes counts nodes changed by successful modifications
	modifiedNodes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flowkit_modified_nodes_total",
			Help: "Total nodes changed by applied modifications",
		},
	)
)

// RecordOperation records the outcome and duration of an operation.
func RecordOperation(op string, start time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	operationsTotal.WithLabelValues(op, outcome).Inc()
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// RecordGenerated counts a generated graph.
func RecordGenerated(agentType string) {
	generatedGraphs.WithLabelValues(agentType).Inc()
}

// RecordValidation records a validation score and its issue counts.
func RecordValidation(score int, bySeverity map[string]int) {
	validationScore.Observe(float64(score))
	for sev, n := range bySeverity {
		validationIssues.WithLabelValues(sev).Add(float64(n))
	}
}

// RecordModified counts nodes changed by an apply.
func RecordModified(n int) {
	modifiedNodes.Add(float64(n))
}

// Handler serves the default registry, which also carries the OpenTelemetry
// instruments when the prometheus exporter is enabled.
func Handler() http.Handler {
	return promhttp.Handler()
}
