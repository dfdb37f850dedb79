package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	okBefore := testutil.ToFloat64(operationsTotal.WithLabelValues(OpValidate, OutcomeSuccess))
	errBefore := testutil.ToFloat64(operationsTotal.WithLabelValues(OpValidate, OutcomeError))

	RecordOperation(OpValidate, time.Now(), nil)
	RecordOperation(OpValidate, time.Now(), nil)
	RecordOperation(OpValidate, time.Now(), errors.New("boom"))

	assert.Equal(t, okBefore+2, testutil.ToFloat64(operationsTotal.WithLabelValues(OpValidate, OutcomeSuccess)))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(operationsTotal.WithLabelValues(OpValidate, OutcomeError)))
}

func TestRecordGenerated(t *testing.T) {
	before := testutil.ToFloat64(generatedGraphs.WithLabelValues("rag"))
	RecordGenerated("rag")
	assert.Equal(t, before+1, testutil.ToFloat64(generatedGraphs.WithLabelValues("rag")))
}

func TestRecordValidation(t *testing.T) {
	before := testutil.ToFloat64(validationIssues.WithLabelValues("warning"))
	RecordValidation(90, map[string]int{"warning": 2, "error": 0})
	assert.Equal(t, before+2, testutil.ToFloat64(validationIssues.WithLabelValues("warning")))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(validationScore), 1)
}

func TestRecordModified(t *testing.T) {
	before := testutil.ToFloat64(modifiedNodes)
	RecordModified(3)
	assert.Equal(t, before+3, testutil.ToFloat64(modifiedNodes))
}

func TestHandler(t *testing.T) {
	RecordModified(1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "flowkit_modified_nodes_total")
}
