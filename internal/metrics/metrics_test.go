package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveOperation(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.ObserveOperation("create", ResultOK, 3*time.Millisecond)
	c.ObserveOperation("create", ResultOK, time.Millisecond)
	c.ObserveOperation("create", ResultInvalid, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.operationsTotal.WithLabelValues("create", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.operationsTotal.WithLabelValues("create", ResultInvalid)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.operationDuration))
}

func TestCollector_Counters(t *testing.T) {
	c := NewCollector(nil)

	c.CountValidationError("E003")
	c.CountValidationError("E003")
	c.CountRepair("REPAIR", true)
	c.CountRepair("FORBIDDEN", false)
	c.ObserveStage("PARSE", time.Microsecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.validationErrors.WithLabelValues("E003")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.repairsTotal.WithLabelValues("REPAIR", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.repairsTotal.WithLabelValues("FORBIDDEN", "false")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.stageDuration))
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveOperation("create", ResultOK, time.Millisecond)
		c.ObserveStage("PARSE", time.Millisecond)
		c.CountValidationError("E001")
		c.CountRepair("REPAIR", false)
	})
	assert.Nil(t, c.Registry())
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(nil)
	c.ObserveOperation("eject", ResultOK, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `octave_operations_total{operation="eject",result="ok"} 1`)
}
