package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	// Registering twice on the same registerer would panic
	assert.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordCodecOperation("encode", true, time.Microsecond)
	m.RecordCodecOperation("encode", true, time.Microsecond)
	m.RecordCodecOperation("decode", false, time.Microsecond)
	m.RecordRegistryOperation("create", true)
	m.UpdateRegistryStats(7)
	m.RecordHealthCheck(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.codecOperationsTotal.WithLabelValues("encode", statusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.codecOperationsTotal.WithLabelValues("decode", statusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registryOperationsTotal.WithLabelValues("create", statusSuccess)))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.registryEntries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.healthChecksTotal.WithLabelValues(statusSuccess)))
}

func TestMetrics_InstrumentHandler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	h := m.InstrumentHandler("GET", "/api/v1/decode/{encoded}", func(w http.ResponseWriter, r *http.Request) {
		sendError(w, "Encoded value too big to decode.", http.StatusBadRequest)
	})
	h(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/v1/decode/x", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/decode/{encoded}", "400")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpRequestsInFlight.WithLabelValues("GET", "/api/v1/decode/{encoded}")))
}

func TestMetrics_InstrumentAuthMiddleware(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := m.InstrumentAuthMiddleware(apiKeyMiddleware("test-key"))(ok)

	for _, key := range []string{"test-key", "wrong", ""} {
		req := httptest.NewRequest("GET", "/api/v1/health", nil)
		if key != "" {
			req.Header.Set("X-API-Key", key)
		}
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.authRequestsTotal.WithLabelValues(statusSuccess)))
	// requests without a key are not counted as auth attempts
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authRequestsTotal.WithLabelValues(statusError)))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	server := newTestServer(t, testKey, nil)
	server.metrics = NewMetrics(reg)
	h := server.Router(reg)

	w, _ := do(t, h, "GET", "/api/v1/encode/48888851145", nil)
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `squishy_codec_operations_total{operation="encode",status="success"} 1`)
	assert.Contains(t, body, `squishy_http_requests_total{endpoint="/api/v1/encode/{value}",method="GET",status_code="200"} 1`)
	assert.True(t, strings.Contains(body, "squishy_auth_requests_total"))
}
