package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/awantoch/flowviz/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	cases := []*config.TracingConfig{
		nil,
		{},
		{ServiceName: "test-service", Exporter: "stdout"},
		{ServiceName: "test-otlp", Exporter: "otlp", Endpoint: "http://localhost:4318"},
		{ServiceName: "test-otlp-hostport", Exporter: "otlp", Endpoint: "localhost:4318"},
		{Exporter: "otlp"},
	}
	for _, cfg := range cases {
		shutdown, err := Init(cfg)
		require.NoError(t, err, "%+v", cfg)
		require.NotNil(t, shutdown)
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		_ = shutdown(ctx)
		cancel()
	}

	_, err := Init(&config.TracingConfig{Exporter: "jaeger"})
	assert.Error(t, err)
}

func TestWrapHandler(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})
	rec := httptest.NewRecorder()
	WrapHandler("teapot", inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("teapot", "GET", "418")))
}

func TestRecordRender(t *testing.T) {
	before := testutil.ToFloat64(rendersTotal.WithLabelValues("plantuml", "error"))
	RecordRender("plantuml", "error", 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(rendersTotal.WithLabelValues("plantuml", "error")))
}

func TestMetricsHandler(t *testing.T) {
	RecordRender("mermaid", "success", time.Millisecond)
	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "flowviz_renders_total")
}

func TestTracer(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "test")
	span.End()
}
