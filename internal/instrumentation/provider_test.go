package instrumentation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(metricsExporter, tracingExporter string) Config {
	return Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: metricsExporter,
		TracingExporter: tracingExporter,
	}
}

func newTestProvider(t *testing.T, config Config) *Provider {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return provider
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{ServiceName: "test-service", Enabled: false})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics(), "disabled provider still hands out a no-op recorder")
	assert.NotNil(t, provider.Tracer("test"))
	assert.Nil(t, provider.PrometheusHandler())
	assert.NoError(t, provider.Shutdown(context.Background()))

	// The no-op recorder must be safe to use
	provider.Metrics().RecordToolInvocation(context.Background(), "list", StatusSuccess, time.Millisecond)
}

func TestNewProvider_Exporters(t *testing.T) {
	tests := []struct {
		name           string
		config         Config
		wantPrometheus bool
	}{
		{
			name:           "prometheus metrics without tracing",
			config:         testConfig(ExporterPrometheus, ExporterNone),
			wantPrometheus: true,
		},
		{
			name:           "stdout metrics and traces",
			config:         testConfig(ExporterStdout, ExporterStdout),
			wantPrometheus: false,
		},
		{
			name:           "empty tracing exporter means none",
			config:         testConfig(ExporterPrometheus, ""),
			wantPrometheus: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newTestProvider(t, tt.config)

			assert.True(t, provider.Enabled())
			assert.NotNil(t, provider.Metrics())
			assert.NotNil(t, provider.Tracer("test"))
			if tt.wantPrometheus {
				assert.NotNil(t, provider.PrometheusHandler())
			} else {
				assert.Nil(t, provider.PrometheusHandler())
			}
		})
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{name: "invalid metrics exporter", config: testConfig("invalid", ExporterNone)},
		{name: "invalid tracing exporter", config: testConfig(ExporterPrometheus, "invalid")},
		{name: "otlp tracing without endpoint", config: testConfig(ExporterPrometheus, ExporterOTLP)},
		{name: "otlp metrics without endpoint", config: testConfig(ExporterOTLP, ExporterNone)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(context.Background(), tt.config)
			assert.Error(t, err)
		})
	}
}

func TestProvider_PrometheusHandlerServesRecordedMetrics(t *testing.T) {
	provider := newTestProvider(t, testConfig(ExporterPrometheus, ExporterNone))

	ctx := context.Background()
	provider.Metrics().RecordToolInvocation(ctx, "search", StatusSuccess, 20*time.Millisecond)
	provider.Metrics().RecordGoogleAPIOperation(ctx, ServiceTasks, OperationListTasks, StatusSuccess, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	provider.PrometheusHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathMetrics, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, "mcp_tool_invocations_total")
	assert.Contains(t, text, `tool="search"`)
	assert.Contains(t, text, "google_api_operations_total")
	assert.Contains(t, text, "go_goroutines", "runtime collectors are registered alongside otel metrics")
}

func TestProvider_SeparateRegistries(t *testing.T) {
	// Two providers must not collide on a shared registry
	first := newTestProvider(t, testConfig(ExporterPrometheus, ExporterNone))
	second := newTestProvider(t, testConfig(ExporterPrometheus, ExporterNone))

	assert.NotNil(t, first.PrometheusHandler())
	assert.NotNil(t, second.PrometheusHandler())
	assert.NotSame(t, first.registry, second.registry)
}
