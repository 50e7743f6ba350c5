package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics recorder backed by a manual reader so
// tests can inspect what was recorded.
func newTestMetrics(t *testing.T, detailedLabels bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailedLabels)
	require.NoError(t, err)
	return m, reader
}

// sumPoints returns the data points of the named Int64 sum.
func sumPoints(t *testing.T, reader *sdkmetric.ManualReader, name string) []metricdata.DataPoint[int64] {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			return sum.DataPoints
		}
	}
	t.Fatalf("metric %s not recorded", name)
	return nil
}

func attrValue(set attribute.Set, key string) string {
	v, _ := set.Value(attribute.Key(key))
	return v.AsString()
}

func TestMetrics_RecordHTTPRequest_NormalizesPath(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.RecordHTTPRequest(ctx, "POST", "/mcp", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "GET", "/random/1", 404, time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "GET", "/random/2", 404, time.Millisecond)

	points := sumPoints(t, reader, "http_requests_total")
	paths := map[string]int64{}
	for _, p := range points {
		paths[attrValue(p.Attributes, attrPath)] += p.Value
	}
	assert.Equal(t, map[string]int64{"/mcp": 1, "other": 2}, paths)
}

func TestMetrics_RecordHTTPRequest_DetailedLabels(t *testing.T) {
	metrics, reader := newTestMetrics(t, true)

	metrics.RecordHTTPRequest(context.Background(), "GET", "/random/1", 404, time.Millisecond)

	points := sumPoints(t, reader, "http_requests_total")
	require.Len(t, points, 1)
	assert.Equal(t, "/random/1", attrValue(points[0].Attributes, attrPath))
	assert.Equal(t, "404", attrValue(points[0].Attributes, attrStatus))
}

func TestMetrics_RecordGoogleAPIOperation(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.RecordGoogleAPIOperation(ctx, ServiceTasks, OperationListTasks, StatusSuccess, 200*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceTasks, OperationListTasks, StatusSuccess, 100*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceTasks, OperationInsertTask, StatusError, 500*time.Millisecond)

	points := sumPoints(t, reader, "google_api_operations_total")
	counts := map[string]int64{}
	for _, p := range points {
		key := attrValue(p.Attributes, attrOperation) + "/" + attrValue(p.Attributes, attrStatus)
		counts[key] = p.Value
		assert.Equal(t, ServiceTasks, attrValue(p.Attributes, attrService))
	}
	assert.Equal(t, int64(2), counts["list_tasks/success"])
	assert.Equal(t, int64(1), counts["insert_task/error"])
}

func TestMetrics_RecordAuthInitialization(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.RecordAuthInitialization(ctx, AuthResultSuccess, AuthSourceEnvironment)
	metrics.RecordAuthInitialization(ctx, AuthResultMissing, "")

	points := sumPoints(t, reader, "auth_initializations_total")
	require.Len(t, points, 2)

	results := map[string]string{}
	for _, p := range points {
		results[attrValue(p.Attributes, attrResult)] = attrValue(p.Attributes, attrSource)
	}
	assert.Equal(t, AuthSourceEnvironment, results[AuthResultSuccess])
	assert.Equal(t, "", results[AuthResultMissing])
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)

	metrics.RecordToolInvocation(context.Background(), "search", StatusSuccess, 150*time.Millisecond)

	points := sumPoints(t, reader, "mcp_tool_invocations_total")
	require.Len(t, points, 1)
	assert.Equal(t, "search", attrValue(points[0].Attributes, attrTool))
	assert.Equal(t, int64(1), points[0].Value)
}

func TestMetrics_ActiveSessions(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.IncrementActiveSessions(ctx)
	metrics.IncrementActiveSessions(ctx)
	metrics.DecrementActiveSessions(ctx)

	points := sumPoints(t, reader, "active_sessions")
	require.Len(t, points, 1)
	assert.Equal(t, int64(1), points[0].Value)
}

func TestMetrics_NoOp_WhenDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	require.NoError(t, err)

	metrics := provider.Metrics()
	require.NotNil(t, metrics)

	// All these should not panic even with nil underlying metrics
	metrics.RecordHTTPRequest(ctx, "GET", "/mcp", 200, 100*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceTasks, OperationListTaskLists, StatusSuccess, 200*time.Millisecond)
	metrics.RecordAuthInitialization(ctx, AuthResultFailure, AuthSourceFile)
	metrics.RecordToolInvocation(ctx, "list", StatusSuccess, 100*time.Millisecond)
	metrics.IncrementActiveSessions(ctx)
	metrics.DecrementActiveSessions(ctx)
}
