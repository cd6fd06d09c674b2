package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := provider.Meter("test")

	r := gin.New()
	r.Use(HTTPMetrics(meter, zap.NewNop()))
	r.GET("/api/v1/invoices/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/api/v1/invoices/1", "")
	serve(r, http.MethodGet, "/api/v1/invoices/2", "")
	serve(r, http.MethodGet, "/nowhere", "")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = m.Data
		}
	}
	require.Contains(t, names, "ledgerly_http_requests_total")
	assert.Contains(t, names, "ledgerly_http_request_duration")

	sum, ok := names["ledgerly_http_requests_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	byRoute := map[string]int64{}
	for _, dp := range sum.DataPoints {
		route, _ := dp.Attributes.Value("http.route")
		byRoute[route.AsString()] += dp.Value
	}
	assert.Equal(t, int64(2), byRoute["/api/v1/invoices/:id"])
	assert.Equal(t, int64(1), byRoute["unknown"])
}

func TestHTTPMetrics_NilMeter(t *testing.T) {
	r := gin.New()
	r.Use(HTTPMetrics(nil, zap.NewNop()))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", "").Code)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(422))
	assert.Equal(t, "unknown", statusClass(0))
}
