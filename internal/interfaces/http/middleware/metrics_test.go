package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	mw, err := HTTPMetrics(meter)
	require.NoError(t, err)

	router := gin.New()
	router.Use(mw)
	router.GET("/api/v1/jobs/:id", func(c *gin.Context) {
		if c.Param("id") == "missing" {
			SetErrorCode(c, "JOB_NOT_FOUND")
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusOK)
	})
	for _, path := range []string{"/api/v1/jobs/1", "/api/v1/jobs/2", "/api/v1/jobs/missing"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var counts map[string]int64
	var histogramCount uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				if m.Name != "http_server_request_total" {
					continue
				}
				counts = map[string]int64{}
				for _, dp := range data.DataPoints {
					route, _ := dp.Attributes.Value(attrHTTPRoute)
					assert.Equal(t, "/api/v1/jobs/:id", route.AsString())
					status, _ := dp.Attributes.Value(attrHTTPStatus)
					counts[status.AsString()] += dp.Value
					if status.AsString() == "404" {
						code, ok := dp.Attributes.Value(attribute.Key("error.code"))
						assert.True(t, ok)
						assert.Equal(t, "JOB_NOT_FOUND", code.AsString())
					}
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					histogramCount += dp.Count
				}
			}
		}
	}
	assert.Equal(t, map[string]int64{"200": 2, "404": 1}, counts)
	assert.Equal(t, uint64(3), histogramCount)
}
