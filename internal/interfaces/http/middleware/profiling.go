package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling labels CPU samples taken while serving a request with its route
// and method, so profiles can be filtered per endpoint. Paths in skip are
// served unlabeled.
func Profiling(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if _, ok := skipped[c.Request.URL.Path]; ok || route == "" {
			c.Next()
			return
		}

		labels := pyroscope.Labels("route", route, "method", c.Request.Method)
		pyroscope.TagWrapper(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
