package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }

	h := NewSystemHandler("1.2.3", map[string]HealthCheck{"database": ok, "redis": ok})
	c, w := testContext(http.MethodGet, "/health")
	h.Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)

	h = NewSystemHandler("1.2.3", map[string]HealthCheck{
		"database": ok,
		"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	c, w = testContext(http.MethodGet, "/health")
	h.Health(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), `"redis":"dial tcp: refused"`)
}

func TestSystemHandler_Ping(t *testing.T) {
	c, w := testContext(http.MethodGet, "/api/v1/ping")
	NewSystemHandler("dev", nil).Ping(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"pong"`)
}
