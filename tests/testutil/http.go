package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// APIClient sends requests straight into an http.Handler, typically a gin engine.
type APIClient struct {
	t       *testing.T
	handler http.Handler
	// Token is sent as a bearer token when set
	Token string
}

// NewAPIClient creates a client for handler
func NewAPIClient(t *testing.T, handler http.Handler) *APIClient {
	return &APIClient{t: t, handler: handler}
}

// WithToken returns a copy of the client that authenticates with token
func (c *APIClient) WithToken(token string) *APIClient {
	clone := *c
	clone.Token = token
	return &clone
}

// APIResponse is a recorded response in the standard envelope
type APIResponse struct {
	Code    int             `json:"-"`
	Header  http.Header     `json:"-"`
	Body    []byte          `json:"-"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

// Do sends a request. body is marshalled to JSON unless nil.
func (c *APIClient) Do(method, path string, body any) *APIResponse {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err, "Failed to marshal request body")
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	resp := &APIResponse{Code: w.Code, Header: w.Header(), Body: w.Body.Bytes()}
	if len(resp.Body) > 0 && json.Valid(resp.Body) {
		require.NoError(c.t, json.Unmarshal(resp.Body, resp), "Failed to parse response envelope")
	}
	return resp
}

// Get sends a GET request
func (c *APIClient) Get(path string) *APIResponse {
	c.t.Helper()
	return c.Do(http.MethodGet, path, nil)
}

// Post sends a POST request
func (c *APIClient) Post(path string, body any) *APIResponse {
	c.t.Helper()
	return c.Do(http.MethodPost, path, body)
}

// Put sends a PUT request
func (c *APIClient) Put(path string, body any) *APIResponse {
	c.t.Helper()
	return c.Do(http.MethodPut, path, body)
}

// Delete sends a DELETE request
func (c *APIClient) Delete(path string) *APIResponse {
	c.t.Helper()
	return c.Do(http.MethodDelete, path, nil)
}

// Decode unmarshals the data field into out
func (r *APIResponse) Decode(t *testing.T, out any) {
	t.Helper()
	require.NotEmpty(t, r.Data, "response has no data: %s", r.Body)
	require.NoError(t, json.Unmarshal(r.Data, out))
}

// RequireStatus fails the test unless the response has the given status
func (r *APIResponse) RequireStatus(t *testing.T, status int) *APIResponse {
	t.Helper()
	require.Equal(t, status, r.Code, "unexpected status, body: %s", r.Body)
	return r
}

// AssertError asserts an error envelope with the given status and code
func (r *APIResponse) AssertError(t *testing.T, status int, code string) {
	t.Helper()
	assert.Equal(t, status, r.Code, "unexpected status, body: %s", r.Body)
	assert.False(t, r.Success)
	if assert.NotNil(t, r.Error, "expected error object in response") {
		assert.Equal(t, code, r.Error.Code)
	}
}
