// Package testsupport is the acceptance-test harness the engine's own tests
// are built with: a fixture Environment wrapping an httptest.Server, response
// assertions driven by JSONPath expressions, and a temp work-dir builder for
// content trees.
package testsupport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// Environment owns a running test server around any http.Handler. Cleanup is
// registered with the test so callers never shut it down explicitly.
type Environment struct {
	tb     testing.TB
	server *httptest.Server
	client *http.Client
}

// NewEnvironment starts a test server for handler and ties its lifetime to tb.
func NewEnvironment(tb testing.TB, handler http.Handler) *Environment {
	tb.Helper()
	server := httptest.NewServer(handler)
	tb.Cleanup(server.Close)
	return &Environment{
		tb:     tb,
		server: server,
		client: server.Client(),
	}
}

// BaseURL returns the server's base URL without a trailing slash.
func (e *Environment) BaseURL() string {
	return strings.TrimRight(e.server.URL, "/")
}

// Client returns the underlying HTTP client.
func (e *Environment) Client() *http.Client {
	return e.client
}

// GET performs a GET request against the environment's server.
func (e *Environment) GET(path string) *Response {
	e.tb.Helper()
	return e.do(http.MethodGet, path, nil)
}

// POST sends body as JSON with a POST request.
func (e *Environment) POST(path string, body any) *Response {
	e.tb.Helper()
	return e.do(http.MethodPost, path, body)
}

// PUT sends body as JSON with a PUT request.
func (e *Environment) PUT(path string, body any) *Response {
	e.tb.Helper()
	return e.do(http.MethodPut, path, body)
}

// PATCH sends body as JSON with a PATCH request.
func (e *Environment) PATCH(path string, body any) *Response {
	e.tb.Helper()
	return e.do(http.MethodPatch, path, body)
}

// DELETE performs a DELETE request against the environment's server.
func (e *Environment) DELETE(path string) *Response {
	e.tb.Helper()
	return e.do(http.MethodDelete, path, nil)
}

func (e *Environment) do(method, path string, body any) *Response {
	e.tb.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			e.tb.Fatalf("testsupport: encode %s %s body: %v", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req, err := http.NewRequest(method, e.BaseURL()+path, reader)
	if err != nil {
		e.tb.Fatalf("testsupport: build %s %s: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.tb.Fatalf("testsupport: %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		e.tb.Fatalf("testsupport: read %s %s response: %v", method, path, err)
	}

	return &Response{
		tb:     e.tb,
		Method: method,
		Path:   path,
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   payload,
	}
}
