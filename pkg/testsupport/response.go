package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/PaesslerAG/jsonpath"
)

// Response captures a completed request for assertion. Failed expectations
// report through the owning test; JSONPath lookups parse the body once.
type Response struct {
	tb     testing.TB
	Method string
	Path   string
	Status int
	Header http.Header
	Body   []byte

	parsed    any
	parseErr  error
	parseDone bool
}

// ExpectStatus fails the test unless the response carries the wanted code.
// It returns the response so assertions chain.
func (r *Response) ExpectStatus(want int) *Response {
	r.tb.Helper()
	if r.Status != want {
		r.tb.Fatalf("%s %s: status = %d, want %d (body: %s)", r.Method, r.Path, r.Status, want, r.Body)
	}
	return r
}

// Decode unmarshals the JSON body into target.
func (r *Response) Decode(target any) *Response {
	r.tb.Helper()
	if err := json.Unmarshal(r.Body, target); err != nil {
		r.tb.Fatalf("%s %s: decode body: %v (body: %s)", r.Method, r.Path, err, r.Body)
	}
	return r
}

// JSONPath evaluates expr against the JSON body and returns the match.
func (r *Response) JSONPath(expr string) any {
	r.tb.Helper()
	val, err := r.lookup(expr)
	if err != nil {
		r.tb.Fatalf("%s %s: jsonpath %q: %v (body: %s)", r.Method, r.Path, expr, err, r.Body)
	}
	return val
}

// ExpectJSONPath asserts that expr resolves to want. Numeric wants compare
// through float64, matching how encoding/json decodes untyped numbers.
func (r *Response) ExpectJSONPath(expr string, want any) *Response {
	r.tb.Helper()
	got := r.JSONPath(expr)
	if !jsonEqual(got, want) {
		r.tb.Fatalf("%s %s: jsonpath %q = %v (%T), want %v (%T)", r.Method, r.Path, expr, got, got, want, want)
	}
	return r
}

// ExpectJSONPathExists asserts that expr resolves to a non-nil value.
func (r *Response) ExpectJSONPathExists(expr string) *Response {
	r.tb.Helper()
	val, err := r.lookup(expr)
	if err != nil {
		r.tb.Fatalf("%s %s: jsonpath %q not found: %v (body: %s)", r.Method, r.Path, expr, err, r.Body)
	}
	if val == nil {
		r.tb.Fatalf("%s %s: jsonpath %q resolved to null", r.Method, r.Path, expr)
	}
	return r
}

// ExpectJSONPathContains asserts that the string at expr contains substr.
func (r *Response) ExpectJSONPathContains(expr, substr string) *Response {
	r.tb.Helper()
	got := r.JSONPath(expr)
	text, ok := got.(string)
	if !ok {
		r.tb.Fatalf("%s %s: jsonpath %q = %v (%T), want a string", r.Method, r.Path, expr, got, got)
	}
	if !strings.Contains(text, substr) {
		r.tb.Fatalf("%s %s: jsonpath %q = %q, want substring %q", r.Method, r.Path, expr, text, substr)
	}
	return r
}

// ExpectBodyContains asserts the raw body contains substr.
func (r *Response) ExpectBodyContains(substr string) *Response {
	r.tb.Helper()
	if !strings.Contains(string(r.Body), substr) {
		r.tb.Fatalf("%s %s: body %q does not contain %q", r.Method, r.Path, r.Body, substr)
	}
	return r
}

func (r *Response) lookup(expr string) (any, error) {
	if !r.parseDone {
		r.parseDone = true
		r.parseErr = json.Unmarshal(r.Body, &r.parsed)
	}
	if r.parseErr != nil {
		return nil, fmt.Errorf("parse body: %w", r.parseErr)
	}
	return jsonpath.Get(expr, r.parsed)
}

func jsonEqual(got, want any) bool {
	if got == nil || want == nil {
		return got == want
	}
	switch w := want.(type) {
	case int:
		if g, ok := got.(float64); ok {
			return g == float64(w)
		}
	case int64:
		if g, ok := got.(float64); ok {
			return g == float64(w)
		}
	case float64:
		if g, ok := got.(float64); ok {
			return g == w
		}
	}
	return got == want
}
