// Package testutil provides common test utilities for service, client and
// integration tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewRequest creates a simple HTTP request without a body.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// ReadBody reads the response body as bytes.
func ReadBody(t *testing.T, rr *httptest.ResponseRecorder) []byte {
	t.Helper()
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err, "failed to read response body")
	return body
}

// MustMarshal marshals v to a JSON string, failing the test on error.
func MustMarshal(t *testing.T, v any) string {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err, "failed to marshal value")
	return string(body)
}

// AssertStatus asserts the response status code matches expected.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code")
}

// AssertStatusOK asserts the response status is 200 OK.
func AssertStatusOK(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	AssertStatus(t, rr, http.StatusOK)
}

// PeerRequest is a request observed by a PeerServer.
type PeerRequest struct {
	Method string
	Path   string
	Query  string
	Tenant string
	User   string
}

// PeerServer fakes a peer module reachable through the gateway. Routes map a
// path to a handler; every request is recorded for assertions.
type PeerServer struct {
	*httptest.Server
	requests chan PeerRequest
}

// NewPeerServer starts a PeerServer and registers its shutdown with t.
func NewPeerServer(t *testing.T, routes map[string]http.HandlerFunc) *PeerServer {
	t.Helper()
	ps := &PeerServer{requests: make(chan PeerRequest, 64)}
	mux := http.NewServeMux()
	for path, h := range routes {
		h := h
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			select {
			case ps.requests <- PeerRequest{
				Method: r.Method,
				Path:   r.URL.Path,
				Query:  r.URL.RawQuery,
				Tenant: r.Header.Get("X-Okapi-Tenant"),
				User:   r.Header.Get("X-Okapi-User-Id"),
			}:
			default:
			}
			h(w, r)
		})
	}
	ps.Server = httptest.NewServer(mux)
	t.Cleanup(ps.Close)
	return ps
}

// Requests drains and returns the requests observed so far.
func (p *PeerServer) Requests() []PeerRequest {
	var out []PeerRequest
	for {
		select {
		case r := <-p.requests:
			out = append(out, r)
		default:
			return out
		}
	}
}

// JSON returns a handler that writes v as a 200 JSON response.
func JSON(t *testing.T, v any) http.HandlerFunc {
	t.Helper()
	body := MustMarshal(t, v)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

// Status returns a handler that replies with an empty body and code.
func Status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	}
}
