// Package testutil provides testing utilities for the OCDS proxy.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockOCDSResponse defines the behavior for a mock OCDS endpoint response.
type MockOCDSResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockOCDS is a configurable mock of the upstream OCDS API. Responses are
// registered per path; every request is recorded.
type MockOCDS struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	requestCount int
	requestURIs  []string
}

// NewMockOCDS creates a new mock OCDS server.
func NewMockOCDS() *MockOCDS {
	mock := &MockOCDS{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.requestURIs = append(mock.requestURIs, r.URL.RequestURI())
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		// Default handler
		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server root URL.
func (m *MockOCDS) URL() string {
	return m.server.URL
}

// BaseURL returns the mock API root, the equivalent of
// https://ocds-api.etenders.gov.za/api.
func (m *MockOCDS) BaseURL() string {
	return m.server.URL + "/api"
}

// Close shuts down the mock server.
func (m *MockOCDS) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockOCDS) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.requestURIs = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockOCDS) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockOCDS) SetResponse(path string, resp MockOCDSResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		// Add delay if specified
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		// Set headers
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		// Write status and body
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetReleasesResponse configures the list endpoint (/api/OCDSReleases).
func (m *MockOCDS) SetReleasesResponse(resp MockOCDSResponse) {
	m.SetResponse("/api/OCDSReleases", resp)
}

// SetReleaseResponse configures the detail endpoint for one ocid.
func (m *MockOCDS) SetReleaseResponse(ocid string, resp MockOCDSResponse) {
	m.SetResponse("/api/OCDSReleases/release/"+ocid, resp)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockOCDS) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// GetRequestURIs returns the request URIs (path and raw query) seen so far.
func (m *MockOCDS) GetRequestURIs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.requestURIs...)
}

// defaultHandler answers unknown paths the way the real API does.
func (m *MockOCDS) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"title":"Not Found","status":404}`))
}

// NewReleasesResponse creates a standard 200 OK JSON response.
func NewReleasesResponse(data string) MockOCDSResponse {
	return MockOCDSResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockOCDSResponse {
	return MockOCDSResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"title":"Not Found","status":404}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockOCDSResponse {
	return MockOCDSResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewSequenceHandler answers successive requests with the given responses in
// order, repeating the last one once the sequence is exhausted.
func NewSequenceHandler(responses ...MockOCDSResponse) func(w http.ResponseWriter, r *http.Request) {
	var mu sync.Mutex
	next := 0

	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := responses[next]
		if next < len(responses)-1 {
			next++
		}
		mu.Unlock()

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	}
}
