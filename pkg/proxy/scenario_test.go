package proxy

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/etenders-ocds/ocds-proxy/internal/testutil"
	"github.com/etenders-ocds/ocds-proxy/pkg/client"
)

// newScenarioHandlers wires the real upstream client to mock and returns the
// proxy behind both hosting adapters, each with its own cache.
func newScenarioHandlers(t *testing.T, mock *testutil.MockOCDS) map[string]func() http.Handler {
	t.Helper()

	build := func() *Proxy {
		c, err := client.New(client.DefaultConfig())
		if err != nil {
			t.Fatalf("client.New failed: %v", err)
		}
		cfg := DefaultConfig(c)
		cfg.UpstreamBaseURL = mock.BaseURL()
		p, err := New(cfg)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		return p
	}

	return map[string]func() http.Handler{
		"net/http": func() http.Handler { return build() },
		"gin":      func() http.Handler { return newGinEngine(build()) },
	}
}

func TestScenario_ListMissThenHit(t *testing.T) {
	const body = `{"releases":[{"ocid":"abc"}]}`

	mock := testutil.NewMockOCDS()
	defer mock.Close()
	mock.SetReleasesResponse(testutil.NewReleasesResponse(body))

	for name, newHandler := range newScenarioHandlers(t, mock) {
		t.Run(name, func(t *testing.T) {
			mock.Reset()
			h := newHandler()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/releases?PageNumber=1&PageSize=50", nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("Status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get(HeaderCache); got != CacheMiss {
				t.Errorf("X-Cache = %q, want MISS", got)
			}
			if rec.Body.String() != body {
				t.Errorf("Body = %q, want upstream body verbatim", rec.Body.String())
			}

			rec = httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/releases?PageNumber=1&PageSize=50", nil))

			if rec.Code != http.StatusOK {
				t.Errorf("Status = %d, want 200", rec.Code)
			}
			if got := rec.Header().Get(HeaderCache); got != CacheHit {
				t.Errorf("X-Cache = %q, want HIT", got)
			}
			if rec.Body.String() != body {
				t.Errorf("Body = %q, want cached body", rec.Body.String())
			}

			if got := mock.GetRequestCount(); got != 1 {
				t.Errorf("upstream requests = %d, want 1", got)
			}
			uris := mock.GetRequestURIs()
			if len(uris) != 1 || uris[0] != "/api/OCDSReleases?PageNumber=1&PageSize=50" {
				t.Errorf("upstream URIs = %v", uris)
			}
		})
	}
}

func TestScenario_UpstreamNotFound(t *testing.T) {
	mock := testutil.NewMockOCDS()
	defer mock.Close()
	mock.SetReleaseResponse("ocds-9999-abc", testutil.NewNotFoundResponse())

	for name, newHandler := range newScenarioHandlers(t, mock) {
		t.Run(name, func(t *testing.T) {
			mock.Reset()
			h := newHandler()

			for i := 0; i < 2; i++ {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/releases/release/ocds-9999-abc", nil))

				if rec.Code != http.StatusInternalServerError {
					t.Errorf("Status = %d, want 500", rec.Code)
				}
				if !strings.Contains(rec.Body.String(), "404") {
					t.Errorf("Body = %q, should contain 404", rec.Body.String())
				}
				if got := rec.Header().Get(HeaderAllowOrigin); got != "*" {
					t.Errorf("%s = %q, want *", HeaderAllowOrigin, got)
				}
			}

			// Nothing was cached, so both requests reached upstream.
			if got := mock.GetRequestCount(); got != 2 {
				t.Errorf("upstream requests = %d, want 2", got)
			}
		})
	}
}

func TestScenario_Preflight(t *testing.T) {
	mock := testutil.NewMockOCDS()
	defer mock.Close()

	for name, newHandler := range newScenarioHandlers(t, mock) {
		t.Run(name, func(t *testing.T) {
			mock.Reset()
			h := newHandler()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/releases", nil))

			if rec.Code != http.StatusNoContent {
				t.Errorf("Status = %d, want 204", rec.Code)
			}
			if rec.Body.Len() != 0 {
				t.Errorf("Body = %q, want empty", rec.Body.String())
			}
			want := map[string]string{
				HeaderAllowOrigin:  "*",
				HeaderAllowMethods: "GET, POST, OPTIONS",
				HeaderAllowHeaders: "Content-Type",
			}
			for key, value := range want {
				if got := rec.Header().Get(key); got != value {
					t.Errorf("%s = %q, want %q", key, got, value)
				}
			}
			if got := mock.GetRequestCount(); got != 0 {
				t.Errorf("upstream requests = %d, want 0", got)
			}
		})
	}
}

func TestScenario_ServerErrorThenRecovery(t *testing.T) {
	mock := testutil.NewMockOCDS()
	defer mock.Close()

	for name, newHandler := range newScenarioHandlers(t, mock) {
		t.Run(name, func(t *testing.T) {
			mock.Reset()
			mock.SetHandler("/api/OCDSReleases", testutil.NewSequenceHandler(
				testutil.NewServerErrorResponse(),
				testutil.NewReleasesResponse(`{"releases":[]}`),
			))
			h := newHandler()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/releases", nil))
			if rec.Code != http.StatusInternalServerError {
				t.Errorf("first Status = %d, want 500", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "500") {
				t.Errorf("Body = %q, should contain 500", rec.Body.String())
			}

			rec = httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/releases", nil))
			if rec.Code != http.StatusOK || rec.Header().Get(HeaderCache) != CacheMiss {
				t.Errorf("second got (%d, %s), want (200, MISS)", rec.Code, rec.Header().Get(HeaderCache))
			}

			if got := mock.GetRequestURIs(); len(got) != 2 || got[0] != "/api/OCDSReleases" {
				t.Errorf("upstream URIs = %v, want two bare list requests", got)
			}
		})
	}
}
