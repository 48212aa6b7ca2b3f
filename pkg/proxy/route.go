package proxy

import (
	"net/http"
	"strings"
)

// DefaultRoutePrefix is the inbound path serving the release list.
const DefaultRoutePrefix = "/releases"

// Route identifies how an inbound request is handled.
type Route string

const (
	// RoutePreflight is any OPTIONS request.
	RoutePreflight Route = "preflight"

	// RouteReleases is the paginated release list, {prefix}?query.
	RouteReleases Route = "releases"

	// RouteRelease is a single release, {prefix}/release/{ocid}.
	RouteRelease Route = "release"

	// RouteNone is anything else; it is answered with 404.
	RouteNone Route = "none"
)

// Request is the part of an inbound request the proxy looks at.
type Request struct {
	Method   string
	Path     string
	RawQuery string
}

// RequestFromHTTP extracts a Request from an *http.Request. The path is kept
// percent-encoded so release ids reach upstream exactly as the caller sent them.
func RequestFromHTTP(r *http.Request) *Request {
	return &Request{
		Method:   r.Method,
		Path:     r.URL.EscapedPath(),
		RawQuery: r.URL.RawQuery,
	}
}

// Classify maps a request to its route. Any OPTIONS request is a preflight.
// Otherwise only the path is considered. For RouteRelease the returned id is
// the final path segment, unvalidated and undecoded.
func Classify(prefix string, req *Request) (Route, string) {
	if req.Method == http.MethodOptions {
		return RoutePreflight, ""
	}

	switch {
	case req.Path == prefix:
		return RouteReleases, ""
	case strings.HasPrefix(req.Path, prefix+"/release/"):
		return RouteRelease, req.Path[strings.LastIndex(req.Path, "/")+1:]
	default:
		return RouteNone, ""
	}
}

// ResolveTarget builds the upstream URL for a routable request. The query is
// forwarded verbatim on the list route and dropped on the release route.
func ResolveTarget(baseURL string, route Route, id, rawQuery string) string {
	base := strings.TrimRight(baseURL, "/")

	switch route {
	case RouteReleases:
		target := base + "/OCDSReleases"
		if rawQuery != "" {
			target += "?" + rawQuery
		}
		return target
	case RouteRelease:
		return base + "/OCDSReleases/release/" + id
	default:
		return ""
	}
}
