package proxy

import (
	"net/http"
)

// Response headers and values.
const (
	HeaderAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAllowMethods = "Access-Control-Allow-Methods"
	HeaderAllowHeaders = "Access-Control-Allow-Headers"
	HeaderCache        = "X-Cache"
	HeaderRequestID    = "X-Request-ID"

	AllowOrigin  = "*"
	AllowMethods = "GET, POST, OPTIONS"
	AllowHeaders = "Content-Type"

	CacheHit  = "HIT"
	CacheMiss = "MISS"

	contentTypeJSON = "application/json"
	contentTypeText = "text/plain"
)

// Response is a fully built proxy response, independent of the hosting
// runtime that delivers it.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// CacheStatus returns the X-Cache value, or "" for responses that did not
// touch the cache.
func (r *Response) CacheStatus() string {
	return r.Header.Get(HeaderCache)
}

func withCORS(h http.Header) http.Header {
	h.Set(HeaderAllowOrigin, AllowOrigin)
	h.Set(HeaderAllowMethods, AllowMethods)
	h.Set(HeaderAllowHeaders, AllowHeaders)
	return h
}

// preflightResponse answers OPTIONS with no body.
func preflightResponse() *Response {
	return &Response{
		Status: http.StatusNoContent,
		Header: withCORS(http.Header{}),
	}
}

// notFoundResponse answers unroutable paths. Only the origin header is set.
func notFoundResponse() *Response {
	h := http.Header{}
	h.Set("Content-Type", contentTypeText)
	h.Set(HeaderAllowOrigin, AllowOrigin)
	return &Response{
		Status: http.StatusNotFound,
		Header: h,
		Body:   []byte("Not Found"),
	}
}

// errorResponse reports an upstream or transport failure as a 500 whose body
// carries the error text. Only the origin header is set.
func errorResponse(err error) *Response {
	h := http.Header{}
	h.Set("Content-Type", contentTypeText)
	h.Set(HeaderAllowOrigin, AllowOrigin)
	return &Response{
		Status: http.StatusInternalServerError,
		Header: h,
		Body:   []byte("Proxy Error: " + err.Error()),
	}
}

// payloadResponse relays an upstream body with the given cache status.
func payloadResponse(body []byte, cacheStatus string) *Response {
	h := withCORS(http.Header{})
	h.Set("Content-Type", contentTypeJSON)
	h.Set(HeaderCache, cacheStatus)
	return &Response{
		Status: http.StatusOK,
		Header: h,
		Body:   body,
	}
}
