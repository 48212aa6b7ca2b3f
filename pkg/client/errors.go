package client

import (
	"errors"
	"fmt"
)

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassUpstreamHTTP represents a response outside the 2xx range.
	ErrorClassUpstreamHTTP ErrorClass = "upstream_http"

	// ErrorClassTransport represents network, DNS, timeout and body read failures.
	ErrorClassTransport ErrorClass = "transport"
)

// UpstreamError represents a failed upstream fetch with additional context.
type UpstreamError struct {
	StatusCode int
	ErrorClass ErrorClass
	URL        string
	Message    string
	Err        error
}

// Error implements the error interface.
// The status code is always part of the text when one was received.
func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("upstream %s error", e.ErrorClass)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ClassOf returns the error class of err, or "" if err is not an UpstreamError.
func ClassOf(err error) ErrorClass {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.ErrorClass
	}
	return ""
}
