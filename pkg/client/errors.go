package client

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Common errors returned by the client and the pagination driver.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during a
	// fetch or a retry backoff.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass classifies a failed page fetch. The class decides the blast
// radius of recovery: transient classes are retried, client errors abort the
// fetch immediately, malformed payloads abort because the pagination state
// can no longer be trusted.
type ErrorClass string

const (
	// ErrorClassNetwork covers connection refused/reset, timeouts and DNS
	// failures. Retryable.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassRateLimit is a server-imposed throttle (429), optionally
	// carrying a Retry-After wait hint. Retryable.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassServer covers 5xx responses. Retryable.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassClient covers 4xx responses other than 429. Never retried.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassMalformed marks a payload that could not be parsed into the
	// expected page shape. Never retried.
	ErrorClassMalformed ErrorClass = "malformed"
)

// Retryable reports whether failures of this class may be retried.
func (c ErrorClass) Retryable() bool {
	switch c {
	case ErrorClassNetwork, ErrorClassServer, ErrorClassRateLimit:
		return true
	default:
		return false
	}
}

// FetchError is a classified page-fetch failure.
type FetchError struct {
	Class      ErrorClass
	StatusCode int
	WaitHint   time.Duration
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s error (status %d): %s", e.Class, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s error: %v", e.Class, e.Err)
	}
	return fmt.Sprintf("fetch %s error: %s", e.Class, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError extracts a *FetchError from an error chain. Unclassified
// errors are treated as network failures so the driver still has a sane
// retry decision to make.
func AsFetchError(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &FetchError{Class: ErrorClassNetwork, Err: err}
}

// NetworkError wraps a transport-level error (dial, timeout, DNS) as a
// classified network failure.
func NetworkError(err error) *FetchError {
	return &FetchError{Class: ErrorClassNetwork, Err: err}
}

// MalformedError wraps a payload parse failure as a classified malformed
// response.
func MalformedError(err error) *FetchError {
	return &FetchError{Class: ErrorClassMalformed, Err: err}
}

// ClassifyStatus maps an HTTP status code to an error class. Statuses below
// 400 classify as "" (not an error).
func ClassifyStatus(code int) ErrorClass {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case code >= 500:
		return ErrorClassServer
	case code >= 400:
		return ErrorClassClient
	default:
		return ""
	}
}

// StatusError builds a classified failure from a non-2xx response, capturing
// the Retry-After wait hint on rate-limited responses.
func StatusError(resp *http.Response) *FetchError {
	fe := &FetchError{
		Class:      ClassifyStatus(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
	}
	if fe.Class == ErrorClassRateLimit {
		fe.WaitHint = parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	return fe
}

// parseRetryAfter parses a Retry-After header given in seconds. Malformed or
// absent values yield zero, letting the retry policy fall back to its
// exponential schedule.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
