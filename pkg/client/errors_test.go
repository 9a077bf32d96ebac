package client

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestErrorClassRetryable(t *testing.T) {
	tests := []struct {
		name       string
		errorClass ErrorClass
		expected   bool
	}{
		{
			name:       "client error should not retry",
			errorClass: ErrorClassClient,
			expected:   false,
		},
		{
			name:       "server error should retry",
			errorClass: ErrorClassServer,
			expected:   true,
		},
		{
			name:       "rate limit should retry",
			errorClass: ErrorClassRateLimit,
			expected:   true,
		},
		{
			name:       "network error should retry",
			errorClass: ErrorClassNetwork,
			expected:   true,
		},
		{
			name:       "malformed response should not retry",
			errorClass: ErrorClassMalformed,
			expected:   false,
		},
		{
			name:       "empty error class should not retry",
			errorClass: "",
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.errorClass.Retryable()
			if result != tt.expected {
				t.Errorf("Retryable(%q) = %v, want %v", tt.errorClass, result, tt.expected)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code     int
		expected ErrorClass
	}{
		{200, ""},
		{304, ""},
		{400, ErrorClassClient},
		{401, ErrorClassClient},
		{404, ErrorClassClient},
		{429, ErrorClassRateLimit},
		{500, ErrorClassServer},
		{502, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		result := ClassifyStatus(tt.code)
		if result != tt.expected {
			t.Errorf("ClassifyStatus(%d) = %q, want %q", tt.code, result, tt.expected)
		}
	}
}

func TestStatusError_RateLimitWaitHint(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Status:     "429 Too Many Requests",
		Header:     http.Header{"Retry-After": []string{"5"}},
	}

	fe := StatusError(resp)
	if fe.Class != ErrorClassRateLimit {
		t.Errorf("Class = %q, want %q", fe.Class, ErrorClassRateLimit)
	}
	if fe.WaitHint != 5*time.Second {
		t.Errorf("WaitHint = %v, want 5s", fe.WaitHint)
	}
}

func TestStatusError_RateLimitWithoutHint(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusTooManyRequests,
		Status:     "429 Too Many Requests",
		Header:     http.Header{},
	}

	fe := StatusError(resp)
	if fe.WaitHint != 0 {
		t.Errorf("WaitHint = %v, want 0", fe.WaitHint)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
	}{
		{"", 0},
		{"5", 5 * time.Second},
		{"0", 0},
		{"-1", 0},
		{"junk", 0},
	}

	for _, tt := range tests {
		result := parseRetryAfter(tt.input)
		if result != tt.expected {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestFetchError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *FetchError
		expected string
	}{
		{
			name: "status error",
			err: &FetchError{
				Class:      ErrorClassServer,
				StatusCode: 500,
				Message:    "500 Internal Server Error",
			},
			expected: "fetch server error (status 500): 500 Internal Server Error",
		},
		{
			name: "wrapped transport error",
			err: &FetchError{
				Class: ErrorClassNetwork,
				Err:   errors.New("connection refused"),
			},
			expected: "fetch network error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.err.Error()
			if result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestFetchError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	fe := &FetchError{
		Class: ErrorClassNetwork,
		Err:   wrappedErr,
	}

	if !errors.Is(fe, wrappedErr) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestAsFetchError(t *testing.T) {
	fe := &FetchError{Class: ErrorClassServer, StatusCode: 503}
	if got := AsFetchError(fe); got.Class != ErrorClassServer {
		t.Errorf("Class = %q, want %q", got.Class, ErrorClassServer)
	}

	// A classified error survives wrapping.
	wrapped := &FetchError{Class: ErrorClassMalformed, Err: errors.New("bad payload")}
	if got := AsFetchError(wrapped); got.Class != ErrorClassMalformed {
		t.Errorf("Class = %q, want %q", got.Class, ErrorClassMalformed)
	}

	// Unclassified errors default to network.
	if got := AsFetchError(errors.New("mystery")); got.Class != ErrorClassNetwork {
		t.Errorf("Class = %q, want %q", got.Class, ErrorClassNetwork)
	}
}
