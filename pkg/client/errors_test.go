package client

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "without wrapped error",
			err:      &APIError{StatusCode: 503, ErrorClass: ErrorClassServer, Message: "503 Service Unavailable"},
			expected: "f1 api server error (status 503): 503 Service Unavailable",
		},
		{
			name:     "with wrapped error",
			err:      &APIError{ErrorClass: ErrorClassNetwork, Message: "request failed", Err: io.EOF},
			expected: "f1 api network error (status 0): request failed: EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	err := &APIError{ErrorClass: ErrorClassNetwork, Err: io.ErrUnexpectedEOF}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("errors.Is should see the wrapped error")
	}
}

func TestClassOf(t *testing.T) {
	wrapped := fmt.Errorf("fetch year: %w", &APIError{StatusCode: 404, ErrorClass: ErrorClassClient})
	if got := ClassOf(wrapped); got != ErrorClassClient {
		t.Errorf("ClassOf() = %q, want %q", got, ErrorClassClient)
	}
	if got := ClassOf(io.EOF); got != "" {
		t.Errorf("ClassOf(non-API error) = %q, want empty", got)
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected bool
	}{
		{ErrorClassClient, false},
		{ErrorClassServer, true},
		{ErrorClassRateLimit, true},
		{ErrorClassNetwork, true},
		{ErrorClassDecode, false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.class), func(t *testing.T) {
			if got := shouldRetry(tt.class); got != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.class, got, tt.expected)
			}
		})
	}
}
