package model

import (
	"errors"
	"testing"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{
			name: "without wrapped error",
			err: &APIError{
				Code:    "TEST_ERROR",
				Message: "something went wrong",
			},
			want: "TEST_ERROR: something went wrong",
		},
		{
			name: "with wrapped error",
			err: &APIError{
				Code:    "TEST_ERROR",
				Message: "something went wrong",
				Err:     errors.New("underlying cause"),
			},
			want: "TEST_ERROR: something went wrong (underlying cause)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConstructorsWrapSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		status   int
	}{
		{"not found", NewNotFoundError("cart"), ErrNotFound, 404},
		{"validation", NewValidationError("email", "is invalid"), ErrInvalidInput, 400},
		{"authentication", NewAuthenticationError("bad credentials"), ErrUnauthorized, 401},
		{"network", NewNetworkError("storefront", errors.New("dial tcp: refused")), ErrUpstream, 502},
		{"rate limit", NewRateLimitError("assistant"), ErrRateLimited, 429},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false", tt.err)
			}
			var apiErr *APIError
			if !errors.As(tt.err, &apiErr) {
				t.Fatalf("errors.As failed for %v", tt.err)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	if got := NewValidationError("email", "has already been taken").Message; got != "email: has already been taken" {
		t.Errorf("Message = %q", got)
	}
	// No field: message passes through untouched.
	if got := NewValidationError("", "Unidentified customer").Message; got != "Unidentified customer" {
		t.Errorf("Message = %q", got)
	}
}
