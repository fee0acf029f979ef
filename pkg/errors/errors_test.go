package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad boot file: %s", "x")
	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}
	if err.Message != "bad boot file: x" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Error() != "INVALID_INPUT: bad boot file: x" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := Wrap(ErrCodeMalformedArchive, cause, "open %s", "a.zip")

	if err.Cause != cause {
		t.Error("Cause not preserved")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	want := "MALFORMED_ARCHIVE: open a.zip: zip: not a valid zip file"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeNotFound, "missing"),
			code:     ErrCodeNotFound,
			expected: true,
		},
		{
			name:     "different code",
			err:      New(ErrCodeNotFound, "missing"),
			code:     ErrCodeMalformedArchive,
			expected: false,
		},
		{
			name:     "wrapped with fmt",
			err:      fmt.Errorf("scan: %w", New(ErrCodeDetection, "unknown")),
			code:     ErrCodeDetection,
			expected: true,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeProviderFailure, New(ErrCodeNotFound, "inner"), "outer"),
			code:     ErrCodeNotFound,
			expected: false,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			code:     ErrCodeInternal,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeProviderFailure, "test"), ErrCodeProviderFailure},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsTraversal(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{ErrCodeNotFound, true},
		{ErrCodeMalformedArchive, true},
		{ErrCodeProviderFailure, false},
		{ErrCodeDetection, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := IsTraversal(New(tt.code, "x")); got != tt.want {
				t.Errorf("IsTraversal(%s) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestIsContext(t *testing.T) {
	if !IsContext(context.Canceled) {
		t.Error("context.Canceled should be a context error")
	}
	if !IsContext(fmt.Errorf("walk: %w", context.DeadlineExceeded)) {
		t.Error("wrapped DeadlineExceeded should be a context error")
	}
	if IsContext(New(ErrCodeInternal, "x")) {
		t.Error("coded error is not a context error")
	}
}
