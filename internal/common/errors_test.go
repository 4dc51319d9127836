package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppErrorMatchesSentinelByCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"service", ServiceError("status 500", nil), ErrService, true},
		{"wrapped storage", fmt.Errorf("append: %w", StorageError("insert", errors.New("disk full"))), ErrStorage, true},
		{"mismatch is not service", SchemaMismatchError("summary missing", nil), ErrService, false},
		{"extraction io", ExtractionIOError("not a pdf", nil), ErrExtractionIO, true},
		{"plain error", errors.New("boom"), ErrStorage, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Fatalf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ServiceError("post", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain")
	}
	if got, want := err.Error(), "SERVICE: post: connection refused"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(fmt.Errorf("ctx: %w", SchemaMismatchError("x", nil))); got != CodeSchemaMismatch {
		t.Fatalf("CodeOf = %q", got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Fatalf("CodeOf(plain) = %q, want empty", got)
	}
}
