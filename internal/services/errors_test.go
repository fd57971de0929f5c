package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"mediatorr/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "mkbrr", "create", "failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"mkbrr", "create", "failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		lookup bool
		fatal  bool
	}{
		{"nil", nil, false, false},
		{"not found", services.Wrap(services.ErrNotFound, "tmdb", "search", "no results", nil), true, false},
		{"timeout", services.Wrap(services.ErrTimeout, "itunes", "search", "", nil), true, false},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), true, false},
		{"archiver", services.Wrap(services.ErrExternalTool, "mkbrr", "create", "", errors.New("exit 1")), false, true},
		{"config", services.Wrap(services.ErrConfiguration, "tmdb", "", "missing key", nil), false, true},
		{"plain", errors.New("other"), false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.IsLookupFailure(tc.err); got != tc.lookup {
				t.Fatalf("IsLookupFailure = %v, want %v", got, tc.lookup)
			}
			if got := services.IsUnitFatal(tc.err); got != tc.fatal {
				t.Fatalf("IsUnitFatal = %v, want %v", got, tc.fatal)
			}
		})
	}
}
