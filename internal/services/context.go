package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	libraryKey contextKey = "library"
	unitKey    contextKey = "unit"
)

// WithRunID annotates context with the scan run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the scan run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithLibrary annotates context with the library being processed.
func WithLibrary(ctx context.Context, library string) context.Context {
	if library == "" {
		return ctx
	}
	return context.WithValue(ctx, libraryKey, library)
}

// LibraryFromContext returns the library name if present.
func LibraryFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(libraryKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithUnit annotates context with the canonical key of the unit in flight.
func WithUnit(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, unitKey, key)
}

// UnitFromContext returns the unit key if present.
func UnitFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(unitKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
