package services

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	scriptIDKey  contextKey = "script_id"
	runIDKey     contextKey = "run_id"
	requestIDKey contextKey = "request_id"
)

// WithScriptID annotates context with the script identifier being worked on.
func WithScriptID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, scriptIDKey, id)
}

// ScriptIDFromContext extracts the script identifier if present.
func ScriptIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(scriptIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRunID annotates context with a render job or workflow run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the render run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// EnsureRequestID stamps a fresh correlation identifier unless one is present.
func EnsureRequestID(ctx context.Context) context.Context {
	if _, ok := RequestIDFromContext(ctx); ok {
		return ctx
	}
	return WithRequestID(ctx, uuid.NewString())
}
