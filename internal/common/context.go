package common

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID        contextKey = "run_id"
	ContextKeyDocumentPath contextKey = "document_path"
)

// WithRunID tags ctx with the batch run identifier.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithDocumentPath tags ctx with the document currently being processed.
func WithDocumentPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, ContextKeyDocumentPath, path)
}

// DocumentPathFromContext extracts the document path from context
func DocumentPathFromContext(ctx context.Context) string {
	if p, ok := ctx.Value(ContextKeyDocumentPath).(string); ok {
		return p
	}
	return ""
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
