package http

import (
	"context"
	"log/slog"
)

// handlerLogger tags the request logger, or fallback outside a request, with
// the handler and operation names.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handler, operation string, attrs ...any) *slog.Logger {
	pairs := make([]any, 0, len(attrs)+4)
	pairs = append(pairs, "handler", handler)
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	return LoggerFromContext(ctx, fallback).With(append(pairs, attrs...)...)
}
