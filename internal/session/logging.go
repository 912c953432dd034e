package session

import (
	"context"
	"log/slog"

	"github.com/example/campus-portal/internal/logging"
)

func serviceLogger(ctx context.Context, base *slog.Logger, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx, base)
	pairs := []any{"service", "SessionManager"}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	return logger.With(append(pairs, attrs...)...)
}
