package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey contextKey = "logger"
	teamIDKey contextKey = "team_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithTeamID adds the team ID to context and returns the enriched logger
func WithTeamID(ctx context.Context, logger *zap.Logger, teamID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, teamIDKey, teamID)
	enriched := logger.With(zap.String("team_id", teamID))
	return WithContext(ctx, enriched), enriched
}

// GetTeamID retrieves the team ID from context
func GetTeamID(ctx context.Context) string {
	if id, ok := ctx.Value(teamIDKey).(string); ok {
		return id
	}
	return ""
}
