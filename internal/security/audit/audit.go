package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger emits structured audit records for mutating report and user
// administration actions.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, username, action, resource, resourceID, status string) {
	requestID := ""
	if reqID := ctx.Value("request_id"); reqID != nil {
		requestID, _ = reqID.(string)
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("username", username),
		slog.String("status", status),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogReportAction(ctx context.Context, username, action, reportID string) {
	al.LogAction(ctx, username, action, "report", reportID, "initiated")
}

func (al *Logger) LogUserAction(ctx context.Context, username, action, userID string) {
	al.LogAction(ctx, username, action, "user", userID, "initiated")
}

func (al *Logger) LogDenied(ctx context.Context, username, reason string) {
	al.LogAction(ctx, username, "access_denied", "api", "", reason)
}
