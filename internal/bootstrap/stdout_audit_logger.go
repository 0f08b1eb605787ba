package bootstrap

import (
	"context"
	"time"

	"hr-calendar/internal/shared/contextutil"

	"go.uber.org/zap"
)

// StdoutAuditLogger writes audit entries as structured log lines tagged with
// the emitting binary.
type StdoutAuditLogger struct {
	service string
	logger  *zap.Logger
}

func NewStdoutAuditLogger(service string, logger ...*zap.Logger) *StdoutAuditLogger {
	l := zap.L().Named("audit")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit")
	}
	return &StdoutAuditLogger{service: service, logger: l}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	fields := []zap.Field{
		zap.String("service", l.service),
		zap.Time("at", time.Now().UTC()),
		zap.String("action", entry.Action),
		zap.Any("meta", entry.Meta),
	}
	if id := contextutil.GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	l.logger.Info(entry.Message, fields...)
}
