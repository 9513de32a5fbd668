package notify

import (
	"context"

	"go.uber.org/zap"
)

type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) {
	fields := []zap.Field{
		zap.String("notification_id", n.ID),
		zap.String("severity", string(n.Severity)),
	}
	switch n.Severity {
	case SeverityError:
		l.logger.Error(n.Message, fields...)
	case SeverityWarning:
		l.logger.Warn(n.Message, fields...)
	default:
		l.logger.Info(n.Message, fields...)
	}
}
