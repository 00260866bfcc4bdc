// Package zaplog adapts the engine's audit stream to a zap logger, for
// hosts that already run structured logging.
package zaplog

import (
	"context"

	"go.uber.org/zap"

	enroll "github.com/novextrustpay/enroll"
)

// Sink writes one zap entry per audit event. Successful events log at
// Info, failed ones at Warn.
type Sink struct {
	logger *zap.Logger
}

// NewSink wraps logger. A nil logger yields a sink that discards events.
func NewSink(logger *zap.Logger) *Sink {
	return &Sink{logger: logger}
}

// Emit implements [enroll.AuditSink].
func (s *Sink) Emit(_ context.Context, event enroll.AuditEvent) {
	if s == nil || s.logger == nil {
		return
	}

	fields := make([]zap.Field, 0, 8+len(event.Metadata))
	fields = append(fields,
		zap.Time("timestamp", event.Timestamp),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	)
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.Scope != "" {
		fields = append(fields, zap.String("scope", event.Scope))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.Error != "" {
		fields = append(fields, zap.String("error", event.Error))
	}
	for k, v := range event.Metadata {
		fields = append(fields, zap.String("meta_"+k, v))
	}

	if event.Success {
		s.logger.Info("audit", fields...)
		return
	}
	s.logger.Warn("audit", fields...)
}
