package enroll

import (
	"context"
	"errors"
	"time"

	"github.com/novextrustpay/enroll/internal/limiters"
)

// Engine coordinates the enrollment, verification, recovery, and session
// flows against the external identity gateway. Build one through [Builder]
// and share it; per-visitor state lives in the [Wizard] and [Verification]
// values it creates.
type Engine struct {
	config     Config
	gateway    AuthGateway
	pending    PendingStore
	otpLimiter *limiters.OTPSendLimiter
	handoff    *handoffManager
	audit      *auditDispatcher
	metrics    *Metrics
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were shed because the buffer
// was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, email, userID string, err error, metadata map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		Email:     email,
		UserID:    userID,
		Scope:     clientScopeFromContext(ctx),
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}

	e.audit.Emit(ctx, event)
}

// checkOTPSend applies the optional fixed-window throttle before an OTP
// issuance call.
func (e *Engine) checkOTPSend(ctx context.Context, email string) error {
	if e.otpLimiter == nil {
		return nil
	}
	if err := e.otpLimiter.Check(ctx, email, clientIPFromContext(ctx)); err != nil {
		if errors.Is(err, limiters.ErrOTPSendRateLimited) {
			return ErrOTPSendRateLimited
		}
		return err
	}
	return nil
}
