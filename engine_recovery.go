package enroll

import (
	"context"

	"github.com/novextrustpay/enroll/forms"
	"github.com/novextrustpay/enroll/internal/flows"
)

// RequestRecovery issues a recovery OTP for email and hands off to the
// verification screen with purpose recovery. The gateway is told not to
// create an account for an unknown address. The email format is checked
// locally first.
func (e *Engine) RequestRecovery(ctx context.Context, email string) (*Handoff, error) {
	if e == nil || e.gateway == nil {
		return nil, ErrGatewayUnconfigured
	}
	if v := forms.ValidateEmail(email); v != nil {
		return nil, newValidationError(v)
	}

	err := flows.RunRequestRecovery(ctx, email, flows.RecoveryDeps{
		CheckSendLimit: e.checkOTPSend,
		SendOTP:        e.gateway.SendOTP,
		EmitAudit: func(ctx context.Context, event string, success bool, email string, err error, metadata map[string]string) {
			e.emitAudit(ctx, event, success, email, "", err, metadata)
		},
		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		Metrics: flows.RecoveryMetrics{
			Request: int(MetricRecoveryRequest),
		},
		Events: flows.RecoveryEvents{
			Request: EventRecoveryRequest,
		},
		Errors: flows.RecoveryErrors{
			EngineNotReady: ErrEngineNotReady,
		},
	})
	if err != nil {
		return nil, err
	}

	return &Handoff{
		Email:   email,
		Purpose: PurposeRecovery,
		Token:   e.mintHandoff(email, PurposeRecovery),
	}, nil
}

// ResetPassword sets a new password on the session established by a
// recovery-purpose verification. Local checks (length, confirmation
// match) run before the gateway call; success hands control to the login
// screen.
func (e *Engine) ResetPassword(ctx context.Context, newPassword, confirm string) (Destination, error) {
	if e == nil || e.gateway == nil {
		return DestinationResetPassword, ErrGatewayUnconfigured
	}

	if len(newPassword) < 8 {
		return DestinationResetPassword, fieldViolation(forms.FieldPassword, "password must be at least 8 characters")
	}
	if newPassword != confirm {
		return DestinationResetPassword, ErrPasswordMismatch
	}

	if err := e.gateway.UpdatePassword(ctx, newPassword); err != nil {
		e.emitAudit(ctx, EventPasswordReset, false, "", "", err, nil)
		return DestinationResetPassword, err
	}

	e.metricInc(MetricPasswordReset)
	e.emitAudit(ctx, EventPasswordReset, true, "", "", nil, nil)
	return DestinationLogin, nil
}

// SetPIN updates the transaction PIN on the current session, for the
// standalone PIN screen outside the deferred signup path. The PIN rules
// (4 to 6 digits, confirmation match) run locally first.
func (e *Engine) SetPIN(ctx context.Context, pin, confirm string) (Destination, error) {
	if e == nil || e.gateway == nil {
		return DestinationSetPIN, ErrGatewayUnconfigured
	}

	if v := forms.ValidatePIN(pin, confirm); v != nil {
		return DestinationSetPIN, newValidationError(v)
	}

	if err := e.gateway.SetTransactionPIN(ctx, pin); err != nil {
		e.metricInc(MetricPINFailed)
		e.emitAudit(ctx, EventPINApply, false, "", "", err, nil)
		return DestinationSetPIN, err
	}

	e.metricInc(MetricPINApplied)
	e.emitAudit(ctx, EventPINApply, true, "", "", nil, nil)
	return DestinationDashboard, nil
}
