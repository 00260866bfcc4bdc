package flows

import "context"

type RecoveryMetrics struct {
	Request int
}

type RecoveryEvents struct {
	Request string
}

type RecoveryErrors struct {
	EngineNotReady error
}

type RecoveryDeps struct {
	CheckSendLimit func(ctx context.Context, email string) error
	SendOTP        func(ctx context.Context, email string, allowNewAccount bool) error

	EmitAudit func(ctx context.Context, event string, success bool, email string, err error, metadata map[string]string)
	MetricInc func(int)

	Metrics RecoveryMetrics
	Events  RecoveryEvents
	Errors  RecoveryErrors
}

// RunRequestRecovery issues a recovery OTP for email. allowNewAccount is
// always false here: a recovery request must never create an account for
// an unknown address.
func RunRequestRecovery(ctx context.Context, email string, deps RecoveryDeps) error {
	normalizeRecoveryDeps(&deps)

	if deps.SendOTP == nil {
		return deps.Errors.EngineNotReady
	}

	if deps.CheckSendLimit != nil {
		if err := deps.CheckSendLimit(ctx, email); err != nil {
			deps.EmitAudit(ctx, deps.Events.Request, false, email, err, nil)
			return err
		}
	}

	if err := deps.SendOTP(ctx, email, false); err != nil {
		deps.EmitAudit(ctx, deps.Events.Request, false, email, err, nil)
		return err
	}

	deps.MetricInc(deps.Metrics.Request)
	deps.EmitAudit(ctx, deps.Events.Request, true, email, nil, nil)
	return nil
}

func normalizeRecoveryDeps(deps *RecoveryDeps) {
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, map[string]string) {}
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
}
