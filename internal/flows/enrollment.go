package flows

import "context"

// EnrollmentInput is the already-validated remainder of the registration
// draft that the submission pipeline consumes.
type EnrollmentInput struct {
	Email    string
	Password string
	PIN      string
	Metadata map[string]string
}

type EnrollmentMetrics struct {
	Submit  int
	Success int
	Failure int
	OTPSend int
}

type EnrollmentEvents struct {
	Submit       string
	OTPSend      string
	PendingWrite string
}

type EnrollmentErrors struct {
	EngineNotReady error
}

// EnrollmentDeps wires the submission pipeline. Audit and metric hooks are
// optional; the gateway and store hooks are required.
type EnrollmentDeps struct {
	AttemptID func() string

	CheckSendLimit func(ctx context.Context, email string) error
	SignUp         func(ctx context.Context, email, password string, metadata map[string]string) error
	SendOTP        func(ctx context.Context, email string, allowNewAccount bool) error
	PutPending     func(ctx context.Context, email, pin string) error

	EmitAudit func(ctx context.Context, event string, success bool, email string, err error, metadata map[string]string)
	MetricInc func(int)

	Metrics EnrollmentMetrics
	Events  EnrollmentEvents
	Errors  EnrollmentErrors
}

// RunSubmitEnrollment executes the strict submission sequence: account
// creation, OTP issuance without silent account creation, then the
// pending-PIN write. The first failure aborts with its error and leaves
// the earlier steps' side effects in place: an account created before a
// failed OTP send stays created and unverified.
func RunSubmitEnrollment(ctx context.Context, in EnrollmentInput, deps EnrollmentDeps) error {
	normalizeEnrollmentDeps(&deps)

	if deps.SignUp == nil || deps.SendOTP == nil || deps.PutPending == nil {
		return deps.Errors.EngineNotReady
	}

	attempt := map[string]string{"attempt_id": deps.AttemptID()}
	deps.MetricInc(deps.Metrics.Submit)

	if deps.CheckSendLimit != nil {
		if err := deps.CheckSendLimit(ctx, in.Email); err != nil {
			deps.MetricInc(deps.Metrics.Failure)
			deps.EmitAudit(ctx, deps.Events.Submit, false, in.Email, err, attempt)
			return err
		}
	}

	if err := deps.SignUp(ctx, in.Email, in.Password, in.Metadata); err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Submit, false, in.Email, err, attempt)
		return err
	}

	// The account exists from here on. No rollback on later failures.
	if err := deps.SendOTP(ctx, in.Email, false); err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.OTPSend, false, in.Email, err, attempt)
		return err
	}
	deps.MetricInc(deps.Metrics.OTPSend)
	deps.EmitAudit(ctx, deps.Events.OTPSend, true, in.Email, nil, attempt)

	if err := deps.PutPending(ctx, in.Email, in.PIN); err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.PendingWrite, false, in.Email, err, attempt)
		return err
	}
	deps.EmitAudit(ctx, deps.Events.PendingWrite, true, in.Email, nil, attempt)

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Submit, true, in.Email, nil, attempt)
	return nil
}

func normalizeEnrollmentDeps(deps *EnrollmentDeps) {
	if deps.AttemptID == nil {
		deps.AttemptID = func() string { return "" }
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, map[string]string) {}
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
}
