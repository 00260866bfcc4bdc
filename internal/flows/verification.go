package flows

import "context"

// VerifyInput carries the navigation context and the code entered by the
// visitor. Purpose is the navigation-parameter string form.
type VerifyInput struct {
	Email   string
	Code    string
	Purpose string
}

// VerifyResult reports what the signup branch did with the deferred PIN.
// Both fields stay false outside the signup purpose.
type VerifyResult struct {
	// PINAttempted is true when a pending record with a non-empty PIN was
	// consumed.
	PINAttempted bool
	// PINApplied is true when the gateway accepted the PIN.
	PINApplied bool
}

type VerifyMetrics struct {
	VerifySuccess int
	VerifyFailure int
	PINApplied    int
	PINFailed     int
}

type VerifyEvents struct {
	Verify         string
	PendingConsume string
	PINApply       string
}

type VerifyErrors struct {
	EngineNotReady error
	PINNotApplied  error
}

type VerifyDeps struct {
	BlockOnPINFailure bool

	VerifyOTP   func(ctx context.Context, email, code string) error
	TakePending func(ctx context.Context) (email, pin string, present bool, err error)
	SetPIN      func(ctx context.Context, pin string) error

	EmitAudit func(ctx context.Context, event string, success bool, email string, err error, metadata map[string]string)
	MetricInc func(int)

	Metrics VerifyMetrics
	Events  VerifyEvents
	Errors  VerifyErrors
}

// RunVerifyOTP verifies the code and, for the signup purpose, consumes the
// pending registration and applies its PIN. The pending record is removed
// the moment it is read; a failed PIN application cannot resurrect it. By
// default that failure is recorded but not surfaced and the visitor
// proceeds verified and PIN-less; BlockOnPINFailure makes it surface.
func RunVerifyOTP(ctx context.Context, in VerifyInput, deps VerifyDeps) (VerifyResult, error) {
	normalizeVerifyDeps(&deps)

	if deps.VerifyOTP == nil {
		return VerifyResult{}, deps.Errors.EngineNotReady
	}

	if err := deps.VerifyOTP(ctx, in.Email, in.Code); err != nil {
		deps.MetricInc(deps.Metrics.VerifyFailure)
		deps.EmitAudit(ctx, deps.Events.Verify, false, in.Email, err, nil)
		return VerifyResult{}, err
	}
	deps.MetricInc(deps.Metrics.VerifySuccess)
	deps.EmitAudit(ctx, deps.Events.Verify, true, in.Email, nil, map[string]string{
		"purpose": in.Purpose,
	})

	if in.Purpose != "signup" {
		return VerifyResult{}, nil
	}
	if deps.TakePending == nil {
		return VerifyResult{}, deps.Errors.EngineNotReady
	}

	pendingEmail, pin, present, err := deps.TakePending(ctx)
	if err != nil {
		// The slot could not be read; treated like an absent record so the
		// visitor still reaches the account area.
		deps.EmitAudit(ctx, deps.Events.PendingConsume, false, in.Email, err, nil)
		return VerifyResult{}, nil
	}
	if !present {
		return VerifyResult{}, nil
	}
	deps.EmitAudit(ctx, deps.Events.PendingConsume, true, pendingEmail, nil, nil)

	if pin == "" || deps.SetPIN == nil {
		return VerifyResult{}, nil
	}

	if err := deps.SetPIN(ctx, pin); err != nil {
		deps.MetricInc(deps.Metrics.PINFailed)
		deps.EmitAudit(ctx, deps.Events.PINApply, false, pendingEmail, err, nil)
		if deps.BlockOnPINFailure {
			return VerifyResult{PINAttempted: true}, deps.Errors.PINNotApplied
		}
		return VerifyResult{PINAttempted: true}, nil
	}

	deps.MetricInc(deps.Metrics.PINApplied)
	deps.EmitAudit(ctx, deps.Events.PINApply, true, pendingEmail, nil, nil)
	return VerifyResult{PINAttempted: true, PINApplied: true}, nil
}

func normalizeVerifyDeps(deps *VerifyDeps) {
	if deps.EmitAudit == nil {
		deps.EmitAudit = func(context.Context, string, bool, string, error, map[string]string) {}
	}
	if deps.MetricInc == nil {
		deps.MetricInc = func(int) {}
	}
}
