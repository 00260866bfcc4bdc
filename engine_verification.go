package enroll

import (
	"context"
	"net/url"

	"github.com/novextrustpay/enroll/internal/flows"
)

// Verification is the single-purpose state machine of the OTP screen. It
// is entered with a context derived from navigation parameters and stays
// in place across failed attempts: the visitor corrects the code and
// calls Verify again against the same {email, purpose}.
type Verification struct {
	engine   *Engine
	vctx     VerificationContext
	inflight bool
}

// VerifyResult is the successful outcome of a Verify call. Destination is
// where control passes next; Session is the gateway session established by
// the verification. PINApplied reports whether a deferred transaction PIN
// was accepted during signup completion; when false after a signup
// verification that attempted one, the visitor is verified but PIN-less.
type VerifyResult struct {
	Destination Destination
	Session     *SessionInfo
	PINApplied  bool
}

// NewVerification enters the verification screen with an explicit context.
func (e *Engine) NewVerification(vctx VerificationContext) *Verification {
	return &Verification{engine: e, vctx: vctx}
}

// VerificationFromParams enters the verification screen from query
// parameters. A signed "token" parameter, when present and valid, takes
// precedence over the plain "email"/"purpose" pair; otherwise the plain
// parameters apply with the default-login rule.
func (e *Engine) VerificationFromParams(params url.Values) *Verification {
	if token := params.Get("token"); token != "" {
		if vctx, err := e.ParseHandoffToken(token); err == nil {
			return e.NewVerification(vctx)
		}
	}
	return e.NewVerification(ParseVerificationParams(params))
}

// Context returns the {email, purpose} the screen was entered with.
func (v *Verification) Context() VerificationContext {
	return v.vctx
}

// Verify checks the code with the gateway and branches on success:
//
//   - recovery → DestinationResetPassword
//   - signup   → pending record consumed (removed regardless of what
//     follows), deferred PIN applied best-effort, DestinationDashboard
//   - login or anything else → DestinationDashboard
//
// On failure the error message is surfaced verbatim and the screen state
// is unchanged; the visitor may resubmit a fresh code. A Verify while one
// is outstanding fails with ErrSubmissionInFlight.
func (v *Verification) Verify(ctx context.Context, code string) (*VerifyResult, error) {
	if v.engine == nil || v.engine.gateway == nil {
		return nil, ErrGatewayUnconfigured
	}
	if v.inflight {
		return nil, ErrSubmissionInFlight
	}
	v.inflight = true
	defer func() { v.inflight = false }()

	e := v.engine
	scope := clientScopeFromContext(ctx)

	var session *SessionInfo
	result, err := flows.RunVerifyOTP(ctx, flows.VerifyInput{
		Email:   v.vctx.Email,
		Code:    code,
		Purpose: v.vctx.Purpose.String(),
	}, flows.VerifyDeps{
		BlockOnPINFailure: e.config.Verification.BlockOnPINFailure,
		VerifyOTP: func(ctx context.Context, email, code string) error {
			s, err := e.gateway.VerifyOTP(ctx, email, code)
			if err != nil {
				return err
			}
			session = s
			return nil
		},
		TakePending: func(ctx context.Context) (string, string, bool, error) {
			rec, err := e.pending.TakeIfPresent(ctx, scope)
			if err != nil {
				return "", "", false, err
			}
			if rec == nil {
				return "", "", false, nil
			}
			return rec.Email, rec.PIN, true, nil
		},
		SetPIN: e.gateway.SetTransactionPIN,
		EmitAudit: func(ctx context.Context, event string, success bool, email string, err error, metadata map[string]string) {
			e.emitAudit(ctx, event, success, email, "", err, metadata)
		},
		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		Metrics: flows.VerifyMetrics{
			VerifySuccess: int(MetricOTPVerifySuccess),
			VerifyFailure: int(MetricOTPVerifyFailure),
			PINApplied:    int(MetricPINApplied),
			PINFailed:     int(MetricPINFailed),
		},
		Events: flows.VerifyEvents{
			Verify:         EventOTPVerify,
			PendingConsume: EventPendingConsume,
			PINApply:       EventPINApply,
		},
		Errors: flows.VerifyErrors{
			EngineNotReady: ErrEngineNotReady,
			PINNotApplied:  ErrPINNotApplied,
		},
	})
	if err != nil {
		return nil, err
	}

	dest := DestinationDashboard
	if v.vctx.Purpose == PurposeRecovery {
		dest = DestinationResetPassword
	}

	return &VerifyResult{
		Destination: dest,
		Session:     session,
		PINApplied:  result.PINApplied,
	}, nil
}
