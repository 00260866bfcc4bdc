package enroll

import (
	"context"

	"github.com/google/uuid"
	"github.com/novextrustpay/enroll/forms"
	"github.com/novextrustpay/enroll/internal/flows"
	"github.com/novextrustpay/enroll/pending"
)

// Wizard drives one visitor's four-step enrollment. Steps: Personal
// Information, Contact Information, Account Setup, Verification.
//
// The step index moves one step at a time: Advance is gated on the current
// step's validation and Retreat is unconditional, both clamped to
// [0, StepCount-1]. Submit is only legal from the final step. A Wizard is
// not safe for concurrent use; it belongs to a single UI flow.
type Wizard struct {
	engine *Engine

	draft forms.Draft
	step  int

	inflight  bool
	submitted bool
	lastError string
	fieldErrs forms.Violations
}

// NewWizard starts an enrollment with an empty draft at step 0.
func (e *Engine) NewWizard() *Wizard {
	return &Wizard{engine: e}
}

// Draft exposes the mutable registration draft for field-by-field edits.
func (w *Wizard) Draft() *forms.Draft {
	return &w.draft
}

// Step returns the current step index, 0-based.
func (w *Wizard) Step() int {
	return w.step
}

// StepCount returns the total number of steps.
func (w *Wizard) StepCount() int {
	return forms.StepCount()
}

// StepTitle returns the current step's display title.
func (w *Wizard) StepTitle() string {
	return forms.StepTitle(w.step)
}

// Progress returns the completion fraction (step+1)/StepCount. Purely
// derived; there is no separate progress state.
func (w *Wizard) Progress() float64 {
	return float64(w.step+1) / float64(forms.StepCount())
}

// Submitted reports whether the wizard reached its terminal state.
func (w *Wizard) Submitted() bool {
	return w.submitted
}

// LastError returns the message of the last failed submission, empty when
// none.
func (w *Wizard) LastError() string {
	return w.lastError
}

// FieldErrors returns the violations surfaced by the last Advance or
// Submit, nil when it passed.
func (w *Wizard) FieldErrors() forms.Violations {
	return w.fieldErrs
}

// Advance validates the current step's fields and, when they pass, moves
// one step forward (clamped at the last step). On failure the step does
// not change, no network call is made, and the violations are returned
// for inline display.
func (w *Wizard) Advance() forms.Violations {
	if v := forms.ValidateStep(&w.draft, w.step); v != nil {
		w.fieldErrs = v
		return v
	}
	w.fieldErrs = nil
	if w.step < forms.StepCount()-1 {
		w.step++
	}
	return nil
}

// Retreat moves one step back unconditionally, clamped at step 0. Data is
// never touched.
func (w *Wizard) Retreat() {
	if w.step > 0 {
		w.step--
	}
}

// Submit finalizes enrollment from the last step. It validates the full
// draft locally first (a draft that fails validation causes no gateway
// traffic), then runs the strict sequence: account creation, OTP issuance
// (never creating a second account), pending-PIN write, hand-off. The
// first failure aborts in place with its message preserved in LastError;
// earlier side effects are not rolled back.
//
// A Submit while another is outstanding fails with ErrSubmissionInFlight;
// a Submit after success fails with ErrAlreadySubmitted.
func (w *Wizard) Submit(ctx context.Context) (*Handoff, error) {
	if w.engine == nil || w.engine.gateway == nil {
		return nil, ErrGatewayUnconfigured
	}
	if w.submitted {
		return nil, ErrAlreadySubmitted
	}
	if w.inflight {
		return nil, ErrSubmissionInFlight
	}
	if w.step != forms.StepCount()-1 {
		return nil, ErrNotOnFinalStep
	}

	if v := forms.Validate(&w.draft); v != nil {
		w.fieldErrs = v
		return nil, newValidationError(v)
	}
	w.fieldErrs = nil

	w.inflight = true
	defer func() { w.inflight = false }()

	e := w.engine
	scope := clientScopeFromContext(ctx)
	in := flows.EnrollmentInput{
		Email:    w.draft.Email,
		Password: w.draft.Password,
		PIN:      w.draft.PIN,
		Metadata: enrollmentMetadata(&w.draft),
	}

	err := flows.RunSubmitEnrollment(ctx, in, flows.EnrollmentDeps{
		AttemptID:      uuid.NewString,
		CheckSendLimit: e.checkOTPSend,
		SignUp:         e.gateway.SignUp,
		SendOTP:        e.gateway.SendOTP,
		PutPending: func(ctx context.Context, email, pin string) error {
			return e.pending.Put(ctx, scope, pending.Record{Email: email, PIN: pin})
		},
		EmitAudit: func(ctx context.Context, event string, success bool, email string, err error, metadata map[string]string) {
			e.emitAudit(ctx, event, success, email, "", err, metadata)
		},
		MetricInc: func(id int) { e.metricInc(MetricID(id)) },
		Metrics: flows.EnrollmentMetrics{
			Submit:  int(MetricEnrollmentSubmit),
			Success: int(MetricEnrollmentSuccess),
			Failure: int(MetricEnrollmentFailure),
			OTPSend: int(MetricOTPSend),
		},
		Events: flows.EnrollmentEvents{
			Submit:       EventEnrollmentSubmit,
			OTPSend:      EventOTPSend,
			PendingWrite: EventPendingWrite,
		},
		Errors: flows.EnrollmentErrors{
			EngineNotReady: ErrEngineNotReady,
		},
	})
	if err != nil {
		w.lastError = err.Error()
		return nil, err
	}

	email := w.draft.Email
	w.submitted = true
	w.lastError = ""
	w.draft.Reset()

	return &Handoff{
		Email:   email,
		Purpose: PurposeSignup,
		Token:   e.mintHandoff(email, PurposeSignup),
	}, nil
}

// enrollmentMetadata flattens the draft's profile fields into the sign-up
// metadata map. Credentials and the PIN never travel here.
func enrollmentMetadata(d *forms.Draft) map[string]string {
	return map[string]string{
		"first_name":         d.FirstName,
		"middle_name":        d.MiddleName,
		"last_name":          d.LastName,
		"date_of_birth":      d.DateOfBirth,
		"username":           d.Username,
		"phone":              d.Phone,
		"country":            d.Country,
		"address":            d.Address,
		"city":               d.City,
		"state":              d.State,
		"postal_code":        d.PostalCode,
		"account_type":       string(d.AccountType),
		"security_question1": d.SecurityQuestion1,
		"security_question2": d.SecurityQuestion2,
		"email_code":         d.EmailCode,
		"phone_code":         d.PhoneCode,
		"id_reference":       d.IDReference,
	}
}
