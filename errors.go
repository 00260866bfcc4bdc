package enroll

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/novextrustpay/enroll/forms"
)

var (
	// ErrEngineNotReady is returned when an Engine method is called before
	// Build wired its dependencies.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrGatewayUnconfigured is the blocking configuration error: the
	// external identity service is unreachable or was never attached.
	ErrGatewayUnconfigured = errors.New("identity gateway is not configured")
	// ErrValidationFailed marks local field-validation failures. Such
	// errors never reach the gateway; match with errors.Is and read the
	// per-field messages from *ValidationError.
	ErrValidationFailed = errors.New("validation failed")
	// ErrSubmissionInFlight rejects a re-submission while the same action
	// is still outstanding.
	ErrSubmissionInFlight = errors.New("submission already in flight")
	// ErrAlreadySubmitted rejects submission of a wizard that has already
	// completed its hand-off.
	ErrAlreadySubmitted = errors.New("enrollment already submitted")
	// ErrNotOnFinalStep rejects submission from any step but the last.
	ErrNotOnFinalStep = errors.New("submission is only allowed from the final step")
	// ErrOTPSendRateLimited is returned when OTP issuance for an address is
	// throttled.
	ErrOTPSendRateLimited = errors.New("verification code requests rate limited")
	// ErrNoSession is returned by the session gate when no session is
	// present; the guarded view must redirect to login.
	ErrNoSession = errors.New("no active session")
	// ErrHandoffInvalid is returned for a hand-off token that is expired,
	// tampered with, or signed with an unknown key.
	ErrHandoffInvalid = errors.New("invalid handoff token")
	// ErrPINNotApplied is returned, only when the blocking policy is
	// enabled, when the deferred transaction PIN could not be applied after
	// signup verification.
	ErrPINNotApplied = errors.New("transaction pin could not be applied")
	// ErrPasswordMismatch is returned when a password and its confirmation
	// differ.
	ErrPasswordMismatch = errors.New("password values do not match")
)

// ValidationError carries the per-field violation messages of a failed
// local validation. It matches ErrValidationFailed under errors.Is.
type ValidationError struct {
	Violations forms.Violations
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return ErrValidationFailed.Error()
	}

	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// Unwrap lets errors.Is(err, ErrValidationFailed) match.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

func newValidationError(v forms.Violations) error {
	return &ValidationError{Violations: v}
}

func fieldViolation(f forms.Field, msg string) error {
	return &ValidationError{Violations: forms.Violations{f: msg}}
}
