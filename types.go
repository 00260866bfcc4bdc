package enroll

import (
	"context"
	"net/url"

	"github.com/novextrustpay/enroll/forms"
	"github.com/novextrustpay/enroll/pending"
)

// AccountType re-exports the closed account-product enum owned by the
// forms package.
type AccountType = forms.AccountType

// RegistrationDraft is the mutable record collected by the wizard. See
// [forms.Draft] for field semantics and lifecycle.
type RegistrationDraft = forms.Draft

// PendingRegistration is the registration remainder written after a
// successful sign-up and consumed once during signup-purpose verification.
type PendingRegistration = pending.Record

// Purpose discriminates why a visitor is completing OTP verification. It
// determines the post-verification branch.
type Purpose uint8

const (
	// PurposeLogin is the default branch: verification grants account access.
	PurposeLogin Purpose = iota
	// PurposeSignup completes enrollment, applying the deferred PIN.
	PurposeSignup
	// PurposeRecovery leads to the password-reset screen.
	PurposeRecovery
)

// ParsePurpose maps a navigation parameter to the closed purpose set.
// Absent or unrecognized values default to [PurposeLogin].
func ParsePurpose(s string) Purpose {
	switch s {
	case "signup":
		return PurposeSignup
	case "recovery":
		return PurposeRecovery
	default:
		return PurposeLogin
	}
}

// String returns the navigation-parameter form of p.
func (p Purpose) String() string {
	switch p {
	case PurposeSignup:
		return "signup"
	case PurposeRecovery:
		return "recovery"
	default:
		return "login"
	}
}

// Destination names the screen a flow hands control to. The host maps
// destinations to its own routes.
type Destination uint8

const (
	// DestinationLogin is the sign-in screen.
	DestinationLogin Destination = iota
	// DestinationDashboard is the account-holder area.
	DestinationDashboard
	// DestinationResetPassword is the password-reset screen.
	DestinationResetPassword
	// DestinationVerifyOTP is the OTP verification screen.
	DestinationVerifyOTP
	// DestinationSetPIN is the standalone transaction-PIN screen.
	DestinationSetPIN
)

// SessionInfo is the engine's read-only view of a gateway session. The
// engine only observes presence and the profile fields the dashboard
// renders; session lifetime is owned entirely by the gateway.
type SessionInfo struct {
	UserID      string
	DisplayName string
	AccountType AccountType
}

// AuthGateway is the capability surface of the external identity/account
// service. Every call is a potentially slow network operation and honors
// ctx. Implementations return the service's message verbatim in the error;
// the engine surfaces it to the visitor without retrying.
type AuthGateway interface {
	// SignUp creates an unverified account with the given credentials and
	// profile metadata.
	SignUp(ctx context.Context, email, password string, metadata map[string]string) error
	// SendOTP dispatches a one-time code to email out-of-band. When
	// allowNewAccount is false the call must fail for unknown addresses
	// rather than silently creating one.
	SendOTP(ctx context.Context, email string, allowNewAccount bool) error
	// VerifyOTP checks the code and establishes a session on success.
	VerifyOTP(ctx context.Context, email, code string) (*SessionInfo, error)
	// SignInWithPassword establishes a session from credentials.
	SignInWithPassword(ctx context.Context, identifier, password string) (*SessionInfo, error)
	// UpdatePassword replaces the current session's password.
	UpdatePassword(ctx context.Context, newPassword string) error
	// SetTransactionPIN updates the current account's transaction PIN.
	SetTransactionPIN(ctx context.Context, pin string) error
	// SignOut clears the current session. Treated as best-effort.
	SignOut(ctx context.Context) error
	// CurrentSession returns the active session or (nil, nil) when absent.
	CurrentSession(ctx context.Context) (*SessionInfo, error)
}

// PendingStore is the injectable slot store for pending registrations.
// Put overwrites the scope's slot; TakeIfPresent atomically reads and
// deletes it, returning (nil, nil) when absent.
type PendingStore interface {
	Put(ctx context.Context, scope string, rec PendingRegistration) error
	TakeIfPresent(ctx context.Context, scope string) (*PendingRegistration, error)
}

// VerificationContext carries the navigation parameters the verification
// screen is entered with. It is re-derived on every load and never stored.
type VerificationContext struct {
	Email   string
	Purpose Purpose
}

// ParseVerificationParams derives a VerificationContext from query
// parameters. An absent email means "unknown"; an absent or unrecognized
// purpose defaults to login.
func ParseVerificationParams(params url.Values) VerificationContext {
	return VerificationContext{
		Email:   params.Get("email"),
		Purpose: ParsePurpose(params.Get("purpose")),
	}
}

// Handoff is the navigation hand-off produced when a flow transfers
// control to the verification screen. Token is a signed carrier of the
// same context and is empty when handoff signing is not configured.
type Handoff struct {
	Email   string
	Purpose Purpose
	Token   string
}

// Query returns the hand-off as verification-screen query parameters.
func (h Handoff) Query() url.Values {
	params := url.Values{}
	params.Set("email", h.Email)
	params.Set("purpose", h.Purpose.String())
	if h.Token != "" {
		params.Set("token", h.Token)
	}
	return params
}

// Context returns the VerificationContext the hand-off encodes.
func (h Handoff) Context() VerificationContext {
	return VerificationContext{Email: h.Email, Purpose: h.Purpose}
}
