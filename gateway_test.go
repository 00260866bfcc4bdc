package enroll

import (
	"context"
	"fmt"
	"testing"

	"github.com/novextrustpay/enroll/forms"
	"github.com/novextrustpay/enroll/pending"
)

// fakeGateway records every call in order and fails whichever operations
// the test arms. It stands in for the external identity service.
type fakeGateway struct {
	calls []string

	signUpErr     error
	sendOTPErr    error
	verifyErr     error
	signInErr     error
	updatePassErr error
	setPINErr     error
	signOutErr    error

	session       *SessionInfo
	verifySession *SessionInfo

	lastMetadata map[string]string
	lastAllowNew bool
	lastPIN      string
}

func (g *fakeGateway) record(format string, args ...any) {
	g.calls = append(g.calls, fmt.Sprintf(format, args...))
}

func (g *fakeGateway) SignUp(_ context.Context, email, password string, metadata map[string]string) error {
	g.record("signUp:%s", email)
	g.lastMetadata = metadata
	return g.signUpErr
}

func (g *fakeGateway) SendOTP(_ context.Context, email string, allowNewAccount bool) error {
	g.record("sendOtp:%s", email)
	g.lastAllowNew = allowNewAccount
	return g.sendOTPErr
}

func (g *fakeGateway) VerifyOTP(_ context.Context, email, code string) (*SessionInfo, error) {
	g.record("verifyOtp:%s:%s", email, code)
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if g.verifySession != nil {
		return g.verifySession, nil
	}
	return &SessionInfo{UserID: "user-1"}, nil
}

func (g *fakeGateway) SignInWithPassword(_ context.Context, identifier, password string) (*SessionInfo, error) {
	g.record("signIn:%s", identifier)
	if g.signInErr != nil {
		return nil, g.signInErr
	}
	return &SessionInfo{UserID: "user-1", DisplayName: "Ada Okafor"}, nil
}

func (g *fakeGateway) UpdatePassword(_ context.Context, newPassword string) error {
	g.record("updatePassword")
	return g.updatePassErr
}

func (g *fakeGateway) SetTransactionPIN(_ context.Context, pin string) error {
	g.record("setPin:%s", pin)
	g.lastPIN = pin
	return g.setPINErr
}

func (g *fakeGateway) SignOut(_ context.Context) error {
	g.record("signOut")
	return g.signOutErr
}

func (g *fakeGateway) CurrentSession(_ context.Context) (*SessionInfo, error) {
	g.record("currentSession")
	return g.session, nil
}

func newTestEngine(t *testing.T, gw AuthGateway) (*Engine, *pending.MemoryStore) {
	t.Helper()

	store := pending.NewMemoryStore()
	cfg := DefaultConfig()
	cfg.Audit.Enabled = false

	engine, err := New().
		WithConfig(cfg).
		WithGateway(gw).
		WithPendingStore(store).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, store
}

func fillValidDraft(d *forms.Draft) {
	*d = forms.Draft{
		FirstName:   "Ada",
		LastName:    "Okafor",
		DateOfBirth: "1990-04-12",
		Username:    "ada.okafor",

		Email:      "a@b.com",
		Phone:      "+15550001111",
		Country:    "US",
		Address:    "12 Harbor Lane",
		City:       "Boston",
		State:      "MA",
		PostalCode: "02110",

		AccountType:       forms.AccountPersonal,
		Password:          "correct-horse-1",
		SecurityQuestion1: "Lincoln Elementary",
		SecurityQuestion2: "Lisbon",
		PIN:               "4821",
		ConfirmPIN:        "4821",
		TermsAccepted:     true,

		EmailCode:   "118201",
		PhoneCode:   "902233",
		IDReference: "REF-7781",
	}
}

// wizardAtFinalStep returns a wizard advanced to the Verification step
// with a fully valid draft.
func wizardAtFinalStep(t *testing.T, e *Engine) *Wizard {
	t.Helper()

	w := e.NewWizard()
	fillValidDraft(w.Draft())
	for w.Step() < w.StepCount()-1 {
		if v := w.Advance(); v != nil {
			t.Fatalf("advance from step %d failed: %v", w.Step(), v)
		}
	}
	return w
}
