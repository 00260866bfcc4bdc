package enroll

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/novextrustpay/enroll/forms"
	"github.com/redis/go-redis/v9"
)

func TestWizardStepInvariants(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGateway{})
	w := e.NewWizard()

	if w.Step() != 0 {
		t.Fatalf("new wizard at step %d, want 0", w.Step())
	}

	// Retreat at step 0 is a no-op, repeatedly.
	for i := 0; i < 5; i++ {
		w.Retreat()
		if w.Step() != 0 {
			t.Fatalf("retreat at step 0 moved to %d", w.Step())
		}
	}

	// Advance on an empty draft never moves past the failing step.
	for i := 0; i < 5; i++ {
		if v := w.Advance(); v == nil {
			t.Fatal("advance on empty draft should fail validation")
		}
		if w.Step() != 0 {
			t.Fatalf("failed advance moved to step %d", w.Step())
		}
	}

	fillValidDraft(w.Draft())
	for i := 0; i < 10; i++ {
		if v := w.Advance(); v != nil {
			t.Fatalf("advance failed on valid draft: %v", v)
		}
		if w.Step() < 0 || w.Step() > w.StepCount()-1 {
			t.Fatalf("step index %d left [0, %d]", w.Step(), w.StepCount()-1)
		}
	}
	if w.Step() != w.StepCount()-1 {
		t.Fatalf("advance did not clamp at last step, got %d", w.Step())
	}

	// Retreat never changes data.
	w.Retreat()
	if w.Draft().Email != "a@b.com" {
		t.Fatal("retreat mutated the draft")
	}
	if w.Step() != w.StepCount()-2 {
		t.Fatalf("retreat moved to %d", w.Step())
	}
}

func TestWizardAdvanceOnlyChecksOwnStep(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGateway{})
	w := e.NewWizard()

	// Only step-0 fields are filled; later steps are empty and invalid,
	// yet step 0 must approve.
	w.Draft().FirstName = "Ada"
	w.Draft().LastName = "Okafor"
	w.Draft().DateOfBirth = "1990-04-12"
	w.Draft().Username = "ada.okafor"

	if v := w.Advance(); v != nil {
		t.Fatalf("step 0 blocked by later steps: %v", v)
	}
	if w.Step() != 1 {
		t.Fatalf("step = %d, want 1", w.Step())
	}
}

func TestWizardProgress(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGateway{})
	w := e.NewWizard()
	fillValidDraft(w.Draft())

	want := []float64{0.25, 0.5, 0.75, 1.0}
	for i, expected := range want {
		if got := w.Progress(); got != expected {
			t.Fatalf("progress at step %d = %v, want %v", i, got, expected)
		}
		w.Advance()
	}
}

func TestSubmitOnlyFromFinalStep(t *testing.T) {
	e, _ := newTestEngine(t, &fakeGateway{})
	w := e.NewWizard()
	fillValidDraft(w.Draft())

	if _, err := w.Submit(context.Background()); !errors.Is(err, ErrNotOnFinalStep) {
		t.Fatalf("submit from step 0 = %v, want ErrNotOnFinalStep", err)
	}
}

func TestSubmitValidationFailureMakesNoGatewayCalls(t *testing.T) {
	gw := &fakeGateway{}
	e, store := newTestEngine(t, gw)

	w := wizardAtFinalStep(t, e)
	w.Draft().TermsAccepted = false

	_, err := w.Submit(context.Background())
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("submit = %v, want validation failure", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.Violations.Has(forms.FieldTermsAccepted) {
		t.Fatalf("expected terms violation, got %v", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("validation failure reached the gateway: %v", gw.calls)
	}
	if rec, _ := store.TakeIfPresent(context.Background(), "0"); rec != nil {
		t.Fatal("validation failure wrote a pending record")
	}
	if w.Submitted() {
		t.Fatal("wizard marked submitted after validation failure")
	}
}

func TestSubmitSignUpFailureStopsSequence(t *testing.T) {
	gw := &fakeGateway{signUpErr: errors.New("email already registered")}
	e, store := newTestEngine(t, gw)

	w := wizardAtFinalStep(t, e)
	_, err := w.Submit(context.Background())
	if err == nil || err.Error() != "email already registered" {
		t.Fatalf("submit error = %v, want gateway message verbatim", err)
	}

	if len(gw.calls) != 1 || gw.calls[0] != "signUp:a@b.com" {
		t.Fatalf("calls = %v, want signUp only", gw.calls)
	}
	if rec, _ := store.TakeIfPresent(context.Background(), "0"); rec != nil {
		t.Fatal("pending record written despite sign-up failure")
	}
	if w.LastError() != "email already registered" {
		t.Fatalf("LastError = %q", w.LastError())
	}

	// The draft is preserved for retry.
	if w.Draft().Email != "a@b.com" {
		t.Fatal("draft discarded after failed submission")
	}
	if w.Submitted() {
		t.Fatal("wizard marked submitted after failure")
	}
}

func TestSubmitSendOTPFailureLeavesPendingEmpty(t *testing.T) {
	gw := &fakeGateway{sendOTPErr: errors.New("mail backend down")}
	e, store := newTestEngine(t, gw)

	w := wizardAtFinalStep(t, e)
	_, err := w.Submit(context.Background())
	if err == nil || err.Error() != "mail backend down" {
		t.Fatalf("submit error = %v, want sendOtp message verbatim", err)
	}

	// signUp succeeded first: the account exists unverified, not rolled
	// back. Nothing was written after the failing call.
	want := []string{"signUp:a@b.com", "sendOtp:a@b.com"}
	if len(gw.calls) != 2 || gw.calls[0] != want[0] || gw.calls[1] != want[1] {
		t.Fatalf("calls = %v, want %v", gw.calls, want)
	}
	if rec, _ := store.TakeIfPresent(context.Background(), "0"); rec != nil {
		t.Fatal("pending record written despite otp failure")
	}
}

func TestSubmitSuccessSequenceAndHandoff(t *testing.T) {
	gw := &fakeGateway{}
	e, store := newTestEngine(t, gw)

	w := wizardAtFinalStep(t, e)
	handoff, err := w.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	want := []string{"signUp:a@b.com", "sendOtp:a@b.com"}
	if len(gw.calls) != 2 || gw.calls[0] != want[0] || gw.calls[1] != want[1] {
		t.Fatalf("calls = %v, want %v", gw.calls, want)
	}
	if gw.lastAllowNew {
		t.Fatal("sendOtp must not allow silent account creation")
	}
	if gw.lastMetadata["username"] != "ada.okafor" || gw.lastMetadata["account_type"] != "Personal" {
		t.Fatalf("profile metadata incomplete: %v", gw.lastMetadata)
	}
	if _, ok := gw.lastMetadata["pin"]; ok {
		t.Fatal("pin leaked into sign-up metadata")
	}

	if handoff.Email != "a@b.com" || handoff.Purpose != PurposeSignup {
		t.Fatalf("handoff = %+v", handoff)
	}
	if got := handoff.Query().Get("purpose"); got != "signup" {
		t.Fatalf("handoff query purpose = %q", got)
	}

	rec, err := store.TakeIfPresent(context.Background(), "0")
	if err != nil || rec == nil {
		t.Fatalf("pending record missing: %v", err)
	}
	if rec.Email != "a@b.com" || rec.PIN != "4821" {
		t.Fatalf("pending record = %+v", rec)
	}
	// Exactly once.
	if rec, _ := store.TakeIfPresent(context.Background(), "0"); rec != nil {
		t.Fatal("pending record observable twice")
	}

	if !w.Submitted() {
		t.Fatal("wizard not in terminal state")
	}
	if w.Draft().Email != "" {
		t.Fatal("draft not discarded after success")
	}

	if _, err := w.Submit(context.Background()); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("resubmission = %v, want ErrAlreadySubmitted", err)
	}
}

func TestSubmitScopedPendingSlot(t *testing.T) {
	gw := &fakeGateway{}
	e, store := newTestEngine(t, gw)

	w := wizardAtFinalStep(t, e)
	ctx := WithClientScope(context.Background(), "browser-7")
	if _, err := w.Submit(ctx); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if rec, _ := store.TakeIfPresent(context.Background(), "0"); rec != nil {
		t.Fatal("record landed in the default slot")
	}
	rec, _ := store.TakeIfPresent(context.Background(), "browser-7")
	if rec == nil || rec.PIN != "4821" {
		t.Fatalf("scoped record = %+v", rec)
	}
}

func TestSubmitOTPThrottle(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := DefaultConfig()
	cfg.Audit.Enabled = false
	cfg.OTPThrottle.Enabled = true
	cfg.OTPThrottle.MaxSends = 1

	gw := &fakeGateway{}
	e, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithGateway(gw).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(e.Close)

	w := wizardAtFinalStep(t, e)
	if _, err := w.Submit(context.Background()); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	w2 := wizardAtFinalStep(t, e)
	_, err = w2.Submit(context.Background())
	if !errors.Is(err, ErrOTPSendRateLimited) {
		t.Fatalf("second submit = %v, want ErrOTPSendRateLimited", err)
	}
	// The throttle fires before any gateway side effect: no second signUp.
	count := 0
	for _, c := range gw.calls {
		if c == "signUp:a@b.com" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("signUp called %d times, want 1", count)
	}
}
