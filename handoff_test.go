package enroll

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func newSignedTestEngine(t *testing.T) *Engine {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Audit.Enabled = false
	cfg.Handoff.SigningKey = testSigningKey

	engine, err := New().
		WithConfig(cfg).
		WithGateway(&fakeGateway{}).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestHandoffRoundTrip(t *testing.T) {
	e := newSignedTestEngine(t)

	token := e.mintHandoff("a@b.com", PurposeRecovery)
	if token == "" {
		t.Fatal("no token minted with signing configured")
	}

	vctx, err := e.ParseHandoffToken(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if vctx.Email != "a@b.com" || vctx.Purpose != PurposeRecovery {
		t.Fatalf("context = %+v", vctx)
	}
}

func TestHandoffUnconfigured(t *testing.T) {
	gw := &fakeGateway{}
	e, _ := newTestEngine(t, gw)

	if token := e.mintHandoff("a@b.com", PurposeSignup); token != "" {
		t.Fatalf("token minted without signing key: %q", token)
	}
	if _, err := e.ParseHandoffToken("anything"); !errors.Is(err, ErrHandoffInvalid) {
		t.Fatalf("err = %v, want ErrHandoffInvalid", err)
	}
}

func TestHandoffRejectsWrongKey(t *testing.T) {
	e := newSignedTestEngine(t)

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, handoffClaims{
		Email:   "a@b.com",
		Purpose: "signup",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "enroll",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := other.SignedString([]byte("another-key-another-key-another!"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := e.ParseHandoffToken(signed); !errors.Is(err, ErrHandoffInvalid) {
		t.Fatalf("err = %v, want ErrHandoffInvalid", err)
	}
}

func TestHandoffRejectsExpired(t *testing.T) {
	e := newSignedTestEngine(t)

	stale := jwt.NewWithClaims(jwt.SigningMethodHS256, handoffClaims{
		Email:   "a@b.com",
		Purpose: "signup",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "enroll",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	signed, err := stale.SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := e.ParseHandoffToken(signed); !errors.Is(err, ErrHandoffInvalid) {
		t.Fatalf("err = %v, want ErrHandoffInvalid", err)
	}
}

func TestHandoffRejectsWrongIssuer(t *testing.T) {
	e := newSignedTestEngine(t)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, handoffClaims{
		Email:   "a@b.com",
		Purpose: "signup",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString(testSigningKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := e.ParseHandoffToken(signed); !errors.Is(err, ErrHandoffInvalid) {
		t.Fatalf("err = %v, want ErrHandoffInvalid", err)
	}
}

func TestHandoffRejectsUnsigned(t *testing.T) {
	e := newSignedTestEngine(t)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, handoffClaims{
		Email:   "a@b.com",
		Purpose: "signup",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "enroll",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := e.ParseHandoffToken(signed); !errors.Is(err, ErrHandoffInvalid) {
		t.Fatalf("err = %v, want ErrHandoffInvalid", err)
	}
}

func TestHandoffQueryCarriesToken(t *testing.T) {
	e := newSignedTestEngine(t)

	h := Handoff{
		Email:   "a@b.com",
		Purpose: PurposeSignup,
		Token:   e.mintHandoff("a@b.com", PurposeSignup),
	}

	q := h.Query()
	if q.Get("email") != "a@b.com" || q.Get("purpose") != "signup" {
		t.Fatalf("query = %v", q)
	}
	if q.Get("token") == "" {
		t.Fatal("query missing token")
	}
}
