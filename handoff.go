package enroll

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// handoffManager mints and parses the signed navigation token that carries
// {email, purpose} across the redirect to the verification screen. HS256
// only; the key is shared between the pages of one deployment.
type handoffManager struct {
	key    []byte
	ttl    time.Duration
	issuer string
}

type handoffClaims struct {
	Email   string `json:"eml"`
	Purpose string `json:"pur"`
	jwt.RegisteredClaims
}

func newHandoffManager(cfg HandoffConfig) *handoffManager {
	return &handoffManager{
		key:    cfg.SigningKey,
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
	}
}

func (m *handoffManager) mint(email string, purpose Purpose) (string, error) {
	now := time.Now()
	claims := handoffClaims{
		Email:   email,
		Purpose: purpose.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHandoffInvalid, err)
	}
	return signed, nil
}

func (m *handoffManager) parse(tokenString string) (VerificationContext, error) {
	var claims handoffClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		// Pin the method: an attacker must not downgrade to "none" or
		// swap algorithms.
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.key, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30*time.Second),
	)
	if err != nil {
		return VerificationContext{}, fmt.Errorf("%w: %v", ErrHandoffInvalid, err)
	}
	if !token.Valid {
		return VerificationContext{}, ErrHandoffInvalid
	}

	return VerificationContext{
		Email:   claims.Email,
		Purpose: ParsePurpose(claims.Purpose),
	}, nil
}

func (e *Engine) mintHandoff(email string, purpose Purpose) string {
	if e == nil || e.handoff == nil {
		return ""
	}
	token, err := e.handoff.mint(email, purpose)
	if err != nil {
		// Signing failure degrades to plain query parameters.
		return ""
	}
	return token
}

// ParseHandoffToken recovers the verification context from a signed
// hand-off token. It fails with [ErrHandoffInvalid] when signing is not
// configured or the token does not verify.
func (e *Engine) ParseHandoffToken(tokenString string) (VerificationContext, error) {
	if e == nil || e.handoff == nil {
		return VerificationContext{}, ErrHandoffInvalid
	}
	return e.handoff.parse(tokenString)
}
