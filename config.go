package enroll

import (
	"errors"
	"time"
)

// Config defines the engine's tunable behavior. Configure once before
// [Builder.Build]; treat as immutable afterwards.
type Config struct {
	Pending      PendingConfig
	Handoff      HandoffConfig
	OTPThrottle  OTPThrottleConfig
	Verification VerificationConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
PENDING REGISTRATION CONFIG
====================================
*/

// PendingConfig controls the pending-registration slot store.
type PendingConfig struct {
	// RedisPrefix namespaces slot keys. Defaults to "npr".
	RedisPrefix string
	// TTL expires unconsumed slots. Zero keeps the observed behavior of no
	// expiry: an abandoned sign-up leaks its slot until the next overwrite.
	TTL time.Duration
}

/*
====================================
HANDOFF TOKEN CONFIG
====================================
*/

// HandoffConfig controls the signed navigation token minted when a flow
// hands off to the verification screen. With an empty SigningKey no tokens
// are minted and only plain query parameters are honored.
type HandoffConfig struct {
	SigningKey []byte
	TTL        time.Duration
	Issuer     string
}

/*
====================================
OTP THROTTLE CONFIG
====================================
*/

// OTPThrottleConfig bounds OTP issuance per email address over a fixed
// window. Requires a Redis client on the builder when enabled.
type OTPThrottleConfig struct {
	Enabled  bool
	Window   time.Duration
	MaxSends int
	// RedisPrefix namespaces throttle counters. Defaults to "not".
	RedisPrefix string
}

/*
====================================
VERIFICATION CONFIG
====================================
*/

// VerificationConfig controls the post-verification signup branch.
type VerificationConfig struct {
	// BlockOnPINFailure surfaces a failed deferred PIN application as an
	// error instead of proceeding silently to the account-holder area.
	// Off by default: the pending record is consumed either way.
	BlockOnPINFailure bool
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull sheds events instead of blocking flows when the buffer is
	// full. Dropped counts are observable via Engine.AuditDropped.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls in-process counter metrics.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: no pending expiry,
// handoff signing off, OTP throttling off, the observed non-blocking PIN
// policy, audit and metrics on.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Pending: PendingConfig{
			RedisPrefix: "npr",
		},
		Handoff: HandoffConfig{
			TTL:    15 * time.Minute,
			Issuer: "enroll",
		},
		OTPThrottle: OTPThrottleConfig{
			Window:      15 * time.Minute,
			MaxSends:    5,
			RedisPrefix: "not",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if len(cfg.Handoff.SigningKey) > 0 {
		if len(cfg.Handoff.SigningKey) < 32 {
			return errors.New("handoff signing key must be at least 32 bytes")
		}
		if cfg.Handoff.TTL <= 0 {
			return errors.New("handoff TTL must be positive when signing is enabled")
		}
	}
	if cfg.OTPThrottle.Enabled {
		if cfg.OTPThrottle.Window <= 0 {
			return errors.New("otp throttle window must be positive")
		}
		if cfg.OTPThrottle.MaxSends <= 0 {
			return errors.New("otp throttle max sends must be positive")
		}
	}
	if cfg.Pending.TTL < 0 {
		return errors.New("pending TTL must not be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Handoff.SigningKey != nil {
		out.Handoff.SigningKey = append([]byte(nil), cfg.Handoff.SigningKey...)
	}
	return out
}
