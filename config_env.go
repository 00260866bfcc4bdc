package enroll

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ConfigFromEnv builds a Config from environment variables, loading a .env
// file first when one exists. Unset variables keep their defaults.
//
//	ENROLL_PENDING_PREFIX     pending slot key prefix
//	ENROLL_PENDING_TTL        pending slot expiry, Go duration ("0" = none)
//	ENROLL_HANDOFF_KEY        handoff signing key (>=32 bytes enables signing)
//	ENROLL_HANDOFF_TTL        handoff token lifetime, Go duration
//	ENROLL_HANDOFF_ISSUER     handoff token issuer
//	ENROLL_OTP_THROTTLE       "true" enables OTP send throttling
//	ENROLL_OTP_WINDOW         throttle window, Go duration
//	ENROLL_OTP_MAX_SENDS      sends allowed per window
//	ENROLL_PIN_BLOCKING       "true" surfaces deferred-PIN failures
//	ENROLL_AUDIT_BUFFER       audit dispatcher buffer size
func ConfigFromEnv() (Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if v := os.Getenv("ENROLL_PENDING_PREFIX"); v != "" {
		cfg.Pending.RedisPrefix = v
	}
	if err := envDuration("ENROLL_PENDING_TTL", &cfg.Pending.TTL); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("ENROLL_HANDOFF_KEY"); v != "" {
		cfg.Handoff.SigningKey = []byte(v)
	}
	if err := envDuration("ENROLL_HANDOFF_TTL", &cfg.Handoff.TTL); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("ENROLL_HANDOFF_ISSUER"); v != "" {
		cfg.Handoff.Issuer = v
	}
	if err := envBool("ENROLL_OTP_THROTTLE", &cfg.OTPThrottle.Enabled); err != nil {
		return Config{}, err
	}
	if err := envDuration("ENROLL_OTP_WINDOW", &cfg.OTPThrottle.Window); err != nil {
		return Config{}, err
	}
	if err := envInt("ENROLL_OTP_MAX_SENDS", &cfg.OTPThrottle.MaxSends); err != nil {
		return Config{}, err
	}
	if err := envBool("ENROLL_PIN_BLOCKING", &cfg.Verification.BlockOnPINFailure); err != nil {
		return Config{}, err
	}
	if err := envInt("ENROLL_AUDIT_BUFFER", &cfg.Audit.BufferSize); err != nil {
		return Config{}, err
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %v", key, err)
	}
	*dst = d
	return nil
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %v", key, err)
	}
	*dst = b
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %v", key, err)
	}
	*dst = n
	return nil
}
