package limiters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrOTPSendRateLimited        = errors.New("otp send rate limited")
	ErrOTPSendLimiterUnavailable = errors.New("otp send limiter unavailable")
)

// OTPSendConfig bounds OTP issuance per key over a fixed window.
type OTPSendConfig struct {
	Window   time.Duration
	MaxSends int
}

// OTPSendLimiter counts OTP sends per email address (and per client IP
// when one is known) in Redis.
type OTPSendLimiter struct {
	redis  redis.UniversalClient
	prefix string
	config OTPSendConfig
}

func NewOTPSendLimiter(redisClient redis.UniversalClient, prefix string, cfg OTPSendConfig) *OTPSendLimiter {
	if prefix == "" {
		prefix = "not"
	}
	return &OTPSendLimiter{
		redis:  redisClient,
		prefix: prefix,
		config: cfg,
	}
}

// Check enforces the window for email and, when non-empty, ip. The first
// exceeded window wins.
func (l *OTPSendLimiter) Check(ctx context.Context, email, ip string) error {
	if err := l.enforceFixedWindow(ctx, l.prefix+":email:"+email); err != nil {
		return err
	}
	if ip != "" {
		if err := l.enforceFixedWindow(ctx, l.prefix+":ip:"+ip); err != nil {
			return err
		}
	}
	return nil
}

func (l *OTPSendLimiter) enforceFixedWindow(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOTPSendLimiterUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrOTPSendLimiterUnavailable, err)
		}
	}

	if count > int64(l.config.MaxSends) {
		return ErrOTPSendRateLimited
	}

	return nil
}
