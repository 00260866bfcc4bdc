package enroll

import (
	"errors"

	"github.com/novextrustpay/enroll/internal/limiters"
	"github.com/novextrustpay/enroll/pending"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens until the first Engine call.
type Builder struct {
	config  Config
	redis   redis.UniversalClient
	gateway AuthGateway
	pending PendingStore

	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis attaches the Redis client backing the pending-registration
// store and the OTP send throttle.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithGateway attaches the external identity/account service. Required.
func (b *Builder) WithGateway(gw AuthGateway) *Builder {
	b.gateway = gw
	return b
}

// WithPendingStore overrides the default pending-registration store.
// Useful for in-memory hosts and tests; see [pending.MemoryStore].
func (b *Builder) WithPendingStore(store PendingStore) *Builder {
	b.pending = store
	return b
}

// WithAuditSink attaches the destination for audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration and wires the engine. A Builder builds
// at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.gateway == nil {
		return nil, ErrGatewayUnconfigured
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	store := b.pending
	if store == nil {
		if b.redis != nil {
			store = pending.NewStore(b.redis, b.config.Pending.RedisPrefix, b.config.Pending.TTL)
		} else {
			store = pending.NewMemoryStore()
		}
	}

	var limiter *limiters.OTPSendLimiter
	if b.config.OTPThrottle.Enabled {
		if b.redis == nil {
			return nil, errors.New("otp throttling requires a redis client")
		}
		limiter = limiters.NewOTPSendLimiter(b.redis, b.config.OTPThrottle.RedisPrefix, limiters.OTPSendConfig{
			Window:   b.config.OTPThrottle.Window,
			MaxSends: b.config.OTPThrottle.MaxSends,
		})
	}

	var handoff *handoffManager
	if len(b.config.Handoff.SigningKey) > 0 {
		handoff = newHandoffManager(b.config.Handoff)
	}

	b.built = true

	return &Engine{
		config:     b.config,
		gateway:    b.gateway,
		pending:    store,
		otpLimiter: limiter,
		handoff:    handoff,
		audit:      newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:    newMetrics(b.config.Metrics),
	}, nil
}
