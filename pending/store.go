package pending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "npr"

var (
	// ErrUnavailable wraps transport failures talking to the backing Redis.
	ErrUnavailable = errors.New("pending store unavailable")
	// ErrCorruptRecord is returned when a slot holds data that does not
	// decode. The slot is already cleared by the time this is returned.
	ErrCorruptRecord = errors.New("pending record corrupt")
)

// Record is the durable-across-navigation registration remainder. The JSON
// field names are the wire format shared with hosting front ends.
type Record struct {
	Email string `json:"email"`
	PIN   string `json:"pin"`
}

// Store keeps one pending-registration slot per client scope in Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore returns a Redis-backed store. prefix defaults when empty. A ttl
// of zero keeps records until consumed or overwritten.
func NewStore(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Store{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func normalizeScope(scope string) string {
	if scope == "" {
		return "0"
	}
	return scope
}

func (s *Store) key(scope string) string {
	return s.prefix + ":" + normalizeScope(scope) + ":slot"
}

// Put overwrites the scope's slot with rec. At most one outstanding
// registration per scope is supported.
func (s *Store) Put(ctx context.Context, scope string, rec Record) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(scope), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// TakeIfPresent atomically reads and deletes the scope's slot. It returns
// (nil, nil) when no record is outstanding. The delete happens regardless
// of whether the caller's subsequent processing succeeds.
func (s *Store) TakeIfPresent(ctx context.Context, scope string) (*Record, error) {
	data, err := s.redis.GetDel(ctx, s.key(scope)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return &rec, nil
}
