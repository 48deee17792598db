package registry

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"callbridge/pkg/utils"
)

const activeCallKey = "callbridge:active_customer_call"

// RedisStore keeps the active customer call id in Redis so the slot
// survives process restarts and is shared by replicas fronting the same
// phone number.
type RedisStore struct {
	rdb *redis.Client

	// TTL guards against a stale id outliving a long-dead call. Zero
	// means no expiry.
	TTL time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if rdb == nil {
		return nil, errors.New("registry: redis client is nil")
	}
	return &RedisStore{rdb: rdb, TTL: ttl}, nil
}

func (s *RedisStore) SetActiveCustomerCall(ctx context.Context, id string) error {
	return s.rdb.Set(ctx, activeCallKey, id, s.TTL).Err()
}

func (s *RedisStore) ActiveCustomerCall(ctx context.Context) (string, error) {
	id, err := s.rdb.Get(ctx, activeCallKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) ClearActiveCustomerCall(ctx context.Context) error {
	return s.rdb.Del(ctx, activeCallKey).Err()
}

const transferSlotKey = "callbridge:transfer_slot"

// RedisSlotGuard enforces the one-bridge-at-a-time capacity limit with an
// atomic Redis counter. The TTL releases a slot leaked by a crashed
// process.
type RedisSlotGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSlotGuard(rdb *redis.Client, ttl time.Duration) (*RedisSlotGuard, error) {
	if rdb == nil {
		return nil, errors.New("registry: redis client is nil")
	}
	if ttl <= 0 {
		return nil, errors.New("registry: slot ttl must be > 0")
	}
	return &RedisSlotGuard{rdb: rdb, ttl: ttl}, nil
}

// Acquire claims the single transfer slot. Returns false when another
// transfer already holds it.
func (g *RedisSlotGuard) Acquire(ctx context.Context) (bool, error) {
	return utils.AcquireTransferSlot(ctx, g.rdb, transferSlotKey, g.ttl)
}

// Release frees the slot. Safe to call when the slot is not held.
func (g *RedisSlotGuard) Release(ctx context.Context) error {
	return utils.ReleaseTransferSlot(ctx, g.rdb, transferSlotKey)
}
