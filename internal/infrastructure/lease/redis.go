// Package lease provides the per-(shop, entity type) run leases.
package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

var extendScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// RedisManager grants leases with SET NX. Each lease carries a random owner
// token so only its holder can extend or release it.
type RedisManager struct {
	rdb       redis.UniversalClient
	keyPrefix string
	logger    zerolog.Logger
}

var _ ports.LeaseManager = (*RedisManager)(nil)

// NewRedisManager creates a manager; keyPrefix defaults to "lease:"
func NewRedisManager(rdb redis.UniversalClient, keyPrefix string, logger zerolog.Logger) *RedisManager {
	if keyPrefix == "" {
		keyPrefix = "lease:"
	}
	return &RedisManager{rdb: rdb, keyPrefix: keyPrefix, logger: logger}
}

// Acquire returns domain.ErrLeaseHeld when the key is already claimed
func (m *RedisManager) Acquire(ctx context.Context, key string, ttl time.Duration) (ports.Lease, error) {
	redisKey := m.keyPrefix + key
	owner := uuid.New().String()

	ok, err := m.rdb.SetNX(ctx, redisKey, owner, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lease %s: %w", key, err)
	}
	if !ok {
		return nil, domain.ErrLeaseHeld
	}

	m.logger.Debug().Str("lease", key).Msg("Acquired lease")
	return &redisLease{manager: m, key: key, redisKey: redisKey, owner: owner}, nil
}

type redisLease struct {
	manager  *RedisManager
	key      string
	redisKey string
	owner    string
}

func (l *redisLease) Key() string {
	return l.key
}

func (l *redisLease) Extend(ctx context.Context, ttl time.Duration) error {
	result, err := extendScript.Run(ctx, l.manager.rdb, []string{l.redisKey}, l.owner, ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("failed to extend lease %s: %w", l.key, err)
	}
	if result == 0 {
		return domain.ErrLeaseLost
	}
	return nil
}

func (l *redisLease) Release(ctx context.Context) error {
	result, err := releaseScript.Run(ctx, l.manager.rdb, []string{l.redisKey}, l.owner).Int64()
	if err != nil {
		return fmt.Errorf("failed to release lease %s: %w", l.key, err)
	}
	if result == 0 {
		return domain.ErrLeaseLost
	}

	l.manager.logger.Debug().Str("lease", l.key).Msg("Released lease")
	return nil
}
