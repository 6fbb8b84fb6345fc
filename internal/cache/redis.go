package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fjod/kirana_cart/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL    = 15 * time.Minute
	DefaultJitter = 5 * time.Minute
)

// setIfNotOlder stores the cart as a hash of version and data unless the
// cached copy already carries a higher version.
var setIfNotOlder = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'version')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'data', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

type RedisCache struct {
	client  redis.UniversalClient
	baseTTL time.Duration
	jitter  time.Duration
}

// NewRedisCache caches carts for ttl plus a random jitter in [0, jitter) so
// entries written together do not expire together.
func NewRedisCache(client redis.UniversalClient, ttl, jitter time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if jitter < 0 {
		jitter = 0
	}
	return &RedisCache{
		client:  client,
		baseTTL: ttl,
		jitter:  jitter,
	}
}

func (r *RedisCache) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := r.client.HGet(ctx, cacheKey(userID), "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	return &cart, nil
}

func (r *RedisCache) Set(ctx context.Context, userID string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	written, err := setIfNotOlder.Run(ctx, r.client, []string{cacheKey(userID)},
		cart.Version, data, r.ttl().Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	if written == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisCache) ttl() time.Duration {
	if r.jitter == 0 {
		return r.baseTTL
	}
	return r.baseTTL + rand.N(r.jitter)
}

func cacheKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}
