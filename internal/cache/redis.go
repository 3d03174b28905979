package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

func NewRedisCache(client *redis.Client, baseTTL time.Duration) *RedisCache {
	if baseTTL <= 0 {
		baseTTL = 5 * time.Minute
	}
	return &RedisCache{
		client:  client,
		baseTTL: baseTTL,
		now:     time.Now,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
	now     func() time.Time
}

func (r *RedisCache) Get(ctx context.Context, token string) (*domain.Identity, error) {
	data, err := r.client.Get(ctx, cacheKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var id domain.Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("unmarshal identity failed: %w", err)
	}
	if id.Expired(r.now()) {
		return nil, ErrCacheMiss
	}
	return &id, nil
}

func (r *RedisCache) Set(ctx context.Context, token string, id *domain.Identity) error {
	// jitter spreads expiry of identities cached in the same burst
	jitter := time.Duration(rand.Int63n(int64(r.baseTTL/5) + 1))
	ttl := ttlFor(r.baseTTL+jitter, id, r.now())
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity failed: %w", err)
	}
	if err := r.client.Set(ctx, cacheKey(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, cacheKey(token)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// cacheKey never stores the raw token.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "identity:" + hex.EncodeToString(sum[:])
}
