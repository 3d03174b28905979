package cache

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

// IdentityCache remembers identities already confirmed by the backend, keyed by token.
type IdentityCache interface {
	Get(ctx context.Context, token string) (*domain.Identity, error)
	Set(ctx context.Context, token string, id *domain.Identity) error
	Delete(ctx context.Context, token string) error
}

var ErrCacheMiss = errors.New("cache miss")

// ttlFor caps ttl at the identity's remaining lifetime. Zero means do not store.
func ttlFor(ttl time.Duration, id *domain.Identity, now time.Time) time.Duration {
	if id.ExpiresAt.IsZero() {
		return ttl
	}
	remaining := id.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return min(ttl, remaining)
}
