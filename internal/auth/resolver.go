package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_cart/shop-admin/internal/backend"
	"github.com/fjod/go_cart/shop-admin/internal/cache"
	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

const cacheWriteTimeout = 500 * time.Millisecond

type ProfileFetcher interface {
	Me(ctx context.Context) (*domain.User, error)
}

// Resolver turns a bearer token into an Identity. The backend confirms each
// new token once through the profile endpoint; confirmed identities are cached.
type Resolver struct {
	cache    cache.IdentityCache
	profiles ProfileFetcher
	logger   *slog.Logger
	sfg      singleflight.Group
	now      func() time.Time
}

func NewResolver(c cache.IdentityCache, profiles ProfileFetcher, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		cache:    c,
		profiles: profiles,
		logger:   logger.With("component", "auth"),
		now:      time.Now,
	}
}

func (r *Resolver) Resolve(ctx context.Context, token string) (*domain.Identity, error) {
	claims, err := ParseClaims(token, r.now())
	if err != nil {
		return nil, err
	}

	id, err := r.cache.Get(ctx, token)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.WarnContext(ctx, "identity cache get failed", "error", err) // continue without cache
	}

	v, err, _ := r.sfg.Do(token, func() (interface{}, error) {
		user, errMe := r.profiles.Me(backend.WithToken(ctx, token))
		if errMe != nil {
			if backend.IsUnauthorized(errMe) {
				return nil, fmt.Errorf("%w: rejected by backend", ErrInvalidToken)
			}
			return nil, fmt.Errorf("verify token: %w", errMe)
		}

		id := merge(claims.Identity(), user)

		// written before returning so a following Forget always sees it
		setCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheWriteTimeout)
		defer cancel()
		if errSet := r.cache.Set(setCtx, token, id); errSet != nil {
			r.logger.WarnContext(ctx, "identity cache set failed", "error", errSet)
		}

		return id, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Identity), nil
}

// Forget drops a cached identity, e.g. on logout.
func (r *Resolver) Forget(ctx context.Context, token string) error {
	return r.cache.Delete(ctx, token)
}

// merge fills identity gaps from the backend profile. Token roles win; profile
// roles are used only when the token carries none.
func merge(id *domain.Identity, user *domain.User) *domain.Identity {
	if user == nil {
		return id
	}
	if user.ID != "" {
		id.UserID = user.ID
	}
	if id.Email == "" {
		id.Email = user.Email
	}
	if id.FirstName == "" {
		id.FirstName = user.Firstname
	}
	if id.LastName == "" {
		id.LastName = user.Lastname
	}
	if len(id.Roles) == 0 {
		id.Roles = append([]domain.Role{}, user.Roles...)
	}
	return id
}
