package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/fjod/go_cart/shop-admin/internal/auth"
	"github.com/fjod/go_cart/shop-admin/internal/backend"
	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	tokenKey
)

// IdentityResolver turns a bearer token into the caller's identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Identity, error)
}

// RequestIDMiddleware echoes the chi request id back to the caller. The
// backend client forwards it on every outgoing call.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			w.Header().Set(middleware.RequestIDHeader, requestID)
		}
		next.ServeHTTP(w, r)
	})
}

// Authenticate requires a valid bearer token. The resolved identity and the
// raw token are stored in the request context.
func Authenticate(resolver IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				respondRedirect(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token", domain.LoginPath)
				return
			}

			id, err := resolver.Resolve(r.Context(), token)
			switch {
			case err == nil:
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired):
				respondRedirect(w, http.StatusUnauthorized, "unauthenticated", err.Error(), domain.LoginPath)
				return
			default:
				logger.WarnContext(r.Context(), "identity lookup failed", "error", err)
				handleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id, token)))
		})
	}
}

// RequireRoles admits callers holding at least one of the roles.
func RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := domain.Authorize(identityFromContext(r.Context()), roles)
			switch decision {
			case domain.DecisionAllow:
				next.ServeHTTP(w, r)
			case domain.DecisionLogin:
				respondRedirect(w, http.StatusUnauthorized, "unauthenticated", "login required", decision.RedirectPath())
			default:
				respondRedirect(w, http.StatusForbidden, "permission_denied", "insufficient role", decision.RedirectPath())
			}
		})
	}
}

// MaxBody caps request bodies at n bytes.
func MaxBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && n > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identityFromContext(ctx context.Context) *domain.Identity {
	if id, ok := ctx.Value(identityKey).(*domain.Identity); ok {
		return id
	}
	return nil
}

func tokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey).(string); ok {
		return token
	}
	return ""
}

// WithIdentity stores an identity in ctx the way Authenticate does.
func WithIdentity(ctx context.Context, id *domain.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, identityKey, id)
	ctx = context.WithValue(ctx, tokenKey, token)
	return backend.WithToken(ctx, token)
}
