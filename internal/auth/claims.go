package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type roleClaim struct {
	Roles []any `json:"roles"`
}

// Claims are the identity-provider claims the gateway reads. Signatures are
// checked by the backend on every forwarded call, not here.
type Claims struct {
	jwt.RegisteredClaims
	PreferredUsername string               `json:"preferred_username"`
	Email             string               `json:"email"`
	GivenName         string               `json:"given_name"`
	FamilyName        string               `json:"family_name"`
	RealmAccess       roleClaim            `json:"realm_access"`
	ResourceAccess    map[string]roleClaim `json:"resource_access"`
	Roles             []any                `json:"roles"`
}

func ParseClaims(token string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

// RoleSet merges realm, client and plain role claims, keeping the first occurrence.
func (c *Claims) RoleSet() []domain.Role {
	raw := append([]any{}, c.RealmAccess.Roles...)

	clients := make([]string, 0, len(c.ResourceAccess))
	for client := range c.ResourceAccess {
		clients = append(clients, client)
	}
	sort.Strings(clients)
	for _, client := range clients {
		raw = append(raw, c.ResourceAccess[client].Roles...)
	}
	raw = append(raw, c.Roles...)

	seen := make(map[domain.Role]struct{})
	out := make([]domain.Role, 0, 3)
	for _, r := range domain.FilterValidRoles(raw) {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func (c *Claims) Identity() *domain.Identity {
	id := &domain.Identity{
		Subject:   c.Subject,
		UserID:    c.Subject,
		Username:  c.PreferredUsername,
		Email:     c.Email,
		FirstName: c.GivenName,
		LastName:  c.FamilyName,
		Roles:     c.RoleSet(),
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
