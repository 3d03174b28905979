package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

func (c *Client) ListUsers(ctx context.Context, p domain.PageRequest) (domain.Page[domain.User], error) {
	p = p.Normalize()
	page, err := getPage[domain.User](ctx, c, request{
		op:     "users.list",
		method: http.MethodGet,
		path:   "/users",
		query:  pageQuery(p.Page, p.Size),
	})
	if err != nil {
		return page, fmt.Errorf("list users: %w", adminRequired(err))
	}
	return page, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, u *domain.User) (*domain.User, error) {
	var out domain.User
	err := c.do(ctx, request{op: "users.update", method: http.MethodPut, path: "/users/" + escape(id), body: u}, &out)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, adminRequired(err))
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if err := c.do(ctx, request{op: "users.delete", method: http.MethodDelete, path: "/users/" + escape(id)}, nil); err != nil {
		return fmt.Errorf("delete user %s: %w", id, adminRequired(err))
	}
	return nil
}

// Me returns the profile of the token's owner. A 401 here means the token is no longer accepted.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, request{op: "users.me", method: http.MethodGet, path: "/users/me"}, &out); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return &out, nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login and Register hand the backend's token payload back unchanged.
func (c *Client) Login(ctx context.Context, req LoginRequest) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, request{op: "auth.login", method: http.MethodPost, path: "/auth/login", body: req}, &out); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return out, nil
}

func (c *Client) Register(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, request{op: "auth.register", method: http.MethodPost, path: "/auth/register", body: body}, &out); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return out, nil
}

func adminRequired(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
		apiErr.Message = MsgAdminRequired
	}
	return err
}
