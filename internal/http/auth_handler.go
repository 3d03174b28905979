package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_cart/shop-admin/internal/backend"
	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

type AuthAPI interface {
	Login(ctx context.Context, req backend.LoginRequest) (json.RawMessage, error)
	Register(ctx context.Context, body json.RawMessage) (json.RawMessage, error)
}

type IdentityForgetter interface {
	Forget(ctx context.Context, token string) error
}

type AuthHandler struct {
	client  AuthAPI
	session IdentityForgetter
	timeout time.Duration
	logger  *slog.Logger
}

func NewAuthHandler(client AuthAPI, session IdentityForgetter, timeout time.Duration, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{client: client, session: session, timeout: timeout, logger: logger}
}

type MeResponse struct {
	*domain.Identity
	DisplayName string      `json:"displayName"`
	HighestRole domain.Role `json:"highestRole"`
	RoleLabel   string      `json:"roleLabel"`
	RoleColor   string      `json:"roleColor"`
}

// Login passes credentials through and returns the backend's token payload.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req backend.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	payload, err := h.client.Login(ctx, req)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var body json.RawMessage
	if err := decodeJSON(r, &body); err != nil || len(body) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	payload, err := h.client.Register(ctx, body)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, payload)
}

// Logout drops the cached identity. The token itself stays valid at the issuer.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if token := tokenFromContext(r.Context()); token != "" {
		if err := h.session.Forget(ctx, token); err != nil {
			h.logger.WarnContext(ctx, "failed to drop cached identity", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r.Context())
	if id == nil {
		respondRedirect(w, http.StatusUnauthorized, "unauthenticated", "login required", domain.LoginPath)
		return
	}

	highest := domain.HighestRole(id.Roles)
	respondJSON(w, http.StatusOK, MeResponse{
		Identity:    id,
		DisplayName: id.DisplayName(),
		HighestRole: highest,
		RoleLabel:   domain.RoleLabel(highest),
		RoleColor:   domain.RoleColor(highest),
	})
}
