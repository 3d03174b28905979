package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

type UsersAPI interface {
	ListUsers(ctx context.Context, p domain.PageRequest) (domain.Page[domain.User], error)
	UpdateUser(ctx context.Context, id string, u *domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type UserHandler struct {
	users   UsersAPI
	timeout time.Duration
}

func NewUserHandler(users UsersAPI, timeout time.Duration) *UserHandler {
	return &UserHandler{users: users, timeout: timeout}
}

type UserView struct {
	domain.User
	FullName    string      `json:"fullName"`
	HighestRole domain.Role `json:"highestRole"`
	RoleColor   string      `json:"roleColor"`
}

func newUserView(u domain.User) UserView {
	highest := domain.HighestRole([]domain.Role(u.Roles))
	return UserView{User: u, FullName: u.FullName(), HighestRole: highest, RoleColor: domain.RoleColor(highest)}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page, err := h.users.ListUsers(ctx, pageRequest(r))
	if err != nil {
		handleError(w, err)
		return
	}
	views := make([]UserView, 0, len(page.Content))
	for _, u := range page.Content {
		views = append(views, newUserView(u))
	}
	respondJSON(w, http.StatusOK, domain.Page[UserView]{Content: views, TotalElements: page.TotalElements})
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in domain.User
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	u, err := h.users.UpdateUser(ctx, chi.URLParam(r, "id"), &in)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newUserView(*u))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.users.DeleteUser(ctx, chi.URLParam(r, "id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
