package http

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

// CRUD is the plain list/get/create/update/delete surface of a backend resource.
type CRUD[T any] interface {
	List(ctx context.Context, query url.Values) (domain.Page[T], error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, in *T) (*T, error)
	Update(ctx context.Context, id string, in *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

// ResourceHandler passes CRUD calls through to the backend resource.
type ResourceHandler[T any] struct {
	res     CRUD[T]
	timeout time.Duration
}

func NewResourceHandler[T any](res CRUD[T], timeout time.Duration) *ResourceHandler[T] {
	return &ResourceHandler[T]{res: res, timeout: timeout}
}

// Routes mounts the five operations on r.
func (h *ResourceHandler[T]) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *ResourceHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p := pageRequest(r)
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("size", strconv.Itoa(p.Size))

	page, err := h.res.List(ctx, q)
	if err != nil {
		handleError(w, err)
		return
	}
	if page.Content == nil {
		page.Content = []T{}
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *ResourceHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	v, err := h.res.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (h *ResourceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in T
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	v, err := h.res.Create(ctx, &in)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, v)
}

func (h *ResourceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var in T
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	v, err := h.res.Update(ctx, chi.URLParam(r, "id"), &in)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (h *ResourceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.res.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
