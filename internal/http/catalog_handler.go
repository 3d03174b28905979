package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

type CatalogAPI interface {
	SearchProducts(ctx context.Context, keyword string, p domain.PageRequest) (domain.Page[domain.Product], error)
	ProductsByCategory(ctx context.Context, category string, p domain.PageRequest) (domain.Page[domain.Product], error)
	VoucherByCode(ctx context.Context, code string) (*domain.Voucher, error)
	ActiveVouchers(ctx context.Context) ([]domain.Voucher, error)
}

// CatalogHandler serves the product and voucher lookups beyond plain CRUD.
type CatalogHandler struct {
	catalog CatalogAPI
	timeout time.Duration
}

func NewCatalogHandler(catalog CatalogAPI, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, timeout: timeout}
}

func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "keyword is required")
		return
	}
	page, err := h.catalog.SearchProducts(ctx, keyword, pageRequest(r))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	page, err := h.catalog.ProductsByCategory(ctx, chi.URLParam(r, "category"), pageRequest(r))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) VoucherByCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	v, err := h.catalog.VoucherByCode(ctx, chi.URLParam(r, "code"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func (h *CatalogHandler) ActiveVouchers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	list, err := h.catalog.ActiveVouchers(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	if list == nil {
		list = []domain.Voucher{}
	}
	respondJSON(w, http.StatusOK, list)
}
