package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

type OrdersAPI interface {
	AllOrders(ctx context.Context, p domain.PageRequest) (domain.Page[domain.Order], error)
	OrdersByStatus(ctx context.Context, status string) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error)
	UpdateOrderPaymentStatus(ctx context.Context, id, paymentStatus, paymentID string) (*domain.Order, error)
	CancelOrder(ctx context.Context, id string) error
}

type OrderHandler struct {
	orders  OrdersAPI
	timeout time.Duration
}

func NewOrderHandler(orders OrdersAPI, timeout time.Duration) *OrderHandler {
	return &OrderHandler{orders: orders, timeout: timeout}
}

type UpdateOrderStatusRequestDTO struct {
	Status string `json:"status"`
}

type UpdatePaymentStatusRequestDTO struct {
	PaymentStatus string `json:"paymentStatus"`
	PaymentID     string `json:"paymentId"`
}

// List returns every order, or only those with ?status= when given.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		list, err := h.orders.OrdersByStatus(ctx, strings.ToUpper(status))
		if err != nil {
			handleError(w, err)
			return
		}
		if list == nil {
			list = []domain.Order{}
		}
		respondJSON(w, http.StatusOK, domain.Page[domain.Order]{Content: list, TotalElements: int64(len(list))})
		return
	}

	page, err := h.orders.AllOrders(ctx, pageRequest(r))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	o, err := h.orders.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateOrderStatusRequestDTO
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Status) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "status is required")
		return
	}
	o, err := h.orders.UpdateOrderStatus(ctx, chi.URLParam(r, "id"), strings.ToUpper(req.Status))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdatePaymentStatusRequestDTO
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.PaymentStatus) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "paymentStatus is required")
		return
	}
	o, err := h.orders.UpdateOrderPaymentStatus(ctx, chi.URLParam(r, "id"), strings.ToUpper(req.PaymentStatus), req.PaymentID)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.orders.CancelOrder(ctx, chi.URLParam(r, "id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
