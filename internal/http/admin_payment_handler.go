package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

type PaymentReader interface {
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	PaymentsByOrder(ctx context.Context, orderID string) ([]*domain.Payment, error)
	AllPayments(ctx context.Context, p domain.PageRequest) (domain.Page[*domain.Payment], error)
	PaymentsByStatus(ctx context.Context, status domain.PaymentStatus) ([]*domain.Payment, error)
	PaymentsByMethod(ctx context.Context, method domain.PaymentMethod) ([]*domain.Payment, error)
	PaymentStatistics(ctx context.Context) (*domain.PaymentStatistics, error)
	RevenueByMethod(ctx context.Context) ([]domain.MethodRevenue, error)
}

type PaymentActions interface {
	Process(ctx context.Context, actor, id string) (*domain.Payment, error)
	Retry(ctx context.Context, actor, id string) (*domain.Payment, error)
	Refund(ctx context.Context, actor, id string) (*domain.Payment, error)
}

type AdminPaymentHandler struct {
	payments PaymentReader
	actions  PaymentActions
	timeout  time.Duration
}

func NewAdminPaymentHandler(payments PaymentReader, actions PaymentActions, timeout time.Duration) *AdminPaymentHandler {
	return &AdminPaymentHandler{payments: payments, actions: actions, timeout: timeout}
}

// List filters by ?status= or ?method= when given, otherwise pages through all payments.
func (h *AdminPaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	var list []*domain.Payment
	var err error

	switch {
	case q.Get("status") != "":
		status, ok := domain.ParsePaymentStatus(q.Get("status"))
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid_status", "unknown payment status")
			return
		}
		list, err = h.payments.PaymentsByStatus(ctx, status)
	case q.Get("method") != "":
		method, errParse := domain.ParsePaymentMethod(q.Get("method"))
		if errParse != nil {
			handleError(w, errParse)
			return
		}
		list, err = h.payments.PaymentsByMethod(ctx, method)
	default:
		page, errPage := h.payments.AllPayments(ctx, pageRequest(r))
		if errPage != nil {
			handleError(w, errPage)
			return
		}
		respondJSON(w, http.StatusOK, page)
		return
	}

	if err != nil {
		handleError(w, err)
		return
	}
	if list == nil {
		list = []*domain.Payment{}
	}
	respondJSON(w, http.StatusOK, domain.Page[*domain.Payment]{Content: list, TotalElements: int64(len(list))})
}

func (h *AdminPaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, err := h.payments.GetPayment(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *AdminPaymentHandler) ByOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	list, err := h.payments.PaymentsByOrder(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		handleError(w, err)
		return
	}
	if list == nil {
		list = []*domain.Payment{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *AdminPaymentHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stats, err := h.payments.PaymentStatistics(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *AdminPaymentHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	revenue, err := h.payments.RevenueByMethod(ctx)
	if err != nil {
		handleError(w, err)
		return
	}
	if revenue == nil {
		revenue = []domain.MethodRevenue{}
	}
	respondJSON(w, http.StatusOK, revenue)
}

func (h *AdminPaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.actions.Process)
}

func (h *AdminPaymentHandler) Retry(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.actions.Retry)
}

func (h *AdminPaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.actions.Refund)
}

func (h *AdminPaymentHandler) act(w http.ResponseWriter, r *http.Request, action func(context.Context, string, string) (*domain.Payment, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	actor := ""
	if id := identityFromContext(r.Context()); id != nil {
		actor = id.Subject
	}
	p, err := action(ctx, actor, chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
