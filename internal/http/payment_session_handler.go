package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
	"github.com/fjod/go_cart/shop-admin/internal/service"
)

type PaymentFlows interface {
	Start(ctx context.Context, actor string, checkout service.Checkout) (*service.Workflow, error)
	Get(id string) (*service.Workflow, error)
}

// PaymentSessionHandler exposes the checkout payment workflow. A session is
// only visible to the subject that started it.
type PaymentSessionHandler struct {
	flows   PaymentFlows
	timeout time.Duration
}

func NewPaymentSessionHandler(flows PaymentFlows, timeout time.Duration) *PaymentSessionHandler {
	return &PaymentSessionHandler{flows: flows, timeout: timeout}
}

type StartSessionRequestDTO struct {
	OrderID     string          `json:"orderId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type SubmitRequestDTO struct {
	PaymentMethod string `json:"paymentMethod"`
	Description   string `json:"description"`
}

func (h *PaymentSessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r.Context())
	if id == nil {
		respondRedirect(w, http.StatusUnauthorized, "unauthenticated", "login required", domain.LoginPath)
		return
	}

	var req StartSessionRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	wf, err := h.flows.Start(r.Context(), id.Subject, service.Checkout{
		OrderID:     req.OrderID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, wf.View())
}

func (h *PaymentSessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, wf.View())
}

func (h *PaymentSessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}

	var req SubmitRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		handleError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	view, err := wf.Submit(ctx, method, req.Description)
	respondStep(w, view, err)
}

func (h *PaymentSessionHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	view, err := wf.Confirm(ctx)
	respondStep(w, view, err)
}

func (h *PaymentSessionHandler) Retry(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	view, err := wf.Retry(ctx)
	respondStep(w, view, err)
}

func (h *PaymentSessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	wf, ok := h.workflow(w, r)
	if !ok {
		return
	}
	view, err := wf.Cancel(r.Context())
	respondStep(w, view, err)
}

func (h *PaymentSessionHandler) workflow(w http.ResponseWriter, r *http.Request) (*service.Workflow, bool) {
	id := identityFromContext(r.Context())
	if id == nil {
		respondRedirect(w, http.StatusUnauthorized, "unauthenticated", "login required", domain.LoginPath)
		return nil, false
	}
	wf, err := h.flows.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, err)
		return nil, false
	}
	if wf.Actor() != id.Subject {
		handleError(w, service.ErrWorkflowNotFound)
		return nil, false
	}
	return wf, true
}

// stepResponse carries the workflow state alongside an error so the caller
// can render the notice without a second request.
type stepResponse struct {
	ErrorResponse
	Session service.WorkflowView `json:"session"`
}

func respondStep(w http.ResponseWriter, view service.WorkflowView, err error) {
	if err == nil {
		respondJSON(w, http.StatusOK, view)
		return
	}
	status, body := classifyError(err)
	respondJSON(w, status, stepResponse{ErrorResponse: body, Session: view})
}
