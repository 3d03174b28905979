package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fjod/go_cart/shop-admin/internal/auth"
	"github.com/fjod/go_cart/shop-admin/internal/backend"
	"github.com/fjod/go_cart/shop-admin/internal/domain"
	"github.com/fjod/go_cart/shop-admin/internal/service"
)

type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func respondRedirect(w http.ResponseWriter, status int, code, message, redirect string) {
	respondJSON(w, status, ErrorResponse{
		Error:    message,
		Code:     code,
		Redirect: redirect,
	})
}

// handleError converts backend, service and validation errors to HTTP answers.
func handleError(w http.ResponseWriter, err error) {
	status, body := classifyError(err)
	respondJSON(w, status, body)
}

func classifyError(err error) (int, ErrorResponse) {
	var httpStatus int
	var code string
	message := backend.Message(err)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		httpStatus, code = http.StatusServiceUnavailable, "cancelled"
	case errors.Is(err, domain.ErrInvalidPaymentMethod),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMissingOrderID),
		errors.Is(err, domain.ErrInvalidQuantity):
		httpStatus, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, service.ErrWorkflowNotFound),
		errors.Is(err, service.ErrRowNotFound),
		errors.Is(err, service.ErrItemNotFound):
		httpStatus, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrWorkflowBusy):
		httpStatus, code = http.StatusConflict, "busy"
	case errors.Is(err, service.ErrIllegalStep),
		errors.Is(err, service.ErrWorkflowCancelled),
		errors.Is(err, service.ErrPaymentSettled),
		errors.Is(err, service.IllegalTransitionError):
		httpStatus, code = http.StatusConflict, "illegal_transition"
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorResponse{
			Error:    orDefault(message, "session expired"),
			Code:     "unauthenticated",
			Redirect: domain.LoginPath,
		}
	case errors.Is(err, backend.ErrUnauthorized):
		// flagged only; the console session is still valid
		httpStatus, code = http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, backend.ErrForbidden):
		httpStatus, code = http.StatusForbidden, "permission_denied"
	case errors.Is(err, backend.ErrNotFound):
		httpStatus, code = http.StatusNotFound, "not_found"
	case errors.Is(err, backend.ErrConflict):
		httpStatus, code = http.StatusConflict, "already_exists"
	case errors.Is(err, backend.ErrBadRequest):
		httpStatus, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, backend.ErrRejected):
		httpStatus, code = http.StatusUnprocessableEntity, "rejected"
	case errors.Is(err, backend.ErrCircuitOpen), errors.Is(err, backend.ErrTransport):
		httpStatus, code = http.StatusServiceUnavailable, "service_unavailable"
	case errors.Is(err, backend.ErrServer), errors.Is(err, backend.ErrDecode):
		httpStatus, code = http.StatusBadGateway, "bad_gateway"
	default:
		httpStatus, code = http.StatusInternalServerError, "internal_error"
		message = "internal server error"
	}

	if message == "" {
		message = err.Error()
	}
	return httpStatus, ErrorResponse{Error: message, Code: code}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// pageRequest reads ?page= and ?size=, falling back to the defaults.
func pageRequest(r *http.Request) domain.PageRequest {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return domain.PageRequest{Page: page, Size: size}.Normalize()
}
