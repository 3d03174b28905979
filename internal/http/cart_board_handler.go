package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
	"github.com/fjod/go_cart/shop-admin/internal/service"
)

type BoardProvider interface {
	For(actor string) *service.Board
}

// CartBoardHandler serves the admin carts table. Each admin gets their own
// board so the open detail panel follows that admin only.
type CartBoardHandler struct {
	boards  BoardProvider
	timeout time.Duration
}

func NewCartBoardHandler(boards BoardProvider, timeout time.Duration) *CartBoardHandler {
	return &CartBoardHandler{boards: boards, timeout: timeout}
}

type BoardResponse struct {
	Rows     []*domain.AdminCartView `json:"rows"`
	Selected *domain.AdminCartView   `json:"selected,omitempty"`
	Notices  []service.Notice        `json:"notices"`
}

type RowResponse struct {
	Row     *domain.AdminCartView `json:"row"`
	Notices []service.Notice      `json:"notices"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (h *CartBoardHandler) List(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var rows []*domain.AdminCartView
	var err error
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		rows, err = board.Refresh(ctx)
	} else {
		rows, err = board.Rows(ctx)
	}
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, BoardResponse{
		Rows:     rows,
		Selected: board.Selected(),
		Notices:  board.Notices(),
	})
}

func (h *CartBoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	row, err := board.Select(ctx, chi.URLParam(r, "userId"))
	h.respondRow(w, board, row, err)
}

func (h *CartBoardHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}

	quantity, err := quantityFrom(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be a positive integer")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	row, err := board.UpdateQuantity(ctx, chi.URLParam(r, "userId"), chi.URLParam(r, "productId"), quantity)
	h.respondRow(w, board, row, err)
}

func (h *CartBoardHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	row, err := board.RemoveItem(ctx, chi.URLParam(r, "userId"), chi.URLParam(r, "productId"))
	h.respondRow(w, board, row, err)
}

func (h *CartBoardHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	board, ok := h.board(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	row, err := board.ClearCart(ctx, chi.URLParam(r, "userId"))
	h.respondRow(w, board, row, err)
}

func (h *CartBoardHandler) board(w http.ResponseWriter, r *http.Request) (*service.Board, bool) {
	id := identityFromContext(r.Context())
	if id == nil {
		respondRedirect(w, http.StatusUnauthorized, "unauthenticated", "login required", domain.LoginPath)
		return nil, false
	}
	return h.boards.For(id.Subject), true
}

func (h *CartBoardHandler) respondRow(w http.ResponseWriter, board *service.Board, row *domain.AdminCartView, err error) {
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, RowResponse{Row: row, Notices: board.Notices()})
}

// quantityFrom reads ?quantity=N, falling back to a {"quantity": N} body.
func quantityFrom(r *http.Request) (int, error) {
	if q := r.URL.Query().Get("quantity"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			return 0, domain.ErrInvalidQuantity
		}
		return n, nil
	}
	var req UpdateQuantityRequestDTO
	if err := decodeJSON(r, &req); err != nil || req.Quantity < 1 {
		return 0, domain.ErrInvalidQuantity
	}
	return req.Quantity, nil
}
