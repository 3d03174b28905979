package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
	"github.com/fjod/go_cart/shop-admin/internal/metrics"
	"github.com/fjod/go_cart/shop-admin/internal/store"
)

// Board is one admin's carts table plus the open detail panel.
//
// Rows are never mutated in place. A mutation replaces only the affected
// user's row pointer so untouched rows keep their identity.
type Board struct {
	agg      *Aggregator
	carts    AdminCarts
	notices  *NoticeLog
	notifier Notifier
	events   EventSink
	actor    string

	mu       sync.RWMutex
	rows     []*domain.AdminCartView
	loaded   bool
	selected *domain.AdminCartView

	sfg singleflight.Group // coalesces concurrent refreshes
}

func NewBoard(agg *Aggregator, carts AdminCarts, actor string, notifier Notifier, events EventSink) *Board {
	notices := NewNoticeLog(20)
	return &Board{
		agg:      agg,
		carts:    carts,
		notices:  notices,
		notifier: Notifiers(notices, notifier),
		events:   sinkOrDiscard(events),
		actor:    actor,
	}
}

// Refresh reloads every row. On failure the previous rows stay in place.
func (b *Board) Refresh(ctx context.Context) ([]*domain.AdminCartView, error) {
	v, err, _ := b.sfg.Do("refresh", func() (interface{}, error) {
		rows, err := b.agg.Load(ctx)
		if err != nil {
			notify(ctx, b.notifier, NoticeError, "Failed to load carts")
			return nil, err
		}

		b.mu.Lock()
		b.rows = rows
		b.loaded = true
		if b.selected != nil {
			b.selected = findRow(rows, b.selected.UserID)
		}
		b.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]*domain.AdminCartView(nil), v.([]*domain.AdminCartView)...), nil
}

// Rows returns the current rows, loading them first if the board is new.
func (b *Board) Rows(ctx context.Context) ([]*domain.AdminCartView, error) {
	b.mu.RLock()
	if b.loaded {
		rows := append([]*domain.AdminCartView(nil), b.rows...)
		b.mu.RUnlock()
		return rows, nil
	}
	b.mu.RUnlock()
	return b.Refresh(ctx)
}

// Select opens the detail panel for userID.
func (b *Board) Select(ctx context.Context, userID string) (*domain.AdminCartView, error) {
	if _, err := b.Rows(ctx); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	row := findRow(b.rows, userID)
	if row == nil {
		return nil, fmt.Errorf("%w: %s", ErrRowNotFound, userID)
	}
	b.selected = row
	return row, nil
}

func (b *Board) Selected() *domain.AdminCartView {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.selected
}

func (b *Board) Notices() []Notice {
	return b.notices.Recent()
}

func (b *Board) RemoveItem(ctx context.Context, userID, productID string) (*domain.AdminCartView, error) {
	return b.mutate(ctx, mutation{
		op:        "remove_item",
		userID:    userID,
		productID: productID,
		failure:   "Failed to remove item",
		success:   "Item removed from cart",
		event:     domain.EventCartItemRemoved,
		call: func(ctx context.Context) error {
			return b.carts.AdminRemoveCartItem(ctx, userID, productID)
		},
	})
}

func (b *Board) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.AdminCartView, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	return b.mutate(ctx, mutation{
		op:        "update_quantity",
		userID:    userID,
		productID: productID,
		quantity:  quantity,
		failure:   "Failed to update quantity",
		success:   "Quantity updated",
		event:     domain.EventCartItemQuantityChanged,
		call: func(ctx context.Context) error {
			return b.carts.AdminUpdateCartItem(ctx, userID, productID, quantity)
		},
	})
}

func (b *Board) ClearCart(ctx context.Context, userID string) (*domain.AdminCartView, error) {
	return b.mutate(ctx, mutation{
		op:      "clear_cart",
		userID:  userID,
		failure: "Failed to clear cart",
		success: "Cart cleared",
		event:   domain.EventCartCleared,
		call: func(ctx context.Context) error {
			return b.carts.AdminClearCart(ctx, userID)
		},
	})
}

type mutation struct {
	op        string
	userID    string
	productID string
	quantity  int
	failure   string
	success   string
	event     domain.EventType
	call      func(ctx context.Context) error
}

type mutationPayload struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

func (b *Board) mutate(ctx context.Context, m mutation) (*domain.AdminCartView, error) {
	if _, err := b.Rows(ctx); err != nil {
		return nil, err
	}

	b.mu.RLock()
	row := findRow(b.rows, m.userID)
	b.mu.RUnlock()
	if row == nil {
		return nil, fmt.Errorf("%w: %s", ErrRowNotFound, m.userID)
	}
	if m.productID != "" && !row.HasItem(m.productID) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, m.productID)
	}

	if err := m.call(ctx); err != nil {
		metrics.RecordCartOperation(m.op, false)
		notify(ctx, b.notifier, NoticeError, m.failure)
		return nil, fmt.Errorf("%s: %w", m.op, err)
	}
	metrics.RecordCartOperation(m.op, true)
	b.events.Enqueue(domain.NewEvent(m.event, m.userID, b.actor, mutationPayload{
		UserID:    m.userID,
		ProductID: m.productID,
		Quantity:  m.quantity,
	}))

	updated, err := b.agg.LoadOne(ctx, row)
	if err != nil {
		// The change went through; the table keeps showing the last known cart.
		notify(ctx, b.notifier, NoticeWarning, "Cart changed but could not be reloaded")
		return row, nil
	}

	b.splice(updated)
	notify(ctx, b.notifier, NoticeSuccess, m.success)
	return updated, nil
}

// splice swaps in the new row for its user, copying the slice so readers
// holding the old one are unaffected.
func (b *Board) splice(updated *domain.AdminCartView) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, r := range b.rows {
		if r.UserID != updated.UserID {
			continue
		}
		next := make([]*domain.AdminCartView, len(b.rows))
		copy(next, b.rows)
		next[i] = updated
		b.rows = next
		break
	}
	if b.selected != nil && b.selected.UserID == updated.UserID {
		b.selected = updated
	}
}

func findRow(rows []*domain.AdminCartView, userID string) *domain.AdminCartView {
	for _, r := range rows {
		if r.UserID == userID {
			return r
		}
	}
	return nil
}

// Boards hands each admin session its own board. Idle boards are dropped.
type Boards struct {
	agg      *Aggregator
	carts    AdminCarts
	notifier Notifier
	events   EventSink
	store    *store.MemoryStore[*Board]
}

func NewBoards(agg *Aggregator, carts AdminCarts, ttl time.Duration, notifier Notifier, events EventSink) *Boards {
	return &Boards{
		agg:      agg,
		carts:    carts,
		notifier: notifier,
		events:   events,
		store:    store.NewMemoryStore[*Board](ttl, nil),
	}
}

func (b *Boards) For(actor string) *Board {
	return b.store.GetOrCreate(actor, func() *Board {
		return NewBoard(b.agg, b.carts, actor, b.notifier, b.events)
	})
}

func (b *Boards) Close() {
	b.store.Close()
}
