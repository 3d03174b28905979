package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
	"github.com/fjod/go_cart/shop-admin/internal/metrics"
)

const (
	DefaultUserPageSize = 100
	DefaultFanOutLimit  = 8
)

type UserLister interface {
	ListUsers(ctx context.Context, p domain.PageRequest) (domain.Page[domain.User], error)
}

// AdminCarts is the admin cart surface of the backend.
type AdminCarts interface {
	AdminCart(ctx context.Context, userID string) (*domain.Cart, error)
	AdminUpdateCartItem(ctx context.Context, userID, productID string, quantity int) error
	AdminRemoveCartItem(ctx context.Context, userID, productID string) error
	AdminClearCart(ctx context.Context, userID string) error
}

// Aggregator builds the admin carts table from the user list and one cart
// fetch per user.
type Aggregator struct {
	users    UserLister
	carts    AdminCarts
	pageSize int
	fanOut   int
	logger   *slog.Logger
}

func NewAggregator(users UserLister, carts AdminCarts, pageSize, fanOut int, logger *slog.Logger) *Aggregator {
	if pageSize <= 0 {
		pageSize = DefaultUserPageSize
	}
	if fanOut <= 0 {
		fanOut = DefaultFanOutLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		users:    users,
		carts:    carts,
		pageSize: pageSize,
		fanOut:   fanOut,
		logger:   logger,
	}
}

// Load returns one row per listed user, in user order. A user whose cart
// cannot be fetched gets a placeholder row. A failed user listing or a done
// ctx fails the whole load.
func (a *Aggregator) Load(ctx context.Context) ([]*domain.AdminCartView, error) {
	page, err := a.users.ListUsers(ctx, domain.PageRequest{Page: 0, Size: a.pageSize})
	if err != nil {
		metrics.RecordBoardLoad(false, 0)
		return nil, fmt.Errorf("list users: %w", err)
	}

	rows := make([]*domain.AdminCartView, len(page.Content))
	failed := make([]bool, len(page.Content))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.fanOut)
	for i, user := range page.Content {
		g.Go(func() error {
			cart, err := a.carts.AdminCart(gctx, user.ID)
			if err != nil {
				a.logger.WarnContext(ctx, "failed to load cart for user",
					"user_id", user.ID, "error", err)
				rows[i] = domain.PlaceholderView(user)
				failed[i] = true
				return nil
			}
			rows[i] = domain.NewAdminCartView(user, cart)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		metrics.RecordBoardLoad(false, 0)
		return nil, fmt.Errorf("load carts: %w", err)
	}

	placeholders := 0
	for _, f := range failed {
		if f {
			placeholders++
		}
	}
	metrics.RecordBoardLoad(true, placeholders)
	return rows, nil
}

// LoadOne fetches a single user's cart as a row for that user.
func (a *Aggregator) LoadOne(ctx context.Context, row *domain.AdminCartView) (*domain.AdminCartView, error) {
	cart, err := a.carts.AdminCart(ctx, row.UserID)
	if err != nil {
		return nil, err
	}
	return row.WithCart(cart), nil
}
