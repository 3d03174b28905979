package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

type AddCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// MyCart returns the cart of the token's owner.
func (c *Client) MyCart(ctx context.Context) (*domain.Cart, error) {
	var dto cartDTO
	err := c.do(ctx, request{op: "carts.get", method: http.MethodGet, path: "/carts"}, &dto)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return dto.toDomain(""), nil
}

func (c *Client) AddCartItem(ctx context.Context, req AddCartItemRequest) (*domain.Cart, error) {
	if req.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	var dto cartDTO
	err := c.do(ctx, request{op: "carts.add_item", method: http.MethodPost, path: "/carts/items", body: req}, &dto)
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return dto.toDomain(""), nil
}

func (c *Client) AdminCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var dto cartDTO
	err := c.do(ctx, request{
		op:     "carts.admin_get",
		method: http.MethodGet,
		path:   "/carts/admin/" + escape(userID),
	}, &dto)
	if err != nil {
		return nil, fmt.Errorf("get cart of user %s: %w", userID, err)
	}
	return dto.toDomain(userID), nil
}

func (c *Client) AdminUpdateCartItem(ctx context.Context, userID, productID string, quantity int) error {
	if quantity < 1 {
		return domain.ErrInvalidQuantity
	}
	q := url.Values{}
	q.Set("quantity", fmt.Sprint(quantity))
	err := c.do(ctx, request{
		op:     "carts.admin_update_item",
		method: http.MethodPut,
		path:   "/carts/admin/" + escape(userID) + "/items/" + escape(productID),
		query:  q,
	}, nil)
	if err != nil {
		return fmt.Errorf("update cart item %s of user %s: %w", productID, userID, err)
	}
	return nil
}

func (c *Client) AdminRemoveCartItem(ctx context.Context, userID, productID string) error {
	err := c.do(ctx, request{
		op:     "carts.admin_remove_item",
		method: http.MethodDelete,
		path:   "/carts/admin/" + escape(userID) + "/items/" + escape(productID),
	}, nil)
	if err != nil {
		return fmt.Errorf("remove cart item %s of user %s: %w", productID, userID, err)
	}
	return nil
}

func (c *Client) AdminClearCart(ctx context.Context, userID string) error {
	err := c.do(ctx, request{
		op:     "carts.admin_clear",
		method: http.MethodDelete,
		path:   "/carts/admin/" + escape(userID),
	}, nil)
	if err != nil {
		return fmt.Errorf("clear cart of user %s: %w", userID, err)
	}
	return nil
}
