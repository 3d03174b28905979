package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

func (c *Client) AllOrders(ctx context.Context, p domain.PageRequest) (domain.Page[domain.Order], error) {
	p = p.Normalize()
	page, err := getPage[domain.Order](ctx, c, request{
		op:     "orders.admin_all",
		method: http.MethodGet,
		path:   "/orders/admin/all",
		query:  pageQuery(p.Page, p.Size),
	})
	if err != nil {
		return page, fmt.Errorf("list all orders: %w", err)
	}
	return page, nil
}

func (c *Client) OrdersByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	page, err := getPage[domain.Order](ctx, c, request{
		op:     "orders.admin_by_status",
		method: http.MethodGet,
		path:   "/orders/admin/status/" + escape(status),
	})
	if err != nil {
		return nil, fmt.Errorf("list orders with status %s: %w", status, err)
	}
	return page.Content, nil
}

func (c *Client) MyOrders(ctx context.Context, p domain.PageRequest) (domain.Page[domain.Order], error) {
	p = p.Normalize()
	page, err := getPage[domain.Order](ctx, c, request{op: "orders.list", method: http.MethodGet, path: "/orders", query: pageQuery(p.Page, p.Size)})
	if err != nil {
		return page, fmt.Errorf("list orders: %w", err)
	}
	return page, nil
}

func (c *Client) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	if err := c.do(ctx, request{op: "orders.get", method: http.MethodGet, path: "/orders/" + escape(id)}, &o); err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return &o, nil
}

// CreateOrder forwards the order payload untouched; its shape belongs to the order service.
func (c *Client) CreateOrder(ctx context.Context, body any) (*domain.Order, error) {
	var o domain.Order
	if err := c.do(ctx, request{op: "orders.create", method: http.MethodPost, path: "/orders", body: body}, &o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &o, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	q := url.Values{}
	q.Set("status", status)
	var o domain.Order
	err := c.do(ctx, request{op: "orders.update_status", method: http.MethodPut, path: "/orders/" + escape(id) + "/status", query: q}, &o)
	if err != nil {
		return nil, fmt.Errorf("update status of order %s: %w", id, err)
	}
	return &o, nil
}

func (c *Client) UpdateOrderPaymentStatus(ctx context.Context, id, paymentStatus, paymentID string) (*domain.Order, error) {
	q := url.Values{}
	q.Set("paymentStatus", paymentStatus)
	if paymentID != "" {
		q.Set("paymentId", paymentID)
	}
	var o domain.Order
	err := c.do(ctx, request{op: "orders.update_payment_status", method: http.MethodPut, path: "/orders/" + escape(id) + "/payment-status", query: q}, &o)
	if err != nil {
		return nil, fmt.Errorf("update payment status of order %s: %w", id, err)
	}
	return &o, nil
}

// CancelOrder deletes the order, which the order service treats as a cancellation.
func (c *Client) CancelOrder(ctx context.Context, id string) error {
	if err := c.do(ctx, request{op: "orders.cancel", method: http.MethodDelete, path: "/orders/" + escape(id)}, nil); err != nil {
		return fmt.Errorf("cancel order %s: %w", id, err)
	}
	return nil
}
