package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

func (c *Client) CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	var dto paymentDTO
	err := c.do(ctx, request{op: "payments.create", method: http.MethodPost, path: "/payments", body: req}, &dto)
	if err != nil {
		return nil, fmt.Errorf("create payment for order %s: %w", req.OrderID, err)
	}
	return dto.payment("create payment for order " + req.OrderID)
}

func (c *Client) ProcessPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return c.paymentAction(ctx, "payments.process", id, "process")
}

func (c *Client) RetryPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return c.paymentAction(ctx, "payments.retry", id, "retry")
}

func (c *Client) RefundPayment(ctx context.Context, id string) (*domain.Payment, error) {
	return c.paymentAction(ctx, "payments.refund", id, "refund")
}

func (c *Client) paymentAction(ctx context.Context, op, id, action string) (*domain.Payment, error) {
	var dto paymentDTO
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodPost,
		path:   "/payments/" + escape(id) + "/" + action,
	}, &dto)
	if err != nil {
		return nil, fmt.Errorf("%s payment %s: %w", action, id, err)
	}
	return dto.payment(action + " payment " + id)
}

// payment rejects a success envelope that carried no payment.
func (p paymentDTO) payment(op string) (*domain.Payment, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("%s: %w: response has no payment id", op, ErrDecode)
	}
	return p.toDomain(), nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	var dto paymentDTO
	err := c.do(ctx, request{op: "payments.get", method: http.MethodGet, path: "/payments/" + escape(id)}, &dto)
	if err != nil {
		return nil, fmt.Errorf("get payment %s: %w", id, err)
	}
	return dto.payment("get payment " + id)
}

func (c *Client) PaymentsByOrder(ctx context.Context, orderID string) ([]*domain.Payment, error) {
	return c.paymentList(ctx, request{
		op:     "payments.by_order",
		method: http.MethodGet,
		path:   "/payments/order/" + escape(orderID),
	})
}

// MyPayments lists the payments of the token's owner.
func (c *Client) MyPayments(ctx context.Context, p domain.PageRequest) (domain.Page[*domain.Payment], error) {
	p = p.Normalize()
	return c.paymentPage(ctx, request{op: "payments.list", method: http.MethodGet, path: "/payments", query: pageQuery(p.Page, p.Size)})
}

func (c *Client) AllPayments(ctx context.Context, p domain.PageRequest) (domain.Page[*domain.Payment], error) {
	p = p.Normalize()
	return c.paymentPage(ctx, request{op: "payments.admin_all", method: http.MethodGet, path: "/payments/admin/all", query: pageQuery(p.Page, p.Size)})
}

func (c *Client) PaymentsByStatus(ctx context.Context, status domain.PaymentStatus) ([]*domain.Payment, error) {
	return c.paymentList(ctx, request{
		op:     "payments.admin_by_status",
		method: http.MethodGet,
		path:   "/payments/admin/status/" + escape(string(status)),
	})
}

func (c *Client) PaymentsByMethod(ctx context.Context, method domain.PaymentMethod) ([]*domain.Payment, error) {
	return c.paymentList(ctx, request{
		op:     "payments.admin_by_method",
		method: http.MethodGet,
		path:   "/payments/admin/method/" + escape(string(method)),
	})
}

func (c *Client) PaymentStatistics(ctx context.Context) (*domain.PaymentStatistics, error) {
	var dto statisticsDTO
	err := c.do(ctx, request{op: "payments.admin_statistics", method: http.MethodGet, path: "/payments/admin/statistics"}, &dto)
	if err != nil {
		return nil, fmt.Errorf("get payment statistics: %w", err)
	}
	return dto.toDomain(), nil
}

func (c *Client) RevenueByMethod(ctx context.Context) ([]domain.MethodRevenue, error) {
	var dtos []methodRevenueDTO
	err := c.do(ctx, request{op: "payments.admin_revenue", method: http.MethodGet, path: "/payments/admin/revenue/by-method"}, &dtos)
	if err != nil {
		return nil, fmt.Errorf("get revenue by method: %w", err)
	}
	out := make([]domain.MethodRevenue, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, domain.MethodRevenue{PaymentMethod: d.PaymentMethod, Revenue: d.Revenue.Decimal})
	}
	return out, nil
}

func (c *Client) paymentList(ctx context.Context, req request) ([]*domain.Payment, error) {
	page, err := c.paymentPage(ctx, req)
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

func (c *Client) paymentPage(ctx context.Context, req request) (domain.Page[*domain.Payment], error) {
	raw, err := getPage[paymentDTO](ctx, c, req)
	if err != nil {
		return domain.Page[*domain.Payment]{}, fmt.Errorf("list payments: %w", err)
	}
	out := domain.Page[*domain.Payment]{
		Content:       make([]*domain.Payment, 0, len(raw.Content)),
		TotalElements: raw.TotalElements,
	}
	for _, dto := range raw.Content {
		out.Content = append(out.Content, dto.toDomain())
	}
	return out, nil
}
