package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

// Resource is the plain CRUD surface shared by products, categories and vouchers.
type Resource[T any] struct {
	c    *Client
	name string
	path string
}

func newResource[T any](c *Client, name, path string) Resource[T] {
	return Resource[T]{c: c, name: name, path: path}
}

func (r Resource[T]) List(ctx context.Context, query url.Values) (domain.Page[T], error) {
	page, err := getPage[T](ctx, r.c, request{op: r.name + ".list", method: http.MethodGet, path: r.path, query: query})
	if err != nil {
		return page, fmt.Errorf("list %s: %w", r.name, err)
	}
	return page, nil
}

func (r Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var v T
	if err := r.c.do(ctx, request{op: r.name + ".get", method: http.MethodGet, path: r.path + "/" + escape(id)}, &v); err != nil {
		return nil, fmt.Errorf("get %s %s: %w", r.name, id, err)
	}
	return &v, nil
}

func (r Resource[T]) Create(ctx context.Context, in *T) (*T, error) {
	var v T
	if err := r.c.do(ctx, request{op: r.name + ".create", method: http.MethodPost, path: r.path, body: in}, &v); err != nil {
		return nil, fmt.Errorf("create %s: %w", r.name, err)
	}
	return &v, nil
}

func (r Resource[T]) Update(ctx context.Context, id string, in *T) (*T, error) {
	var v T
	if err := r.c.do(ctx, request{op: r.name + ".update", method: http.MethodPut, path: r.path + "/" + escape(id), body: in}, &v); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", r.name, id, err)
	}
	return &v, nil
}

func (r Resource[T]) Delete(ctx context.Context, id string) error {
	if err := r.c.do(ctx, request{op: r.name + ".delete", method: http.MethodDelete, path: r.path + "/" + escape(id)}, nil); err != nil {
		return fmt.Errorf("delete %s %s: %w", r.name, id, err)
	}
	return nil
}

func (c *Client) Products() Resource[domain.Product] {
	return newResource[domain.Product](c, "products", "/products")
}

func (c *Client) Categories() Resource[domain.Category] {
	return newResource[domain.Category](c, "categories", "/categories")
}

func (c *Client) Vouchers() Resource[domain.Voucher] {
	return newResource[domain.Voucher](c, "vouchers", "/vouchers")
}

func (c *Client) SearchProducts(ctx context.Context, keyword string, p domain.PageRequest) (domain.Page[domain.Product], error) {
	p = p.Normalize()
	q := pageQuery(p.Page, p.Size)
	q.Set("keyword", keyword)
	page, err := getPage[domain.Product](ctx, c, request{op: "products.search", method: http.MethodGet, path: "/products/search", query: q})
	if err != nil {
		return page, fmt.Errorf("search products: %w", err)
	}
	return page, nil
}

func (c *Client) ProductsByCategory(ctx context.Context, category string, p domain.PageRequest) (domain.Page[domain.Product], error) {
	p = p.Normalize()
	page, err := getPage[domain.Product](ctx, c, request{
		op:     "products.by_category",
		method: http.MethodGet,
		path:   "/products/category/" + escape(category),
		query:  pageQuery(p.Page, p.Size),
	})
	if err != nil {
		return page, fmt.Errorf("list products of category %s: %w", category, err)
	}
	return page, nil
}

func (c *Client) VoucherByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	var v domain.Voucher
	if err := c.do(ctx, request{op: "vouchers.by_code", method: http.MethodGet, path: "/vouchers/code/" + escape(code)}, &v); err != nil {
		return nil, fmt.Errorf("get voucher %s: %w", code, err)
	}
	return &v, nil
}

func (c *Client) ActiveVouchers(ctx context.Context) ([]domain.Voucher, error) {
	page, err := getPage[domain.Voucher](ctx, c, request{op: "vouchers.active", method: http.MethodGet, path: "/vouchers/active"})
	if err != nil {
		return nil, fmt.Errorf("list active vouchers: %w", err)
	}
	return page.Content, nil
}
