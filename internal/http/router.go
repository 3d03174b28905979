package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
	"github.com/fjod/go_cart/shop-admin/internal/metrics"
)

type Handlers struct {
	Auth       *AuthHandler
	Sessions   *PaymentSessionHandler
	Carts      *CartBoardHandler
	Payments   *AdminPaymentHandler
	Orders     *OrderHandler
	Users      *UserHandler
	Catalog    *CatalogHandler
	Products   *ResourceHandler[domain.Product]
	Categories *ResourceHandler[domain.Category]
	Vouchers   *ResourceHandler[domain.Voucher]
}

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	Resolver           IdentityResolver
	Logger             *slog.Logger
}

func NewRouter(cfg RouterConfig, h Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(metrics.Middleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(MaxBody(cfg.MaxRequestBodySize))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/register", h.Auth.Register)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(cfg.Resolver, cfg.Logger))

			r.Get("/me", h.Auth.Me)
			r.Post("/auth/logout", h.Auth.Logout)

			r.Route("/payment-sessions", func(r chi.Router) {
				r.Use(RequireRoles(domain.RoleAdmin, domain.RoleStaff, domain.RoleUser))
				r.Post("/", h.Sessions.Start)
				r.Get("/{id}", h.Sessions.Get)
				r.Post("/{id}/submit", h.Sessions.Submit)
				r.Post("/{id}/confirm", h.Sessions.Confirm)
				r.Post("/{id}/retry", h.Sessions.Retry)
				r.Post("/{id}/cancel", h.Sessions.Cancel)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireRoles(domain.RoleAdmin))

				r.Route("/carts", func(r chi.Router) {
					r.Get("/", h.Carts.List)
					r.Get("/{userId}", h.Carts.Get)
					r.Delete("/{userId}", h.Carts.ClearCart)
					r.Put("/{userId}/items/{productId}", h.Carts.UpdateQuantity)
					r.Delete("/{userId}/items/{productId}", h.Carts.RemoveItem)
				})

				r.Route("/payments", func(r chi.Router) {
					r.Get("/", h.Payments.List)
					r.Get("/statistics", h.Payments.Statistics)
					r.Get("/revenue", h.Payments.Revenue)
					r.Get("/order/{orderId}", h.Payments.ByOrder)
					r.Get("/{id}", h.Payments.Get)
					r.Post("/{id}/process", h.Payments.Process)
					r.Post("/{id}/retry", h.Payments.Retry)
					r.Post("/{id}/refund", h.Payments.Refund)
				})

				r.Route("/products", func(r chi.Router) {
					r.Get("/search", h.Catalog.SearchProducts)
					r.Get("/category/{category}", h.Catalog.ProductsByCategory)
					h.Products.Routes(r)
				})
				r.Route("/categories", h.Categories.Routes)
				r.Route("/vouchers", func(r chi.Router) {
					r.Get("/active", h.Catalog.ActiveVouchers)
					r.Get("/code/{code}", h.Catalog.VoucherByCode)
					h.Vouchers.Routes(r)
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", h.Orders.List)
					r.Get("/{id}", h.Orders.Get)
					r.Put("/{id}/status", h.Orders.UpdateStatus)
					r.Put("/{id}/payment-status", h.Orders.UpdatePaymentStatus)
					r.Delete("/{id}", h.Orders.Cancel)
				})

				r.Route("/users", func(r chi.Router) {
					r.Get("/", h.Users.List)
					r.Put("/{id}", h.Users.Update)
					r.Delete("/{id}", h.Users.Delete)
				})
			})
		})
	})

	return r
}
