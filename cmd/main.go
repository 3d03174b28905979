package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/fjod/go_cart/shop-admin/internal/auth"
	"github.com/fjod/go_cart/shop-admin/internal/backend"
	"github.com/fjod/go_cart/shop-admin/internal/cache"
	"github.com/fjod/go_cart/shop-admin/internal/config"
	"github.com/fjod/go_cart/shop-admin/internal/domain"
	h "github.com/fjod/go_cart/shop-admin/internal/http"
	"github.com/fjod/go_cart/shop-admin/internal/publisher"
	"github.com/fjod/go_cart/shop-admin/internal/service"
	"github.com/fjod/go_cart/shop-admin/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("error", os.Stderr).Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, os.Stdout)
	log.Info("shop-admin starting...", "port", cfg.Server.HTTPPort, "backend", cfg.Backend.BaseURL)

	// amounts go out as JSON numbers, the way the backend writes them
	decimal.MarshalJSONWithoutQuotes = true

	// trace context travels from the console through to the backend
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	client := backend.New(backend.Config{
		BaseURL:            cfg.Backend.BaseURL,
		Timeout:            cfg.Backend.Timeout,
		ServiceToken:       cfg.Backend.ServiceToken,
		BreakerMaxFailures: cfg.Backend.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.Backend.BreakerOpenTimeout,
	}, log)

	// Identity cache
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, identity lookups will hit the backend", "addr", cfg.Redis.Addr, "error", err)
	}
	pingCancel()

	resolver := auth.NewResolver(cache.NewRedisCache(rdb, cfg.Redis.IdentityTTL), client, log)

	// Audit outbox
	var wg sync.WaitGroup
	outbox := publisher.NewOutbox(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.FlushInterval, log)
	outboxCtx, outboxCancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		outbox.Run(outboxCtx)
	}()

	notifier := service.NewLogNotifier(log)

	flows := service.NewPaymentFlows(client, service.FlowsConfig{
		SuccessDelay: cfg.Payment.SuccessDelay,
		SessionTTL:   cfg.Server.SessionTTL,
		Events:       outbox,
		Notifier:     notifier,
	}, log)
	defer flows.Close()

	aggregator := service.NewAggregator(client, client, cfg.Board.UserPageSize, cfg.Board.FanOutLimit, log)
	boards := service.NewBoards(aggregator, client, cfg.Server.SessionTTL, notifier, outbox)
	defer boards.Close()

	paymentAdmin := service.NewPaymentAdmin(client, outbox, log)

	router := h.NewRouter(h.RouterConfig{
		RequestTimeout:     cfg.Server.RequestTimeout,
		MaxRequestBodySize: cfg.Server.MaxRequestBodySize,
		Resolver:           resolver,
		Logger:             log,
	}, h.Handlers{
		Auth:       h.NewAuthHandler(client, resolver, cfg.Server.RequestTimeout, log),
		Sessions:   h.NewPaymentSessionHandler(flows, cfg.Server.RequestTimeout),
		Carts:      h.NewCartBoardHandler(boards, cfg.Server.RequestTimeout),
		Payments:   h.NewAdminPaymentHandler(client, paymentAdmin, cfg.Server.RequestTimeout),
		Orders:     h.NewOrderHandler(client, cfg.Server.RequestTimeout),
		Users:      h.NewUserHandler(client, cfg.Server.RequestTimeout),
		Catalog:    h.NewCatalogHandler(client, cfg.Server.RequestTimeout),
		Products:   h.NewResourceHandler[domain.Product](client.Products(), cfg.Server.RequestTimeout),
		Categories: h.NewResourceHandler[domain.Category](client.Categories(), cfg.Server.RequestTimeout),
		Vouchers:   h.NewResourceHandler[domain.Voucher](client.Vouchers(), cfg.Server.RequestTimeout),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "shop-admin"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("admin gateway listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	outboxCancel()
	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Info("outbox stopped cleanly")
	case <-ctx.Done():
		log.Warn("outbox didn't stop in time")
	}

	if err := outbox.Close(); err != nil {
		log.Error("failed to close outbox", "error", err)
	}
	log.Info("server exited", "unauthorized_backend_calls", client.UnauthorizedCount())
}
