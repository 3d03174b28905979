package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
	"github.com/fjod/go_cart/shop-admin/internal/store"
)

var ErrWorkflowNotFound = errors.New("payment workflow not found")

// PaymentFlows keeps the live payment workflows, one per checkout session.
// Sessions idle for longer than the TTL are dropped and their timers stopped.
type PaymentFlows struct {
	api      PaymentAPI
	store    *store.MemoryStore[*Workflow]
	delay    time.Duration
	events   EventSink
	notifier Notifier
	logger   *slog.Logger
}

type FlowsConfig struct {
	SuccessDelay time.Duration
	SessionTTL   time.Duration
	Events       EventSink
	Notifier     Notifier
}

func NewPaymentFlows(api PaymentAPI, cfg FlowsConfig, logger *slog.Logger) *PaymentFlows {
	if logger == nil {
		logger = slog.Default()
	}
	f := &PaymentFlows{
		api:      api,
		delay:    cfg.SuccessDelay,
		events:   sinkOrDiscard(cfg.Events),
		notifier: cfg.Notifier,
		logger:   logger,
	}
	f.store = store.NewMemoryStore(cfg.SessionTTL, func(id string, w *Workflow) {
		w.Stop()
		logger.Info("payment workflow evicted", "workflow_id", id)
	})
	return f
}

// Start opens a workflow for the checkout on behalf of actor.
func (f *PaymentFlows) Start(ctx context.Context, actor string, checkout Checkout) (*Workflow, error) {
	id := store.NewID()
	w, err := NewWorkflow(id, f.api, checkout, WorkflowConfig{
		SuccessDelay: f.delay,
		Notifier:     f.notifier,
		Events:       f.events,
		Actor:        actor,
		OnSuccess: func(p *domain.Payment) {
			f.logger.Info("payment succeeded",
				"workflow_id", id, "payment_id", p.ID, "order_id", p.OrderID)
		},
		OnCancel: func(p *domain.Payment) {
			attrs := []any{"workflow_id", id, "order_id", checkout.OrderID}
			if p != nil {
				attrs = append(attrs, "payment_id", p.ID, "status", p.Status.String())
			}
			f.logger.Info("payment workflow cancelled", attrs...)
		},
	})
	if err != nil {
		return nil, err
	}
	f.store.Put(id, w)
	f.logger.InfoContext(ctx, "payment workflow started",
		"workflow_id", id, "order_id", checkout.OrderID, "actor", actor)
	return w, nil
}

func (f *PaymentFlows) Get(id string) (*Workflow, error) {
	w, err := f.store.Get(id)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, ErrWorkflowNotFound
	}
	return w, err
}

func (f *PaymentFlows) Len() int {
	return f.store.Len()
}

func (f *PaymentFlows) Close() {
	f.store.Close()
}
