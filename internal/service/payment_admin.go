package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

type AdminPaymentAPI interface {
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	ProcessPayment(ctx context.Context, id string) (*domain.Payment, error)
	RetryPayment(ctx context.Context, id string) (*domain.Payment, error)
	RefundPayment(ctx context.Context, id string) (*domain.Payment, error)
}

// PaymentAdmin runs operator actions on existing payments. Each action reads
// the current payment first and refuses transitions the payment service
// would reject.
type PaymentAdmin struct {
	api    AdminPaymentAPI
	events EventSink
	logger *slog.Logger
}

func NewPaymentAdmin(api AdminPaymentAPI, events EventSink, logger *slog.Logger) *PaymentAdmin {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentAdmin{api: api, events: sinkOrDiscard(events), logger: logger}
}

func (a *PaymentAdmin) Process(ctx context.Context, actor, id string) (*domain.Payment, error) {
	return a.act(ctx, actor, id, "process", domain.PaymentStatusCompleted, a.api.ProcessPayment, domain.EventPaymentProcessed)
}

func (a *PaymentAdmin) Retry(ctx context.Context, actor, id string) (*domain.Payment, error) {
	return a.act(ctx, actor, id, "retry", domain.PaymentStatusPending, a.api.RetryPayment, domain.EventPaymentRetried)
}

func (a *PaymentAdmin) Refund(ctx context.Context, actor, id string) (*domain.Payment, error) {
	return a.act(ctx, actor, id, "refund", domain.PaymentStatusRefunded, a.api.RefundPayment, domain.EventPaymentRefunded)
}

func (a *PaymentAdmin) act(
	ctx context.Context,
	actor, id, op string,
	target domain.PaymentStatus,
	call func(context.Context, string) (*domain.Payment, error),
	event domain.EventType,
) (*domain.Payment, error) {
	current, err := a.api.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if !current.Status.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: cannot %s a %s payment", IllegalTransitionError, op, current.Status)
	}

	p, err := call(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s payment: %w", op, err)
	}
	a.logger.InfoContext(ctx, "payment action",
		"op", op, "payment_id", id, "from", current.Status.String(), "to", p.Status.String(), "actor", actor)
	a.events.Enqueue(domain.NewEvent(event, id, actor, p))
	return p, nil
}
