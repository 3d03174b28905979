package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
	"github.com/fjod/go_cart/shop-admin/internal/metrics"
)

type Step string

const (
	StepAwaitingMethod Step = "AWAITING_METHOD_SELECTION"
	StepCreated        Step = "CREATED"
	StepSucceeded      Step = "SUCCEEDED"
	StepCancelled      Step = "CANCELLED"
)

func (s Step) IsTerminal() bool {
	return s == StepSucceeded || s == StepCancelled
}

// PaymentAPI is the part of the backend the workflow drives.
type PaymentAPI interface {
	CreatePayment(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error)
	ProcessPayment(ctx context.Context, id string) (*domain.Payment, error)
	RetryPayment(ctx context.Context, id string) (*domain.Payment, error)
}

// Checkout is what a workflow pays for.
type Checkout struct {
	OrderID     string          `json:"orderId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

type WorkflowConfig struct {
	SuccessDelay time.Duration
	// OnSuccess runs once, after the success delay, with the completed payment.
	OnSuccess func(p *domain.Payment)
	// OnCancel receives the payment created so far, nil when none was.
	OnCancel func(p *domain.Payment)
	Notifier Notifier
	Events   EventSink
	Actor    string
}

// Workflow drives one payment from method selection to success. Payment
// status is always the one the server returned; the workflow only decides
// which call is allowed next.
type Workflow struct {
	id       string
	checkout Checkout
	api      PaymentAPI
	cfg      WorkflowConfig
	notices  *NoticeLog
	notifier Notifier
	events   EventSink

	mu          sync.Mutex
	step        Step
	payment     *domain.Payment
	busy        bool
	timer       *time.Timer
	successOnce sync.Once
	updatedAt   time.Time
}

// WorkflowView is a point-in-time copy of the workflow state.
type WorkflowView struct {
	ID        string          `json:"id"`
	Checkout  Checkout        `json:"checkout"`
	Step      Step            `json:"step"`
	Payment   *domain.Payment `json:"payment,omitempty"`
	Busy      bool            `json:"busy"`
	Notices   []Notice        `json:"notices"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func NewWorkflow(id string, api PaymentAPI, checkout Checkout, cfg WorkflowConfig) (*Workflow, error) {
	if checkout.OrderID == "" {
		return nil, domain.ErrMissingOrderID
	}
	if !checkout.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if cfg.SuccessDelay < 0 {
		cfg.SuccessDelay = 0
	}
	notices := NewNoticeLog(20)
	return &Workflow{
		id:        id,
		checkout:  checkout,
		api:       api,
		cfg:       cfg,
		notices:   notices,
		notifier:  Notifiers(notices, cfg.Notifier),
		events:    sinkOrDiscard(cfg.Events),
		step:      StepAwaitingMethod,
		updatedAt: time.Now(),
	}, nil
}

func (w *Workflow) ID() string {
	return w.id
}

// Actor is the subject that started the workflow.
func (w *Workflow) Actor() string {
	return w.cfg.Actor
}

func (w *Workflow) View() WorkflowView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.viewLocked()
}

func (w *Workflow) viewLocked() WorkflowView {
	v := WorkflowView{
		ID:        w.id,
		Checkout:  w.checkout,
		Step:      w.step,
		Busy:      w.busy,
		Notices:   w.notices.Recent(),
		UpdatedAt: w.updatedAt,
	}
	if w.payment != nil {
		p := *w.payment
		v.Payment = &p
	}
	return v
}

// Submit creates the payment with the chosen method.
func (w *Workflow) Submit(ctx context.Context, method domain.PaymentMethod, description string) (WorkflowView, error) {
	if description == "" {
		description = w.checkout.Description
	}
	req, err := domain.NewPaymentRequest(w.checkout.OrderID, w.checkout.Amount, method, description)
	if err != nil {
		return w.View(), err
	}

	if err := w.begin("submit", func() bool { return w.step == StepAwaitingMethod }); err != nil {
		return w.View(), err
	}

	p, err := w.api.CreatePayment(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if w.step == StepCancelled {
		return w.viewLocked(), ErrWorkflowCancelled
	}
	if err != nil {
		notify(ctx, w.notifier, NoticeError, "Failed to create payment")
		return w.viewLocked(), fmt.Errorf("submit payment: %w", err)
	}

	w.moveLocked(StepCreated)
	w.payment = p
	notify(ctx, w.notifier, NoticeSuccess, "Payment created")
	w.events.Enqueue(domain.NewEvent(domain.EventPaymentCreated, p.ID, w.cfg.Actor, p))
	if p.Status == domain.PaymentStatusCompleted {
		w.scheduleSuccessLocked()
	}
	return w.viewLocked(), nil
}

// confirmable reports whether the session may ask for processing. A session
// has just created the payment, so CREATED is accepted alongside PENDING.
func confirmable(s domain.PaymentStatus) bool {
	return s == domain.PaymentStatusCreated || s.CanProcess()
}

// Confirm asks the server to process the created payment.
func (w *Workflow) Confirm(ctx context.Context) (WorkflowView, error) {
	var paymentID string
	err := w.begin("confirm", func() bool {
		if w.step != StepCreated || w.payment == nil || !confirmable(w.payment.Status) {
			return false
		}
		paymentID = w.payment.ID
		return true
	})
	if err != nil {
		return w.View(), err
	}

	p, err := w.api.ProcessPayment(ctx, paymentID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if w.step == StepCancelled {
		return w.viewLocked(), ErrWorkflowCancelled
	}
	if err != nil {
		notify(ctx, w.notifier, NoticeError, "Failed to process payment")
		return w.viewLocked(), fmt.Errorf("confirm payment: %w", err)
	}

	w.payment = p
	w.updatedAt = time.Now()
	w.events.Enqueue(domain.NewEvent(domain.EventPaymentProcessed, p.ID, w.cfg.Actor, p))

	switch p.Status {
	case domain.PaymentStatusCompleted:
		notify(ctx, w.notifier, NoticeSuccess, "Payment successful")
		w.scheduleSuccessLocked()
	case domain.PaymentStatusFailed:
		notify(ctx, w.notifier, NoticeError, "Payment failed! Please try again.")
	default:
		notify(ctx, w.notifier, NoticeInfo, "Payment is "+p.Status.String())
	}
	return w.viewLocked(), nil
}

// Retry asks the server to reopen a failed payment. The displayed status
// returns to PENDING regardless of what else the response carries.
func (w *Workflow) Retry(ctx context.Context) (WorkflowView, error) {
	var paymentID string
	err := w.begin("retry", func() bool {
		if w.step != StepCreated || w.payment == nil || !w.payment.Status.CanRetry() {
			return false
		}
		paymentID = w.payment.ID
		return true
	})
	if err != nil {
		return w.View(), err
	}

	p, err := w.api.RetryPayment(ctx, paymentID)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if w.step == StepCancelled {
		return w.viewLocked(), ErrWorkflowCancelled
	}
	if err != nil {
		notify(ctx, w.notifier, NoticeError, "Failed to retry payment")
		return w.viewLocked(), fmt.Errorf("retry payment: %w", err)
	}

	next := *w.payment
	if p != nil {
		next = *p
	}
	next.Status = domain.PaymentStatusPending
	w.payment = &next
	w.updatedAt = time.Now()
	notify(ctx, w.notifier, NoticeSuccess, "Payment retry initiated")
	w.events.Enqueue(domain.NewEvent(domain.EventPaymentRetried, next.ID, w.cfg.Actor, &next))
	return w.viewLocked(), nil
}

// Cancel ends the workflow without calling the server. A completed payment
// can no longer be cancelled; its success callback is already due.
func (w *Workflow) Cancel(ctx context.Context) (WorkflowView, error) {
	w.mu.Lock()
	if w.step.IsTerminal() {
		view := w.viewLocked()
		w.mu.Unlock()
		return view, fmt.Errorf("%w: cannot cancel while %s", ErrIllegalStep, view.Step)
	}
	if w.payment != nil && w.payment.Status == domain.PaymentStatusCompleted {
		view := w.viewLocked()
		w.mu.Unlock()
		return view, ErrPaymentSettled
	}

	w.moveLocked(StepCancelled)
	if w.timer != nil {
		w.timer.Stop()
	}
	var p *domain.Payment
	key := w.checkout.OrderID
	if w.payment != nil {
		cp := *w.payment
		p = &cp
		key = cp.ID
	}
	view := w.viewLocked()
	w.mu.Unlock()

	notify(ctx, w.notifier, NoticeInfo, "Payment cancelled")
	w.events.Enqueue(domain.NewEvent(domain.EventPaymentCancelled, key, w.cfg.Actor, view))
	if w.cfg.OnCancel != nil {
		w.cfg.OnCancel(p)
	}
	return view, nil
}

// Stop releases the success timer without firing it.
func (w *Workflow) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Workflow) begin(op string, allowed func() bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return ErrWorkflowBusy
	}
	if !allowed() {
		status := ""
		if w.payment != nil {
			status = "(" + w.payment.Status.String() + ")"
		}
		return fmt.Errorf("%w: cannot %s while %s%s", ErrIllegalStep, op, w.step, status)
	}
	w.busy = true
	return nil
}

func (w *Workflow) moveLocked(to Step) {
	metrics.RecordWorkflowTransition(string(w.step), string(to))
	w.step = to
	w.updatedAt = time.Now()
}

func (w *Workflow) scheduleSuccessLocked() {
	if w.timer != nil {
		return
	}
	w.timer = time.AfterFunc(w.cfg.SuccessDelay, w.succeed)
}

func (w *Workflow) succeed() {
	w.mu.Lock()
	if w.step != StepCreated || w.payment == nil || w.payment.Status != domain.PaymentStatusCompleted {
		w.mu.Unlock()
		return
	}
	w.moveLocked(StepSucceeded)
	p := *w.payment
	w.mu.Unlock()

	w.successOnce.Do(func() {
		w.events.Enqueue(domain.NewEvent(domain.EventPaymentSucceeded, p.ID, w.cfg.Actor, &p))
		if w.cfg.OnSuccess != nil {
			w.cfg.OnSuccess(&p)
		}
	})
}
