package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventPaymentCreated   EventType = "PaymentCreated"
	EventPaymentProcessed EventType = "PaymentProcessed"
	EventPaymentRetried   EventType = "PaymentRetried"
	EventPaymentSucceeded EventType = "PaymentSucceeded"
	EventPaymentCancelled EventType = "PaymentCancelled"
	EventPaymentRefunded  EventType = "PaymentRefunded"

	EventCartItemRemoved         EventType = "CartItemRemoved"
	EventCartCleared             EventType = "CartCleared"
	EventCartItemQuantityChanged EventType = "CartItemQuantityChanged"
)

// Event is published to the admin event stream. Key orders events of one aggregate.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Key        string    `json:"key"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

func NewEvent(t EventType, key, actor string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		Key:        key,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
