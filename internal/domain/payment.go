package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusCreated   PaymentStatus = "CREATED"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// paymentTransitions mirrors what the payment service accepts from an operator.
// Processing is only offered on PENDING payments; the resulting status always
// comes from the server.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusFailed:    {PaymentStatusPending},
	PaymentStatusCompleted: {PaymentStatusRefunded},
}

func (s PaymentStatus) CanProcess() bool {
	return s.CanTransitionTo(PaymentStatusCompleted)
}

func (s PaymentStatus) CanRetry() bool {
	return s.CanTransitionTo(PaymentStatusPending)
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s PaymentStatus) String() string {
	return string(s)
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	st := PaymentStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case PaymentStatusCreated, PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return st, true
	}
	return "", false
}

type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodEWallet      PaymentMethod = "E_WALLET"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodBankTransfer, PaymentMethodEWallet:
		return true
	}
	return false
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s)
	}
	return m, nil
}

type Payment struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"orderId"`
	UserID        string          `json:"userId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Status        PaymentStatus   `json:"status"`
	TransactionID string          `json:"transactionId,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     Timestamp       `json:"createdAt"`
	UpdatedAt     Timestamp       `json:"updatedAt"`
}

type PaymentRequest struct {
	OrderID       string          `json:"orderId"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Description   string          `json:"description"`
}

// NewPaymentRequest validates the request and fills the default description.
func NewPaymentRequest(orderID string, amount decimal.Decimal, method PaymentMethod, description string) (PaymentRequest, error) {
	if strings.TrimSpace(orderID) == "" {
		return PaymentRequest{}, ErrMissingOrderID
	}
	if !amount.IsPositive() {
		return PaymentRequest{}, ErrInvalidAmount
	}
	if !method.Valid() {
		return PaymentRequest{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, method)
	}
	if strings.TrimSpace(description) == "" {
		description = "Payment for order " + orderID
	}
	return PaymentRequest{
		OrderID:       orderID,
		Amount:        amount,
		PaymentMethod: method,
		Description:   description,
	}, nil
}

type PaymentStatistics struct {
	TotalPayments   int64           `json:"totalPayments"`
	CompletedCount  int64           `json:"completedCount"`
	FailedCount     int64           `json:"failedCount"`
	RefundedCount   int64           `json:"refundedCount"`
	PendingCount    int64           `json:"pendingCount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	CompletedAmount decimal.Decimal `json:"completedAmount"`
	SuccessRate     float64         `json:"successRate"`
}

type MethodRevenue struct {
	PaymentMethod string          `json:"paymentMethod"`
	Revenue       decimal.Decimal `json:"revenue"`
}
