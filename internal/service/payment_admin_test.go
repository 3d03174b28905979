package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

// MockAdminPaymentAPI implements AdminPaymentAPI for testing
type MockAdminPaymentAPI struct {
	Current *domain.Payment
	GetErr  error
	Result  *domain.Payment
	CallErr error
	Calls   []string
}

func (m *MockAdminPaymentAPI) GetPayment(_ context.Context, _ string) (*domain.Payment, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Current, nil
}

func (m *MockAdminPaymentAPI) record(op string) (*domain.Payment, error) {
	m.Calls = append(m.Calls, op)
	if m.CallErr != nil {
		return nil, m.CallErr
	}
	return m.Result, nil
}

func (m *MockAdminPaymentAPI) ProcessPayment(_ context.Context, _ string) (*domain.Payment, error) {
	return m.record("process")
}

func (m *MockAdminPaymentAPI) RetryPayment(_ context.Context, _ string) (*domain.Payment, error) {
	return m.record("retry")
}

func (m *MockAdminPaymentAPI) RefundPayment(_ context.Context, _ string) (*domain.Payment, error) {
	return m.record("refund")
}

func TestPaymentAdmin_Refund(t *testing.T) {
	sink := &recordingSink{}
	api := &MockAdminPaymentAPI{
		Current: payment(domain.PaymentStatusCompleted),
		Result:  payment(domain.PaymentStatusRefunded),
	}
	admin := NewPaymentAdmin(api, sink, nil)

	p, err := admin.Refund(context.Background(), "admin-1", "pay-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusRefunded, p.Status)
	assert.Equal(t, []string{"refund"}, api.Calls)
	assert.Equal(t, []domain.EventType{domain.EventPaymentRefunded}, sink.types())
}

func TestPaymentAdmin_RejectsIllegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		status domain.PaymentStatus
		act    func(*PaymentAdmin) error
	}{
		{"refund pending", domain.PaymentStatusPending, func(a *PaymentAdmin) error {
			_, err := a.Refund(context.Background(), "", "pay-1")
			return err
		}},
		{"retry completed", domain.PaymentStatusCompleted, func(a *PaymentAdmin) error {
			_, err := a.Retry(context.Background(), "", "pay-1")
			return err
		}},
		{"process refunded", domain.PaymentStatusRefunded, func(a *PaymentAdmin) error {
			_, err := a.Process(context.Background(), "", "pay-1")
			return err
		}},
		{"process created", domain.PaymentStatusCreated, func(a *PaymentAdmin) error {
			_, err := a.Process(context.Background(), "", "pay-1")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockAdminPaymentAPI{Current: payment(tt.status)}
			err := tt.act(NewPaymentAdmin(api, nil, nil))
			assert.ErrorIs(t, err, IllegalTransitionError)
			assert.Empty(t, api.Calls)
		})
	}
}

func TestPaymentAdmin_ErrorsPropagate(t *testing.T) {
	api := &MockAdminPaymentAPI{GetErr: errors.New("not found")}
	_, err := NewPaymentAdmin(api, nil, nil).Process(context.Background(), "", "pay-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get payment")

	api = &MockAdminPaymentAPI{Current: payment(domain.PaymentStatusFailed), CallErr: errors.New("boom")}
	_, err = NewPaymentAdmin(api, nil, nil).Retry(context.Background(), "", "pay-1")
	require.Error(t, err)
	assert.Equal(t, []string{"retry"}, api.Calls)
}
