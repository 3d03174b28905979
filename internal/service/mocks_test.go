package service

import (
	"context"
	"errors"
	"sync"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

// MockPaymentAPI implements PaymentAPI for testing
type MockPaymentAPI struct {
	mu sync.Mutex

	Created    *domain.Payment
	CreateErr  error
	Processed  *domain.Payment
	ProcessErr error
	Retried    *domain.Payment
	RetryErr   error

	// Block, when set, holds every call until it is closed.
	Block chan struct{}

	CreateCalls  int
	ProcessCalls int
	RetryCalls   int
	LastRequest  domain.PaymentRequest
}

func (m *MockPaymentAPI) wait() {
	if m.Block != nil {
		<-m.Block
	}
}

func (m *MockPaymentAPI) CreatePayment(_ context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	m.LastRequest = req
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	p := *m.Created
	return &p, nil
}

func (m *MockPaymentAPI) ProcessPayment(_ context.Context, _ string) (*domain.Payment, error) {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProcessCalls++
	if m.ProcessErr != nil {
		return nil, m.ProcessErr
	}
	p := *m.Processed
	return &p, nil
}

func (m *MockPaymentAPI) RetryPayment(_ context.Context, _ string) (*domain.Payment, error) {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetryCalls++
	if m.RetryErr != nil {
		return nil, m.RetryErr
	}
	if m.Retried == nil {
		return nil, nil
	}
	p := *m.Retried
	return &p, nil
}

func (m *MockPaymentAPI) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CreateCalls + m.ProcessCalls + m.RetryCalls
}

// MockUsers implements UserLister for testing
type MockUsers struct {
	Users    []domain.User
	Err      error
	LastPage domain.PageRequest
}

func (m *MockUsers) ListUsers(_ context.Context, p domain.PageRequest) (domain.Page[domain.User], error) {
	m.LastPage = p
	if m.Err != nil {
		return domain.Page[domain.User]{}, m.Err
	}
	return domain.Page[domain.User]{Content: m.Users, TotalElements: int64(len(m.Users))}, nil
}

// MockCarts implements AdminCarts for testing
type MockCarts struct {
	mu sync.Mutex

	Carts     map[string]*domain.Cart
	FailFetch map[string]bool
	MutateErr error

	Fetches   map[string]int
	Mutations []string

	inFlight    int
	MaxInFlight int
	// Gate, when set, holds cart fetches until it is closed.
	Gate chan struct{}
}

func NewMockCarts() *MockCarts {
	return &MockCarts{
		Carts:     map[string]*domain.Cart{},
		FailFetch: map[string]bool{},
		Fetches:   map[string]int{},
	}
}

func (m *MockCarts) AdminCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.MaxInFlight {
		m.MaxInFlight = m.inFlight
	}
	m.Fetches[userID]++
	gate := m.Gate
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
	if m.FailFetch[userID] {
		return nil, errors.New("cart service unavailable")
	}
	c, ok := m.Carts[userID]
	if !ok {
		return domain.EmptyCart(userID), nil
	}
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	return &cp, nil
}

func (m *MockCarts) AdminUpdateCartItem(_ context.Context, userID, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations = append(m.Mutations, "update:"+userID+":"+productID)
	if m.MutateErr != nil {
		return m.MutateErr
	}
	if c, ok := m.Carts[userID]; ok {
		for i := range c.Items {
			if c.Items[i].ProductID == productID {
				c.Items[i].Quantity = quantity
			}
		}
		c.Recompute()
	}
	return nil
}

func (m *MockCarts) AdminRemoveCartItem(_ context.Context, userID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations = append(m.Mutations, "remove:"+userID+":"+productID)
	if m.MutateErr != nil {
		return m.MutateErr
	}
	if c, ok := m.Carts[userID]; ok {
		kept := c.Items[:0]
		for _, item := range c.Items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		c.Items = kept
		c.Recompute()
	}
	return nil
}

func (m *MockCarts) AdminClearCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Mutations = append(m.Mutations, "clear:"+userID)
	if m.MutateErr != nil {
		return m.MutateErr
	}
	m.Carts[userID] = domain.EmptyCart(userID)
	return nil
}

func (m *MockCarts) fetches(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Fetches[userID]
}

// recordingSink implements EventSink for testing
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) Enqueue(e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) types() []domain.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}
