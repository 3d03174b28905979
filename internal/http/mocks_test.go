package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/shop-admin/internal/auth"
	"github.com/fjod/go_cart/shop-admin/internal/backend"
	"github.com/fjod/go_cart/shop-admin/internal/domain"
	"github.com/fjod/go_cart/shop-admin/internal/service"
)

// MockResolver implements IdentityResolver and IdentityForgetter for testing
type MockResolver struct {
	mu         sync.Mutex
	Identities map[string]*domain.Identity
	Err        error
	Forgotten  []string
}

func (m *MockResolver) Resolve(_ context.Context, token string) (*domain.Identity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	id, ok := m.Identities[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return id, nil
}

func (m *MockResolver) Forget(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Forgotten = append(m.Forgotten, token)
	return nil
}

// MockBackend implements every backend-facing interface the handlers use.
type MockBackend struct {
	mu sync.Mutex

	Users    []domain.User
	UsersErr error
	Carts    map[string]*domain.Cart

	Payment    *domain.Payment
	PaymentErr error
	Processed  domain.PaymentStatus
	Actions    []string

	Orders []domain.Order
}

func (m *MockBackend) Login(_ context.Context, req backend.LoginRequest) (json.RawMessage, error) {
	if req.Password != "secret" {
		return nil, &backend.APIError{StatusCode: 401, Method: "POST", Path: "/auth/login", Message: "Bad credentials"}
	}
	return json.RawMessage(`{"token":"abc","type":"Bearer"}`), nil
}

func (m *MockBackend) Register(_ context.Context, body json.RawMessage) (json.RawMessage, error) {
	return body, nil
}

func (m *MockBackend) ListUsers(_ context.Context, _ domain.PageRequest) (domain.Page[domain.User], error) {
	if m.UsersErr != nil {
		return domain.Page[domain.User]{}, m.UsersErr
	}
	return domain.Page[domain.User]{Content: m.Users, TotalElements: int64(len(m.Users))}, nil
}

func (m *MockBackend) UpdateUser(_ context.Context, id string, u *domain.User) (*domain.User, error) {
	out := *u
	out.ID = id
	return &out, nil
}

func (m *MockBackend) DeleteUser(_ context.Context, _ string) error {
	return m.UsersErr
}

func (m *MockBackend) AdminCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Carts[userID]
	if !ok {
		return domain.EmptyCart(userID), nil
	}
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	return &cp, nil
}

func (m *MockBackend) AdminUpdateCartItem(_ context.Context, userID, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *MockBackend) AdminRemoveCartItem(_ context.Context, userID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Carts[userID]; ok {
		var kept []domain.CartItem
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

func (m *MockBackend) AdminClearCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Carts[userID] = domain.EmptyCart(userID)
	return nil
}

func (m *MockBackend) payment(status domain.PaymentStatus) *domain.Payment {
	p := *m.Payment
	p.Status = status
	return &p
}

func (m *MockBackend) CreatePayment(_ context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	if m.PaymentErr != nil {
		return nil, m.PaymentErr
	}
	p := m.payment(domain.PaymentStatusPending)
	p.PaymentMethod = req.PaymentMethod
	p.Description = req.Description
	return p, nil
}

func (m *MockBackend) ProcessPayment(_ context.Context, _ string) (*domain.Payment, error) {
	m.Actions = append(m.Actions, "process")
	return m.payment(m.Processed), nil
}

func (m *MockBackend) RetryPayment(_ context.Context, _ string) (*domain.Payment, error) {
	m.Actions = append(m.Actions, "retry")
	return m.payment(domain.PaymentStatusPending), nil
}

func (m *MockBackend) RefundPayment(_ context.Context, _ string) (*domain.Payment, error) {
	m.Actions = append(m.Actions, "refund")
	return m.payment(domain.PaymentStatusRefunded), nil
}

func (m *MockBackend) GetPayment(_ context.Context, _ string) (*domain.Payment, error) {
	if m.PaymentErr != nil {
		return nil, m.PaymentErr
	}
	return m.payment(m.Payment.Status), nil
}

func (m *MockBackend) PaymentsByOrder(_ context.Context, _ string) ([]*domain.Payment, error) {
	return []*domain.Payment{m.Payment}, nil
}

func (m *MockBackend) AllPayments(_ context.Context, p domain.PageRequest) (domain.Page[*domain.Payment], error) {
	return domain.Page[*domain.Payment]{Content: []*domain.Payment{m.Payment}, TotalElements: 41}, nil
}

func (m *MockBackend) PaymentsByStatus(_ context.Context, status domain.PaymentStatus) ([]*domain.Payment, error) {
	if m.Payment.Status != status {
		return nil, nil
	}
	return []*domain.Payment{m.Payment}, nil
}

func (m *MockBackend) PaymentsByMethod(_ context.Context, method domain.PaymentMethod) ([]*domain.Payment, error) {
	return []*domain.Payment{m.Payment}, nil
}

func (m *MockBackend) PaymentStatistics(_ context.Context) (*domain.PaymentStatistics, error) {
	return &domain.PaymentStatistics{TotalPayments: 3, CompletedCount: 2, SuccessRate: 66.7, TotalAmount: decimal.NewFromInt(30)}, nil
}

func (m *MockBackend) RevenueByMethod(_ context.Context) ([]domain.MethodRevenue, error) {
	return nil, nil
}

func (m *MockBackend) AllOrders(_ context.Context, _ domain.PageRequest) (domain.Page[domain.Order], error) {
	return domain.Page[domain.Order]{Content: m.Orders, TotalElements: int64(len(m.Orders))}, nil
}

func (m *MockBackend) OrdersByStatus(_ context.Context, status string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.Orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockBackend) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	for _, o := range m.Orders {
		if o.ID == id {
			return &o, nil
		}
	}
	return nil, &backend.APIError{StatusCode: 404, Method: "GET", Path: "/orders/" + id, Message: "Order not found"}
}

func (m *MockBackend) UpdateOrderStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	o, err := m.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Status = status
	return o, nil
}

func (m *MockBackend) UpdateOrderPaymentStatus(ctx context.Context, id, paymentStatus, _ string) (*domain.Order, error) {
	o, err := m.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	o.PaymentStatus = paymentStatus
	return o, nil
}

func (m *MockBackend) CancelOrder(ctx context.Context, id string) error {
	_, err := m.GetOrder(ctx, id)
	return err
}

func (m *MockBackend) SearchProducts(_ context.Context, keyword string, _ domain.PageRequest) (domain.Page[domain.Product], error) {
	return domain.Page[domain.Product]{Content: []domain.Product{{ID: "p1", Name: keyword}}, TotalElements: 1}, nil
}

func (m *MockBackend) ProductsByCategory(_ context.Context, _ string, _ domain.PageRequest) (domain.Page[domain.Product], error) {
	return domain.Page[domain.Product]{Content: []domain.Product{}}, nil
}

func (m *MockBackend) VoucherByCode(_ context.Context, code string) (*domain.Voucher, error) {
	return &domain.Voucher{ID: "v1", Code: code}, nil
}

func (m *MockBackend) ActiveVouchers(_ context.Context) ([]domain.Voucher, error) {
	return nil, nil
}

// MockCRUD implements CRUD for testing
type MockCRUD[T any] struct {
	Items     map[string]T
	LastQuery url.Values
	Deleted   []string
}

func (m *MockCRUD[T]) List(_ context.Context, q url.Values) (domain.Page[T], error) {
	m.LastQuery = q
	var out []T
	for _, v := range m.Items {
		out = append(out, v)
	}
	return domain.Page[T]{Content: out, TotalElements: int64(len(out))}, nil
}

func (m *MockCRUD[T]) Get(_ context.Context, id string) (*T, error) {
	v, ok := m.Items[id]
	if !ok {
		return nil, &backend.APIError{StatusCode: 404, Method: "GET", Path: "/" + id}
	}
	return &v, nil
}

func (m *MockCRUD[T]) Create(_ context.Context, in *T) (*T, error) {
	return in, nil
}

func (m *MockCRUD[T]) Update(_ context.Context, _ string, in *T) (*T, error) {
	return in, nil
}

func (m *MockCRUD[T]) Delete(_ context.Context, id string) error {
	m.Deleted = append(m.Deleted, id)
	return nil
}

type testServer struct {
	router   http.Handler
	resolver *MockResolver
	backend  *MockBackend
	flows    *service.PaymentFlows
	products *MockCRUD[domain.Product]
}

var (
	adminIdentity = &domain.Identity{Subject: "admin-1", Username: "admin", Roles: []domain.Role{domain.RoleAdmin}}
	userIdentity  = &domain.Identity{Subject: "user-1", Username: "jane", Roles: []domain.Role{domain.RoleUser}}
	staffIdentity = &domain.Identity{Subject: "staff-1", Username: "sam", Roles: []domain.Role{domain.RoleStaff}}
	noRoles       = &domain.Identity{Subject: "ghost-1", Username: "ghost"}
)

func newTestBackend() *MockBackend {
	items := []domain.CartItem{
		{ProductID: "p1", ProductName: "Mug", Price: decimal.RequireFromString("12.50"), Quantity: 2},
		{ProductID: "p2", ProductName: "Tea", Price: decimal.RequireFromString("5"), Quantity: 1},
	}
	cart := &domain.Cart{UserID: "u1", Items: items}
	cart.Recompute()
	return &MockBackend{
		Users: []domain.User{
			{ID: "u1", Email: "ann@example.com", Firstname: "Ann", Lastname: "Lee", Roles: domain.RoleSet{domain.RoleUser}},
			{ID: "u2", Email: "bob@example.com", Firstname: "Bob", Roles: domain.RoleSet{domain.RoleAdmin, domain.RoleUser}},
		},
		Carts: map[string]*domain.Cart{"u1": cart},
		Payment: &domain.Payment{
			ID:            "pay-1",
			OrderID:       "order-1",
			Amount:        decimal.RequireFromString("30"),
			PaymentMethod: domain.PaymentMethodCreditCard,
			Status:        domain.PaymentStatusCompleted,
		},
		Processed: domain.PaymentStatusCompleted,
		Orders:    []domain.Order{{ID: "o1", Status: "PENDING"}, {ID: "o2", Status: "DELIVERED"}},
	}
}

func setupServer() *testServer {
	resolver := &MockResolver{Identities: map[string]*domain.Identity{
		"admin-token": adminIdentity,
		"user-token":  userIdentity,
		"staff-token": staffIdentity,
		"ghost-token": noRoles,
	}}
	be := newTestBackend()
	timeout := 5 * time.Second

	flows := service.NewPaymentFlows(be, service.FlowsConfig{
		SuccessDelay: 10 * time.Millisecond,
		SessionTTL:   time.Minute,
	}, nil)
	agg := service.NewAggregator(be, be, 100, 4, nil)
	boards := service.NewBoards(agg, be, time.Minute, nil, nil)
	products := &MockCRUD[domain.Product]{Items: map[string]domain.Product{"p1": {ID: "p1", Name: "Mug"}}}

	router := NewRouter(RouterConfig{
		RequestTimeout:     timeout,
		MaxRequestBodySize: 1 << 20,
		Resolver:           resolver,
	}, Handlers{
		Auth:       NewAuthHandler(be, resolver, timeout, nil),
		Sessions:   NewPaymentSessionHandler(flows, timeout),
		Carts:      NewCartBoardHandler(boards, timeout),
		Payments:   NewAdminPaymentHandler(be, service.NewPaymentAdmin(be, nil, nil), timeout),
		Orders:     NewOrderHandler(be, timeout),
		Users:      NewUserHandler(be, timeout),
		Catalog:    NewCatalogHandler(be, timeout),
		Products:   NewResourceHandler[domain.Product](products, timeout),
		Categories: NewResourceHandler[domain.Category](&MockCRUD[domain.Category]{}, timeout),
		Vouchers:   NewResourceHandler[domain.Voucher](&MockCRUD[domain.Voucher]{}, timeout),
	})

	return &testServer{router: router, resolver: resolver, backend: be, flows: flows, products: products}
}
