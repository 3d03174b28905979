package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

func setupBackend(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return New(Config{
		BaseURL:            srv.URL + "/api/v1/",
		Timeout:            2 * time.Second,
		ServiceToken:       "service-token",
		BreakerMaxFailures: 3,
		BreakerOpenTimeout: time.Minute,
	}, nil)
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func TestClient_UsesTokenFromContext(t *testing.T) {
	var gotAuth atomic.Value
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, map[string]any{"id": "u1", "email": "a@b.c"})
	})

	_, err := client.Me(WithToken(context.Background(), "user-token"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer user-token", gotAuth.Load())

	_, err = client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer service-token", gotAuth.Load())
}

func TestClient_FlagsUnauthorized(t *testing.T) {
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success":false,"message":"token expired"}`)
	})

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "token expired", Message(err))
	assert.Equal(t, int64(1), client.UnauthorizedCount())
}

func TestClient_UsersForbiddenMessage(t *testing.T) {
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"success":false,"message":"Access is denied"}`)
	})

	_, err := client.ListUsers(context.Background(), domain.PageRequest{Size: 100})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, MsgAdminRequired, Message(err))

	err = client.DeleteUser(context.Background(), "u1")
	assert.Equal(t, MsgAdminRequired, Message(err))
}

func TestClient_EnvelopeRejected(t *testing.T) {
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"success":false,"message":"voucher expired","data":null}`)
	})

	_, err := client.VoucherByCode(context.Background(), "SPRING")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, "voucher expired", Message(err))
}

func TestClient_ListUsersPageShapes(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantLen   int
		wantTotal int64
	}{
		{"page object", `{"content":[{"id":"u1"},{"id":"u2"}],"totalElements":42}`, 2, 42},
		{"bare array", `[{"id":"u1"},{"id":"u2"},{"id":"u3"}]`, 3, 3},
		{"null", `null`, 0, 0},
		{"object without content", `{"totalElements":0}`, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuery string
			client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
				gotQuery = r.URL.RawQuery
				_, _ = io.WriteString(w, `{"success":true,"data":`+tt.data+`}`)
			})

			page, err := client.ListUsers(context.Background(), domain.PageRequest{Page: 0, Size: 100})
			require.NoError(t, err)
			assert.Len(t, page.Content, tt.wantLen)
			assert.NotNil(t, page.Content)
			assert.Equal(t, tt.wantTotal, page.TotalElements)
			assert.Equal(t, "page=0&size=100", gotQuery)
		})
	}
}

func TestClient_AdminCartCoercesNumericStrings(t *testing.T) {
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/carts/admin/u-7", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"data":{
			"userId":"u-7",
			"totalPrice":"1.00",
			"totalItems":"1",
			"items":[
				{"productId":"p1","productName":"Mug","price":"12.50","quantity":2,"subtotal":"0"},
				{"productId":17,"productName":"Pen","price":3,"quantity":"4","subtotal":12}
			]}}`)
	})

	cart, err := client.AdminCart(context.Background(), "u-7")
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.True(t, cart.Items[0].Subtotal.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "17", cart.Items[1].ProductID)
	assert.Equal(t, 4, cart.Items[1].Quantity)
	assert.True(t, cart.TotalPrice.Equal(decimal.NewFromInt(37)), "got %s", cart.TotalPrice)
	assert.Equal(t, 6, cart.TotalItems)
}

func TestClient_AdminCartEmptyData(t *testing.T) {
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":null}`)
	})

	cart, err := client.AdminCart(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", cart.UserID)
	assert.NotNil(t, cart.Items)
	assert.True(t, cart.TotalPrice.IsZero())
}

func TestClient_AdminUpdateCartItemQuery(t *testing.T) {
	var method, path, query string
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		method, path, query = r.Method, r.URL.Path, r.URL.RawQuery
		writeEnvelope(w, http.StatusOK, nil)
	})

	require.NoError(t, client.AdminUpdateCartItem(context.Background(), "u1", "p9", 3))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/api/v1/carts/admin/u1/items/p9", path)
	assert.Equal(t, "quantity=3", query)

	assert.ErrorIs(t, client.AdminUpdateCartItem(context.Background(), "u1", "p9", 0), domain.ErrInvalidQuantity)
}

func TestClient_CreatePayment(t *testing.T) {
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "o1", body["orderId"])
		assert.Equal(t, "E_WALLET", body["paymentMethod"])
		assert.Equal(t, "Payment for order o1", body["description"])
		_, _ = io.WriteString(w, `{"success":true,"data":{"id":"pay-1","orderId":"o1","amount":"49.90","paymentMethod":"E_WALLET","status":"PENDING"}}`)
	})

	req, err := domain.NewPaymentRequest("o1", decimal.RequireFromString("49.90"), domain.PaymentMethodEWallet, "")
	require.NoError(t, err)

	p, err := client.CreatePayment(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "pay-1", p.ID)
	assert.Equal(t, domain.PaymentStatusPending, p.Status)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("49.9")))
}

func TestClient_PaymentWithoutData(t *testing.T) {
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":null}`)
	})
	ctx := context.Background()

	req, err := domain.NewPaymentRequest("o1", decimal.RequireFromString("49.90"), domain.PaymentMethodEWallet, "")
	require.NoError(t, err)

	_, err = client.CreatePayment(ctx, req)
	assert.ErrorIs(t, err, ErrDecode)
	_, err = client.ProcessPayment(ctx, "pay-1")
	assert.ErrorIs(t, err, ErrDecode)
	_, err = client.RetryPayment(ctx, "pay-1")
	assert.ErrorIs(t, err, ErrDecode)
	_, err = client.RefundPayment(ctx, "pay-1")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestClient_PaymentStatistics(t *testing.T) {
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":{"totalPayments":10,"completedCount":"7","failedCount":2,
			"refundedCount":1,"pendingCount":0,"totalAmount":"1000.50","completedAmount":700,"successRate":70.0}}`)
	})

	stats, err := client.PaymentStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalPayments)
	assert.Equal(t, int64(7), stats.CompletedCount)
	assert.True(t, stats.TotalAmount.Equal(decimal.RequireFromString("1000.5")))
	assert.InDelta(t, 70.0, stats.SuccessRate, 0.001)
}

func TestClient_RevenueByMethod(t *testing.T) {
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/payments/admin/revenue/by-method", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"data":[{"paymentMethod":"CREDIT_CARD","revenue":"10.5"}]}`)
	})

	rev, err := client.RevenueByMethod(context.Background())
	require.NoError(t, err)
	require.Len(t, rev, 1)
	assert.Equal(t, "CREDIT_CARD", rev[0].PaymentMethod)
	assert.True(t, rev[0].Revenue.Equal(decimal.RequireFromString("10.5")))
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 3; i++ {
		_, err := client.GetPayment(context.Background(), "p1")
		require.ErrorIs(t, err, ErrServer)
	}

	_, err := client.GetPayment(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls atomic.Int32
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 6; i++ {
		_, err := client.GetPayment(context.Background(), "p1")
		require.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, int32(6), calls.Load())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(Config{BaseURL: url, Timeout: time.Second}, nil)
	_, err := client.GetPayment(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_ResourceCRUD(t *testing.T) {
	var lastMethod, lastPath string
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		lastMethod, lastPath = r.Method, r.URL.Path
		switch r.Method {
		case http.MethodGet:
			writeEnvelope(w, http.StatusOK, []map[string]any{{"id": "c1", "name": "Books"}})
		case http.MethodDelete:
			writeEnvelope(w, http.StatusOK, nil)
		default:
			var in map[string]any
			_ = json.NewDecoder(r.Body).Decode(&in)
			in["id"] = "c2"
			writeEnvelope(w, http.StatusCreated, in)
		}
	})

	ctx := context.Background()
	page, err := client.Categories().List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Books", page.Content[0].Name)

	created, err := client.Categories().Create(ctx, &domain.Category{Name: "Games"})
	require.NoError(t, err)
	assert.Equal(t, "c2", created.ID)
	assert.Equal(t, "Games", created.Name)
	assert.Equal(t, "/api/v1/categories", lastPath)

	require.NoError(t, client.Categories().Delete(ctx, "c2"))
	assert.Equal(t, http.MethodDelete, lastMethod)
	assert.Equal(t, "/api/v1/categories/c2", lastPath)
}

func TestClient_AddCartItem(t *testing.T) {
	var gotBody AddCartItemRequest
	client := setupBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			assert.Equal(t, "/api/v1/carts/items", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"userId": "u1",
			"items":  []map[string]any{{"productId": "p1", "price": "4.50", "quantity": "2"}},
		})
	})

	_, err := client.AddCartItem(context.Background(), AddCartItemRequest{ProductID: "p1", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	cart, err := client.AddCartItem(context.Background(), AddCartItemRequest{ProductID: "p1", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "p1", gotBody.ProductID)
	assert.True(t, decimal.RequireFromString("9").Equal(cart.TotalPrice))
	assert.Equal(t, 2, cart.TotalItems)

	cart, err = client.MyCart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", cart.UserID)
}
