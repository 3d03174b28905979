package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/shop-admin/internal/domain"
)

// flexDecimal accepts a JSON number, a numeric string, an empty string or null.
type flexDecimal struct {
	decimal.Decimal
}

func (d *flexDecimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, nullJSON) || bytes.Equal(b, []byte(`""`)) {
		d.Decimal = decimal.Zero
		return nil
	}
	if err := d.Decimal.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("decimal field: %w", err)
	}
	return nil
}

// flexInt accepts integers sent as numbers or strings, including "2.0".
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	var d flexDecimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("integer field: %w", err)
	}
	if !d.Decimal.Equal(d.Decimal.Truncate(0)) {
		return fmt.Errorf("integer field: %s is not whole", d.Decimal)
	}
	*n = flexInt(d.Decimal.IntPart())
	return nil
}

// flexString accepts ids sent either as strings or numbers.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, nullJSON) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(strings.TrimSpace(string(b)))
	return nil
}

type cartItemDTO struct {
	ProductID   flexString  `json:"productId"`
	ProductName string      `json:"productName"`
	Price       flexDecimal `json:"price"`
	Quantity    flexInt     `json:"quantity"`
	Subtotal    flexDecimal `json:"subtotal"`
	ImageURL    string      `json:"imageUrl"`
}

type cartDTO struct {
	UserID     flexString    `json:"userId"`
	Items      []cartItemDTO `json:"items"`
	TotalPrice flexDecimal   `json:"totalPrice"`
	TotalItems flexInt       `json:"totalItems"`
}

// toDomain is the single place where cart payloads become domain carts;
// totals are always recomputed from the items.
func (c cartDTO) toDomain(userID string) *domain.Cart {
	cart := &domain.Cart{
		UserID: string(c.UserID),
		Items:  make([]domain.CartItem, 0, len(c.Items)),
	}
	if cart.UserID == "" {
		cart.UserID = userID
	}
	for _, it := range c.Items {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:   string(it.ProductID),
			ProductName: it.ProductName,
			Price:       it.Price.Decimal,
			Quantity:    int(it.Quantity),
			Subtotal:    it.Subtotal.Decimal,
			ImageURL:    it.ImageURL,
		})
	}
	cart.Recompute()
	return cart
}

type paymentDTO struct {
	ID            flexString           `json:"id"`
	OrderID       flexString           `json:"orderId"`
	UserID        flexString           `json:"userId"`
	Amount        flexDecimal          `json:"amount"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod"`
	Status        domain.PaymentStatus `json:"status"`
	TransactionID string               `json:"transactionId"`
	Description   string               `json:"description"`
	CreatedAt     domain.Timestamp     `json:"createdAt"`
	UpdatedAt     domain.Timestamp     `json:"updatedAt"`
}

func (p paymentDTO) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:            string(p.ID),
		OrderID:       string(p.OrderID),
		UserID:        string(p.UserID),
		Amount:        p.Amount.Decimal,
		PaymentMethod: p.PaymentMethod,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type statisticsDTO struct {
	TotalPayments   flexInt     `json:"totalPayments"`
	CompletedCount  flexInt     `json:"completedCount"`
	FailedCount     flexInt     `json:"failedCount"`
	RefundedCount   flexInt     `json:"refundedCount"`
	PendingCount    flexInt     `json:"pendingCount"`
	TotalAmount     flexDecimal `json:"totalAmount"`
	CompletedAmount flexDecimal `json:"completedAmount"`
	SuccessRate     flexDecimal `json:"successRate"`
}

func (s statisticsDTO) toDomain() *domain.PaymentStatistics {
	rate, _ := s.SuccessRate.Float64()
	return &domain.PaymentStatistics{
		TotalPayments:   int64(s.TotalPayments),
		CompletedCount:  int64(s.CompletedCount),
		FailedCount:     int64(s.FailedCount),
		RefundedCount:   int64(s.RefundedCount),
		PendingCount:    int64(s.PendingCount),
		TotalAmount:     s.TotalAmount.Decimal,
		CompletedAmount: s.CompletedAmount.Decimal,
		SuccessRate:     rate,
	}
}

type methodRevenueDTO struct {
	PaymentMethod string      `json:"paymentMethod"`
	Revenue       flexDecimal `json:"revenue"`
}
