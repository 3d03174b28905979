package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

type Cart struct {
	UserID     string          `json:"userId"`
	Items      []CartItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	TotalItems int             `json:"totalItems"`
}

func EmptyCart(userID string) *Cart {
	return &Cart{
		UserID:     userID,
		Items:      []CartItem{},
		TotalPrice: decimal.Zero,
	}
}

// Recompute derives subtotals and totals from item prices and quantities,
// ignoring whatever totals the server sent.
func (c *Cart) Recompute() {
	if c.Items == nil {
		c.Items = []CartItem{}
	}
	total := decimal.Zero
	count := 0
	for i := range c.Items {
		item := &c.Items[i]
		item.Subtotal = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(item.Subtotal)
		count += item.Quantity
	}
	c.TotalPrice = total
	c.TotalItems = count
}

// AdminCartView is one row of the admin carts table.
type AdminCartView struct {
	UserID     string          `json:"userId"`
	UserName   string          `json:"userName"`
	UserEmail  string          `json:"userEmail"`
	Items      []CartItem      `json:"items"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	TotalItems int             `json:"totalItems"`
	LoadFailed bool            `json:"loadFailed,omitempty"`
}

func NewAdminCartView(user User, cart *Cart) *AdminCartView {
	v := &AdminCartView{
		UserID:    user.ID,
		UserName:  user.FullName(),
		UserEmail: user.Email,
	}
	return v.fill(cart)
}

// PlaceholderView stands in for a user whose cart could not be loaded.
func PlaceholderView(user User) *AdminCartView {
	return &AdminCartView{
		UserID:     user.ID,
		UserName:   user.FullName(),
		UserEmail:  user.Email,
		Items:      []CartItem{},
		TotalPrice: decimal.Zero,
		LoadFailed: true,
	}
}

// WithCart returns a new row for the same user carrying the given cart.
func (v *AdminCartView) WithCart(cart *Cart) *AdminCartView {
	next := &AdminCartView{
		UserID:    v.UserID,
		UserName:  v.UserName,
		UserEmail: v.UserEmail,
	}
	return next.fill(cart)
}

func (v *AdminCartView) fill(cart *Cart) *AdminCartView {
	if cart == nil {
		cart = EmptyCart(v.UserID)
	}
	v.Items = append([]CartItem{}, cart.Items...)
	v.TotalPrice = cart.TotalPrice
	v.TotalItems = cart.TotalItems
	return v
}

func (v *AdminCartView) HasItem(productID string) bool {
	for _, item := range v.Items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

func (u User) FullName() string {
	return strings.TrimSpace(u.Firstname + " " + u.Lastname)
}
