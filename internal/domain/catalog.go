package domain

import "github.com/shopspring/decimal"

type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
	Phone     string  `json:"phone,omitempty"`
	AvatarURL string  `json:"avatarUrl,omitempty"`
	Roles     RoleSet `json:"roles,omitempty"`
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   Timestamp `json:"createdAt"`
}

type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Stock         int             `json:"stock"`
	SKU           string          `json:"sku,omitempty"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	Category      *Category       `json:"category,omitempty"`
	CategoryID    string          `json:"categoryId,omitempty"`
	Status        string          `json:"status,omitempty"`
	Rating        float64         `json:"rating"`
	ReviewCount   int             `json:"reviewCount"`
	CreatedAt     Timestamp       `json:"createdAt"`
	UpdatedAt     Timestamp       `json:"updatedAt"`
}

type OrderItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	ShippingCost    decimal.Decimal `json:"shippingCost"`
	TaxAmount       decimal.Decimal `json:"taxAmount"`
	Status          string          `json:"status"`
	ShippingAddress string          `json:"shippingAddress,omitempty"`
	PhoneNumber     string          `json:"phoneNumber,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	PaymentStatus   string          `json:"paymentStatus,omitempty"`
	PaymentID       string          `json:"paymentId,omitempty"`
	ItemCount       int             `json:"itemCount"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       Timestamp       `json:"createdAt"`
	UpdatedAt       Timestamp       `json:"updatedAt"`
}

// Voucher is a discount code. DiscountType is PERCENTAGE or FIXED.
type Voucher struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Description   string          `json:"description,omitempty"`
	DiscountType  string          `json:"discountType"`
	DiscountValue decimal.Decimal `json:"discountValue"`
	MinPurchase   decimal.Decimal `json:"minPurchase"`
	MaxDiscount   decimal.Decimal `json:"maxDiscount"`
	UsageLimit    int             `json:"usageLimit"`
	UsageCount    int             `json:"usageCount"`
	StartDate     Timestamp       `json:"startDate"`
	EndDate       Timestamp       `json:"endDate"`
	Status        string          `json:"status,omitempty"`
	CreatedAt     Timestamp       `json:"createdAt"`
	UpdatedAt     Timestamp       `json:"updatedAt"`
	CreatedBy     string          `json:"createdBy,omitempty"`
	UpdatedBy     string          `json:"updatedBy,omitempty"`
}
