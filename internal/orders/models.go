package orders

import (
	"errors"
	"math"
	"time"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrEmptyItems   = errors.New("cart items are required")
	ErrInvalidTotal = errors.New("invalid total amount")
)

// Item is a value snapshot of a product at order time. Later catalog edits
// must never change what a historical order shows, so name/price/image are
// copied, not referenced.
type Item struct {
	ProductID    string  `json:"productId"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"imageUrl"`
	Qty          int     `json:"qty"`
	VariantColor string  `json:"variantColor,omitempty"`
	Size         string  `json:"size,omitempty"`
}

type CustomerInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
}

type Order struct {
	ID               string        `json:"id"`
	UserID           string        `json:"userId,omitempty"`
	Items            []Item        `json:"items"`
	Subtotal         float64       `json:"subtotal"`
	Discount         float64       `json:"discount"`
	Shipping         float64       `json:"shipping"`
	Total            float64       `json:"total"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	OrderStatus      Status        `json:"orderStatus"`
	PayherePaymentID string        `json:"payherePaymentId,omitempty"`
	ActualPaidAmount *float64      `json:"actualPaidAmount,omitempty"`
	CustomerInfo     CustomerInfo  `json:"customerInfo"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// NewOrder is the creation input. Total is computed server-side from
// subtotal, discount and shipping; a client-supplied total is never trusted.
type NewOrder struct {
	UserID       string
	Items        []Item
	Subtotal     float64
	Discount     float64
	Shipping     float64
	CustomerInfo CustomerInfo
}

// Validate checks the creation input and returns the authoritative total.
// A discount that pushes the total to zero or below is rejected, not
// clamped.
func (in NewOrder) Validate() (float64, error) {
	if len(in.Items) == 0 {
		return 0, ErrEmptyItems
	}
	total := in.Subtotal - in.Discount + in.Shipping
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return 0, ErrInvalidTotal
	}
	return total, nil
}
