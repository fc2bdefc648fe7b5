package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventPaymentUpdated = "PaymentUpdated"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type OrderCreatedPayload struct {
	OrderID  string    `json:"order_id"`
	UserID   string    `json:"user_id,omitempty"`
	Items    []ItemQty `json:"items"`
	Subtotal float64   `json:"subtotal"`
	Discount float64   `json:"discount"`
	Shipping float64   `json:"shipping"`
	Total    float64   `json:"total"`
}

type PaymentUpdatedPayload struct {
	OrderID          string        `json:"order_id"`
	PaymentStatus    PaymentStatus `json:"payment_status"`
	OrderStatus      Status        `json:"order_status"`
	PayherePaymentID string        `json:"payhere_payment_id,omitempty"`
	PaidAmount       *float64      `json:"paid_amount,omitempty"`
	Items            []ItemQty     `json:"items,omitempty"`
}
