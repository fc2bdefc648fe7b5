package promo

import (
	"errors"
	"strings"
	"time"
)

const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

var (
	ErrNotFound      = errors.New("promo code not found")
	ErrCodeExists    = errors.New("promo code already exists")
	ErrInactive      = errors.New("promo code is not active")
	ErrNotStarted    = errors.New("promo not yet active")
	ErrExpired       = errors.New("promo expired")
	ErrUsageLimit    = errors.New("promo usage limit reached")
	ErrFirstTimeOnly = errors.New("promo valid for first time customers only")
)

// MinAmountError keeps the threshold so callers can render it in the
// rejection message.
type MinAmountError struct {
	Min float64
}

func (e *MinAmountError) Error() string { return "minimum cart amount not met" }

type Promo struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	DiscountType  string     `json:"discountType"`
	DiscountValue float64    `json:"discountValue"`
	MinAmount     float64    `json:"minAmount"`
	MaxUses       *int       `json:"maxUses"` // nil = unlimited
	Uses          int        `json:"uses"`
	FirstTimeOnly bool       `json:"firstTimeOnly"`
	ValidFrom     *time.Time `json:"validFrom"`
	ValidTo       *time.Time `json:"validTo"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Normalize canonicalizes a promo code: codes are matched case-insensitively
// and stored upper-cased.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
