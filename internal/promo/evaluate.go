package promo

import "time"

type Result struct {
	DiscountAmount float64
	NewTotal       float64
}

// Evaluate checks eligibility and computes the discount for a cart total.
// It is pure: consuming a redemption is the repo's job (Redeem), so the
// usage counter check here is only a pre-check and the atomic update has
// the final say under concurrency.
func Evaluate(p *Promo, cartTotal float64, isFirstOrder bool, now time.Time) (Result, error) {
	if !p.Active {
		return Result{}, ErrInactive
	}
	if p.ValidFrom != nil && p.ValidFrom.After(now) {
		return Result{}, ErrNotStarted
	}
	if p.ValidTo != nil && p.ValidTo.Before(now) {
		return Result{}, ErrExpired
	}
	if p.MaxUses != nil && p.Uses >= *p.MaxUses {
		return Result{}, ErrUsageLimit
	}
	if cartTotal < p.MinAmount {
		return Result{}, &MinAmountError{Min: p.MinAmount}
	}
	if p.FirstTimeOnly && !isFirstOrder {
		return Result{}, ErrFirstTimeOnly
	}

	var discount float64
	if p.DiscountType == DiscountPercent {
		discount = cartTotal * p.DiscountValue / 100
	} else {
		discount = p.DiscountValue
	}
	// never discount below zero or beyond the cart
	if discount > cartTotal {
		discount = cartTotal
	}
	if discount < 0 {
		discount = 0
	}

	return Result{DiscountAmount: discount, NewTotal: cartTotal - discount}, nil
}
