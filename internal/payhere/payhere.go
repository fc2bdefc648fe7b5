// Package payhere builds signed PayHere checkout payloads and verifies
// inbound payment notifications. The MD5 chain is the gateway's wire
// contract; the exact field order and the two-decimal amount format must be
// preserved or signatures silently stop matching.
package payhere

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

var (
	ErrNotConfigured = errors.New("payhere merchant secret not configured")
	ErrBadSignature  = errors.New("invalid payhere signature")
)

type Config struct {
	MerchantID     string
	MerchantSecret string
	ReturnURL      string
	CancelURL      string
	NotifyURL      string
	Currency       string
	Sandbox        bool
}

// Checkout is the gateway-bound payment request. Field names follow the
// PayHere form contract.
type Checkout struct {
	Sandbox    bool   `json:"sandbox"`
	MerchantID string `json:"merchant_id"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
	NotifyURL  string `json:"notify_url"`
	OrderID    string `json:"order_id"`
	Items      string `json:"items"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Hash       string `json:"hash"`
}

// Customer identity fields for the checkout payload. Absent fields get the
// gateway-friendly defaults the storefront has always sent.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	City      string
}

// FormatAmount renders the amount with exactly two decimal digits. The same
// string must be both hashed and transmitted.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// BuildCheckout assembles the signed payment request for one order.
//
//	hash = MD5(merchant_id + order_id + amount + currency + MD5(secret))
//
// with every MD5 rendered as uppercase hex.
func (c Config) BuildCheckout(orderID string, total float64, cust Customer) (*Checkout, error) {
	if c.MerchantSecret == "" {
		return nil, ErrNotConfigured
	}

	label := orderID
	if len(label) > 8 {
		label = label[:8]
	}

	out := &Checkout{
		Sandbox:    c.Sandbox,
		MerchantID: c.MerchantID,
		ReturnURL:  c.ReturnURL,
		CancelURL:  c.CancelURL,
		NotifyURL:  c.NotifyURL,
		OrderID:    orderID,
		Items:      "Order #" + label,
		Amount:     FormatAmount(total),
		Currency:   c.Currency,
		FirstName:  defaultIfEmpty(cust.FirstName, "Customer"),
		LastName:   cust.LastName,
		Email:      defaultIfEmpty(cust.Email, "customer@example.com"),
		Phone:      defaultIfEmpty(cust.Phone, "0771234567"),
		Address:    defaultIfEmpty(cust.Address, "No. 1, Galle Road"),
		City:       defaultIfEmpty(cust.City, "Colombo"),
		Country:    "Sri Lanka",
	}

	secretDigest := md5Upper(c.MerchantSecret)
	out.Hash = md5Upper(out.MerchantID + out.OrderID + out.Amount + out.Currency + secretDigest)
	return out, nil
}

func defaultIfEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
