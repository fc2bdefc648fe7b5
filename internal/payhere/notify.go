package payhere

import (
	"net/url"
	"strconv"
	"strings"
)

// Notification is the form-encoded IPN body PayHere posts to the notify
// callback.
type Notification struct {
	MerchantID    string
	OrderID       string
	PaymentID     string
	PayhereAmount string
	Currency      string
	StatusCode    string
	MD5Sig        string
}

func ParseNotification(form url.Values) Notification {
	return Notification{
		MerchantID:    form.Get("merchant_id"),
		OrderID:       form.Get("order_id"),
		PaymentID:     form.Get("payment_id"),
		PayhereAmount: form.Get("payhere_amount"),
		Currency:      form.Get("payhere_currency"),
		StatusCode:    form.Get("status_code"),
		MD5Sig:        form.Get("md5sig"),
	}
}

// PaidAmount parses the reported amount, nil when absent or malformed.
func (n Notification) PaidAmount() *float64 {
	if n.PayhereAmount == "" {
		return nil
	}
	v, err := strconv.ParseFloat(n.PayhereAmount, 64)
	if err != nil {
		return nil
	}
	return &v
}

// VerifyNotification recomputes the IPN signature
//
//	MD5(merchant_id + order_id + payhere_amount + payhere_currency +
//	    status_code + MD5(secret))
//
// and compares it case-insensitively against md5sig. It returns
// ErrNotConfigured when no secret is set and ErrBadSignature on mismatch;
// it never panics, the caller always gets a defined answer.
func (c Config) VerifyNotification(n Notification) error {
	if c.MerchantSecret == "" {
		return ErrNotConfigured
	}
	secretDigest := md5Upper(c.MerchantSecret)
	local := md5Upper(n.MerchantID + n.OrderID + n.PayhereAmount + n.Currency + n.StatusCode + secretDigest)
	if local != strings.ToUpper(n.MD5Sig) {
		return ErrBadSignature
	}
	return nil
}
