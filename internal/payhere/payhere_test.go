package payhere

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "PH_TEST_SECRET_2024"

// Known-good signature for merchant 100001 / ORDER123 / 270000.00 / LKR /
// status 2 under testSecret, precomputed with the gateway's algorithm.
const fixtureSig = "73A1B3932F10E13AF8F1BE40D26CD478"

func testConfig() Config {
	return Config{
		MerchantID:     "100001",
		MerchantSecret: testSecret,
		ReturnURL:      "https://shop.example/checkout/return",
		CancelURL:      "https://shop.example/checkout/cancel",
		NotifyURL:      "https://shop.example/api/orders/payhere-notify",
		Currency:       "LKR",
		Sandbox:        true,
	}
}

func fixtureNotification() Notification {
	return Notification{
		MerchantID:    "100001",
		OrderID:       "ORDER123",
		PaymentID:     "320025",
		PayhereAmount: "270000.00",
		Currency:      "LKR",
		StatusCode:    "2",
		MD5Sig:        fixtureSig,
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "270000.00", FormatAmount(270000))
	assert.Equal(t, "4500.50", FormatAmount(4500.5))
	assert.Equal(t, "0.10", FormatAmount(0.1))
}

func TestBuildCheckoutHash(t *testing.T) {
	cfg := testConfig()
	co, err := cfg.BuildCheckout("ORDER123", 270000, Customer{FirstName: "Nimal"})
	require.NoError(t, err)

	assert.Equal(t, "270000.00", co.Amount)
	// MD5(merchant_id + order_id + amount + currency + MD5(secret)), upper hex
	assert.Equal(t, "68CDE6518CC135BF79EAE434A3560A1C", co.Hash)
	assert.Equal(t, "Order #ORDER123", co.Items)
}

func TestBuildCheckoutDefaultsCustomerFields(t *testing.T) {
	cfg := testConfig()
	co, err := cfg.BuildCheckout("ORDER123", 100, Customer{})
	require.NoError(t, err)

	assert.Equal(t, "Customer", co.FirstName)
	assert.Equal(t, "customer@example.com", co.Email)
	assert.Equal(t, "0771234567", co.Phone)
	assert.Equal(t, "No. 1, Galle Road", co.Address)
	assert.Equal(t, "Colombo", co.City)
	assert.Equal(t, "Sri Lanka", co.Country)
}

func TestBuildCheckoutTruncatesItemLabel(t *testing.T) {
	cfg := testConfig()
	co, err := cfg.BuildCheckout("0b49e917-5a3c-4a11-b8f1-2e1f6b1f0001", 100, Customer{})
	require.NoError(t, err)
	assert.Equal(t, "Order #0b49e917", co.Items)
}

func TestBuildCheckoutRequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.MerchantSecret = ""
	_, err := cfg.BuildCheckout("ORDER123", 100, Customer{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestVerifyNotificationAcceptsFixture(t *testing.T) {
	cfg := testConfig()
	assert.NoError(t, cfg.VerifyNotification(fixtureNotification()))
}

func TestVerifyNotificationIsCaseInsensitive(t *testing.T) {
	cfg := testConfig()
	n := fixtureNotification()
	n.MD5Sig = strings.ToLower(n.MD5Sig)
	assert.NoError(t, cfg.VerifyNotification(n))
}

func TestVerifyNotificationRejectsTamperedSig(t *testing.T) {
	cfg := testConfig()
	n := fixtureNotification()
	// flip a single character
	n.MD5Sig = "8" + n.MD5Sig[1:]
	assert.ErrorIs(t, cfg.VerifyNotification(n), ErrBadSignature)
}

func TestVerifyNotificationRejectsChangedAmount(t *testing.T) {
	cfg := testConfig()
	n := fixtureNotification()
	n.PayhereAmount = "270000.01"
	assert.ErrorIs(t, cfg.VerifyNotification(n), ErrBadSignature)
}

func TestVerifyNotificationRequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.MerchantSecret = ""
	assert.ErrorIs(t, cfg.VerifyNotification(fixtureNotification()), ErrNotConfigured)
}

func TestParseNotification(t *testing.T) {
	form := url.Values{}
	form.Set("merchant_id", "100001")
	form.Set("order_id", "ORDER123")
	form.Set("payment_id", "320025")
	form.Set("payhere_amount", "270000.00")
	form.Set("payhere_currency", "LKR")
	form.Set("status_code", "2")
	form.Set("md5sig", fixtureSig)

	n := ParseNotification(form)
	assert.Equal(t, fixtureNotification(), n)

	require.NotNil(t, n.PaidAmount())
	assert.Equal(t, 270000.00, *n.PaidAmount())
}

func TestPaidAmountMalformed(t *testing.T) {
	n := Notification{PayhereAmount: "abc"}
	assert.Nil(t, n.PaidAmount())
	n.PayhereAmount = ""
	assert.Nil(t, n.PaidAmount())
}
