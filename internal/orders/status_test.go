package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStatusTerminal(t *testing.T) {
	assert.False(t, PaymentPending.Terminal())
	for _, s := range []PaymentStatus{PaymentPaid, PaymentCancelled, PaymentFailed, PaymentChargedBack} {
		assert.True(t, s.Terminal(), string(s))
	}
}

func TestMapGatewayStatus(t *testing.T) {
	for _, tc := range []struct {
		code string
		ps   PaymentStatus
		os   Status
	}{
		{"2", PaymentPaid, StatusProcessing},
		{"0", PaymentPending, StatusCreated},
		{"-1", PaymentCancelled, StatusCancelled},
		{"-2", PaymentFailed, StatusCancelled},
		{"-3", PaymentChargedBack, StatusCancelled},
		{"99", PaymentFailed, StatusCancelled},
		{"", PaymentFailed, StatusCancelled},
	} {
		ps, os := MapGatewayStatus(tc.code)
		assert.Equal(t, tc.ps, ps, "code %q", tc.code)
		assert.Equal(t, tc.os, os, "code %q", tc.code)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusCreated, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, ValidStatus(s), string(s))
	}
	assert.False(t, ValidStatus("refunded"))
	assert.False(t, ValidStatus(""))
}
