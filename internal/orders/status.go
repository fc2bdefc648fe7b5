package orders

// PaymentStatus is owned by the reconciliation path. Once a terminal value
// is reached a later notification may not regress it.
type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "pending"
	PaymentPaid        PaymentStatus = "paid"
	PaymentCancelled   PaymentStatus = "cancelled"
	PaymentFailed      PaymentStatus = "failed"
	PaymentChargedBack PaymentStatus = "charged_back"
)

func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentPaid, PaymentCancelled, PaymentFailed, PaymentChargedBack:
		return true
	}
	return false
}

// Status is the fulfillment status, mutated by admin tooling after payment.
// Any value may be set from any other; there is no transition graph here.
type Status string

const (
	StatusCreated    Status = "created"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusCreated, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// MapGatewayStatus translates a PayHere status_code into the pair of
// statuses to apply. Unrecognized codes are treated as failed payments.
func MapGatewayStatus(code string) (PaymentStatus, Status) {
	switch code {
	case "2":
		return PaymentPaid, StatusProcessing
	case "0":
		return PaymentPending, StatusCreated
	case "-1":
		return PaymentCancelled, StatusCancelled
	case "-2":
		return PaymentFailed, StatusCancelled
	case "-3":
		return PaymentChargedBack, StatusCancelled
	default:
		return PaymentFailed, StatusCancelled
	}
}
