package order

import "github.com/xenking/foodking/internal/domain/validation"

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending        Status = "Pending"
	StatusAccepted       Status = "Accepted"
	StatusPreparing      Status = "Preparing"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
	StatusRejected       Status = "Rejected"
)

// Statuses lists every order status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusAccepted,
	StatusPreparing,
	StatusOutForDelivery,
	StatusDelivered,
	StatusRejected,
}

// transitions is the order lifecycle. Delivered and Rejected are terminal.
var transitions = map[Status][]Status{
	StatusPending:        {StatusAccepted, StatusRejected},
	StatusAccepted:       {StatusPreparing, StatusRejected},
	StatusPreparing:      {StatusOutForDelivery, StatusRejected},
	StatusOutForDelivery: {StatusDelivered, StatusRejected},
	StatusDelivered:      {},
	StatusRejected:       {},
}

// ParseStatus converts s to a Status.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return "", validation.Required("status")
	}
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", &InvalidStatusError{Status: s}
	}
	return st, nil
}

// Next returns the statuses reachable from s.
func (s Status) Next() []Status {
	return transitions[s]
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether the lifecycle allows moving from -> to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentMethod is how the customer pays.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentOnline PaymentMethod = "Online"
)

// ParsePaymentMethod converts s to a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentCOD, PaymentOnline:
		return m, nil
	case "":
		return "", validation.Required("paymentMethod")
	default:
		return "", validation.New("paymentMethod", "must be COD or Online")
	}
}

// PaymentStatus tracks settlement of an order.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
)

// InitialPaymentStatus returns the payment status of a new order: online
// orders arrive already paid.
func InitialPaymentStatus(m PaymentMethod) PaymentStatus {
	if m == PaymentOnline {
		return PaymentCompleted
	}
	return PaymentPending
}
