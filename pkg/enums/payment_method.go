package enums

import "fmt"

// PaymentMethod describes how a buyer intends to settle an order. Payment
// happens off-platform; the method only drives the instructions shown to
// the buyer.
type PaymentMethod string

const (
	PaymentMethodVenmo  PaymentMethod = "venmo"
	PaymentMethodZelle  PaymentMethod = "zelle"
	PaymentMethodPaypal PaymentMethod = "paypal"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodVenmo,
	PaymentMethodZelle,
	PaymentMethodPaypal,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
