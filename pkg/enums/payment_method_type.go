package enums

import "fmt"

// PaymentMethodType tags the payment method union collected at checkout.
type PaymentMethodType string

const (
	PaymentMethodTypeCard      PaymentMethodType = "card"
	PaymentMethodTypePayPal    PaymentMethodType = "paypal"
	PaymentMethodTypeApplePay  PaymentMethodType = "apple_pay"
	PaymentMethodTypeGooglePay PaymentMethodType = "google_pay"
)

var validPaymentMethodTypes = []PaymentMethodType{
	PaymentMethodTypeCard,
	PaymentMethodTypePayPal,
	PaymentMethodTypeApplePay,
	PaymentMethodTypeGooglePay,
}

// String implements fmt.Stringer.
func (p PaymentMethodType) String() string {
	return string(p)
}

// IsValid reports whether the value is known.
func (p PaymentMethodType) IsValid() bool {
	for _, candidate := range validPaymentMethodTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethodType converts raw input into a PaymentMethodType.
func ParsePaymentMethodType(value string) (PaymentMethodType, error) {
	for _, candidate := range validPaymentMethodTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method type %q", value)
}
