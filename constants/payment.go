package constants

import "strings"

// PaymentMethod is the canonical payment method on a normalized invoice record.
type PaymentMethod string

// Stable values (these exact strings appear in extracted records).
const (
	PaymentCash  PaymentMethod = "cash"
	PaymentPix   PaymentMethod = "pix"
	PaymentCard  PaymentMethod = "card"
	PaymentOther PaymentMethod = "other"
)

var allPaymentMethods = []PaymentMethod{
	PaymentCash,
	PaymentPix,
	PaymentCard,
	PaymentOther,
}

// PaymentMethodStrings returns the enum as plain strings, in declaration order.
func PaymentMethodStrings() []string {
	result := make([]string, len(allPaymentMethods))
	for i, pm := range allPaymentMethods {
		result[i] = string(pm)
	}
	return result
}

// CanonicalizePaymentMethod lowercases and trims the input and maps it onto the
// enum. Unrecognized labels coerce to PaymentOther with ok=false; routing only
// needs the cash/non-cash distinction, so an unknown label never fails a file.
func CanonicalizePaymentMethod(input string) (PaymentMethod, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return PaymentOther, false
	}

	for _, pm := range allPaymentMethods {
		if normalized == string(pm) {
			return pm, true
		}
	}
	return PaymentOther, false
}
