package models

import (
	"fmt"
	"strings"
)

// normalizeLiteral folds case and drops spaces, dashes and underscores so
// "ready_to_pickup" and "Ready To Pickup" compare equal.
func normalizeLiteral(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(raw)))
}

var paymentMethodAliases = map[string]PaymentMethod{
	"CASH":      PaymentCash,
	"PAYCASH":   PaymentCash,
	"UPI":       PaymentUPI,
	"ONLINE":    PaymentUPI,
	"PAYONLINE": PaymentUPI,
}

// ParsePaymentMethod maps a client literal onto a PaymentMethod.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	if m, ok := paymentMethodAliases[normalizeLiteral(raw)]; ok {
		return m, nil
	}
	return "", fmt.Errorf("Invalid payment method: %s. Valid values are CASH, UPI", raw)
}

func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	key := normalizeLiteral(raw)
	for _, s := range []PaymentStatus{PaymentPending, PaymentPaid, PaymentCancelled, PaymentRefunded} {
		if string(s) == key {
			return s, nil
		}
	}
	return "", fmt.Errorf("Invalid payment status: %s", raw)
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	key := normalizeLiteral(raw)
	for _, s := range orderStatuses {
		if normalizeLiteral(string(s)) == key {
			return s, nil
		}
	}
	return "", fmt.Errorf("Invalid order status: %s", raw)
}
