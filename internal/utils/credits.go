package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCredits parses a user-supplied credit amount. Credits carry two
// decimal places; more precision is rejected rather than rounded.
func ParseCredits(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid credit amount")
	}
	if d.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("credit amounts use at most 2 decimal places")
	}
	return d, nil
}

// FormatCredits keeps consistent decimal formatting for credit fields.
func FormatCredits(d decimal.Decimal) string {
	return d.StringFixed(2)
}
