package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency formats an amount as "$1,234.50": comma thousands separator,
// always two decimals, leading minus for negatives.
func FormatCurrency(amount decimal.Decimal) string {
	formatted := amount.Abs().StringFixed(2)

	parts := strings.SplitN(formatted, ".", 2)
	integerPart := parts[0]
	decimalPart := parts[1]

	var result []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		result = append([]string{integerPart[start:i]}, result...)
	}

	sign := ""
	if amount.Round(2).IsNegative() {
		sign = "-"
	}
	return sign + "$" + strings.Join(result, ",") + "." + decimalPart
}
