package utils

import (
	"fmt"
	"math"
	"strings"
)

// RoundCurrency rounds half away from zero to 2 decimal places.
func RoundCurrency(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// FormatCurrencyBRL formats a value as Brazilian Real.
// Example: 1234.5 -> "R$ 1.234,50"
func FormatCurrencyBRL(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	formatted := fmt.Sprintf("%.2f", RoundCurrency(amount))
	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	// thousands separator
	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	return fmt.Sprintf("%sR$ %s,%s", sign, strings.Join(groups, "."), decimalPart)
}
