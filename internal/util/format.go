package util

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatMoney formats a currency amount with thousands separators
func FormatMoney(amount float64) string {
	return "$" + humanize.CommafWithDigits(amount, 2)
}

// FormatCount formats a row count with thousands separators
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatPercent formats a ratio as a percentage with one decimal
func FormatPercent(part, total float64) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", part/total*100)
}
