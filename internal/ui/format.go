package ui

import (
	"fmt"
	"strings"
	"time"
)

// FormatCurrency renders an amount with its currency symbol and thousands
// separators.
func FormatCurrency(amount float64, currency string) string {
	value := groupThousands(fmt.Sprintf("%.2f", amount))
	switch currency {
	case "TRY", "":
		return "₺" + value
	case "USD":
		return "$" + value
	case "EUR":
		return "€" + value
	default:
		return value + " " + currency
	}
}

// FormatPercent renders a signed percentage.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%+.2f%%", value)
}

// FormatInt renders an integer with thousands separators.
func FormatInt(n int64) string {
	return groupThousands(fmt.Sprintf("%d", n))
}

// FormatTimestamp renders a timestamp for table display.
func FormatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format("15:04:05")
}

// FormatDateTime renders a full date-time.
func FormatDateTime(value string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.Format("02.01.2006 15:04:05")
		}
	}
	if value == "" {
		return "-"
	}
	return value
}

// groupThousands inserts comma separators into the integer part of a
// formatted number.
func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if hasFrac {
		out += "." + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
