// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/goalfinch/internal/config"

	"github.com/shopspring/decimal"
)

// FormatValue rounds v to places decimals (half away from zero), drops
// trailing zeros, and groups the integer part with commas.
// e.g., (1234.5, 1) -> "1,234.5", (6.0, 2) -> "6"
func FormatValue(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	places = min(max(places, 0), config.MaxRounding)
	s := decimal.NewFromFloat(v).Round(int32(places)).String() //nolint:gosec // clamped above

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + s
	}
	out := sign + FormatNumber(n)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// FormatAmount is FormatValue followed by the units, if any.
func FormatAmount(v float64, places int, units string) string {
	units = strings.TrimSpace(units)
	if units == "" {
		return FormatValue(v, places)
	}
	return FormatValue(v, places) + " " + units
}

// FormatSigned formats a difference with an explicit sign.
// e.g., 5.857 -> "+5.9", -2.45 -> "-2.5" (one place)
func FormatSigned(v float64, places int) string {
	if v < 0 {
		return "-" + FormatValue(-v, places)
	}
	return "+" + FormatValue(v, places)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
