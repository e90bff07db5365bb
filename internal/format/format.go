// Package format renders durations, counts and costs for terminal output.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DurationHuman formats a duration for human display.
// Examples: "2h", "30m", "1h30m", "45s"
func DurationHuman(d time.Duration) string {
	if d >= time.Hour {
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes > 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm", d/time.Minute)
	}
	return fmt.Sprintf("%ds", d/time.Second)
}

// Count formats an integer with thousands separators.
// Examples: "950", "12,345", "-1,000"
func Count(n int64) string {
	if n < 0 {
		return "-" + Count(-n)
	}
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Tokens formats a token count for display.
// Examples: "1 token", "2,000 tokens"
func Tokens(n int) string {
	if n == 1 {
		return "1 token"
	}
	return Count(int64(n)) + " tokens"
}

// Cost formats a USD amount with six decimals, the precision of per-token pricing.
// Example: "$0.000300"
func Cost(usd float64) string {
	return fmt.Sprintf("$%.6f", usd)
}

// Percent formats a fraction in [0, 1] as a percentage with one decimal.
// Example: 0.753 -> "75.3%"
func Percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
