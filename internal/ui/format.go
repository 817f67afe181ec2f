package ui

import (
	"fmt"
	"strings"

	"cosmossdk.io/math"
)

// FormatNumber formats an integer with thousands separators
// Example: 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatAmount renders an integer minor-denom amount in the major denom,
// trimming trailing zeros: ("1500000", 6, "ATOM") -> "1.5 ATOM".
func FormatAmount(minor string, exponent int, denom string) string {
	amt, ok := math.NewIntFromString(strings.TrimSpace(minor))
	if !ok {
		return minor + " " + denom
	}
	d := math.LegacyNewDecFromIntWithPrec(amt, int64(exponent))
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if denom == "" {
		return s
	}
	return s + " " + strings.ToUpper(denom)
}
