// Package phone normalizes client and business numbers to digits with the country code.
package phone

import "strings"

const CountryCode = "55"

const (
	minDigits = 12
	maxDigits = 15
)

func digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize strips formatting and prefixes the country code to national numbers
// (area code plus 8 or 9 digit subscriber). Anything else is returned as bare digits.
func Normalize(raw string) string {
	d := digits(raw)
	switch {
	case strings.HasPrefix(d, CountryCode) && len(d) >= minDigits:
		return d
	case len(d) == 10 || len(d) == 11:
		return CountryCode + d
	default:
		return d
	}
}

func Valid(raw string) bool {
	n := len(Normalize(raw))
	return n >= minDigits && n <= maxDigits
}
