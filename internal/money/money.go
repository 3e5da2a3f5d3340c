// Package money converts between decimal amount strings and integer cents.
// Amounts are parsed exactly once at the input boundary; everything
// downstream works on cents and never re-coerces.
package money

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrInvalidAmount is returned for malformed, zero, or negative amounts.
var ErrInvalidAmount = fmt.Errorf("invalid amount")

// ParseAmount converts a decimal string to cents with half-up rounding on
// the third decimal place. Only strictly positive amounts are accepted.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234, nil
//	ParseAmount("12.344") -> 1234, nil (rounds down)
//	ParseAmount("12.345") -> 1235, nil (rounds up)
//	ParseAmount("0")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Signs are rejected outright; amounts are positive by invariant.
		return 0, ErrInvalidAmount
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}

	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// Decimal renders cents as a plain decimal string ("1234.56"). This is the
// form matched by the transaction search.
func Decimal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
