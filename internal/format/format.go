// Package format renders raw values as display strings.
package format

import (
	"time"

	"finhelp/internal/category"
	"finhelp/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Currency renders an amount in cents as localized USD text, e.g. 123456
// becomes "$1,234.56". Negative amounts keep the sign before the symbol.
func Currency(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return printer.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// Date renders an ISO calendar date (YYYY-MM-DD) in a short human-readable
// form, e.g. "Jan 5, 2024". Malformed input is returned unchanged.
func Date(isoDate string) string {
	d, err := time.Parse(models.DateLayout, isoDate)
	if err != nil {
		return isoDate
	}
	return d.Format("Jan 2, 2006")
}

// CategoryIcon returns the display glyph for a category label.
func CategoryIcon(label string) string {
	return category.Icon(label)
}
