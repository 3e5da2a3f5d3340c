// Package category defines the fixed set of transaction categories and
// their display glyphs.
package category

// Default is the category preselected for new transactions.
const Default = "Food & Dining"

// DefaultIcon is the glyph used for categories without a mapping.
const DefaultIcon = "📦"

// Categories is the fixed, ordered set of category labels.
var Categories = []string{
	"Food & Dining",
	"Transport",
	"Shopping",
	"Bills & Utilities",
	"Entertainment",
	"Health",
	"Education",
	"Travel",
	"Salary",
	"Freelance",
	"Investment",
	"Other",
}

var icons = map[string]string{
	"Food & Dining":     "🍜",
	"Transport":         "🚌",
	"Shopping":          "🛍️",
	"Bills & Utilities": "💡",
	"Entertainment":     "🎬",
	"Health":            "💊",
	"Education":         "📚",
	"Travel":            "✈️",
	"Salary":            "💼",
	"Freelance":         "🧑‍💻",
	"Investment":        "📈",
	"Other":             "📦",
}

var valid = func() map[string]bool {
	m := make(map[string]bool, len(Categories))
	for _, c := range Categories {
		m[c] = true
	}
	return m
}()

// Valid reports whether label is one of the fixed categories.
func Valid(label string) bool {
	return valid[label]
}

// Icon returns the display glyph for a category label, falling back to
// DefaultIcon for unmapped labels.
func Icon(label string) string {
	if icon, ok := icons[label]; ok {
		return icon
	}
	return DefaultIcon
}
