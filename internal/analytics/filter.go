package analytics

import (
	"sort"
	"strings"

	"finhelp/internal/models"
	"finhelp/internal/money"
)

// SortKey selects the ordering of the filtered transaction view.
type SortKey string

const (
	SortDateDesc   SortKey = "date-desc" // default: newest first
	SortDateAsc    SortKey = "date-asc"
	SortAmountDesc SortKey = "amount-desc"
	SortAmountAsc  SortKey = "amount-asc"
)

// Valid reports whether k is a known sort key.
func (k SortKey) Valid() bool {
	switch k {
	case SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc:
		return true
	}
	return false
}

// FilterAll matches every value of a filter dimension.
const FilterAll = "all"

// Query describes the filtered/sorted view of a transaction list.
// The zero value matches everything and sorts newest first.
type Query struct {
	Search   string
	Type     string // all | income | expense
	Category string // all | exact category label
	Sort     SortKey
}

// Filter returns the transactions matching every active filter of q,
// ordered by q.Sort with ties kept in input order. The input slice is
// never mutated. Applying the same query twice yields the same result.
func Filter(list []models.Transaction, q Query) []models.Transaction {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]models.Transaction, 0, len(list))
	for _, t := range list {
		if !matchSearch(t, search) {
			continue
		}
		if q.Type != "" && q.Type != FilterAll && string(t.Type) != q.Type {
			continue
		}
		if q.Category != "" && q.Category != FilterAll && t.Category != q.Category {
			continue
		}
		out = append(out, t)
	}

	sortView(out, q.Sort)
	return out
}

// matchSearch reports whether t matches the lowercased search text against
// title, category, or the decimal string form of the amount. Empty search
// matches everything.
func matchSearch(t models.Transaction, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), search) ||
		strings.Contains(strings.ToLower(t.Category), search) ||
		strings.Contains(money.Decimal(t.Amount), search)
}

func sortView(list []models.Transaction, key SortKey) {
	var less func(a, b models.Transaction) bool
	switch key {
	case SortDateAsc:
		less = func(a, b models.Transaction) bool { return a.Date < b.Date }
	case SortAmountDesc:
		less = func(a, b models.Transaction) bool { return a.Amount > b.Amount }
	case SortAmountAsc:
		less = func(a, b models.Transaction) bool { return a.Amount < b.Amount }
	default: // SortDateDesc
		less = func(a, b models.Transaction) bool { return a.Date > b.Date }
	}
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}
