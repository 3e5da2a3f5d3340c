// Package analytics derives aggregate views from a transaction list.
// Every function here is pure: it reads the input slice, never mutates it,
// and the same input always yields the same output.
package analytics

import (
	"math"
	"sort"
	"time"

	"finhelp/internal/models"
)

// BreakdownLimit caps the category breakdown at the top spending groups.
// Groups beyond the limit are omitted entirely rather than merged into an
// "other" bucket.
const BreakdownLimit = 6

// SeriesLimit caps the monthly series at the most recent distinct months
// present in the data.
const SeriesLimit = 6

// Summary holds the income/expense/balance totals for a transaction list.
// All values are cents.
type Summary struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"`
}

// Summarize computes the totals for a transaction list.
// Balance is always Income - Expense.
func Summarize(list []models.Transaction) Summary {
	var s Summary
	for _, t := range list {
		switch t.Type {
		case models.TransactionTypeIncome:
			s.Income += t.Amount
		case models.TransactionTypeExpense:
			s.Expense += t.Amount
		}
	}
	s.Balance = s.Income - s.Expense
	return s
}

// SavingsRate returns the percentage of income left after expenses,
// rounded to the nearest integer. It is 0 exactly when income is 0 and may
// be negative when expenses exceed income. The value is not clamped; use
// ClampRate for the visual bar width.
func SavingsRate(s Summary) int {
	if s.Income == 0 {
		return 0
	}
	return int(math.Round(float64(s.Income-s.Expense) / float64(s.Income) * 100))
}

// ClampRate restricts a savings rate to [0,100] for display as a bar width.
// The numeric label keeps the unclamped value.
func ClampRate(rate int) int {
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

// CategoryTotal is one entry of the spending-by-category breakdown.
type CategoryTotal struct {
	Category string `json:"category"`
	Amount   int64  `json:"amount"`
}

// CategoryBreakdown groups expenses by category and returns the top
// BreakdownLimit groups by summed amount, descending. Amount ties are
// broken by category name so the result is a total order independent of
// input order.
func CategoryBreakdown(list []models.Transaction) []CategoryTotal {
	sums := make(map[string]int64)
	for _, t := range list {
		if t.Type != models.TransactionTypeExpense {
			continue
		}
		sums[t.Category] += t.Amount
	}

	totals := make([]CategoryTotal, 0, len(sums))
	for cat, amount := range sums {
		totals = append(totals, CategoryTotal{Category: cat, Amount: amount})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}
		return totals[i].Category < totals[j].Category
	})

	if len(totals) > BreakdownLimit {
		totals = totals[:BreakdownLimit]
	}
	return totals
}

// MonthPoint is one month of the income/expense time series.
type MonthPoint struct {
	Year    int    `json:"year"`
	Month   int    `json:"month"` // 1-12
	Label   string `json:"label"` // e.g. "Jan 24"
	Income  int64  `json:"income"`
	Expense int64  `json:"expense"`
}

// MonthlySeries groups all transactions by the calendar year-month of
// their user-assigned date (not createdAt), sorted chronologically
// ascending, keeping only the last SeriesLimit distinct months present in
// the data. Months with no transactions are not synthesized; sparse data
// simply has gaps.
func MonthlySeries(list []models.Transaction) []MonthPoint {
	points := make(map[string]*MonthPoint)
	for _, t := range list {
		d, err := time.Parse(models.DateLayout, t.Date)
		if err != nil {
			continue
		}
		key := t.Date[:7] // YYYY-MM
		p, ok := points[key]
		if !ok {
			p = &MonthPoint{
				Year:  d.Year(),
				Month: int(d.Month()),
				Label: d.Format("Jan 06"),
			}
			points[key] = p
		}
		switch t.Type {
		case models.TransactionTypeIncome:
			p.Income += t.Amount
		case models.TransactionTypeExpense:
			p.Expense += t.Amount
		}
	}

	keys := make([]string, 0, len(points))
	for k := range points {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > SeriesLimit {
		keys = keys[len(keys)-SeriesLimit:]
	}

	series := make([]MonthPoint, 0, len(keys))
	for _, k := range keys {
		series = append(series, *points[k])
	}
	return series
}
