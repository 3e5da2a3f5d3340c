package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finhelp/internal/analytics"
	"finhelp/internal/format"
	"finhelp/internal/identity"
	"finhelp/internal/store"
)

// DashboardHandler serves the aggregate views: totals, savings rate,
// category breakdown, and the monthly series.
type DashboardHandler struct {
	store    *store.Store
	sessions *identity.Manager
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(txStore *store.Store, sessions *identity.Manager) *DashboardHandler {
	return &DashboardHandler{store: txStore, sessions: sessions}
}

// BreakdownEntry is one category of the spending breakdown with display
// strings attached.
type BreakdownEntry struct {
	Category      string `json:"category"`
	Icon          string `json:"icon"`
	Amount        int64  `json:"amount"`
	AmountDisplay string `json:"amount_display"`
}

// Get returns the dashboard aggregates, all derived from the store's
// current snapshot.
func (h *DashboardHandler) Get(c *gin.Context) {
	if _, err := requireSession(c, h.sessions); err != nil {
		respondWithError(c, err)
		return
	}

	list := h.store.Transactions()
	summary := analytics.Summarize(list)
	rate := analytics.SavingsRate(summary)

	breakdown := analytics.CategoryBreakdown(list)
	entries := make([]BreakdownEntry, 0, len(breakdown))
	for _, b := range breakdown {
		entries = append(entries, BreakdownEntry{
			Category:      b.Category,
			Icon:          format.CategoryIcon(b.Category),
			Amount:        b.Amount,
			AmountDisplay: format.Currency(b.Amount),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"summary": gin.H{
			"income":          summary.Income,
			"expense":         summary.Expense,
			"balance":         summary.Balance,
			"income_display":  format.Currency(summary.Income),
			"expense_display": format.Currency(summary.Expense),
			"balance_display": format.Currency(summary.Balance),
		},
		// savings_rate is the true value; savings_bar is clamped to [0,100]
		// for the visual fill width only.
		"savings_rate": rate,
		"savings_bar":  analytics.ClampRate(rate),
		"breakdown":    entries,
		"monthly":      analytics.MonthlySeries(list),
	})
}
