package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"finhelp/internal/analytics"
	apperrors "finhelp/internal/errors"
	"finhelp/internal/format"
	"finhelp/internal/identity"
	"finhelp/internal/models"
	"finhelp/internal/money"
	"finhelp/internal/store"
)

// TransactionHandler handles transaction CRUD and the filtered list view.
type TransactionHandler struct {
	store    *store.Store
	sessions *identity.Manager
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(txStore *store.Store, sessions *identity.Manager) *TransactionHandler {
	return &TransactionHandler{store: txStore, sessions: sessions}
}

// ListRequest holds the filter/sort parameters of the list view.
type ListRequest struct {
	Search   string `form:"search"`
	Type     string `form:"type" binding:"omitempty,type_filter"`
	Category string `form:"category" binding:"omitempty,category_filter"`
	Sort     string `form:"sort" binding:"omitempty,sort_key"`
}

// CreateRequest represents the create-transaction payload. Amount is
// decimal text, parsed exactly once here at the boundary.
type CreateRequest struct {
	Title    string `json:"title" binding:"required,max=255"`
	Amount   string `json:"amount" binding:"required"`
	Type     string `json:"type" binding:"required,transaction_type"`
	Category string `json:"category" binding:"omitempty,category"`
	Date     string `json:"date" binding:"omitempty,txdate"`
	Note     string `json:"note" binding:"max=1000"`
}

// TransactionView is a list entry with display strings attached.
type TransactionView struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title"`
	Amount        string                 `json:"amount"`
	AmountDisplay string                 `json:"amount_display"`
	Type          models.TransactionType `json:"type"`
	Category      string                 `json:"category"`
	Icon          string                 `json:"icon"`
	Date          string                 `json:"date"`
	DateDisplay   string                 `json:"date_display"`
	Note          string                 `json:"note,omitempty"`
}

// List returns the filtered, sorted transaction view. Filtering is pure
// and recomputed per request from the store's current snapshot.
func (h *TransactionHandler) List(c *gin.Context) {
	if _, err := requireSession(c, h.sessions); err != nil {
		respondWithError(c, err)
		return
	}

	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	query := analytics.Query{
		Search:   req.Search,
		Type:     req.Type,
		Category: req.Category,
		Sort:     analytics.SortKey(req.Sort),
	}
	filtered := analytics.Filter(h.store.Transactions(), query)

	views := make([]TransactionView, 0, len(filtered))
	for _, t := range filtered {
		views = append(views, viewFor(t))
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": views,
		"count":        len(views),
	})
}

// Create validates and submits a new transaction. The record becomes
// visible through the next snapshot, so the response is 202 Accepted.
func (h *TransactionHandler) Create(c *gin.Context) {
	if _, err := requireSession(c, h.sessions); err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	amount, err := money.ParseAmount(req.Amount)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a positive decimal"))
		return
	}

	input := store.CreateInput{
		Title:    req.Title,
		Amount:   amount,
		Type:     models.TransactionType(req.Type),
		Category: req.Category,
		Date:     req.Date,
		Note:     req.Note,
	}
	if err := h.store.Create(c.Request.Context(), input); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

// immutableFields are rejected when present in an update payload.
var immutableFields = []string{"id", "owner_id", "created_at", "ownerId", "createdAt"}

// Update applies a partial update. The payload is inspected as raw JSON so
// immutable fields can be rejected when present rather than silently dropped.
func (h *TransactionHandler) Update(c *gin.Context) {
	if _, err := requireSession(c, h.sessions); err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if id == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction id is required"))
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	for _, field := range immutableFields {
		if _, present := raw[field]; present {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, field+" is immutable"))
			return
		}
	}

	patch, err := patchFromJSON(raw)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.store.Update(c.Request.Context(), id, patch); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

// Delete removes a transaction. Hard delete; the list updates on the next
// snapshot.
func (h *TransactionHandler) Delete(c *gin.Context) {
	if _, err := requireSession(c, h.sessions); err != nil {
		respondWithError(c, err)
		return
	}

	id := c.Param("id")
	if id == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction id is required"))
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

// patchFromJSON converts the mutable fields of an update payload into a
// store.Patch. Unknown fields are ignored.
func patchFromJSON(raw map[string]json.RawMessage) (store.Patch, error) {
	var patch store.Patch

	if msg, ok := raw["title"]; ok {
		var title string
		if err := json.Unmarshal(msg, &title); err != nil {
			return patch, apperrors.WithMessage(apperrors.ErrInvalidInput, "title must be a string")
		}
		patch.Title = &title
	}
	if msg, ok := raw["amount"]; ok {
		var text string
		if err := json.Unmarshal(msg, &text); err != nil {
			return patch, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a decimal string")
		}
		cents, err := money.ParseAmount(text)
		if err != nil {
			return patch, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be a positive decimal")
		}
		patch.Amount = &cents
	}
	if msg, ok := raw["type"]; ok {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return patch, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be a string")
		}
		txType := models.TransactionType(s)
		patch.Type = &txType
	}
	if msg, ok := raw["category"]; ok {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return patch, apperrors.WithMessage(apperrors.ErrInvalidInput, "category must be a string")
		}
		patch.Category = &s
	}
	if msg, ok := raw["date"]; ok {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return patch, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be a string")
		}
		patch.Date = &s
	}
	if msg, ok := raw["note"]; ok {
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return patch, apperrors.WithMessage(apperrors.ErrInvalidInput, "note must be a string")
		}
		patch.Note = &s
	}

	return patch, nil
}

func viewFor(t models.Transaction) TransactionView {
	return TransactionView{
		ID:            t.ID,
		Title:         t.Title,
		Amount:        money.Decimal(t.Amount),
		AmountDisplay: format.Currency(t.Amount),
		Type:          t.Type,
		Category:      t.Category,
		Icon:          format.CategoryIcon(t.Category),
		Date:          t.Date,
		DateDisplay:   format.Date(t.Date),
		Note:          t.Note,
	}
}
