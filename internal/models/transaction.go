package models

import (
	"time"

	"finhelp/internal/uuid"

	"gorm.io/gorm"
)

// TransactionType represents the direction of a transaction.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// DateLayout is the calendar-date format used by Transaction.Date.
// Lexicographic order on the stored string equals chronological order.
const DateLayout = "2006-01-02"

// Transaction represents a single income or expense record. It is owned by
// exactly one user and only ever visible through owner-scoped queries.
type Transaction struct {
	ID       string          `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID  string          `gorm:"index;not null" json:"owner_id"`
	Title    string          `gorm:"not null" json:"title"`
	Amount   int64           `gorm:"type:bigint;not null" json:"amount"` // cents
	Type     TransactionType `gorm:"not null" json:"type"`
	Category string          `gorm:"not null" json:"category"`
	Date     string          `gorm:"size:10;not null" json:"date"` // YYYY-MM-DD, user-assigned
	Note     string          `json:"note,omitempty"`

	// CreatedAt is the server-observed creation time, used only for the
	// default list ordering. Hard deletes, so no DeletedAt column.
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New()
	}
	return nil
}
