// Package store holds the live, owner-scoped transaction list. It follows
// identity session transitions, keeps at most one subscription open against
// the document source, and exposes create/update/delete plus derived totals.
package store

import (
	"context"
	"strings"
	"time"

	"finhelp/internal/category"
	apperrors "finhelp/internal/errors"
	"finhelp/internal/models"
)

// Snapshot is a full replacement of the owner's transaction list as
// delivered by the live query. Order is not guaranteed by the source.
type Snapshot []models.Transaction

// Source is the document-store boundary: an owner-scoped live query plus
// CRUD. Watch returns a snapshot channel and a mandatory unsubscribe
// function; the channel is closed when the subscription ends, including on
// subscription errors, freezing consumers at their last snapshot.
// Implementations must reject cross-owner access.
type Source interface {
	Watch(ownerID string) (<-chan Snapshot, func())
	Create(ctx context.Context, tx models.Transaction) (string, error)
	Update(ctx context.Context, ownerID, id string, patch Patch) error
	Delete(ctx context.Context, ownerID, id string) error
}

// CreateInput carries the user-supplied fields of a new transaction.
// Owner and creation time are assigned by the store; the record id by the
// source.
type CreateInput struct {
	Title    string
	Amount   int64 // cents, parsed at the boundary
	Type     models.TransactionType
	Category string // defaults to category.Default when empty
	Date     string // YYYY-MM-DD, defaults to today when empty
	Note     string
}

func (in *CreateInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if in.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !in.Type.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown transaction type")
	}
	if in.Category == "" {
		in.Category = category.Default
	}
	if !category.Valid(in.Category) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown category")
	}
	if in.Date == "" {
		in.Date = time.Now().Format(models.DateLayout)
	}
	if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD")
	}
	return nil
}

// Patch is a partial update of a transaction's user-editable fields.
// id, ownerId, and createdAt are immutable by construction: they have no
// representation here and are rejected earlier at the request boundary.
type Patch struct {
	Title    *string
	Amount   *int64
	Type     *models.TransactionType
	Category *string
	Date     *string
	Note     *string
}

// Empty reports whether the patch changes nothing.
func (p *Patch) Empty() bool {
	return p.Title == nil && p.Amount == nil && p.Type == nil &&
		p.Category == nil && p.Date == nil && p.Note == nil
}

func (p *Patch) validate() error {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
		}
		p.Title = &t
	}
	if p.Amount != nil && *p.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if p.Type != nil && !p.Type.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown transaction type")
	}
	if p.Category != nil && !category.Valid(*p.Category) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown category")
	}
	if p.Date != nil {
		if _, err := time.Parse(models.DateLayout, *p.Date); err != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD")
		}
	}
	return nil
}
