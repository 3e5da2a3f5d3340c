// Package gormsource implements the store.Source boundary on a GORM
// database with an in-process broadcast hub: every successful write
// publishes a fresh owner-scoped snapshot to that owner's watchers, the
// local rendition of the remote live query.
package gormsource

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	apperrors "finhelp/internal/errors"
	"finhelp/internal/logger"
	"finhelp/internal/models"
	"finhelp/internal/store"
)

// Source is a GORM-backed store.Source.
type Source struct {
	db *gorm.DB

	mu       sync.Mutex
	watchers map[string]map[int]chan store.Snapshot
	nextID   int
}

// New creates a Source on the given database.
func New(db *gorm.DB) *Source {
	return &Source{
		db:       db,
		watchers: make(map[string]map[int]chan store.Snapshot),
	}
}

// Watch opens a live query scoped to ownerID. The current snapshot is
// delivered immediately, then a new one after every write for that owner.
// If the initial query fails the channel is closed at once and the failure
// logged; the caller's list stays empty.
func (s *Source) Watch(ownerID string) (<-chan store.Snapshot, func()) {
	ch := make(chan store.Snapshot, 1)

	snap, err := s.snapshot(ownerID)
	if err != nil {
		logger.Get().Errorw("live query failed",
			"code", apperrors.ErrSubscriptionFailed.Code,
			"owner_id", ownerID,
			"error", err,
		)
		close(ch)
		return ch, func() {}
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.watchers[ownerID] == nil {
		s.watchers[ownerID] = make(map[int]chan store.Snapshot)
	}
	s.watchers[ownerID][id] = ch
	ch <- snap
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if owned, ok := s.watchers[ownerID]; ok {
			if _, ok := owned[id]; ok {
				delete(owned, id)
				close(ch)
			}
			if len(owned) == 0 {
				delete(s.watchers, ownerID)
			}
		}
	}
	return ch, cancel
}

// Create inserts a transaction, assigning the server-observed creation
// time, and returns the generated id.
func (s *Source) Create(ctx context.Context, tx models.Transaction) (string, error) {
	tx.ID = ""
	tx.CreatedAt = time.Now()
	if err := s.db.WithContext(ctx).Create(&tx).Error; err != nil {
		return "", err
	}
	s.broadcast(tx.OwnerID)
	return tx.ID, nil
}

// Update applies a partial update to an owned transaction. The owner scope
// is part of the query, so cross-owner ids are indistinguishable from
// missing ones.
func (s *Source) Update(ctx context.Context, ownerID, id string, patch store.Patch) error {
	fields := patchFields(patch)
	if len(fields) == 0 {
		return nil
	}

	res := s.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	s.broadcast(ownerID)
	return nil
}

// Delete removes an owned transaction. Hard delete.
func (s *Source) Delete(ctx context.Context, ownerID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	s.broadcast(ownerID)
	return nil
}

// snapshot loads the owner's full list. No ordering is requested; the
// consuming store sorts explicitly.
func (s *Source) snapshot(ownerID string) (store.Snapshot, error) {
	var list []models.Transaction
	if err := s.db.Where("owner_id = ?", ownerID).Find(&list).Error; err != nil {
		return nil, err
	}
	return store.Snapshot(list), nil
}

// broadcast delivers a fresh snapshot to every watcher of ownerID.
// Channels hold only the latest snapshot; an unread one is replaced.
func (s *Source) broadcast(ownerID string) {
	snap, err := s.snapshot(ownerID)
	if err != nil {
		logger.Get().Errorw("snapshot refresh failed",
			"code", apperrors.ErrSubscriptionFailed.Code,
			"owner_id", ownerID,
			"error", err,
		)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.watchers[ownerID] {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func patchFields(p store.Patch) map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Amount != nil {
		fields["amount"] = *p.Amount
	}
	if p.Type != nil {
		fields["type"] = *p.Type
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.Date != nil {
		fields["date"] = *p.Date
	}
	if p.Note != nil {
		fields["note"] = *p.Note
	}
	return fields
}
