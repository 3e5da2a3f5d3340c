package store

import (
	"context"
	"sort"
	"sync"

	"finhelp/internal/analytics"
	apperrors "finhelp/internal/errors"
	"finhelp/internal/identity"
	"finhelp/internal/logger"
	"finhelp/internal/models"
)

// Store mirrors the owner-scoped transaction collection locally. It owns
// the list exclusively; readers get copies. At most one source watch is
// active at a time, and snapshots that arrive for a since-replaced session
// are discarded.
type Store struct {
	source Source

	mu     sync.Mutex
	owner  string
	gen    int // bumped on every session change; stale-snapshot guard
	cancel func()
	list   []models.Transaction
}

// New creates a Store reading from the given source.
func New(source Source) *Store {
	return &Store{source: source}
}

// Follow subscribes the store to session transitions. The returned stop
// function detaches from the manager and closes any open watch.
func (s *Store) Follow(sessions *identity.Manager) (stop func()) {
	ch, cancel := sessions.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for sess := range ch {
			s.SetSession(sess)
		}
	}()
	return func() {
		cancel()
		<-done
		s.SetSession(identity.Session{})
	}
}

// SetSession reacts to a session transition. A new authenticated owner
// closes the previous watch before opening its own; an anonymous session
// closes the watch and clears the list.
func (s *Store) SetSession(sess identity.Session) {
	owner := sess.OwnerID()

	s.mu.Lock()
	if owner == s.owner {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	gen := s.gen
	s.owner = owner
	s.list = nil
	s.mu.Unlock()

	if owner == "" {
		return
	}

	snaps, cancel := s.source.Watch(owner)

	s.mu.Lock()
	if gen != s.gen {
		// The session moved on while the watch was being opened.
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancel = cancel
	s.mu.Unlock()

	go s.consume(gen, owner, snaps)
}

// consume applies snapshots until the watch channel closes. A close while
// the generation is still current means the live feed failed; the list
// freezes at the last snapshot.
func (s *Store) consume(gen int, owner string, snaps <-chan Snapshot) {
	for snap := range snaps {
		s.apply(gen, snap)
	}

	s.mu.Lock()
	frozen := gen == s.gen
	s.mu.Unlock()
	if frozen {
		logger.Get().Errorw("live transaction feed halted",
			"code", apperrors.ErrSubscriptionFailed.Code,
			"owner_id", owner,
		)
	}
}

// apply replaces the local list with a snapshot, re-sorted by createdAt
// descending. Snapshot order from the source is not relied upon.
func (s *Store) apply(gen int, snap Snapshot) {
	list := make([]models.Transaction, len(snap))
	copy(list, snap)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return // snapshot for a replaced session
	}
	s.list = list
}

// Transactions returns a copy of the current local list.
func (s *Store) Transactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, len(s.list))
	copy(out, s.list)
	return out
}

// Summary recomputes the derived totals from the current local list.
func (s *Store) Summary() analytics.Summary {
	return analytics.Summarize(s.Transactions())
}

// Create validates the input locally and writes a new transaction through
// the source. The record becomes visible through the next snapshot, not
// synchronously. Nothing is written when validation fails.
func (s *Store) Create(ctx context.Context, in CreateInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	owner := s.currentOwner()
	if owner == "" {
		return s.writeFailed("create", apperrors.WithMessage(apperrors.ErrWriteFailed, "no authenticated session"))
	}

	tx := models.Transaction{
		OwnerID:  owner,
		Title:    in.Title,
		Amount:   in.Amount,
		Type:     in.Type,
		Category: in.Category,
		Date:     in.Date,
		Note:     in.Note,
	}
	if _, err := s.source.Create(ctx, tx); err != nil {
		return s.writeFailed("create", apperrors.Wrap(apperrors.ErrWriteFailed, err))
	}
	return nil
}

// Update applies a partial update to an owned transaction.
func (s *Store) Update(ctx context.Context, id string, patch Patch) error {
	if err := patch.validate(); err != nil {
		return err
	}

	owner := s.currentOwner()
	if owner == "" {
		return s.writeFailed("update", apperrors.WithMessage(apperrors.ErrWriteFailed, "no authenticated session"))
	}

	if err := s.source.Update(ctx, owner, id, patch); err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.ErrTransactionNotFound.Code {
			return err
		}
		return s.writeFailed("update", apperrors.Wrap(apperrors.ErrWriteFailed, err))
	}
	return nil
}

// Delete removes an owned transaction. Hard delete, no tombstone.
func (s *Store) Delete(ctx context.Context, id string) error {
	owner := s.currentOwner()
	if owner == "" {
		return s.writeFailed("delete", apperrors.WithMessage(apperrors.ErrWriteFailed, "no authenticated session"))
	}

	if err := s.source.Delete(ctx, owner, id); err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.ErrTransactionNotFound.Code {
			return err
		}
		return s.writeFailed("delete", apperrors.Wrap(apperrors.ErrWriteFailed, err))
	}
	return nil
}

func (s *Store) currentOwner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// writeFailed logs a failed write for diagnostics. The local list is left
// untouched; callers decide whether to surface the error.
func (s *Store) writeFailed(op string, err *apperrors.AppError) error {
	logger.Get().Errorw("transaction write failed",
		"op", op,
		"code", err.Code,
		"error", err.Error(),
	)
	return err
}
