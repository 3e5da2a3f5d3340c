// Package prefs persists the theme preference. It is a single row,
// independent of identity, surviving sign-out and restarts.
package prefs

import (
	"errors"

	"gorm.io/gorm"

	apperrors "finhelp/internal/errors"
	"finhelp/internal/models"
)

// preferenceRowID keys the single persisted preference row.
const preferenceRowID = 1

// Store reads and writes the persisted preference.
type Store struct {
	db *gorm.DB
}

// NewStore creates a preference store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Theme returns the persisted theme, defaulting to light when no
// preference has been saved yet.
func (s *Store) Theme() (models.Theme, error) {
	var pref models.Preference
	err := s.db.First(&pref, preferenceRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ThemeLight, nil
	}
	if err != nil {
		return models.ThemeLight, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return pref.Theme, nil
}

// SetTheme persists the theme.
func (s *Store) SetTheme(theme models.Theme) error {
	if !theme.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "theme must be light or dark")
	}
	pref := models.Preference{ID: preferenceRowID, Theme: theme}
	if err := s.db.Save(&pref).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Toggle flips between light and dark and returns the new theme.
func (s *Store) Toggle() (models.Theme, error) {
	current, err := s.Theme()
	if err != nil {
		return current, err
	}
	next := models.ThemeDark
	if current == models.ThemeDark {
		next = models.ThemeLight
	}
	if err := s.SetTheme(next); err != nil {
		return current, err
	}
	return next, nil
}
