package models

import "time"

// Theme is the persisted display theme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Preference holds the single persisted local preference: the display
// theme. It is keyed by a fixed row ID and independent of identity.
type Preference struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Theme     Theme     `gorm:"not null;default:light" json:"theme"`
	UpdatedAt time.Time `json:"updated_at"`
}
