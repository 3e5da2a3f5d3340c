package models

import (
	"time"

	"finhelp/internal/uuid"

	"gorm.io/gorm"
)

// User represents an identity known to the backend. Federated users
// (signed in through the external provider) carry an empty Password.
type User struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	Password    string    `gorm:"" json:"-"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New()
	}
	return nil
}
