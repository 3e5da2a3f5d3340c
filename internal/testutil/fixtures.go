package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"finhelp/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:       email,
		Password:    string(hash),
		DisplayName: fmt.Sprintf("Test User %d", nextID()),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTransaction persists a transaction of the given type and amount
// (in cents) for the owner, with a distinct createdAt per call.
func CreateTestTransaction(t *testing.T, db *gorm.DB, ownerID string, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()

	n := nextID()
	tx := &models.Transaction{
		OwnerID:   ownerID,
		Title:     fmt.Sprintf("Test Transaction %d", n),
		Amount:    amount,
		Type:      txType,
		Category:  "Food & Dining",
		Date:      "2024-01-15",
		CreatedAt: time.Now().Add(time.Duration(n) * time.Millisecond),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// Transaction builds an in-memory transaction without persisting it,
// for exercising the pure aggregation functions.
func Transaction(txType models.TransactionType, category string, amount int64, date string) models.Transaction {
	n := nextID()
	return models.Transaction{
		ID:        fmt.Sprintf("tx-%d", n),
		OwnerID:   "owner-1",
		Title:     fmt.Sprintf("Entry %d", n),
		Amount:    amount,
		Type:      txType,
		Category:  category,
		Date:      date,
		CreatedAt: time.Unix(1700000000+n, 0),
	}
}
