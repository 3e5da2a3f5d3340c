package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	apperrors "finhelp/internal/errors"
	"finhelp/internal/identity"
	"finhelp/internal/models"
	"finhelp/internal/store"

	"github.com/gin-gonic/gin"
)

// --- in-memory source ---

type memSub struct {
	owner string
	ch    chan store.Snapshot
}

// memorySource is a store.Source over a map, with the same broadcast
// semantics as the database-backed source.
type memorySource struct {
	mu      sync.Mutex
	byID    map[string]models.Transaction
	nextID  int
	subs    map[int]memSub
	nextSub int
}

func newMemorySource() *memorySource {
	return &memorySource{
		byID: make(map[string]models.Transaction),
		subs: make(map[int]memSub),
	}
}

func (m *memorySource) Watch(ownerID string) (<-chan store.Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan store.Snapshot, 1)
	ch <- m.snapshotLocked(ownerID)
	id := m.nextSub
	m.nextSub++
	m.subs[id] = memSub{owner: ownerID, ch: ch}

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(sub.ch)
		}
	}
}

func (m *memorySource) Create(_ context.Context, tx models.Transaction) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	tx.ID = fmt.Sprintf("mem-%d", m.nextID)
	tx.CreatedAt = time.Now().Add(time.Duration(m.nextID) * time.Millisecond)
	m.byID[tx.ID] = tx
	m.broadcastLocked(tx.OwnerID)
	return tx.ID, nil
}

func (m *memorySource) Update(_ context.Context, ownerID, id string, patch store.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.byID[id]
	if !ok || tx.OwnerID != ownerID {
		return apperrors.ErrTransactionNotFound
	}
	if patch.Title != nil {
		tx.Title = *patch.Title
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Note != nil {
		tx.Note = *patch.Note
	}
	m.byID[id] = tx
	m.broadcastLocked(ownerID)
	return nil
}

func (m *memorySource) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.byID[id]
	if !ok || tx.OwnerID != ownerID {
		return apperrors.ErrTransactionNotFound
	}
	delete(m.byID, id)
	m.broadcastLocked(ownerID)
	return nil
}

func (m *memorySource) seed(txs ...models.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tx := range txs {
		m.byID[tx.ID] = tx
	}
}

func (m *memorySource) snapshotLocked(ownerID string) store.Snapshot {
	var snap store.Snapshot
	for _, tx := range m.byID {
		if tx.OwnerID == ownerID {
			snap = append(snap, tx)
		}
	}
	return snap
}

func (m *memorySource) broadcastLocked(ownerID string) {
	for _, sub := range m.subs {
		if sub.owner != ownerID {
			continue
		}
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- m.snapshotLocked(ownerID)
	}
}

// --- test helpers ---

// setupTxEnv builds a signed-in session manager and a store watching the
// given source for owner-1.
func setupTxEnv(t *testing.T, src store.Source) (*identity.Manager, *store.Store) {
	t.Helper()

	sessions := identity.NewManager(&mockProvider{})
	if err := sessions.SignInWithCredentials(context.Background(), "test@example.com", "password123"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	txStore := store.New(src)
	txStore.SetSession(sessions.Current())
	return sessions, txStore
}

func setupTxRouter(h *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := injectOwner("owner-1")
	r.GET("/transactions", auth, h.List)
	r.POST("/transactions", auth, h.Create)
	r.PATCH("/transactions/:id", auth, h.Update)
	r.DELETE("/transactions/:id", auth, h.Delete)
	return r
}

// waitForCount polls until the store's list reaches n entries.
func waitForCount(t *testing.T, s *store.Store, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(s.Transactions()) != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d transactions, got %d", n, len(s.Transactions()))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func sampleTransactions() []models.Transaction {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []models.Transaction{
		{ID: "t1", OwnerID: "owner-1", Title: "Monthly salary", Amount: 500000, Type: models.TransactionTypeIncome, Category: "Salary", Date: "2024-03-01", CreatedAt: base},
		{ID: "t2", OwnerID: "owner-1", Title: "Groceries", Amount: 15000, Type: models.TransactionTypeExpense, Category: "Food & Dining", Date: "2024-03-02", CreatedAt: base.Add(time.Hour)},
		{ID: "t3", OwnerID: "owner-1", Title: "Bus pass", Amount: 4500, Type: models.TransactionTypeExpense, Category: "Transport", Date: "2024-03-03", CreatedAt: base.Add(2 * time.Hour)},
	}
}

// --- tests ---

func TestTransactionHandler_List(t *testing.T) {
	newEnv := func(t *testing.T) *gin.Engine {
		src := newMemorySource()
		src.seed(sampleTransactions()...)
		sessions, txStore := setupTxEnv(t, src)
		waitForCount(t, txStore, 3)
		return setupTxRouter(NewTransactionHandler(txStore, sessions))
	}

	t.Run("returns the full list newest first", func(t *testing.T) {
		r := newEnv(t)
		rec := doRequest(r, "GET", "/transactions", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["count"] != float64(3) {
			t.Errorf("expected count 3, got %v", result["count"])
		}
		list := result["transactions"].([]interface{})
		first := list[0].(map[string]interface{})
		if first["id"] != "t3" {
			t.Errorf("expected newest first, got %v", first["id"])
		}
		if first["amount"] != "45.00" || first["amount_display"] != "$45.00" {
			t.Errorf("unexpected amount rendering: %v / %v", first["amount"], first["amount_display"])
		}
		if first["date_display"] != "Mar 3, 2024" {
			t.Errorf("unexpected date rendering: %v", first["date_display"])
		}
	})

	t.Run("applies search and type filters together", func(t *testing.T) {
		r := newEnv(t)
		rec := doRequest(r, "GET", "/transactions?search=groc&type=expense", "")

		result := parseJSON(t, rec)
		if result["count"] != float64(1) {
			t.Fatalf("expected one match, got %v", result["count"])
		}
		tx := result["transactions"].([]interface{})[0].(map[string]interface{})
		if tx["id"] != "t2" {
			t.Errorf("expected t2, got %v", tx["id"])
		}
	})

	t.Run("sorts by amount ascending", func(t *testing.T) {
		r := newEnv(t)
		rec := doRequest(r, "GET", "/transactions?sort=amount-asc", "")

		list := parseJSON(t, rec)["transactions"].([]interface{})
		first := list[0].(map[string]interface{})
		if first["id"] != "t3" {
			t.Errorf("expected smallest amount first, got %v", first["id"])
		}
	})

	t.Run("rejects unknown sort key", func(t *testing.T) {
		r := newEnv(t)
		rec := doRequest(r, "GET", "/transactions?sort=alphabetical", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects unknown type filter", func(t *testing.T) {
		r := newEnv(t)
		rec := doRequest(r, "GET", "/transactions?type=transfer", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 401 when the session is gone", func(t *testing.T) {
		src := newMemorySource()
		sessions, txStore := setupTxEnv(t, src)
		sessions.SignOut()
		r := setupTxRouter(NewTransactionHandler(txStore, sessions))

		rec := doRequest(r, "GET", "/transactions", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_Create(t *testing.T) {
	t.Run("returns 202 and the record arrives via snapshot", func(t *testing.T) {
		src := newMemorySource()
		sessions, txStore := setupTxEnv(t, src)
		r := setupTxRouter(NewTransactionHandler(txStore, sessions))

		rec := doRequest(r, "POST", "/transactions",
			`{"title":"Coffee","amount":"4.50","type":"expense","category":"Food & Dining","date":"2024-03-05"}`)

		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
		}
		waitForCount(t, txStore, 1)
		tx := txStore.Transactions()[0]
		if tx.Amount != 450 || tx.OwnerID != "owner-1" {
			t.Errorf("unexpected stored transaction: %+v", tx)
		}
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		src := newMemorySource()
		sessions, txStore := setupTxEnv(t, src)
		r := setupTxRouter(NewTransactionHandler(txStore, sessions))

		for _, amount := range []string{"0", "-5", "abc", ""} {
			rec := doRequest(r, "POST", "/transactions",
				fmt.Sprintf(`{"title":"x","amount":%q,"type":"expense"}`, amount))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("amount %q: expected 400, got %d", amount, rec.Code)
			}
		}
		if len(txStore.Transactions()) != 0 {
			t.Error("expected no writes for invalid amounts")
		}
	})

	t.Run("rejects unknown type via binding", func(t *testing.T) {
		src := newMemorySource()
		sessions, txStore := setupTxEnv(t, src)
		r := setupTxRouter(NewTransactionHandler(txStore, sessions))

		rec := doRequest(r, "POST", "/transactions",
			`{"title":"x","amount":"5.00","type":"transfer"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects missing title", func(t *testing.T) {
		src := newMemorySource()
		sessions, txStore := setupTxEnv(t, src)
		r := setupTxRouter(NewTransactionHandler(txStore, sessions))

		rec := doRequest(r, "POST", "/transactions", `{"amount":"5.00","type":"expense"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_Update(t *testing.T) {
	newEnv := func(t *testing.T) (*gin.Engine, *store.Store) {
		src := newMemorySource()
		src.seed(sampleTransactions()...)
		sessions, txStore := setupTxEnv(t, src)
		waitForCount(t, txStore, 3)
		return setupTxRouter(NewTransactionHandler(txStore, sessions)), txStore
	}

	t.Run("returns 202 and applies the patch", func(t *testing.T) {
		r, txStore := newEnv(t)
		rec := doRequest(r, "PATCH", "/transactions/t2", `{"title":"Weekly groceries","amount":"180.00"}`)

		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
		}

		deadline := time.Now().Add(2 * time.Second)
		for {
			var found *models.Transaction
			for _, tx := range txStore.Transactions() {
				if tx.ID == "t2" {
					found = &tx
					break
				}
			}
			if found != nil && found.Title == "Weekly groceries" && found.Amount == 18000 {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("patch never became visible: %+v", found)
			}
			time.Sleep(5 * time.Millisecond)
		}
	})

	t.Run("rejects immutable fields", func(t *testing.T) {
		r, _ := newEnv(t)
		for _, body := range []string{
			`{"id":"other"}`,
			`{"owner_id":"mallory"}`,
			`{"created_at":"2020-01-01T00:00:00Z"}`,
			`{"ownerId":"mallory"}`,
			`{"createdAt":"2020-01-01T00:00:00Z"}`,
		} {
			rec := doRequest(r, "PATCH", "/transactions/t2", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("body %s: expected 400, got %d", body, rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		}
	})

	t.Run("rejects a numeric amount", func(t *testing.T) {
		r, _ := newEnv(t)
		rec := doRequest(r, "PATCH", "/transactions/t2", `{"amount":42.5}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 for an unknown id", func(t *testing.T) {
		r, _ := newEnv(t)
		rec := doRequest(r, "PATCH", "/transactions/missing", `{"title":"x"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_Delete(t *testing.T) {
	src := newMemorySource()
	src.seed(sampleTransactions()...)
	sessions, txStore := setupTxEnv(t, src)
	waitForCount(t, txStore, 3)
	r := setupTxRouter(NewTransactionHandler(txStore, sessions))

	t.Run("returns 202 and the record disappears", func(t *testing.T) {
		rec := doRequest(r, "DELETE", "/transactions/t3", "")
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
		}
		waitForCount(t, txStore, 2)
	})

	t.Run("returns 404 for an unknown id", func(t *testing.T) {
		rec := doRequest(r, "DELETE", "/transactions/t3", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}
