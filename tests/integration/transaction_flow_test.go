package integration

import (
	"net/http"
	"testing"
	"time"
)

func TestTransactionLifecycle(t *testing.T) {
	app := setupApp(t)
	token := app.registerUser(t, "carol@example.com", "password123")

	t.Run("list starts empty", func(t *testing.T) {
		app.waitForTransactionCount(t, token, 0)
	})

	var txID string
	t.Run("create is acknowledged and becomes visible", func(t *testing.T) {
		body := `{"title":"Monthly salary","amount":"2500.00","type":"income","category":"Salary","date":"2024-03-01"}`
		rec := app.request("POST", "/api/v1/transactions", body, token)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
		}

		list := app.waitForTransactionCount(t, token, 1)
		tx := list[0].(map[string]interface{})
		txID = tx["id"].(string)
		if tx["amount"] != "2500.00" || tx["amount_display"] != "$2,500.00" {
			t.Errorf("unexpected amount rendering: %v / %v", tx["amount"], tx["amount_display"])
		}
		if tx["type"] != "income" {
			t.Errorf("expected income, got %v", tx["type"])
		}
	})

	t.Run("defaults are applied on create", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/transactions", `{"title":"Coffee","amount":"4.50","type":"expense"}`, token)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
		}

		list := app.waitForTransactionCount(t, token, 2)
		// Newest first.
		tx := list[0].(map[string]interface{})
		if tx["title"] != "Coffee" {
			t.Fatalf("expected the new transaction first, got %v", tx["title"])
		}
		if tx["category"] != "Food & Dining" {
			t.Errorf("expected default category, got %v", tx["category"])
		}
	})

	t.Run("patch updates visible fields only", func(t *testing.T) {
		rec := app.request("PATCH", "/api/v1/transactions/"+txID, `{"amount":"2600.00","note":"raise"}`, token)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
		}

		deadline := time.Now().Add(2 * time.Second)
		for {
			var updated map[string]interface{}
			for _, item := range app.waitForTransactionCount(t, token, 2) {
				tx := item.(map[string]interface{})
				if tx["id"] == txID {
					updated = tx
				}
			}
			if updated != nil && updated["amount"] == "2600.00" && updated["note"] == "raise" {
				if updated["title"] != "Monthly salary" {
					t.Errorf("unpatched field changed: %v", updated["title"])
				}
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("patch never became visible: %+v", updated)
			}
			time.Sleep(10 * time.Millisecond)
		}
	})

	t.Run("immutable fields are rejected", func(t *testing.T) {
		rec := app.request("PATCH", "/api/v1/transactions/"+txID, `{"owner_id":"mallory"}`, token)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("dashboard reflects the data", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/dashboard", "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		summary := result["summary"].(map[string]interface{})
		if summary["expense"] != float64(450) {
			t.Errorf("expected expense 450 cents, got %v", summary["expense"])
		}
		breakdown := result["breakdown"].([]interface{})
		if len(breakdown) != 1 {
			t.Fatalf("expected one expense category, got %d", len(breakdown))
		}
	})

	t.Run("delete removes the record", func(t *testing.T) {
		rec := app.request("DELETE", "/api/v1/transactions/"+txID, "", token)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", rec.Code)
		}
		app.waitForTransactionCount(t, token, 1)

		rec = app.request("DELETE", "/api/v1/transactions/"+txID, "", token)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 on repeat delete, got %d", rec.Code)
		}
	})
}

func TestTransactionOwnerScoping(t *testing.T) {
	app := setupApp(t)

	tokenA := app.registerUser(t, "owner-a@example.com", "password123")
	rec := app.request("POST", "/api/v1/transactions",
		`{"title":"A's lunch","amount":"12.00","type":"expense"}`, tokenA)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	app.waitForTransactionCount(t, tokenA, 1)

	// Switching accounts replaces the live list with the new owner's data.
	tokenB := app.registerUser(t, "owner-b@example.com", "password123")
	app.waitForTransactionCount(t, tokenB, 0)

	// And back again.
	tokenA = app.loginUser(t, "owner-a@example.com", "password123")
	list := app.waitForTransactionCount(t, tokenA, 1)
	tx := list[0].(map[string]interface{})
	if tx["title"] != "A's lunch" {
		t.Errorf("expected A's transaction, got %v", tx["title"])
	}
}

func TestTransactionFiltering(t *testing.T) {
	app := setupApp(t)
	token := app.registerUser(t, "dave@example.com", "password123")

	seed := []string{
		`{"title":"Monthly salary","amount":"3000.00","type":"income","category":"Salary","date":"2024-03-01"}`,
		`{"title":"Groceries","amount":"150.00","type":"expense","category":"Food & Dining","date":"2024-03-02"}`,
		`{"title":"Train ticket","amount":"45.00","type":"expense","category":"Transport","date":"2024-03-03"}`,
	}
	for _, body := range seed {
		rec := app.request("POST", "/api/v1/transactions", body, token)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("seed failed: %d %s", rec.Code, rec.Body.String())
		}
	}
	app.waitForTransactionCount(t, token, 3)

	cases := []struct {
		query string
		want  int
	}{
		{"?type=expense", 2},
		{"?search=salary", 1},
		{"?category=Transport", 1},
		{"?search=150.00", 1},
		{"?type=expense&search=train", 1},
		{"?search=nothing-matches", 0},
	}
	for _, tc := range cases {
		rec := app.request("GET", "/api/v1/transactions"+tc.query, "", token)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.query, rec.Code)
		}
		if got := parseJSON(t, rec)["count"]; got != float64(tc.want) {
			t.Errorf("%s: expected %d matches, got %v", tc.query, tc.want, got)
		}
	}

	rec := app.request("GET", "/api/v1/transactions?sort=amount-desc", "", token)
	list := parseJSON(t, rec)["transactions"].([]interface{})
	first := list[0].(map[string]interface{})
	if first["title"] != "Monthly salary" {
		t.Errorf("expected largest amount first, got %v", first["title"])
	}
}

func TestThemePreferenceFlow(t *testing.T) {
	app := setupApp(t)

	rec := app.request("GET", "/api/v1/preferences/theme", "", "")
	if parseJSON(t, rec)["theme"] != "light" {
		t.Fatalf("expected light default, got %s", rec.Body.String())
	}

	rec = app.request("PUT", "/api/v1/preferences/theme", `{"theme":"dark"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// The preference outlives the session.
	token := app.registerUser(t, "eve@example.com", "password123")
	app.request("POST", "/api/v1/auth/logout", "", token)

	rec = app.request("GET", "/api/v1/preferences/theme", "", "")
	if parseJSON(t, rec)["theme"] != "dark" {
		t.Errorf("expected dark after logout, got %s", rec.Body.String())
	}

	rec = app.request("POST", "/api/v1/preferences/theme/toggle", "", "")
	if parseJSON(t, rec)["theme"] != "light" {
		t.Errorf("expected light after toggle, got %s", rec.Body.String())
	}
}
