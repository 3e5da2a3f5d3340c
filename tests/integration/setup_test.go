package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"finhelp/internal/handlers"
	"finhelp/internal/identity"
	"finhelp/internal/identity/gormprovider"
	"finhelp/internal/logger"
	"finhelp/internal/middleware"
	"finhelp/internal/models"
	"finhelp/internal/prefs"
	"finhelp/internal/store"
	"finhelp/internal/store/gormsource"
	"finhelp/internal/validator"
)

const testProviderSecret = "integration-provider-secret"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Sessions *identity.Manager
	Store    *store.Store
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Transaction{},
		&models.Preference{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	provider := gormprovider.New(db, testProviderSecret)
	sessions := identity.NewManager(provider)
	source := gormsource.New(db)
	txStore := store.New(source)
	stopFollowing := txStore.Follow(sessions)
	t.Cleanup(stopFollowing)
	prefStore := prefs.NewStore(db)

	authHandler := handlers.NewAuthHandler(sessions)
	transactionHandler := handlers.NewTransactionHandler(txStore, sessions)
	dashboardHandler := handlers.NewDashboardHandler(txStore, sessions)
	preferenceHandler := handlers.NewPreferenceHandler(prefStore)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/provider", authHandler.Provider)

	preferences := v1.Group("/preferences")
	preferences.GET("/theme", preferenceHandler.GetTheme)
	preferences.PUT("/theme", preferenceHandler.SetTheme)
	preferences.POST("/theme/toggle", preferenceHandler.ToggleTheme)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/dashboard", dashboardHandler.Get)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.List)
	transactions.POST("", transactionHandler.Create)
	transactions.PATCH("/:id", transactionHandler.Update)
	transactions.DELETE("/:id", transactionHandler.Delete)

	return &testApp{DB: db, Router: router, Sessions: sessions, Store: txStore}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the session token.
func (app *testApp) registerUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Test User","email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}

// loginUser logs in and returns the session token.
func (app *testApp) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["token"].(string)
}

// waitForTransactionCount polls the list endpoint until it reports the
// expected count. Writes are acknowledged with 202 and become visible
// through the next snapshot, so reads after writes must poll.
func (app *testApp) waitForTransactionCount(t *testing.T, token string, n int) []interface{} {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec := app.request("GET", "/api/v1/transactions", "", token)
		if rec.Code == http.StatusOK {
			result := parseJSON(t, rec)
			if result["count"] == float64(n) {
				return result["transactions"].([]interface{})
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("transaction count never reached %d", n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
