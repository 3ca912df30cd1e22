package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"nestegg/internal/handlers"
	"nestegg/internal/logger"
	"nestegg/internal/middleware"
	"nestegg/internal/models"
	"nestegg/internal/services"
	"nestegg/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
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
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Asset{},
		&models.AssetTransaction{},
		&models.Transaction{},
		&models.Category{},
		&models.FixedExpense{},
		&models.FixedSaving{},
		&models.Goal{},
		&models.AuditLog{},
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

	// Services
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	assetService := services.NewAssetService(db)
	assetTransactionService := services.NewAssetTransactionService(db, assetService)
	transactionService := services.NewTransactionService(db)
	categoryService := services.NewCategoryService(db)
	fixedExpenseService := services.NewFixedExpenseService(db)
	fixedSavingService := services.NewFixedSavingService(db, assetService)
	goalService := services.NewGoalService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	assetHandler := handlers.NewAssetHandler(assetService, auditService)
	assetTransactionHandler := handlers.NewAssetTransactionHandler(assetTransactionService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	fixedExpenseHandler := handlers.NewFixedExpenseHandler(fixedExpenseService, auditService)
	fixedSavingHandler := handlers.NewFixedSavingHandler(fixedSavingService, auditService)
	goalHandler := handlers.NewGoalHandler(goalService, auditService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	assets := protected.Group("/assets")
	assets.POST("", assetHandler.CreateAsset)
	assets.GET("", assetHandler.GetUserAssets)
	assets.GET("/:id", assetHandler.GetAssetByID)
	assets.PUT("/:id", assetHandler.UpdateAsset)
	assets.DELETE("/:id", assetHandler.DeleteAsset)

	assetTransactions := protected.Group("/asset-transactions")
	assetTransactions.POST("", assetTransactionHandler.CreateAssetTransaction)
	assetTransactions.GET("", assetTransactionHandler.ListAssetTransactions)
	assetTransactions.GET("/:id", assetTransactionHandler.GetAssetTransactionByID)
	assetTransactions.PUT("/:id", assetTransactionHandler.UpdateAssetTransaction)
	assetTransactions.DELETE("/:id", assetTransactionHandler.DeleteAssetTransaction)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/summary", transactionHandler.GetMonthlySummary)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetUserCategories)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	fixedExpenses := protected.Group("/fixed-expenses")
	fixedExpenses.POST("", fixedExpenseHandler.CreateFixedExpense)
	fixedExpenses.GET("", fixedExpenseHandler.GetUserFixedExpenses)
	fixedExpenses.GET("/:id", fixedExpenseHandler.GetFixedExpenseByID)
	fixedExpenses.PUT("/:id", fixedExpenseHandler.UpdateFixedExpense)
	fixedExpenses.DELETE("/:id", fixedExpenseHandler.DeleteFixedExpense)
	fixedExpenses.PATCH("/:id/active", fixedExpenseHandler.ToggleFixedExpenseActive)

	fixedSavings := protected.Group("/fixed-savings")
	fixedSavings.POST("", fixedSavingHandler.CreateFixedSaving)
	fixedSavings.GET("", fixedSavingHandler.GetUserFixedSavings)
	fixedSavings.GET("/:id", fixedSavingHandler.GetFixedSavingByID)
	fixedSavings.PUT("/:id", fixedSavingHandler.UpdateFixedSaving)
	fixedSavings.DELETE("/:id", fixedSavingHandler.DeleteFixedSaving)
	fixedSavings.PATCH("/:id/active", fixedSavingHandler.ToggleFixedSavingActive)

	protected.PUT("/goal", goalHandler.SetGoal)
	protected.GET("/goal", goalHandler.GetGoal)
	protected.GET("/net-worth", goalHandler.GetNetWorth)

	return &testApp{DB: db, Router: router}
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

// assertAmount compares a JSON-decoded monetary value with the expected amount.
func assertAmount(t *testing.T, got interface{}, want string) {
	t.Helper()
	gotDec, err := decimal.NewFromString(fmt.Sprintf("%v", got))
	if err != nil {
		t.Fatalf("value %v is not a decimal: %v", got, err)
	}
	wantDec := decimal.RequireFromString(want)
	if !gotDec.Equal(wantDec) {
		t.Errorf("expected amount %s, got %s", wantDec, gotDec)
	}
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createAsset creates an asset over HTTP and returns its ID.
func (app *testApp) createAsset(t *testing.T, token, name, assetType, initialBalance string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"type":%q,"initial_balance":%q}`, name, assetType, initialBalance)
	rec := app.request("POST", "/api/v1/assets", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create asset failed: %d %s", rec.Code, rec.Body.String())
	}
	asset := parseJSON(t, rec)["asset"].(map[string]interface{})
	return asset["id"].(string)
}

// assetBalance fetches an asset over HTTP and returns its reported balance.
func (app *testApp) assetBalance(t *testing.T, token, assetID string) interface{} {
	t.Helper()
	rec := app.request("GET", "/api/v1/assets/"+assetID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get asset failed: %d %s", rec.Code, rec.Body.String())
	}
	asset := parseJSON(t, rec)["asset"].(map[string]interface{})
	return asset["balance"]
}
