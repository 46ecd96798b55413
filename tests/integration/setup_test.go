package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stockagent/internal/handlers"
	"stockagent/internal/logger"
	"stockagent/internal/marketdata"
	"stockagent/internal/middleware"
	"stockagent/internal/models"
	"stockagent/internal/services"
	"stockagent/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB            *gorm.DB
	Router        *gin.Engine
	UpstreamCalls *int32
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
		&models.Trade{},
		&models.Favorite{},
		&models.DeviceToken{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// defaultUpstream serves fixed grouped daily bars for any date and a
// single match for ticker search.
func defaultUpstream(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.Contains(r.URL.Path, "/v2/aggs/grouped/"):
		fmt.Fprint(w, `{"status":"OK","results":[
			{"T":"AAPL","o":170,"h":176,"l":169,"c":175,"v":1000000,"vw":173.5,"n":5000},
			{"T":"MSFT","o":345,"h":352,"l":344,"c":350,"v":800000,"vw":348.2,"n":4000},
			{"T":"SPY","o":500,"h":512,"l":499,"c":510,"v":2000000,"vw":508.1,"n":9000}
		]}`)
	case strings.Contains(r.URL.Path, "/v3/reference/tickers"):
		fmt.Fprint(w, `{"status":"OK","results":[
			{"ticker":"AAPL","name":"Apple Inc.","market":"stocks","primary_exchange":"XNAS","type":"CS","active":true}
		]}`)
	default:
		fmt.Fprint(w, `{"status":"OK","results":[]}`)
	}
}

// setupApp creates a full application stack backed by an isolated
// in-memory SQLite and a fake market data upstream.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	var upstreamCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&upstreamCalls, 1)
		defaultUpstream(w, r)
	}))
	t.Cleanup(server.Close)

	client := marketdata.NewClient(server.Client(), server.URL, "test-key")
	gateway := marketdata.NewGateway(client, zap.NewNop().Sugar(), marketdata.Options{Quota: 1000})

	// Services
	userService := services.NewUserService(db)
	tradeService := services.NewTradeService(db)
	favoriteService := services.NewFavoriteService(db)
	stockService := services.NewStockService(tradeService, favoriteService, gateway, zap.NewNop().Sugar())
	notificationService := newNopNotifier()

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	tradeHandler := handlers.NewTradeHandler(tradeService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService, notificationService)
	stockHandler := handlers.NewStockHandler(stockService)
	portfolioHandler := handlers.NewPortfolioHandler(stockService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	trades := protected.Group("/trades")
	trades.POST("", tradeHandler.CreateTrade)
	trades.GET("", tradeHandler.GetTrades)
	trades.GET("/:id", tradeHandler.GetTrade)
	trades.DELETE("/:id", tradeHandler.DeleteTrade)

	favorites := protected.Group("/favorites")
	favorites.POST("", favoriteHandler.AddFavorite)
	favorites.GET("", favoriteHandler.GetFavorites)
	favorites.DELETE("/:ticker", favoriteHandler.RemoveFavorite)

	devices := protected.Group("/devices")
	devices.POST("", favoriteHandler.RegisterDevice)
	devices.DELETE("", favoriteHandler.UnregisterDevice)

	stocks := protected.Group("/stocks")
	stocks.GET("/search", stockHandler.Search)
	stocks.GET("/quotes", stockHandler.GetQuotes)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/indexes", stockHandler.GetMajorIndexes)
	dashboard.GET("/favorites", stockHandler.GetDashboardFavorites)

	portfolio := protected.Group("/portfolio")
	portfolio.GET("/positions", portfolioHandler.GetPositions)
	portfolio.GET("/summary", portfolioHandler.GetSummary)

	return &testApp{DB: db, Router: router, UpstreamCalls: &upstreamCalls}
}

// nopNotifier satisfies NotificationServicer without Firebase.
type nopNotifier struct{}

func newNopNotifier() services.NotificationServicer { return nopNotifier{} }

func (nopNotifier) SendAlertToTopic(_ context.Context, _ string, _ services.StockAlert) error {
	return nil
}

func (nopNotifier) SubscribeToTopic(_ context.Context, _, _ string) error { return nil }

func (nopNotifier) UnsubscribeFromTopic(_ context.Context, _, _ string) error { return nil }

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

// registerUser registers a new user and returns the token and user ID.
func (app *testApp) registerUser(t *testing.T, username, email, password string) (token string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":%q}`, username, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["token"].(string), user["id"].(float64)
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
