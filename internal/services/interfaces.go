package services

import (
	"context"
	"time"

	"stockagent/internal/marketdata"
	"stockagent/internal/models"
	"stockagent/internal/pagination"
	"stockagent/internal/positions"
)

// UserServicer defines the contract for user-related business logic.
// ListUsers, SetUserActive, and ResetPassword back the admin CLI.
type UserServicer interface {
	CreateUser(username, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	ListUsers() ([]models.User, error)
	SetUserActive(username string, active bool) error
	ResetPassword(username, newPassword string) error
}

// TradeServicer defines the contract for trade ledger operations.
// Trades are immutable once created; deletion is an owner-scoped hard
// delete.
type TradeServicer interface {
	CreateTrade(userID uint, ticker string, side models.TradeSide, quantity int64, price float64, tradeDate time.Time, notes string, recommendationID *uint) (*models.Trade, error)
	GetUserTrades(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error)
	GetLedger(userID uint) ([]models.Trade, error)
	GetTradeByID(userID, tradeID uint) (*models.Trade, error)
	DeleteTrade(userID, tradeID uint) error
}

// FavoriteServicer defines the contract for watchlist and device token
// operations.
type FavoriteServicer interface {
	AddFavorite(userID uint, ticker, companyName string) (*models.Favorite, error)
	RemoveFavorite(userID uint, ticker string) error
	GetUserFavorites(userID uint) ([]models.Favorite, error)
	SaveDeviceToken(userID uint, token string) error
	GetUserDeviceTokens(userID uint) ([]string, error)
	DeactivateDeviceToken(userID uint, token string) error
}

// DashboardStock is a favorite folded together with its latest quote,
// ready for dashboard rendering. PriceUnavailable marks rows that
// degraded to placeholder values because no quote could be obtained.
type DashboardStock struct {
	Ticker           string  `json:"ticker"`
	CompanyName      string  `json:"company_name"`
	Price            float64 `json:"price"`
	Change           float64 `json:"change"`
	ChangePercent    float64 `json:"change_percent"`
	Volume           float64 `json:"volume"`
	PriceUnavailable bool    `json:"price_unavailable"`
}

// StockServicer is the caller-facing contract over the position engine
// and the market data gateway. The web layer, notification layer, and
// CLI call these entry points only.
type StockServicer interface {
	GetPositions(ctx context.Context, userID uint) ([]positions.EnrichedPosition, error)
	GetPortfolioSummary(ctx context.Context, userID uint) (*positions.PortfolioSummary, error)
	GetQuoteBatch(ctx context.Context, tickers []string) (map[string]marketdata.Quote, error)
	Search(ctx context.Context, query string, limit int) ([]marketdata.SearchResult, error)
	GetMajorIndexes(ctx context.Context) ([]DashboardStock, error)
	GetDashboardFavorites(ctx context.Context, userID uint) ([]DashboardStock, error)
}

// StockAlert describes a price move worth notifying users about.
type StockAlert struct {
	Ticker        string    `json:"ticker"`
	PercentChange float64   `json:"percent_change"`
	CurrentPrice  float64   `json:"current_price"`
	AlertType     string    `json:"alert_type"` // "gainer" or "loser"
	Timestamp     time.Time `json:"timestamp"`
}

// NotificationServicer defines the contract for push notifications.
type NotificationServicer interface {
	SendAlertToTopic(ctx context.Context, topic string, alert StockAlert) error
	SubscribeToTopic(ctx context.Context, token, topic string) error
	UnsubscribeFromTopic(ctx context.Context, token, topic string) error
}
