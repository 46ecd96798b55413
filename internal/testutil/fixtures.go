package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"stockagent/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique
// username and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithEmail(t, db, fmt.Sprintf("user%d@test.com", n))
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: fmt.Sprintf("testuser%d", nextID()),
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTrade creates a trade for the given user.
func CreateTestTrade(t *testing.T, db *gorm.DB, userID uint, ticker string, side models.TradeSide, quantity int64, price float64) *models.Trade {
	t.Helper()
	return CreateTestTradeOnDate(t, db, userID, ticker, side, quantity, price, time.Now())
}

// CreateTestTradeOnDate creates a trade with an explicit trade date.
func CreateTestTradeOnDate(t *testing.T, db *gorm.DB, userID uint, ticker string, side models.TradeSide, quantity int64, price float64, tradeDate time.Time) *models.Trade {
	t.Helper()

	trade := &models.Trade{
		UserID:    userID,
		Ticker:    ticker,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		TradeDate: tradeDate,
	}
	if err := db.Create(trade).Error; err != nil {
		t.Fatalf("failed to create test trade: %v", err)
	}
	return trade
}

// CreateTestFavorite adds a ticker to the user's watchlist.
func CreateTestFavorite(t *testing.T, db *gorm.DB, userID uint, ticker string) *models.Favorite {
	t.Helper()

	favorite := &models.Favorite{
		UserID:      userID,
		Ticker:      ticker,
		CompanyName: fmt.Sprintf("%s Inc.", ticker),
	}
	if err := db.Create(favorite).Error; err != nil {
		t.Fatalf("failed to create test favorite: %v", err)
	}
	return favorite
}

// CreateTestDeviceToken registers an active device token for the user.
func CreateTestDeviceToken(t *testing.T, db *gorm.DB, userID uint) *models.DeviceToken {
	t.Helper()

	token := &models.DeviceToken{
		UserID:   userID,
		Token:    fmt.Sprintf("fcm-token-%d", nextID()),
		IsActive: true,
	}
	if err := db.Create(token).Error; err != nil {
		t.Fatalf("failed to create test device token: %v", err)
	}
	return token
}
