package models

import "time"

// TradeSide represents the direction of a trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// Trade represents a single entry in a user's trade ledger. Trades are
// immutable once created; the only mutation is an owner-scoped hard delete.
type Trade struct {
	Base
	UserID           uint      `gorm:"not null;index" json:"user_id"`
	Ticker           string    `gorm:"not null;index" json:"ticker"`
	Side             TradeSide `gorm:"not null" json:"side"`
	Quantity         int64     `gorm:"not null" json:"quantity"`
	Price            float64   `gorm:"not null" json:"price"`
	TradeDate        time.Time `gorm:"not null;index" json:"trade_date"`
	Notes            string    `json:"notes,omitempty"`
	RecommendationID *uint     `json:"recommendation_id,omitempty"`
}
