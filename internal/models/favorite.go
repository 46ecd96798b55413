package models

// Favorite represents a stock a user has added to their watchlist.
type Favorite struct {
	Base
	UserID      uint   `gorm:"not null;uniqueIndex:uq_favorites_user_ticker" json:"user_id"`
	Ticker      string `gorm:"not null;uniqueIndex:uq_favorites_user_ticker" json:"ticker"`
	CompanyName string `json:"company_name,omitempty"`
}
