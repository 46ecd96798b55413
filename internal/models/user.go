package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Username     string        `gorm:"uniqueIndex;not null" json:"username"`
	Email        string        `gorm:"uniqueIndex;not null" json:"email"`
	Password     string        `gorm:"not null" json:"-"`
	IsActive     bool          `gorm:"default:true" json:"is_active"`
	LastLoginAt  *time.Time    `json:"last_login_at,omitempty"`
	Trades       []Trade       `gorm:"foreignKey:UserID" json:"trades,omitempty"`
	Favorites    []Favorite    `gorm:"foreignKey:UserID" json:"favorites,omitempty"`
	DeviceTokens []DeviceToken `gorm:"foreignKey:UserID" json:"-"`
}
