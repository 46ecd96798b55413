package models

// DeviceToken represents an FCM registration token for push notifications.
// A token is deactivated rather than deleted so delivery failures can be
// traced back to the device that caused them.
type DeviceToken struct {
	Base
	UserID   uint   `gorm:"not null;uniqueIndex:uq_device_tokens_user_token" json:"user_id"`
	Token    string `gorm:"not null;uniqueIndex:uq_device_tokens_user_token" json:"token"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}
