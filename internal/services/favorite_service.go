package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "stockagent/internal/errors"
	"stockagent/internal/models"
)

// favoriteService handles watchlist and device token business logic.
type favoriteService struct {
	db *gorm.DB
}

// NewFavoriteService creates a new FavoriteServicer.
func NewFavoriteService(db *gorm.DB) FavoriteServicer {
	return &favoriteService{db: db}
}

// AddFavorite adds a ticker to the user's watchlist.
func (s *favoriteService) AddFavorite(userID uint, ticker, companyName string) (*models.Favorite, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Ticker is required")
	}

	var count int64
	s.db.Model(&models.Favorite{}).Where("user_id = ? AND ticker = ?", userID, ticker).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrDuplicateFavorite
	}

	favorite := &models.Favorite{
		UserID:      userID,
		Ticker:      ticker,
		CompanyName: companyName,
	}
	if err := s.db.Create(favorite).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return favorite, nil
}

// RemoveFavorite removes a ticker from the user's watchlist.
func (s *favoriteService) RemoveFavorite(userID uint, ticker string) error {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	result := s.db.Where("user_id = ? AND ticker = ?", userID, ticker).Delete(&models.Favorite{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrFavoriteNotFound
	}
	return nil
}

// GetUserFavorites returns the user's watchlist, most recently added first.
func (s *favoriteService) GetUserFavorites(userID uint) ([]models.Favorite, error) {
	var favorites []models.Favorite
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&favorites).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return favorites, nil
}

// SaveDeviceToken stores or reactivates an FCM registration token.
func (s *favoriteService) SaveDeviceToken(userID uint, token string) error {
	if token == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Token is required")
	}

	var existing models.DeviceToken
	err := s.db.Where("user_id = ? AND token = ?", userID, token).First(&existing).Error
	if err == nil {
		if err := s.db.Model(&existing).Update("is_active", true).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	}

	record := &models.DeviceToken{UserID: userID, Token: token, IsActive: true}
	if err := s.db.Create(record).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUserDeviceTokens returns all active FCM tokens for the user.
func (s *favoriteService) GetUserDeviceTokens(userID uint) ([]string, error) {
	var tokens []string
	if err := s.db.Model(&models.DeviceToken{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Pluck("token", &tokens).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tokens, nil
}

// DeactivateDeviceToken marks a device token as inactive.
func (s *favoriteService) DeactivateDeviceToken(userID uint, token string) error {
	result := s.db.Model(&models.DeviceToken{}).
		Where("user_id = ? AND token = ? AND is_active = ?", userID, token, true).
		Update("is_active", false)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
