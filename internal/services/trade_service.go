package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "stockagent/internal/errors"
	"stockagent/internal/models"
	"stockagent/internal/pagination"
)

// tradeService handles trade ledger business logic.
type tradeService struct {
	db *gorm.DB
}

// NewTradeService creates a new TradeServicer.
func NewTradeService(db *gorm.DB) TradeServicer {
	return &tradeService{db: db}
}

// CreateTrade validates and appends a trade to the user's ledger.
// Tickers are normalized to uppercase before insertion.
func (s *tradeService) CreateTrade(
	userID uint,
	ticker string,
	side models.TradeSide,
	quantity int64,
	price float64,
	tradeDate time.Time,
	notes string,
	recommendationID *uint,
) (*models.Trade, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Ticker is required")
	}
	if side != models.TradeSideBuy && side != models.TradeSideSell {
		return nil, apperrors.ErrInvalidTradeSide
	}
	if quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity must be positive")
	}
	if price <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Price must be positive")
	}

	trade := &models.Trade{
		UserID:           userID,
		Ticker:           ticker,
		Side:             side,
		Quantity:         quantity,
		Price:            price,
		TradeDate:        tradeDate,
		Notes:            notes,
		RecommendationID: recommendationID,
	}

	if err := s.db.Create(trade).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return trade, nil
}

// GetUserTrades returns a paginated list of the user's trades, most recent first.
func (s *tradeService) GetUserTrades(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Trade{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var trades []models.Trade
	if err := s.db.Where("user_id = ?", userID).
		Order("trade_date DESC, id DESC").
		Scopes(pagination.Paginate(page)).Find(&trades).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(trades, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetLedger returns the user's full trade ledger in aggregation order:
// non-decreasing trade date, ties broken by insertion order.
func (s *tradeService) GetLedger(userID uint) ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.db.Where("user_id = ?", userID).
		Order("trade_date ASC, id ASC").
		Find(&trades).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return trades, nil
}

// GetTradeByID returns a trade if it belongs to the user.
func (s *tradeService) GetTradeByID(userID, tradeID uint) (*models.Trade, error) {
	var trade models.Trade
	if err := s.db.Where("user_id = ?", userID).First(&trade, tradeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTradeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &trade, nil
}

// DeleteTrade hard-deletes a trade, scoped to its owner.
func (s *tradeService) DeleteTrade(userID, tradeID uint) error {
	result := s.db.Where("user_id = ?", userID).Delete(&models.Trade{}, tradeID)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTradeNotFound
	}
	return nil
}
