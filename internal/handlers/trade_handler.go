package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stockagent/internal/errors"
	"stockagent/internal/models"
	"stockagent/internal/pagination"
	"stockagent/internal/services"
)

// TradeHandler handles trade ledger requests.
type TradeHandler struct {
	tradeService services.TradeServicer
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(tradeService services.TradeServicer) *TradeHandler {
	return &TradeHandler{tradeService: tradeService}
}

// CreateTradeRequest represents the request payload for recording a trade
type CreateTradeRequest struct {
	Ticker           string  `json:"ticker" binding:"required,ticker"`
	Side             string  `json:"side" binding:"required,trade_side"`
	Quantity         int64   `json:"quantity" binding:"required,gt=0"`
	Price            float64 `json:"price" binding:"required,gt=0"`
	TradeDate        *string `json:"trade_date"`
	Notes            string  `json:"notes" binding:"max=500"`
	RecommendationID *uint   `json:"recommendation_id"`
}

// CreateTrade records a new trade in the user's ledger
// @Summary     Record a trade
// @Description Append a buy or sell trade to the authenticated user's ledger
// @Tags        trades
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTradeRequest true "Trade details"
// @Success     201 {object} models.Trade "Trade recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /trades [post]
func (h *TradeHandler) CreateTrade(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	tradeDate := time.Now()
	if req.TradeDate != nil && *req.TradeDate != "" {
		parsed, parseErr := parseFlexibleTime(*req.TradeDate)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		tradeDate = parsed
	}

	trade, err := h.tradeService.CreateTrade(
		userID,
		req.Ticker,
		models.TradeSide(req.Side),
		req.Quantity,
		req.Price,
		tradeDate,
		req.Notes,
		req.RecommendationID,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"trade": trade})
}

// GetTrades lists the user's trades
// @Summary     List trades
// @Description Get the authenticated user's trades, most recent first
// @Tags        trades
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Trade] "Paginated trades"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /trades [get]
func (h *TradeHandler) GetTrades(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	trades, err := h.tradeService.GetUserTrades(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, trades)
}

// GetTrade returns a single trade
// @Summary     Get a trade
// @Description Get one of the authenticated user's trades by ID
// @Tags        trades
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Trade ID"
// @Success     200 {object} models.Trade "Trade"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Trade not found"
// @Router      /trades/{id} [get]
func (h *TradeHandler) GetTrade(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tradeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	trade, err := h.tradeService.GetTradeByID(userID, tradeID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

// DeleteTrade removes a trade from the ledger
// @Summary     Delete a trade
// @Description Hard-delete one of the authenticated user's trades
// @Tags        trades
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Trade ID"
// @Success     200 {object} map[string]string "Trade deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Trade not found"
// @Router      /trades/{id} [delete]
func (h *TradeHandler) DeleteTrade(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tradeID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.tradeService.DeleteTrade(userID, tradeID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trade deleted"})
}
