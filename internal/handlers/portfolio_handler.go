package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockagent/internal/services"
)

// PortfolioHandler handles portfolio aggregation requests.
type PortfolioHandler struct {
	stockService services.StockServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(stockService services.StockServicer) *PortfolioHandler {
	return &PortfolioHandler{stockService: stockService}
}

// GetPositions returns the user's open positions
// @Summary     Get positions
// @Description Get the authenticated user's open positions with latest prices
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} positions.EnrichedPosition "Open positions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Market data quota exhausted"
// @Router      /portfolio/positions [get]
func (h *PortfolioHandler) GetPositions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	positions, err := h.stockService.GetPositions(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"positions": positions})
}

// GetSummary returns portfolio-wide totals
// @Summary     Get portfolio summary
// @Description Get the authenticated user's portfolio totals
// @Tags        portfolio
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} positions.PortfolioSummary "Portfolio summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Market data quota exhausted"
// @Router      /portfolio/summary [get]
func (h *PortfolioHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.stockService.GetPortfolioSummary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}
