package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "stockagent/internal/errors"
	"stockagent/internal/services"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// StockHandler handles market data requests.
type StockHandler struct {
	stockService services.StockServicer
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockService services.StockServicer) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// Search looks up tickers matching a query
// @Summary     Search tickers
// @Description Search for stocks by ticker or company name
// @Tags        stocks
// @Produce     json
// @Security    BearerAuth
// @Param       q query string true "Search query"
// @Param       limit query int false "Maximum results (default 10, max 50)"
// @Success     200 {array} marketdata.SearchResult "Matching tickers"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     429 {object} ErrorResponse "Market data quota exhausted"
// @Router      /stocks/search [get]
func (h *StockHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Query parameter q is required"))
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid limit"))
			return
		}
		limit = parsed
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	results, err := h.stockService.Search(c.Request.Context(), query, limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetQuotes returns the latest daily bars for a ticker list
// @Summary     Get quotes
// @Description Get the most recent daily bars for a comma-separated ticker list
// @Tags        stocks
// @Produce     json
// @Security    BearerAuth
// @Param       tickers query string true "Comma-separated tickers"
// @Success     200 {object} map[string]marketdata.Quote "Quotes keyed by ticker"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     429 {object} ErrorResponse "Market data quota exhausted"
// @Router      /stocks/quotes [get]
func (h *StockHandler) GetQuotes(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("tickers"))
	if raw == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Query parameter tickers is required"))
		return
	}

	var tickers []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tickers = append(tickers, t)
		}
	}

	quotes, err := h.stockService.GetQuoteBatch(c.Request.Context(), tickers)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

// GetMajorIndexes returns quotes for the dashboard's index proxies
// @Summary     Get major indexes
// @Description Get latest quotes for the major index ETF proxies
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.DashboardStock "Index rows"
// @Failure     429 {object} ErrorResponse "Market data quota exhausted"
// @Router      /dashboard/indexes [get]
func (h *StockHandler) GetMajorIndexes(c *gin.Context) {
	rows, err := h.stockService.GetMajorIndexes(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"indexes": rows})
}

// GetDashboardFavorites returns the user's watchlist with quotes
// @Summary     Get dashboard favorites
// @Description Get the authenticated user's watchlist folded with latest quotes
// @Tags        dashboard
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.DashboardStock "Watchlist rows"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     429 {object} ErrorResponse "Market data quota exhausted"
// @Router      /dashboard/favorites [get]
func (h *StockHandler) GetDashboardFavorites(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	rows, err := h.stockService.GetDashboardFavorites(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": rows})
}
