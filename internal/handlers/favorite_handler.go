package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "stockagent/internal/errors"
	"stockagent/internal/services"
)

// FavoriteHandler handles watchlist and device token requests.
type FavoriteHandler struct {
	favoriteService     services.FavoriteServicer
	notificationService services.NotificationServicer
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(favoriteService services.FavoriteServicer, notificationService services.NotificationServicer) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService, notificationService: notificationService}
}

// AddFavoriteRequest represents the request payload for adding a favorite
type AddFavoriteRequest struct {
	Ticker      string `json:"ticker" binding:"required,ticker"`
	CompanyName string `json:"company_name" binding:"max=255"`
}

// RegisterDeviceRequest represents the request payload for registering
// an FCM device token
type RegisterDeviceRequest struct {
	Token string `json:"token" binding:"required"`
}

// AddFavorite adds a ticker to the user's watchlist
// @Summary     Add a favorite
// @Description Add a ticker to the authenticated user's watchlist
// @Tags        favorites
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body AddFavoriteRequest true "Favorite details"
// @Success     201 {object} models.Favorite "Favorite added"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Already in favorites"
// @Router      /favorites [post]
func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	favorite, err := h.favoriteService.AddFavorite(userID, req.Ticker, req.CompanyName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"favorite": favorite})
}

// RemoveFavorite removes a ticker from the user's watchlist
// @Summary     Remove a favorite
// @Description Remove a ticker from the authenticated user's watchlist
// @Tags        favorites
// @Produce     json
// @Security    BearerAuth
// @Param       ticker path string true "Ticker symbol"
// @Success     200 {object} map[string]string "Favorite removed"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Favorite not found"
// @Router      /favorites/{ticker} [delete]
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ticker := strings.TrimSpace(c.Param("ticker"))
	if ticker == "" {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Ticker is required"))
		return
	}

	if err := h.favoriteService.RemoveFavorite(userID, ticker); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
}

// GetFavorites lists the user's watchlist
// @Summary     List favorites
// @Description Get the authenticated user's watchlist
// @Tags        favorites
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} models.Favorite "Favorites"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /favorites [get]
func (h *FavoriteHandler) GetFavorites(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	favorites, err := h.favoriteService.GetUserFavorites(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// RegisterDevice stores an FCM token and subscribes it to stock alerts
// @Summary     Register a device
// @Description Store an FCM registration token for push notifications
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RegisterDeviceRequest true "Device token"
// @Success     200 {object} map[string]string "Device registered"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /devices [post]
func (h *FavoriteHandler) RegisterDevice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.favoriteService.SaveDeviceToken(userID, req.Token); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.notificationService.SubscribeToTopic(c.Request.Context(), req.Token, "stock-alerts"); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device registered"})
}

// UnregisterDevice deactivates an FCM token and unsubscribes it
// @Summary     Unregister a device
// @Description Deactivate an FCM registration token
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body RegisterDeviceRequest true "Device token"
// @Success     200 {object} map[string]string "Device unregistered"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Token not found"
// @Router      /devices [delete]
func (h *FavoriteHandler) UnregisterDevice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if err := h.favoriteService.DeactivateDeviceToken(userID, req.Token); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.notificationService.UnsubscribeFromTopic(c.Request.Context(), req.Token, "stock-alerts"); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device unregistered"})
}
