package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stockagent/internal/errors"
	"stockagent/internal/models"
	"stockagent/internal/pagination"
)

type mockTradeService struct {
	createTradeFn   func(userID uint, ticker string, side models.TradeSide, quantity int64, price float64, tradeDate time.Time, notes string, recommendationID *uint) (*models.Trade, error)
	getUserTradesFn func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error)
	getLedgerFn     func(userID uint) ([]models.Trade, error)
	getTradeByIDFn  func(userID, tradeID uint) (*models.Trade, error)
	deleteTradeFn   func(userID, tradeID uint) error
}

func (m *mockTradeService) CreateTrade(userID uint, ticker string, side models.TradeSide, quantity int64, price float64, tradeDate time.Time, notes string, recommendationID *uint) (*models.Trade, error) {
	if m.createTradeFn != nil {
		return m.createTradeFn(userID, ticker, side, quantity, price, tradeDate, notes, recommendationID)
	}
	return &models.Trade{}, nil
}

func (m *mockTradeService) GetUserTrades(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error) {
	if m.getUserTradesFn != nil {
		return m.getUserTradesFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Trade{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTradeService) GetLedger(userID uint) ([]models.Trade, error) {
	if m.getLedgerFn != nil {
		return m.getLedgerFn(userID)
	}
	return []models.Trade{}, nil
}

func (m *mockTradeService) GetTradeByID(userID, tradeID uint) (*models.Trade, error) {
	if m.getTradeByIDFn != nil {
		return m.getTradeByIDFn(userID, tradeID)
	}
	return &models.Trade{}, nil
}

func (m *mockTradeService) DeleteTrade(userID, tradeID uint) error {
	if m.deleteTradeFn != nil {
		return m.deleteTradeFn(userID, tradeID)
	}
	return nil
}

func setupTradeRouter(handler *TradeHandler) *gin.Engine {
	r := gin.New()
	authed := r.Group("/", injectUserID(1))
	authed.POST("/trades", handler.CreateTrade)
	authed.GET("/trades", handler.GetTrades)
	authed.GET("/trades/:id", handler.GetTrade)
	authed.DELETE("/trades/:id", handler.DeleteTrade)
	return r
}

func TestTradeHandler_CreateTrade(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		var gotSide models.TradeSide
		var gotTicker string
		tradeSvc := &mockTradeService{
			createTradeFn: func(userID uint, ticker string, side models.TradeSide, quantity int64, price float64, _ time.Time, _ string, _ *uint) (*models.Trade, error) {
				gotSide = side
				gotTicker = ticker
				return &models.Trade{
					Base:     models.Base{ID: 1},
					UserID:   userID,
					Ticker:   ticker,
					Side:     side,
					Quantity: quantity,
					Price:    price,
				}, nil
			},
		}
		handler := NewTradeHandler(tradeSvc)
		r := setupTradeRouter(handler)

		rec := doRequest(r, "POST", "/trades",
			`{"ticker":"AAPL","side":"buy","quantity":10,"price":175.5,"trade_date":"2026-01-05"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotSide != models.TradeSideBuy {
			t.Errorf("expected side buy, got %s", gotSide)
		}
		if gotTicker != "AAPL" {
			t.Errorf("expected ticker AAPL, got %s", gotTicker)
		}
	})

	t.Run("returns 400 on invalid side", func(t *testing.T) {
		handler := NewTradeHandler(&mockTradeService{})
		r := setupTradeRouter(handler)

		rec := doRequest(r, "POST", "/trades",
			`{"ticker":"AAPL","side":"hold","quantity":10,"price":175.5}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on invalid ticker", func(t *testing.T) {
		handler := NewTradeHandler(&mockTradeService{})
		r := setupTradeRouter(handler)

		rec := doRequest(r, "POST", "/trades",
			`{"ticker":"NOT A TICKER","side":"buy","quantity":10,"price":175.5}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on non-positive quantity", func(t *testing.T) {
		handler := NewTradeHandler(&mockTradeService{})
		r := setupTradeRouter(handler)

		rec := doRequest(r, "POST", "/trades",
			`{"ticker":"AAPL","side":"buy","quantity":0,"price":175.5}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on garbled date", func(t *testing.T) {
		handler := NewTradeHandler(&mockTradeService{})
		r := setupTradeRouter(handler)

		rec := doRequest(r, "POST", "/trades",
			`{"ticker":"AAPL","side":"buy","quantity":10,"price":175.5,"trade_date":"yesterday"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTradeHandler_GetTrades(t *testing.T) {
	t.Run("returns paginated trades", func(t *testing.T) {
		tradeSvc := &mockTradeService{
			getUserTradesFn: func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Trade], error) {
				trades := []models.Trade{
					{Base: models.Base{ID: 2}, UserID: userID, Ticker: "AAPL"},
					{Base: models.Base{ID: 1}, UserID: userID, Ticker: "MSFT"},
				}
				resp := pagination.NewPageResponse(trades, 1, 20, 2)
				return &resp, nil
			},
		}
		handler := NewTradeHandler(tradeSvc)
		r := setupTradeRouter(handler)

		rec := doRequest(r, "GET", "/trades", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		data := result["data"].([]interface{})
		if len(data) != 2 {
			t.Errorf("expected 2 trades, got %d", len(data))
		}
	})

	t.Run("returns 400 on bad page size", func(t *testing.T) {
		handler := NewTradeHandler(&mockTradeService{})
		r := setupTradeRouter(handler)

		rec := doRequest(r, "GET", "/trades?page_size=9999", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTradeHandler_GetTrade(t *testing.T) {
	t.Run("returns 404 when not found", func(t *testing.T) {
		tradeSvc := &mockTradeService{
			getTradeByIDFn: func(_, _ uint) (*models.Trade, error) {
				return nil, apperrors.ErrTradeNotFound
			},
		}
		handler := NewTradeHandler(tradeSvc)
		r := setupTradeRouter(handler)

		rec := doRequest(r, "GET", "/trades/42", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRADE_NOT_FOUND")
	})

	t.Run("returns 400 on non-numeric id", func(t *testing.T) {
		handler := NewTradeHandler(&mockTradeService{})
		r := setupTradeRouter(handler)

		rec := doRequest(r, "GET", "/trades/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTradeHandler_DeleteTrade(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var deletedID uint
		tradeSvc := &mockTradeService{
			deleteTradeFn: func(_, tradeID uint) error {
				deletedID = tradeID
				return nil
			},
		}
		handler := NewTradeHandler(tradeSvc)
		r := setupTradeRouter(handler)

		rec := doRequest(r, "DELETE", "/trades/3", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if deletedID != 3 {
			t.Errorf("expected trade 3 deleted, got %d", deletedID)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		tradeSvc := &mockTradeService{
			deleteTradeFn: func(_, _ uint) error { return apperrors.ErrTradeNotFound },
		}
		handler := NewTradeHandler(tradeSvc)
		r := setupTradeRouter(handler)

		rec := doRequest(r, "DELETE", "/trades/42", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
