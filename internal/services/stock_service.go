package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperrors "stockagent/internal/errors"
	"stockagent/internal/marketdata"
	"stockagent/internal/positions"
)

// majorIndexes are the ETF proxies shown on the dashboard header.
var majorIndexes = []struct {
	Ticker string
	Name   string
}{
	{"DIA", "Dow Jones"},
	{"SPY", "S&P 500"},
	{"QQQ", "Nasdaq 100"},
	{"VTI", "Total Market"},
}

// stockService folds the trade ledger, the position engine, and the
// market data gateway into the portfolio and dashboard views.
type stockService struct {
	trades    TradeServicer
	favorites FavoriteServicer
	gateway   *marketdata.Gateway
	log       *zap.SugaredLogger
}

// NewStockService creates a new StockServicer.
func NewStockService(trades TradeServicer, favorites FavoriteServicer, gateway *marketdata.Gateway, log *zap.SugaredLogger) StockServicer {
	return &stockService{
		trades:    trades,
		favorites: favorites,
		gateway:   gateway,
		log:       log,
	}
}

// GetPositions aggregates the user's trade ledger into open positions
// enriched with latest prices. Positions whose ticker has no recent bar
// come back flagged price-unavailable rather than dropped.
func (s *stockService) GetPositions(ctx context.Context, userID uint) ([]positions.EnrichedPosition, error) {
	ledger, err := s.trades.GetLedger(userID)
	if err != nil {
		return nil, err
	}

	open := positions.Compute(ledger)
	if len(open) == 0 {
		return []positions.EnrichedPosition{}, nil
	}

	tickers := make([]string, 0, len(open))
	for _, p := range open {
		tickers = append(tickers, p.Ticker)
	}

	quotes, err := s.gateway.GetQuoteBatch(ctx, tickers)
	if err != nil {
		return nil, err
	}

	return positions.Enrich(open, func(ticker string) (float64, bool) {
		q, ok := quotes[ticker]
		if !ok {
			return 0, false
		}
		return q.Close, true
	}), nil
}

// GetPortfolioSummary returns portfolio-wide totals over the user's
// enriched positions. The trade count covers the full ledger, closed
// positions included.
func (s *stockService) GetPortfolioSummary(ctx context.Context, userID uint) (*positions.PortfolioSummary, error) {
	ledger, err := s.trades.GetLedger(userID)
	if err != nil {
		return nil, err
	}

	enriched, err := s.GetPositions(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := positions.Summary(enriched, len(ledger))
	return &summary, nil
}

// GetQuoteBatch returns the most recent daily bars for the ticker set.
func (s *stockService) GetQuoteBatch(ctx context.Context, tickers []string) (map[string]marketdata.Quote, error) {
	return s.gateway.GetQuoteBatch(ctx, tickers)
}

// Search looks up tickers matching the query.
func (s *stockService) Search(ctx context.Context, query string, limit int) ([]marketdata.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Search query is required")
	}
	return s.gateway.SearchTickers(ctx, query, limit)
}

// GetMajorIndexes returns quotes for the dashboard's index proxies.
func (s *stockService) GetMajorIndexes(ctx context.Context) ([]DashboardStock, error) {
	tickers := make([]string, len(majorIndexes))
	for i, idx := range majorIndexes {
		tickers[i] = idx.Ticker
	}

	quotes, err := s.gateway.GetQuoteBatch(ctx, tickers)
	if err != nil {
		return nil, err
	}

	rows := make([]DashboardStock, 0, len(majorIndexes))
	for _, idx := range majorIndexes {
		rows = append(rows, dashboardRow(idx.Ticker, idx.Name, quotes))
	}
	return rows, nil
}

// GetDashboardFavorites returns the user's watchlist folded together
// with latest quotes, preserving watchlist order.
func (s *stockService) GetDashboardFavorites(ctx context.Context, userID uint) ([]DashboardStock, error) {
	favorites, err := s.favorites.GetUserFavorites(userID)
	if err != nil {
		return nil, err
	}
	if len(favorites) == 0 {
		return []DashboardStock{}, nil
	}

	tickers := make([]string, 0, len(favorites))
	for _, f := range favorites {
		tickers = append(tickers, f.Ticker)
	}

	quotes, err := s.gateway.GetQuoteBatch(ctx, tickers)
	if err != nil {
		return nil, err
	}

	rows := make([]DashboardStock, 0, len(favorites))
	for _, f := range favorites {
		rows = append(rows, dashboardRow(f.Ticker, f.CompanyName, quotes))
	}
	return rows, nil
}

// dashboardRow builds one dashboard entry, degrading to placeholder
// values when the ticker has no recent bar.
func dashboardRow(ticker, name string, quotes map[string]marketdata.Quote) DashboardStock {
	q, ok := quotes[ticker]
	if !ok {
		return DashboardStock{
			Ticker:           ticker,
			CompanyName:      name,
			PriceUnavailable: true,
		}
	}

	row := DashboardStock{
		Ticker:      ticker,
		CompanyName: name,
		Price:       q.Close,
		Change:      q.Close - q.Open,
		Volume:      q.Volume,
	}
	if q.Open != 0 {
		row.ChangePercent = (q.Close - q.Open) / q.Open * 100
	}
	return row
}
