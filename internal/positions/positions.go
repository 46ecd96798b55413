// Package positions derives portfolio holdings from a trade ledger.
// All functions are pure: they read the ledger and an injected quote
// lookup, never perform I/O, and never fail on data-shape anomalies —
// a corrupt ticker degrades instead of blocking the rest of the
// portfolio.
package positions

import (
	"sort"

	"stockagent/internal/models"
)

// Position is a per-ticker aggregate derived from buy/sell trades.
type Position struct {
	Ticker         string  `json:"ticker"`
	TotalBought    int64   `json:"total_bought"`
	TotalSold      int64   `json:"total_sold"`
	NetQuantity    int64   `json:"net_quantity"`
	TotalCostBasis float64 `json:"total_cost_basis"`
	AverageCost    float64 `json:"average_cost"`
}

// EnrichedPosition is a Position folded together with a current quote.
type EnrichedPosition struct {
	Position
	CurrentPrice     float64 `json:"current_price"`
	MarketValue      float64 `json:"market_value"`
	PnL              float64 `json:"pnl"`
	PnLPercent       float64 `json:"pnl_percent"`
	PriceUnavailable bool    `json:"price_unavailable"`
}

// PortfolioSummary aggregates enriched positions into portfolio totals.
type PortfolioSummary struct {
	TotalValue      float64 `json:"total_value"`
	TotalCost       float64 `json:"total_cost"`
	TotalPnL        float64 `json:"total_pnl"`
	TotalPnLPercent float64 `json:"total_pnl_percent"`
	PositionCount   int     `json:"position_count"`
	TradeCount      int     `json:"trade_count"`
}

// QuoteFunc looks up the current price for a ticker. The second return
// value is false when no price is available.
type QuoteFunc func(ticker string) (float64, bool)

// Compute aggregates a single owner's trade ledger into positions.
// Trades are scanned in non-decreasing trade date order with ties broken
// by insertion order, so the result is deterministic for an unchanged
// ledger. Tickers whose net quantity is zero are excluded: a fully
// closed position does not appear in portfolio views.
func Compute(trades []models.Trade) []Position {
	ordered := make([]models.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].TradeDate.Equal(ordered[j].TradeDate) {
			return ordered[i].TradeDate.Before(ordered[j].TradeDate)
		}
		return ordered[i].ID < ordered[j].ID
	})

	byTicker := make(map[string]*Position)
	var tickers []string

	for _, t := range ordered {
		pos, ok := byTicker[t.Ticker]
		if !ok {
			pos = &Position{Ticker: t.Ticker}
			byTicker[t.Ticker] = pos
			tickers = append(tickers, t.Ticker)
		}

		switch t.Side {
		case models.TradeSideBuy:
			pos.TotalBought += t.Quantity
			pos.TotalCostBasis += float64(t.Quantity) * t.Price
		case models.TradeSideSell:
			pos.TotalSold += t.Quantity
		}
	}

	result := make([]Position, 0, len(tickers))
	for _, ticker := range tickers {
		pos := byTicker[ticker]
		pos.NetQuantity = pos.TotalBought - pos.TotalSold
		if pos.NetQuantity == 0 {
			continue
		}
		// A sell-only ticker has no buys to average over; report zero
		// rather than dividing by zero.
		if pos.TotalBought > 0 {
			pos.AverageCost = pos.TotalCostBasis / float64(pos.TotalBought)
		}
		result = append(result, *pos)
	}
	return result
}

// Enrich folds current prices into positions. A missing quote degrades
// to a zero price with PriceUnavailable set, so the caller can render a
// placeholder instead of failing the whole portfolio.
func Enrich(positions []Position, quote QuoteFunc) []EnrichedPosition {
	enriched := make([]EnrichedPosition, 0, len(positions))
	for _, pos := range positions {
		ep := EnrichedPosition{Position: pos}

		price, ok := quote(pos.Ticker)
		if !ok {
			ep.PriceUnavailable = true
		} else {
			ep.CurrentPrice = price
		}

		ep.MarketValue = ep.CurrentPrice * float64(pos.NetQuantity)
		ep.PnL = (ep.CurrentPrice - pos.AverageCost) * float64(pos.NetQuantity)
		if pos.TotalCostBasis != 0 {
			ep.PnLPercent = ep.PnL / pos.TotalCostBasis * 100
		}

		enriched = append(enriched, ep)
	}
	return enriched
}

// Summary totals enriched positions. tradeCount is the size of the full
// ledger, including trades behind fully closed positions.
func Summary(enriched []EnrichedPosition, tradeCount int) PortfolioSummary {
	summary := PortfolioSummary{
		PositionCount: len(enriched),
		TradeCount:    tradeCount,
	}

	for _, ep := range enriched {
		summary.TotalValue += ep.MarketValue
		summary.TotalCost += ep.TotalCostBasis
	}

	summary.TotalPnL = summary.TotalValue - summary.TotalCost
	if summary.TotalCost != 0 {
		summary.TotalPnLPercent = summary.TotalPnL / summary.TotalCost * 100
	}
	return summary
}
