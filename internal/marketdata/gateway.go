package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "stockagent/internal/errors"
)

const (
	defaultQuota         = 5
	defaultWindow        = time.Minute
	defaultAggregatesTTL = time.Hour
	defaultSearchTTL     = 30 * time.Minute
	defaultTickerInfoTTL = time.Hour

	// Restricted Polygon tiers have no current-day data, so callers
	// needing "most recent trading day" scan backward. The scan is
	// capped; exhaustion means "no data", not an error.
	maxLookbackDays = 5
)

// Options configures a Gateway. Zero values fall back to the Polygon
// free-tier defaults.
type Options struct {
	Quota         int
	Window        time.Duration
	AggregatesTTL time.Duration
	SearchTTL     time.Duration
	TickerInfoTTL time.Duration
	// Now is the clock used for cache expiry and the rate window.
	// Tests inject a fake clock here.
	Now func() time.Time
}

// SweepResult reports how many expired entries a sweep removed per bucket.
type SweepResult struct {
	Aggregates int `json:"aggregates"`
	Searches   int `json:"searches"`
	TickerInfo int `json:"ticker_info"`
}

// Gateway is the single point of contact with the upstream market data
// API. Each instance owns its own caches, rate window, and locks, so
// tests can run isolated instances; there is no package-level state.
// The cache is per-process with no cross-instance invalidation.
type Gateway struct {
	client *Client
	log    *zap.SugaredLogger
	now    func() time.Time

	limiter    *rateWindow
	aggregates *ttlCache[map[string]Quote]
	searches   *ttlCache[[]SearchResult]
	tickerInfo *ttlCache[TickerInfo]
}

// NewGateway creates a Gateway around the given client.
func NewGateway(client *Client, log *zap.SugaredLogger, opts Options) *Gateway {
	if opts.Quota == 0 {
		opts.Quota = defaultQuota
	}
	if opts.Window == 0 {
		opts.Window = defaultWindow
	}
	if opts.AggregatesTTL == 0 {
		opts.AggregatesTTL = defaultAggregatesTTL
	}
	if opts.SearchTTL == 0 {
		opts.SearchTTL = defaultSearchTTL
	}
	if opts.TickerInfoTTL == 0 {
		opts.TickerInfoTTL = defaultTickerInfoTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Gateway{
		client:     client,
		log:        log,
		now:        opts.Now,
		limiter:    newRateWindow(opts.Quota, opts.Window, opts.Now),
		aggregates: newTTLCache[map[string]Quote](opts.AggregatesTTL, opts.Now),
		searches:   newTTLCache[[]SearchResult](opts.SearchTTL, opts.Now),
		tickerInfo: newTTLCache[TickerInfo](opts.TickerInfoTTL, opts.Now),
	}
}

// GetMarketAggregates returns all-ticker daily bars for an ISO date,
// keyed by ticker. An upstream failure degrades to an empty map and a
// logged diagnostic: callers treat "no data for this date" as a normal
// condition (non-trading day, vendor outage) and scan nearby dates.
// Only a rate-limit rejection is reported as an error.
func (g *Gateway) GetMarketAggregates(ctx context.Context, date string) (map[string]Quote, error) {
	if cached, ok := g.aggregates.Get(date); ok {
		return cached, nil
	}

	if retryAfter, ok := g.limiter.Allow(); !ok {
		return nil, apperrors.RateLimited(retryAfter.Seconds())
	}

	quotes, err := g.client.GroupedDaily(ctx, date)
	if err != nil {
		g.log.Warnw("grouped aggregates fetch failed", "date", date, "error", err)
		return map[string]Quote{}, nil
	}

	byTicker := make(map[string]Quote, len(quotes))
	for _, q := range quotes {
		byTicker[q.Ticker] = q
	}
	g.aggregates.Set(date, byTicker)
	return byTicker, nil
}

// SearchTickers returns candidate tickers for a query. Results also
// populate the ticker info bucket so a later detail lookup does not
// spend another upstream call.
func (g *Gateway) SearchTickers(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	key := fmt.Sprintf("%s:%d", strings.ToLower(query), limit)
	if cached, ok := g.searches.Get(key); ok {
		return cached, nil
	}

	if retryAfter, ok := g.limiter.Allow(); !ok {
		return nil, apperrors.RateLimited(retryAfter.Seconds())
	}

	infos, err := g.client.SearchTickers(ctx, query, limit)
	if err != nil {
		g.log.Warnw("ticker search failed", "query", query, "error", err)
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(infos))
	for _, info := range infos {
		results = append(results, SearchResult{Ticker: info.Ticker, CompanyName: info.CompanyName})
		g.tickerInfo.Set(info.Ticker, info)
	}
	g.searches.Set(key, results)
	return results, nil
}

// GetTickerInfo returns reference metadata for a ticker, or false when
// the ticker is unknown or the upstream is unavailable.
func (g *Gateway) GetTickerInfo(ctx context.Context, ticker string) (TickerInfo, bool, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return TickerInfo{}, false, nil
	}

	if cached, ok := g.tickerInfo.Get(ticker); ok {
		return cached, true, nil
	}

	if retryAfter, ok := g.limiter.Allow(); !ok {
		return TickerInfo{}, false, apperrors.RateLimited(retryAfter.Seconds())
	}

	info, found, err := g.client.TickerDetails(ctx, ticker)
	if err != nil {
		g.log.Warnw("ticker detail fetch failed", "ticker", ticker, "error", err)
		return TickerInfo{}, false, nil
	}
	if !found {
		return TickerInfo{}, false, nil
	}

	g.tickerInfo.Set(ticker, info)
	return info, true, nil
}

// GetStockData filters the date's grouped aggregates down to the
// requested ticker set. Tickers with no bar for the date are simply
// absent from the result.
func (g *Gateway) GetStockData(ctx context.Context, tickers []string, date string) (map[string]Quote, error) {
	aggs, err := g.GetMarketAggregates(ctx, date)
	if err != nil {
		return nil, err
	}

	result := make(map[string]Quote, len(tickers))
	for _, ticker := range tickers {
		ticker = strings.ToUpper(ticker)
		if q, ok := aggs[ticker]; ok {
			result[ticker] = q
		}
	}
	return result, nil
}

// GetQuoteBatch returns the most recent daily bars available for the
// ticker set, scanning backward over recent calendar days until data
// appears. Scan exhaustion returns an empty map, not an error.
func (g *Gateway) GetQuoteBatch(ctx context.Context, tickers []string) (map[string]Quote, error) {
	if len(tickers) == 0 {
		return map[string]Quote{}, nil
	}

	for daysBack := 1; daysBack <= maxLookbackDays; daysBack++ {
		date := g.now().AddDate(0, 0, -daysBack).Format("2006-01-02")
		data, err := g.GetStockData(ctx, tickers, date)
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			return data, nil
		}
	}
	return map[string]Quote{}, nil
}

// Sweep removes expired entries from every cache bucket.
func (g *Gateway) Sweep() SweepResult {
	result := SweepResult{
		Aggregates: g.aggregates.Sweep(),
		Searches:   g.searches.Sweep(),
		TickerInfo: g.tickerInfo.Sweep(),
	}
	g.log.Infow("cache sweep",
		"aggregates_removed", result.Aggregates,
		"searches_removed", result.Searches,
		"ticker_info_removed", result.TickerInfo,
	)
	return result
}
