// Package marketdata is the single point of contact with the upstream
// Polygon market data API. It enforces a rolling-window rate limit and
// serves three independently TTL-cached lookup types so that many
// concurrent read paths (dashboard, search, portfolio pricing) share a
// small upstream quota.
package marketdata

// Quote holds one ticker's daily bar from the grouped aggregates feed.
type Quote struct {
	Ticker       string  `json:"ticker"`
	Open         float64 `json:"open"`
	High         float64 `json:"high"`
	Low          float64 `json:"low"`
	Close        float64 `json:"close"`
	Volume       float64 `json:"volume"`
	VWAP         float64 `json:"vwap"`
	Transactions int64   `json:"transactions"`
	AsOfDate     string  `json:"as_of_date"`
}

// SearchResult is a ticker search candidate.
type SearchResult struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
}

// TickerInfo holds reference metadata for a ticker.
type TickerInfo struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	Market      string `json:"market"`
	Exchange    string `json:"exchange"`
	Type        string `json:"type"`
	CIK         string `json:"cik"`
	Active      bool   `json:"active"`
}
