package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const defaultBaseURL = "https://api.polygon.io"

// Client is a thin Polygon REST API client. It performs no caching or
// rate limiting of its own; the Gateway wraps it for that.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a Polygon API client. An empty baseURL selects the
// production endpoint; tests point it at a local server.
func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, apiKey: apiKey}
}

// groupedDailyResponse is the Polygon grouped daily aggregates response.
type groupedDailyResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Ticker       string  `json:"T"`
		Open         float64 `json:"o"`
		High         float64 `json:"h"`
		Low          float64 `json:"l"`
		Close        float64 `json:"c"`
		Volume       float64 `json:"v"`
		VWAP         float64 `json:"vw"`
		Transactions int64   `json:"n"`
	} `json:"results"`
}

// tickerEntry is a single reference-ticker record shared by the search
// and detail endpoints.
type tickerEntry struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Market   string `json:"market"`
	Exchange string `json:"primary_exchange"`
	Type     string `json:"type"`
	CIK      string `json:"cik"`
	Active   bool   `json:"active"`
}

type tickerSearchResponse struct {
	Status  string        `json:"status"`
	Results []tickerEntry `json:"results"`
}

type tickerDetailResponse struct {
	Status  string       `json:"status"`
	Results *tickerEntry `json:"results"`
}

// GroupedDaily fetches all-ticker daily bars for an ISO date (YYYY-MM-DD).
func (c *Client) GroupedDaily(ctx context.Context, date string) ([]Quote, error) {
	endpoint := fmt.Sprintf("%s/v2/aggs/grouped/locale/us/market/stocks/%s?adjusted=true&apiKey=%s",
		c.baseURL, url.PathEscape(date), url.QueryEscape(c.apiKey))

	var resp groupedDailyResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	quotes := make([]Quote, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Ticker == "" {
			continue
		}
		quotes = append(quotes, Quote{
			Ticker:       r.Ticker,
			Open:         r.Open,
			High:         r.High,
			Low:          r.Low,
			Close:        r.Close,
			Volume:       r.Volume,
			VWAP:         r.VWAP,
			Transactions: r.Transactions,
			AsOfDate:     date,
		})
	}
	return quotes, nil
}

// SearchTickers searches reference tickers by symbol or company name.
func (c *Client) SearchTickers(ctx context.Context, query string, limit int) ([]TickerInfo, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("active", "true")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("apiKey", c.apiKey)
	endpoint := c.baseURL + "/v3/reference/tickers?" + params.Encode()

	var resp tickerSearchResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	infos := make([]TickerInfo, 0, len(resp.Results))
	for _, r := range resp.Results {
		infos = append(infos, tickerInfoFromEntry(r))
	}
	return infos, nil
}

// TickerDetails fetches reference metadata for a single ticker. The
// second return value is false when the ticker is unknown upstream.
func (c *Client) TickerDetails(ctx context.Context, ticker string) (TickerInfo, bool, error) {
	ep := fmt.Sprintf("%s/v3/reference/tickers/%s?apiKey=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep, nil)
	if err != nil {
		return TickerInfo{}, false, fmt.Errorf("building request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return TickerInfo{}, false, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode == http.StatusNotFound {
		return TickerInfo{}, false, nil
	}
	if httpResp.StatusCode != http.StatusOK {
		return TickerInfo{}, false, fmt.Errorf("unexpected status %d", httpResp.StatusCode)
	}

	var resp tickerDetailResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return TickerInfo{}, false, fmt.Errorf("decoding response: %w", err)
	}
	if resp.Results == nil {
		return TickerInfo{}, false, nil
	}
	return tickerInfoFromEntry(*resp.Results), true, nil
}

// getJSON performs a GET request and decodes the JSON response body.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func tickerInfoFromEntry(e tickerEntry) TickerInfo {
	return TickerInfo{
		Ticker:      e.Ticker,
		CompanyName: e.Name,
		Market:      e.Market,
		Exchange:    e.Exchange,
		Type:        e.Type,
		CIK:         e.CIK,
		Active:      e.Active,
	}
}
