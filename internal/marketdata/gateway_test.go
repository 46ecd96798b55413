package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"stockagent/internal/testutil"
)

// newTestGateway wires a Gateway to a fake upstream and a fake clock.
// The returned counter tracks how many requests reached the upstream.
func newTestGateway(t *testing.T, clock *fakeClock, handler http.HandlerFunc) (*Gateway, *int) {
	t.Helper()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.Client(), server.URL, "test-key")

	gw := NewGateway(client, zap.NewNop().Sugar(), Options{Now: clock.Now})
	return gw, &calls
}

func groupedDailyHandler(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, `{"status":"OK","results":[
		{"T":"AAPL","o":170,"h":176,"l":169,"c":175,"v":1000000,"vw":173.5,"n":5000},
		{"T":"MSFT","o":345,"h":352,"l":344,"c":350,"v":800000,"vw":348.2,"n":4000}
	]}`)
}

func TestGetMarketAggregates(t *testing.T) {
	t.Run("fetch_then_cache_hit", func(t *testing.T) {
		clock := newFakeClock()
		gw, calls := newTestGateway(t, clock, groupedDailyHandler)

		first, err := gw.GetMarketAggregates(context.Background(), "2024-01-02")
		testutil.AssertNoError(t, err)
		if len(first) != 2 {
			t.Fatalf("expected 2 tickers, got %d", len(first))
		}
		if first["AAPL"].Close != 175 {
			t.Errorf("expected AAPL close 175, got %f", first["AAPL"].Close)
		}

		second, err := gw.GetMarketAggregates(context.Background(), "2024-01-02")
		testutil.AssertNoError(t, err)
		if second["MSFT"].Close != first["MSFT"].Close {
			t.Error("cached result differs from fresh result")
		}
		if *calls != 1 {
			t.Errorf("expected 1 upstream call, got %d", *calls)
		}
	})

	t.Run("expired_entry_triggers_refetch", func(t *testing.T) {
		clock := newFakeClock()
		gw, calls := newTestGateway(t, clock, groupedDailyHandler)

		_, err := gw.GetMarketAggregates(context.Background(), "2024-01-02")
		testutil.AssertNoError(t, err)

		clock.Advance(time.Hour + time.Second)
		_, err = gw.GetMarketAggregates(context.Background(), "2024-01-02")
		testutil.AssertNoError(t, err)

		if *calls != 2 {
			t.Errorf("expected refetch after TTL expiry, got %d upstream calls", *calls)
		}
	})

	t.Run("upstream_failure_degrades_to_empty", func(t *testing.T) {
		clock := newFakeClock()
		gw, _ := newTestGateway(t, clock, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		result, err := gw.GetMarketAggregates(context.Background(), "2024-01-02")
		testutil.AssertNoError(t, err)
		if len(result) != 0 {
			t.Errorf("expected empty result on upstream failure, got %v", result)
		}
	})

	t.Run("rate_limit_fail_fast", func(t *testing.T) {
		clock := newFakeClock()
		gw, _ := newTestGateway(t, clock, groupedDailyHandler)

		// Distinct dates: each one is a cache miss costing an upstream call.
		for i := 0; i < 5; i++ {
			_, err := gw.GetMarketAggregates(context.Background(), fmt.Sprintf("2024-01-%02d", i+2))
			testutil.AssertNoError(t, err)
		}

		_, err := gw.GetMarketAggregates(context.Background(), "2024-01-08")
		testutil.AssertAppError(t, err, "RATE_LIMIT_EXCEEDED")
	})

	t.Run("cache_hits_do_not_count_against_quota", func(t *testing.T) {
		clock := newFakeClock()
		gw, calls := newTestGateway(t, clock, groupedDailyHandler)

		for i := 0; i < 10; i++ {
			_, err := gw.GetMarketAggregates(context.Background(), "2024-01-02")
			testutil.AssertNoError(t, err)
		}
		if *calls != 1 {
			t.Errorf("expected 1 upstream call for 10 cached reads, got %d", *calls)
		}
	})
}

func TestSearchTickers(t *testing.T) {
	searchHandler := func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"OK","results":[
			{"ticker":"AAPL","name":"Apple Inc.","market":"stocks","primary_exchange":"XNAS","type":"CS","cik":"0000320193","active":true}
		]}`)
	}

	t.Run("search_and_cache", func(t *testing.T) {
		clock := newFakeClock()
		gw, calls := newTestGateway(t, clock, searchHandler)

		results, err := gw.SearchTickers(context.Background(), "apple", 10)
		testutil.AssertNoError(t, err)
		if len(results) != 1 || results[0].Ticker != "AAPL" {
			t.Fatalf("unexpected results: %+v", results)
		}
		if results[0].CompanyName != "Apple Inc." {
			t.Errorf("expected company name, got %q", results[0].CompanyName)
		}

		// Same query differing only in case hits the cache.
		_, err = gw.SearchTickers(context.Background(), "APPLE", 10)
		testutil.AssertNoError(t, err)
		if *calls != 1 {
			t.Errorf("expected 1 upstream call, got %d", *calls)
		}
	})

	t.Run("search_populates_ticker_info_bucket", func(t *testing.T) {
		clock := newFakeClock()
		gw, calls := newTestGateway(t, clock, searchHandler)

		_, err := gw.SearchTickers(context.Background(), "apple", 10)
		testutil.AssertNoError(t, err)

		info, found, err := gw.GetTickerInfo(context.Background(), "AAPL")
		testutil.AssertNoError(t, err)
		if !found {
			t.Fatal("expected ticker info populated by search")
		}
		if info.Exchange != "XNAS" {
			t.Errorf("expected exchange XNAS, got %q", info.Exchange)
		}
		if *calls != 1 {
			t.Errorf("detail lookup should not hit upstream, got %d calls", *calls)
		}
	})

	t.Run("empty_query", func(t *testing.T) {
		clock := newFakeClock()
		gw, calls := newTestGateway(t, clock, searchHandler)

		results, err := gw.SearchTickers(context.Background(), "   ", 10)
		testutil.AssertNoError(t, err)
		if len(results) != 0 {
			t.Errorf("expected empty result for empty query, got %+v", results)
		}
		if *calls != 0 {
			t.Errorf("empty query should not hit upstream, got %d calls", *calls)
		}
	})

	t.Run("upstream_failure_degrades_to_empty", func(t *testing.T) {
		clock := newFakeClock()
		gw, _ := newTestGateway(t, clock, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		results, err := gw.SearchTickers(context.Background(), "apple", 10)
		testutil.AssertNoError(t, err)
		if len(results) != 0 {
			t.Errorf("expected empty result on upstream failure, got %+v", results)
		}
	})
}

func TestGetTickerInfo(t *testing.T) {
	t.Run("unknown_ticker", func(t *testing.T) {
		clock := newFakeClock()
		gw, _ := newTestGateway(t, clock, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, found, err := gw.GetTickerInfo(context.Background(), "ZZZZ")
		testutil.AssertNoError(t, err)
		if found {
			t.Error("expected unknown ticker to report absent")
		}
	})

	t.Run("detail_fetch_and_cache", func(t *testing.T) {
		clock := newFakeClock()
		gw, calls := newTestGateway(t, clock, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"status":"OK","results":{"ticker":"MSFT","name":"Microsoft Corporation","market":"stocks","primary_exchange":"XNAS","type":"CS","active":true}}`)
		})

		info, found, err := gw.GetTickerInfo(context.Background(), "msft")
		testutil.AssertNoError(t, err)
		if !found || info.CompanyName != "Microsoft Corporation" {
			t.Fatalf("unexpected info: %+v (found=%v)", info, found)
		}

		_, _, err = gw.GetTickerInfo(context.Background(), "MSFT")
		testutil.AssertNoError(t, err)
		if *calls != 1 {
			t.Errorf("expected 1 upstream call, got %d", *calls)
		}
	})
}

func TestGetQuoteBatch(t *testing.T) {
	t.Run("scans_back_to_most_recent_trading_day", func(t *testing.T) {
		clock := newFakeClock()
		// Only the date three days back has data.
		withData := clock.Now().AddDate(0, 0, -3).Format("2006-01-02")
		gw, calls := newTestGateway(t, clock, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/v2/aggs/grouped/locale/us/market/stocks/"+withData {
				groupedDailyHandler(w, r)
				return
			}
			fmt.Fprint(w, `{"status":"OK","results":[]}`)
		})

		quotes, err := gw.GetQuoteBatch(context.Background(), []string{"AAPL"})
		testutil.AssertNoError(t, err)
		if quotes["AAPL"].Close != 175 {
			t.Fatalf("expected AAPL quote from %s, got %+v", withData, quotes)
		}
		if *calls != 3 {
			t.Errorf("expected 3 upstream calls while scanning back, got %d", *calls)
		}
	})

	t.Run("exhausted_scan_is_no_data_not_error", func(t *testing.T) {
		clock := newFakeClock()
		gw, calls := newTestGateway(t, clock, func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"status":"OK","results":[]}`)
		})

		quotes, err := gw.GetQuoteBatch(context.Background(), []string{"AAPL"})
		testutil.AssertNoError(t, err)
		if len(quotes) != 0 {
			t.Errorf("expected no data, got %+v", quotes)
		}
		if *calls != maxLookbackDays {
			t.Errorf("expected scan capped at %d days, got %d calls", maxLookbackDays, *calls)
		}
	})

	t.Run("no_tickers", func(t *testing.T) {
		clock := newFakeClock()
		gw, calls := newTestGateway(t, clock, groupedDailyHandler)

		quotes, err := gw.GetQuoteBatch(context.Background(), nil)
		testutil.AssertNoError(t, err)
		if len(quotes) != 0 || *calls != 0 {
			t.Errorf("expected no work for empty ticker set, got %v (%d calls)", quotes, *calls)
		}
	})
}

func TestSweep(t *testing.T) {
	clock := newFakeClock()
	gw, _ := newTestGateway(t, clock, groupedDailyHandler)

	_, err := gw.GetMarketAggregates(context.Background(), "2024-01-02")
	testutil.AssertNoError(t, err)
	_, err = gw.GetMarketAggregates(context.Background(), "2024-01-03")
	testutil.AssertNoError(t, err)

	clock.Advance(30 * time.Minute)
	_, err = gw.GetMarketAggregates(context.Background(), "2024-01-04")
	testutil.AssertNoError(t, err)

	clock.Advance(31 * time.Minute)
	result := gw.Sweep()
	if result.Aggregates != 2 {
		t.Errorf("expected 2 aggregate entries swept, got %d", result.Aggregates)
	}
	if result.Searches != 0 || result.TickerInfo != 0 {
		t.Errorf("expected empty buckets untouched, got %+v", result)
	}
}
