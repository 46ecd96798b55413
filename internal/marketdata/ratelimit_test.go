package marketdata

import (
	"testing"
	"time"
)

func TestRateWindow(t *testing.T) {
	t.Run("quota_then_reject", func(t *testing.T) {
		clock := newFakeClock()
		rw := newRateWindow(5, time.Minute, clock.Now)

		for i := 0; i < 5; i++ {
			if _, ok := rw.Allow(); !ok {
				t.Fatalf("call %d should be admitted", i+1)
			}
		}

		retryAfter, ok := rw.Allow()
		if ok {
			t.Fatal("sixth instant call should be rejected")
		}
		if retryAfter <= 0 || retryAfter > time.Minute {
			t.Errorf("expected retry-after in (0, 60s], got %s", retryAfter)
		}
	})

	t.Run("oldest_call_expiring_frees_quota", func(t *testing.T) {
		clock := newFakeClock()
		rw := newRateWindow(5, time.Minute, clock.Now)

		for i := 0; i < 5; i++ {
			rw.Allow()
			clock.Advance(2 * time.Second)
		}
		// The oldest call is 18s old: still within the window, so the
		// quota is exhausted.
		clock.Advance(8 * time.Second)
		if _, ok := rw.Allow(); ok {
			t.Fatal("call inside full window should be rejected")
		}

		// Advance past the oldest timestamp's expiry.
		clock.Advance(46 * time.Second)
		if _, ok := rw.Allow(); !ok {
			t.Fatal("call should be admitted once the oldest timestamp aged out")
		}
	})

	t.Run("never_exceeds_quota_in_any_trailing_slice", func(t *testing.T) {
		clock := newFakeClock()
		rw := newRateWindow(5, time.Minute, clock.Now)

		admitted := 0
		for i := 0; i < 120; i++ {
			if _, ok := rw.Allow(); ok {
				admitted++
			}
			if rw.InWindow() > 5 {
				t.Fatalf("window holds %d calls, quota is 5", rw.InWindow())
			}
			clock.Advance(time.Second)
		}
		// Two full windows fit in 120s, so at most 2*quota admissions.
		if admitted > 10 {
			t.Errorf("admitted %d calls in 120s, expected at most 10", admitted)
		}
	})

	t.Run("retry_after_tracks_oldest_timestamp", func(t *testing.T) {
		clock := newFakeClock()
		rw := newRateWindow(2, time.Minute, clock.Now)

		rw.Allow()
		clock.Advance(10 * time.Second)
		rw.Allow()

		retryAfter, ok := rw.Allow()
		if ok {
			t.Fatal("third call should be rejected")
		}
		// Oldest call is 10s old; it leaves the window in 50s.
		if retryAfter != 50*time.Second {
			t.Errorf("expected retry-after 50s, got %s", retryAfter)
		}
	})
}
