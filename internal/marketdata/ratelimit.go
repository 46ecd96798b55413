package marketdata

import (
	"sync"
	"time"
)

// rateWindow enforces a quota of calls over a rolling window by keeping
// a ledger of call timestamps. The policy is fail-fast: when the quota
// is exhausted, Allow reports how long until the oldest recorded call
// leaves the window instead of blocking the caller. Blocking would
// stall request handlers for up to a full window, which is unacceptable
// on a serving path.
type rateWindow struct {
	mu     sync.Mutex
	window time.Duration
	quota  int
	now    func() time.Time
	stamps []time.Time
}

func newRateWindow(quota int, window time.Duration, now func() time.Time) *rateWindow {
	return &rateWindow{window: window, quota: quota, now: now}
}

// Allow records a call if the trailing window holds fewer than quota
// calls. When the quota is exhausted it returns false and the duration
// after which a retry can succeed. The ledger never admits more than
// quota timestamps within any trailing window-length slice.
func (r *rateWindow) Allow() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.trim(now)

	if len(r.stamps) >= r.quota {
		retryAfter := r.stamps[0].Add(r.window).Sub(now)
		return retryAfter, false
	}

	r.stamps = append(r.stamps, now)
	return 0, true
}

// InWindow returns the number of calls recorded in the trailing window.
func (r *rateWindow) InWindow() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trim(r.now())
	return len(r.stamps)
}

// trim drops timestamps that have aged out of the window. Callers must
// hold the mutex.
func (r *rateWindow) trim(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.stamps) && !r.stamps[i].After(cutoff) {
		i++
	}
	r.stamps = r.stamps[i:]
}
