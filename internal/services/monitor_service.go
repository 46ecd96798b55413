package services

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "stockagent/internal/errors"
	"stockagent/internal/models"
)

// alertTopic is the FCM topic every registered device is subscribed to.
const alertTopic = "stock-alerts"

// MonitorService periodically scans watched tickers for significant
// daily moves and pushes alerts. A ticker is alerted at most once per
// day to avoid spamming subscribers on every check.
type MonitorService struct {
	db            *gorm.DB
	stocks        StockServicer
	notifications NotificationServicer
	log           *zap.SugaredLogger
	threshold     float64
	now           func() time.Time

	mu        sync.Mutex
	lastAlert map[string]time.Time
}

// NewMonitorService creates a market monitor. threshold is the minimum
// absolute daily percent change that triggers an alert.
func NewMonitorService(db *gorm.DB, stocks StockServicer, notifications NotificationServicer, log *zap.SugaredLogger, threshold float64) *MonitorService {
	return &MonitorService{
		db:            db,
		stocks:        stocks,
		notifications: notifications,
		log:           log,
		threshold:     threshold,
		now:           time.Now,
		lastAlert:     make(map[string]time.Time),
	}
}

// Run checks the market at every tick until the context is cancelled.
func (s *MonitorService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if alerts, err := s.CheckMarket(ctx); err != nil {
				s.log.Warnw("market check failed", "error", err)
			} else if len(alerts) > 0 {
				s.log.Infow("market check sent alerts", "count", len(alerts))
			}
		}
	}
}

// CheckMarket scans every ticker on any user's watchlist and sends an
// alert for each one whose daily move meets the threshold. It returns
// the alerts actually sent.
func (s *MonitorService) CheckMarket(ctx context.Context) ([]StockAlert, error) {
	tickers, err := s.watchedTickers()
	if err != nil {
		return nil, err
	}
	if len(tickers) == 0 {
		return nil, nil
	}

	quotes, err := s.stocks.GetQuoteBatch(ctx, tickers)
	if err != nil {
		return nil, err
	}

	var sent []StockAlert
	for _, ticker := range tickers {
		q, ok := quotes[ticker]
		if !ok || q.Open == 0 {
			continue
		}

		change := (q.Close - q.Open) / q.Open * 100
		if math.Abs(change) < s.threshold {
			continue
		}
		if s.alertedToday(ticker) {
			continue
		}

		alert := StockAlert{
			Ticker:        ticker,
			PercentChange: change,
			CurrentPrice:  q.Close,
			AlertType:     "gainer",
			Timestamp:     s.now(),
		}
		if change < 0 {
			alert.AlertType = "loser"
		}

		if err := s.notifications.SendAlertToTopic(ctx, alertTopic, alert); err != nil {
			s.log.Warnw("failed to send alert", "ticker", ticker, "error", err)
			continue
		}
		s.markAlerted(ticker)
		sent = append(sent, alert)
	}
	return sent, nil
}

// watchedTickers returns the distinct tickers across all watchlists.
func (s *MonitorService) watchedTickers() ([]string, error) {
	var tickers []string
	if err := s.db.Model(&models.Favorite{}).
		Distinct("ticker").
		Order("ticker").
		Pluck("ticker", &tickers).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	sort.Strings(tickers)
	return tickers, nil
}

func (s *MonitorService) alertedToday(ticker string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.lastAlert[ticker]
	if !ok {
		return false
	}
	return s.now().Sub(last) < 24*time.Hour
}

func (s *MonitorService) markAlerted(ticker string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAlert[ticker] = s.now()
}
