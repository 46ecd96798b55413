package services

import (
	"context"
	"fmt"
	"math"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	apperrors "stockagent/internal/errors"
)

// notificationService sends price alerts through Firebase Cloud
// Messaging. When no credentials are configured the service is a
// logged no-op so the rest of the app runs without Firebase.
type notificationService struct {
	client *messaging.Client
	log    *zap.SugaredLogger
}

// NewNotificationService creates a new NotificationServicer. An empty
// credentialsPath disables delivery.
func NewNotificationService(ctx context.Context, credentialsPath string, log *zap.SugaredLogger) (NotificationServicer, error) {
	if credentialsPath == "" {
		log.Warnw("firebase credentials not configured, push notifications disabled")
		return &notificationService{log: log}, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &notificationService{client: client, log: log}, nil
}

// SendAlertToTopic pushes a price alert to every device subscribed to
// the topic.
func (s *notificationService) SendAlertToTopic(ctx context.Context, topic string, alert StockAlert) error {
	if s.client == nil {
		s.log.Debugw("push disabled, dropping alert", "topic", topic, "ticker", alert.Ticker)
		return nil
	}

	id, err := s.client.Send(ctx, buildAlertMessage(topic, alert))
	if err != nil {
		s.log.Errorw("failed to send alert", "topic", topic, "ticker", alert.Ticker, "error", err)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.log.Infow("alert sent", "topic", topic, "ticker", alert.Ticker, "message_id", id)
	return nil
}

// buildAlertMessage renders the push payload for a price alert. The
// direction word carries the sign, so the percent is formatted as a
// magnitude.
func buildAlertMessage(topic string, alert StockAlert) *messaging.Message {
	direction := "up"
	if alert.AlertType == "loser" {
		direction = "down"
	}

	return &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: fmt.Sprintf("%s is %s %.2f%%", alert.Ticker, direction, math.Abs(alert.PercentChange)),
			Body:  fmt.Sprintf("%s is trading at $%.2f", alert.Ticker, alert.CurrentPrice),
		},
		Data: map[string]string{
			"ticker":         alert.Ticker,
			"percent_change": fmt.Sprintf("%.2f", alert.PercentChange),
			"current_price":  fmt.Sprintf("%.2f", alert.CurrentPrice),
			"alert_type":     alert.AlertType,
		},
	}
}

// SubscribeToTopic subscribes a device token to a topic.
func (s *notificationService) SubscribeToTopic(ctx context.Context, token, topic string) error {
	if s.client == nil {
		return nil
	}
	if _, err := s.client.SubscribeToTopic(ctx, []string{token}, topic); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UnsubscribeFromTopic removes a device token from a topic.
func (s *notificationService) UnsubscribeFromTopic(ctx context.Context, token, topic string) error {
	if s.client == nil {
		return nil
	}
	if _, err := s.client.UnsubscribeFromTopic(ctx, []string{token}, topic); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
