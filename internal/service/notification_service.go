package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/guide-store/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventPurchaseCompleted, n.handlePurchaseCompleted)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRegistered", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handlePurchaseCompleted(ctx context.Context, event events.Event) error {
	// TODO: deliver the purchase receipt email once an email provider is wired.
	n.logger.Info("PurchaseCompleted", zap.String("user_id", event.UserID), zap.Any("payload", event.Payload))
	return nil
}
