package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/tour-marketplace/internal/config"
	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/events"
)

// reviewQueueRecipient addresses every admin rather than one user.
const reviewQueueRecipient = "role:admin"

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events and returns the subscribed types.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	handlers := []struct {
		eventType events.EventType
		handle    events.EventHandler
	}{
		{events.EventProductCreated, n.handleProductCreated},
		{events.EventProductStatusChanged, n.handleProductStatusChanged},
		{events.EventProductDeleted, n.handleProductDeleted},
		{events.EventUserRoleSwitched, n.handleUserRoleSwitched},
	}
	subscribed := make([]events.EventType, 0, len(handlers))
	for _, h := range handlers {
		n.dispatcher.Subscribe(h.eventType, h.handle)
		subscribed = append(subscribed, h.eventType)
	}
	return subscribed
}

func (n *NotificationService) handleProductCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ProductCreated", zap.String("product_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleProductStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ProductStatusChanged", zap.String("product_id", event.SubjectID), zap.Any("payload", event.Payload))
	payload, ok := event.Payload.(events.ProductStatusChangedPayload)
	if !ok {
		return nil
	}
	// Suppliers hear about review outcomes; admins about new submissions.
	switch {
	case event.Actor.Role.IsAdmin():
		n.sendEmailNotificationStub(ctx, event, payload.OwnerID)
	case payload.NewStatus == domain.StatePendingReview:
		n.sendEmailNotificationStub(ctx, event, reviewQueueRecipient)
	}
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleProductDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("ProductDeleted", zap.String("product_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleUserRoleSwitched(ctx context.Context, event events.Event) error {
	n.logger.Info("UserRoleSwitched", zap.String("user_id", event.SubjectID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event, recipientID string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("recipient_user_id", recipientID),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
