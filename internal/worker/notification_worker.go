package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/tour-marketplace/internal/service"
)

// StartNotificationWorker subscribes the notification service to product
// and user events. Delivery stays synchronous with the publisher.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	subscribed := notificationService.RegisterHandlers()
	if logger == nil {
		return
	}
	names := make([]string, len(subscribed))
	for i, et := range subscribed {
		names[i] = string(et)
	}
	logger.Info("notification worker started", zap.Strings("events", names))
}
