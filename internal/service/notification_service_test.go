package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/tour-marketplace/internal/config"
	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/events"
	"github.com/spec-kit/tour-marketplace/internal/service"
)

func TestNotificationService_EmailsOwnerOnReviewOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	notifier := service.NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom:  "noreply@example.com",
		WebhookURL: "https://hooks.example.com/tours",
	})
	subscribed := notifier.RegisterHandlers()
	assert.Len(t, subscribed, 4)

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:      events.EventProductStatusChanged,
		SubjectID: "p-1",
		Actor:     events.Actor{UserID: "admin-1", Role: domain.RoleAdmin},
		Payload: events.ProductStatusChangedPayload{
			OwnerID:   "supplier-1",
			OldStatus: domain.StatePendingReview,
			NewStatus: domain.StatePublished,
			Action:    domain.ActionApprove,
		},
	}))

	emails := logs.FilterMessage("sendEmailNotificationStub").All()
	require.Len(t, emails, 1)
	assert.Equal(t, "supplier-1", emails[0].ContextMap()["recipient_user_id"])
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())

	// a withdrawal goes back to draft and notifies nobody
	require.NoError(t, dispatcher.Publish(ctx, events.Event{
		Type:      events.EventProductStatusChanged,
		SubjectID: "p-1",
		Actor:     events.Actor{UserID: "supplier-1", Role: domain.RoleSupplier},
		Payload: events.ProductStatusChangedPayload{
			OwnerID:   "supplier-1",
			OldStatus: domain.StatePendingReview,
			NewStatus: domain.StateDraft,
			Action:    domain.ActionWithdraw,
		},
	}))
	assert.Len(t, logs.FilterMessage("sendEmailNotificationStub").All(), 1)
}

func TestNotificationService_EmailsAdminsOnSubmission(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	notifier := service.NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom: "noreply@example.com",
	})
	notifier.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:      events.EventProductStatusChanged,
		SubjectID: "p-1",
		Actor:     events.Actor{UserID: "supplier-1", Role: domain.RoleSupplier},
		Payload: events.ProductStatusChangedPayload{
			OwnerID:   "supplier-1",
			OldStatus: domain.StateDraft,
			NewStatus: domain.StatePendingReview,
			Action:    domain.ActionSubmit,
		},
	}))

	emails := logs.FilterMessage("sendEmailNotificationStub").All()
	require.Len(t, emails, 1)
	assert.Equal(t, "role:admin", emails[0].ContextMap()["recipient_user_id"])
}
