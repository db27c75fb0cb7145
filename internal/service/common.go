package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/tour-marketplace/internal/events"
	"github.com/spec-kit/tour-marketplace/internal/repository"
	apperrors "github.com/spec-kit/tour-marketplace/pkg/util"
)

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = dispatcher.Publish(ctx, event)
}

// notFoundOr maps the repository miss to a 404 for resource and wraps
// anything else as internal.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewInternalError(err)
}

// checkID reports ids that cannot name a stored row as not found. Rows are
// keyed by UUID in its canonical 36-character form.
func checkID(id, resource string) error {
	if len(id) != 36 {
		return apperrors.NewNotFound(resource, nil)
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound(resource, nil)
	}
	return nil
}
