package events

import (
	"time"

	"github.com/spec-kit/tour-marketplace/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProductCreated       EventType = "product.created"
	EventProductStatusChanged EventType = "product.status_changed"
	EventProductDeleted       EventType = "product.deleted"
	EventUserRoleSwitched     EventType = "user.role_switched"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// ActorFrom converts a workflow actor.
func ActorFrom(a domain.Actor) Actor {
	return Actor{UserID: a.UserID, Role: a.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// ProductCreatedPayload payload.
type ProductCreatedPayload struct {
	OwnerID string `json:"owner_id"`
	Title   string `json:"title"`
}

// ProductStatusChangedPayload payload.
type ProductStatusChangedPayload struct {
	OwnerID   string               `json:"owner_id"`
	Title     string               `json:"title"`
	OldStatus domain.WorkflowState `json:"old_status"`
	NewStatus domain.WorkflowState `json:"new_status"`
	Action    domain.Action        `json:"action"`
	Feedback  string               `json:"feedback,omitempty"`
}

// ProductDeletedPayload payload.
type ProductDeletedPayload struct {
	DeletedByAdmin bool `json:"deleted_by_admin"`
}

// UserRoleSwitchedPayload payload.
type UserRoleSwitchedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}
