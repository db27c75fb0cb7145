package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// WorkflowState is the lifecycle stage of a product listing.
type WorkflowState uint8

const (
	StateUnknown WorkflowState = iota
	StateDraft
	StatePendingReview
	StatePublished
	StateNeedsRevision
)

var stateCodes = map[WorkflowState]string{
	StateDraft:         "draft",
	StatePendingReview: "pending_review",
	StatePublished:     "published",
	StateNeedsRevision: "needs_revision",
}

var stateLabels = map[WorkflowState]string{
	StateDraft:         "Draft",
	StatePendingReview: "Pending Review",
	StatePublished:     "Published",
	StateNeedsRevision: "Needs Revision",
}

// AllStates lists the workflow states in lifecycle order.
func AllStates() []WorkflowState {
	return []WorkflowState{StateDraft, StatePendingReview, StatePublished, StateNeedsRevision}
}

// ParseWorkflowState converts a wire code into a state.
func ParseWorkflowState(code string) (WorkflowState, error) {
	for state, candidate := range stateCodes {
		if candidate == code {
			return state, nil
		}
	}
	return StateUnknown, fmt.Errorf("unknown product status %q", code)
}

// Code is the wire and storage representation.
func (s WorkflowState) Code() string {
	return stateCodes[s]
}

// Label is the human readable name shown to clients.
func (s WorkflowState) Label() string {
	return stateLabels[s]
}

// Valid reports whether s is one of the four lifecycle states.
func (s WorkflowState) Valid() bool {
	_, ok := stateCodes[s]
	return ok
}

func (s WorkflowState) String() string {
	if code, ok := stateCodes[s]; ok {
		return code
	}
	return fmt.Sprintf("WorkflowState(%d)", uint8(s))
}

// MarshalText encodes the wire code.
func (s WorkflowState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid product status %d", uint8(s))
	}
	return []byte(s.Code()), nil
}

// UnmarshalText decodes a wire code.
func (s *WorkflowState) UnmarshalText(text []byte) error {
	parsed, err := ParseWorkflowState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value stores the wire code.
func (s WorkflowState) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid product status %d", uint8(s))
	}
	return s.Code(), nil
}

// Scan reads a stored wire code.
func (s *WorkflowState) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into WorkflowState", src)
	}
}

// Product is a travel product listing submitted by a supplier.
// RejectionReason is set only while Status is StateNeedsRevision.
type Product struct {
	ID              string
	OwnerID         string
	Title           string
	Description     string
	Destination     string
	DurationDays    int
	Price           decimal.Decimal
	Currency        string
	Status          WorkflowState
	RejectionReason *string
	IsDeleted       bool
	DeletedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Editable reports whether the supplier may change listing content.
func (p *Product) Editable() bool {
	return p.Status == StateDraft || p.Status == StateNeedsRevision
}

// ProductStatusChange is an immutable audit entry for a workflow transition.
type ProductStatusChange struct {
	ID        string
	ProductID string
	From      WorkflowState
	To        WorkflowState
	Action    Action
	ActorID   string
	Feedback  *string
	CreatedAt time.Time
}
