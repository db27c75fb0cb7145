package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/tour-marketplace/internal/domain"
)

// ProductRequest payload for creating or editing a tour.
type ProductRequest struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Destination  string          `json:"destination"`
	DurationDays int             `json:"durationDays"`
	Price        decimal.Decimal `json:"price"`
	Currency     string          `json:"currency"`
}

// StatusUpdateRequest asks for a workflow transition.
type StatusUpdateRequest struct {
	Status   string  `json:"status"`
	Feedback *string `json:"feedback"`
}

// BatchApproveRequest lists products to approve.
type BatchApproveRequest struct {
	IDs []string `json:"ids"`
}

// ProductResponse is the wire view of a tour. StatusLabel is for display only.
type ProductResponse struct {
	ID              string               `json:"id"`
	OwnerID         string               `json:"ownerId"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Destination     string               `json:"destination"`
	DurationDays    int                  `json:"durationDays"`
	Price           decimal.Decimal      `json:"price"`
	Currency        string               `json:"currency"`
	Status          domain.WorkflowState `json:"status"`
	StatusLabel     string               `json:"statusLabel"`
	RejectionReason *string              `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// AuditProductResponse adds soft-delete markers to the product view.
type AuditProductResponse struct {
	ProductResponse
	IsDeleted bool       `json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

// StatusChangeResponse is one audit trail entry.
type StatusChangeResponse struct {
	ID        string               `json:"id"`
	From      domain.WorkflowState `json:"from"`
	To        domain.WorkflowState `json:"to"`
	Action    domain.Action        `json:"action"`
	ActorID   string               `json:"actorId"`
	Feedback  *string              `json:"feedback,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
}

// BatchOutcomeResponse reports one id of a batch approval.
type BatchOutcomeResponse struct {
	ID      string           `json:"id"`
	OK      bool             `json:"ok"`
	Code    string           `json:"code,omitempty"`
	Message string           `json:"message,omitempty"`
	Product *ProductResponse `json:"product,omitempty"`
}

// NewProductResponse maps a domain product.
func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		OwnerID:         p.OwnerID,
		Title:           p.Title,
		Description:     p.Description,
		Destination:     p.Destination,
		DurationDays:    p.DurationDays,
		Price:           p.Price,
		Currency:        p.Currency,
		Status:          p.Status,
		StatusLabel:     p.Status.Label(),
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// NewProductList maps a page of products.
func NewProductList(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, NewProductResponse(&products[i]))
	}
	return out
}

// NewStatusChangeResponse maps an audit entry.
func NewStatusChangeResponse(h *domain.ProductStatusChange) StatusChangeResponse {
	return StatusChangeResponse{
		ID:        h.ID,
		From:      h.From,
		To:        h.To,
		Action:    h.Action,
		ActorID:   h.ActorID,
		Feedback:  h.Feedback,
		CreatedAt: h.CreatedAt,
	}
}
