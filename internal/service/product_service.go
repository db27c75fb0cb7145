package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spec-kit/tour-marketplace/internal/cache"
	"github.com/spec-kit/tour-marketplace/internal/config"
	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/events"
	"github.com/spec-kit/tour-marketplace/internal/repository"
	apperrors "github.com/spec-kit/tour-marketplace/pkg/util"
)

// ProductService drives the product workflow engine.
type ProductService struct {
	products         repository.ProductRepository
	history          repository.ProductHistoryRepository
	catalog          cache.CatalogCache
	dispatcher       events.Dispatcher
	logger           *zap.Logger
	batchConcurrency int
	batchMaxItems    int
}

// ProductDependencies bundles collaborators for the product service.
type ProductDependencies struct {
	ProductRepo repository.ProductRepository
	HistoryRepo repository.ProductHistoryRepository
	Catalog     cache.CatalogCache
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// ProductInput carries listing content for create and edit.
type ProductInput struct {
	Title        string
	Description  string
	Destination  string
	DurationDays int
	Price        decimal.Decimal
	Currency     string
}

// ProductListFilters describes listing filters.
type ProductListFilters struct {
	Statuses    []domain.WorkflowState
	Destination *string
	SearchTerm  *string
	Limit       int
	Offset      int
}

// BatchOutcome reports what happened to one id of a batch approval.
type BatchOutcome struct {
	ID      string
	OK      bool
	Code    string
	Message string
	Product *domain.Product
}

// NewProductService constructs the service.
func NewProductService(cfg config.Config, deps ProductDependencies) *ProductService {
	catalog := deps.Catalog
	if catalog == nil {
		catalog = cache.NoopCatalogCache{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	concurrency := cfg.Workflow.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ProductService{
		products:         deps.ProductRepo,
		history:          deps.HistoryRepo,
		catalog:          catalog,
		dispatcher:       deps.Dispatcher,
		logger:           logger,
		batchConcurrency: concurrency,
		batchMaxItems:    cfg.Workflow.BatchMaxItems,
	}
}

// CreateProduct stores a new listing in draft owned by the supplier.
func (s *ProductService) CreateProduct(ctx context.Context, actor domain.Actor, input ProductInput) (*domain.Product, error) {
	if actor.Role != domain.RoleSupplier {
		return nil, apperrors.NewAccessDenied("supplier role required")
	}
	product := &domain.Product{OwnerID: actor.UserID, Status: domain.StateDraft}
	if err := applyInput(product, input); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventProductCreated,
		SubjectID: product.ID,
		Actor:     events.ActorFrom(actor),
		Payload:   events.ProductCreatedPayload{OwnerID: product.OwnerID, Title: product.Title},
	})
	return product, nil
}

// GetProduct returns a product visible to the actor. Suppliers only see
// their own products; others' products are reported as not found.
func (s *ProductService) GetProduct(ctx context.Context, actor domain.Actor, id string) (*domain.Product, error) {
	scope, err := scopeFor(actor)
	if err != nil {
		return nil, err
	}
	if err := checkID(id, "product"); err != nil {
		return nil, err
	}
	product, err := s.products.Get(ctx, id, scope)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	return product, nil
}

// ListOwnProducts lists the supplier's non-deleted products.
func (s *ProductService) ListOwnProducts(ctx context.Context, actor domain.Actor, filters ProductListFilters) ([]domain.Product, error) {
	ownerID := actor.UserID
	return s.list(ctx, &ownerID, filters)
}

// ListProducts lists every non-deleted product for admins.
func (s *ProductService) ListProducts(ctx context.Context, filters ProductListFilters) ([]domain.Product, error) {
	return s.list(ctx, nil, filters)
}

func (s *ProductService) list(ctx context.Context, ownerID *string, filters ProductListFilters) ([]domain.Product, error) {
	products, err := s.products.List(ctx, repository.ProductFilter{
		OwnerID:     ownerID,
		Statuses:    filters.Statuses,
		Destination: filters.Destination,
		SearchTerm:  filters.SearchTerm,
		Limit:       filters.Limit,
		Offset:      filters.Offset,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return products, nil
}

// UpdateContent edits listing fields while the product is in draft or
// needs_revision.
func (s *ProductService) UpdateContent(ctx context.Context, actor domain.Actor, id string, input ProductInput) (*domain.Product, error) {
	if actor.Role != domain.RoleSupplier {
		return nil, apperrors.NewAccessDenied("supplier role required")
	}
	scope := repository.OwnerScope(actor.UserID)
	if err := checkID(id, "product"); err != nil {
		return nil, err
	}

	product, err := s.products.Get(ctx, id, scope)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	if !product.Editable() {
		return nil, notEditable(product)
	}
	if err := applyInput(product, input); err != nil {
		return nil, err
	}

	if err := s.products.UpdateContent(ctx, product, scope); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInternalError(err)
		}
		current, getErr := s.products.Get(ctx, id, scope)
		if getErr != nil {
			return nil, notFoundOr(getErr, "product")
		}
		return nil, notEditable(current)
	}
	return product, nil
}

// UpdateStatus moves a product to target following the workflow table.
// Who may request a target is fixed by the table: owners move products
// between draft and pending_review, admins publish or send back.
func (s *ProductService) UpdateStatus(ctx context.Context, actor domain.Actor, id string, target domain.WorkflowState, feedback *string) (*domain.Product, error) {
	if !target.Valid() {
		return nil, apperrors.NewValidationError("unknown product status", nil)
	}
	required, _ := domain.ActorKindForTarget(target)
	kind, ok := domain.ActorKindFor(actor.Role)
	if !ok || kind != required {
		return nil, apperrors.NewAccessDenied("role cannot move products to " + target.Code())
	}

	note := trimmed(feedback)
	if target == domain.StateNeedsRevision && note == nil {
		return nil, apperrors.NewValidationError("feedback is required when requesting revision", map[string]any{"field": "feedback"})
	}

	scope, err := scopeFor(actor)
	if err != nil {
		return nil, err
	}
	if err := checkID(id, "product"); err != nil {
		return nil, err
	}
	current, err := s.products.Get(ctx, id, scope)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	transition, ok := domain.FindTransition(current.Status, target)
	if !ok {
		return nil, apperrors.NewInvalidTransition(current.Status.Code(), target.Code())
	}
	return s.apply(ctx, actor, scope, current, transition, note)
}

func (s *ProductService) apply(ctx context.Context, actor domain.Actor, scope repository.Scope, current *domain.Product, transition domain.Transition, note *string) (*domain.Product, error) {
	change := repository.StatusChange{
		ProductID: current.ID,
		Scope:     scope,
		From:      transition.From,
		To:        transition.To,
		Action:    transition.Action,
		ActorID:   actor.UserID,
		Feedback:  note,
	}
	if transition.To == domain.StateNeedsRevision {
		change.RejectionReason = note
	}

	updated, err := s.products.TransitionStatus(ctx, change)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInternalError(err)
		}
		// Nothing matched: the row vanished from scope or its status moved
		// concurrently.
		latest, getErr := s.products.Get(ctx, current.ID, scope)
		if getErr != nil {
			return nil, notFoundOr(getErr, "product")
		}
		return nil, apperrors.NewInvalidTransition(latest.Status.Code(), transition.To.Code())
	}

	if transition.From == domain.StatePublished || transition.To == domain.StatePublished {
		s.catalog.Invalidate(ctx)
	}
	payload := events.ProductStatusChangedPayload{
		OwnerID:   updated.OwnerID,
		Title:     updated.Title,
		OldStatus: transition.From,
		NewStatus: transition.To,
		Action:    transition.Action,
	}
	if note != nil {
		payload.Feedback = *note
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventProductStatusChanged,
		SubjectID: updated.ID,
		Actor:     events.ActorFrom(actor),
		Payload:   payload,
	})
	return updated, nil
}

// SoftDelete hides a product from every listing. The owner or an admin may
// delete; a second call reports not found.
func (s *ProductService) SoftDelete(ctx context.Context, actor domain.Actor, id string) error {
	scope, err := scopeFor(actor)
	if err != nil {
		return err
	}
	if err := checkID(id, "product"); err != nil {
		return err
	}
	if err := s.products.SoftDelete(ctx, id, scope); err != nil {
		return notFoundOr(err, "product")
	}

	s.catalog.Invalidate(ctx)
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventProductDeleted,
		SubjectID: id,
		Actor:     events.ActorFrom(actor),
		Payload:   events.ProductDeletedPayload{DeletedByAdmin: actor.IsAdmin()},
	})
	return nil
}

// BatchApprove approves each id independently. Outcomes follow input order;
// one failure never affects the others.
func (s *ProductService) BatchApprove(ctx context.Context, actor domain.Actor, ids []string) ([]BatchOutcome, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewAccessDenied("admin role required")
	}
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("ids must not be empty", nil)
	}
	if s.batchMaxItems > 0 && len(ids) > s.batchMaxItems {
		return nil, apperrors.NewValidationError("too many ids in one batch", map[string]any{"max": s.batchMaxItems})
	}

	outcomes := make([]BatchOutcome, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			outcomes[i] = s.approveOne(gctx, actor, id)
			return nil
		})
	}
	_ = g.Wait()

	approved := 0
	for _, outcome := range outcomes {
		if outcome.OK {
			approved++
		}
	}
	s.logger.Info("batch approval finished",
		zap.String("actor_id", actor.UserID),
		zap.Int("requested", len(ids)),
		zap.Int("approved", approved))
	return outcomes, nil
}

func (s *ProductService) approveOne(ctx context.Context, actor domain.Actor, id string) BatchOutcome {
	product, err := s.UpdateStatus(ctx, actor, id, domain.StatePublished, nil)
	if err != nil {
		de := apperrors.ToDomainError(err)
		if de.HTTPStatus >= 500 {
			s.logger.Error("batch approval item failed", zap.String("product_id", id), zap.Error(err))
		}
		return BatchOutcome{ID: id, Code: de.Code, Message: de.Message}
	}
	return BatchOutcome{ID: id, OK: true, Product: product}
}

// History returns the workflow audit trail of a product visible to actor.
func (s *ProductService) History(ctx context.Context, actor domain.Actor, id string) ([]domain.ProductStatusChange, error) {
	if _, err := s.GetProduct(ctx, actor, id); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByProduct(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

// AuditLookup reads the raw row, soft-deleted or not. Super admins only.
func (s *ProductService) AuditLookup(ctx context.Context, actor domain.Actor, id string) (*domain.Product, error) {
	if actor.Role != domain.RoleSuperAdmin {
		return nil, apperrors.NewAccessDenied("super admin role required")
	}
	if err := checkID(id, "product"); err != nil {
		return nil, err
	}
	product, err := s.products.GetIncludingDeleted(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	return product, nil
}

func scopeFor(actor domain.Actor) (repository.Scope, error) {
	switch {
	case actor.IsAdmin():
		return repository.AdminScope(), nil
	case actor.Role == domain.RoleSupplier:
		return repository.OwnerScope(actor.UserID), nil
	default:
		return repository.Scope{}, apperrors.NewAccessDenied("role cannot manage products")
	}
}

func applyInput(product *domain.Product, input ProductInput) error {
	details := map[string]any{}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		details["title"] = "required"
	}
	if input.DurationDays <= 0 {
		details["durationDays"] = "must be positive"
	}
	if input.Price.IsNegative() {
		details["price"] = "must not be negative"
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if len(currency) != 3 {
		details["currency"] = "must be a 3-letter ISO code"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid product", details)
	}

	product.Title = title
	product.Description = strings.TrimSpace(input.Description)
	// NoLower keeps acronyms such as "USA" intact.
	product.Destination = cases.Title(language.Und, cases.NoLower).String(strings.TrimSpace(input.Destination))
	product.DurationDays = input.DurationDays
	product.Price = input.Price.Round(2)
	product.Currency = currency
	return nil
}

func notEditable(product *domain.Product) error {
	return apperrors.NewConflict("product content can only change in draft or needs_revision",
		map[string]any{"status": product.Status.Code()})
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
