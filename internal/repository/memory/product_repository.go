package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/repository"
)

type productRepository struct {
	store *Store
}

func (r *productRepository) Create(_ context.Context, product *domain.Product) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = &productRow{product: cloneProduct(product), seq: s.nextSeq()}
	return nil
}

func (r *productRepository) Get(_ context.Context, id string, scope repository.Scope) (*domain.Product, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.visible(id, scope)
	if !ok {
		return nil, repository.ErrNotFound
	}
	product := cloneProduct(&row.product)
	return &product, nil
}

func (r *productRepository) GetIncludingDeleted(_ context.Context, id string) (*domain.Product, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	product := cloneProduct(&row.product)
	return &product, nil
}

func (r *productRepository) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var destination, search string
	if filter.Destination != nil {
		destination = strings.TrimSpace(*filter.Destination)
	}
	if filter.SearchTerm != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}

	rows := make([]*productRow, 0, len(s.products))
	for _, row := range s.products {
		p := &row.product
		if p.IsDeleted {
			continue
		}
		if filter.OwnerID != nil && p.OwnerID != *filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsState(filter.Statuses, p.Status) {
			continue
		}
		if destination != "" && !strings.EqualFold(p.Destination, destination) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].product.UpdatedAt.Equal(rows[j].product.UpdatedAt) {
			return rows[i].product.UpdatedAt.After(rows[j].product.UpdatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	result := make([]domain.Product, 0, len(rows))
	for _, row := range page(rows, filter.Limit, filter.Offset) {
		result = append(result, cloneProduct(&row.product))
	}
	return result, nil
}

func (r *productRepository) UpdateContent(_ context.Context, product *domain.Product, scope repository.Scope) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.visible(product.ID, scope)
	if !ok || !row.product.Editable() {
		return repository.ErrNotFound
	}
	row.product.Title = product.Title
	row.product.Description = product.Description
	row.product.Destination = product.Destination
	row.product.DurationDays = product.DurationDays
	row.product.Price = product.Price
	row.product.Currency = product.Currency
	row.product.UpdatedAt = s.now()
	product.UpdatedAt = row.product.UpdatedAt
	return nil
}

func (r *productRepository) TransitionStatus(_ context.Context, change repository.StatusChange) (*domain.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.visible(change.ProductID, change.Scope)
	if !ok || row.product.Status != change.From {
		return nil, repository.ErrNotFound
	}

	now := s.now()
	row.product.Status = change.To
	row.product.RejectionReason = cloneString(change.RejectionReason)
	row.product.UpdatedAt = now
	s.history = append(s.history, domain.ProductStatusChange{
		ID:        uuid.NewString(),
		ProductID: change.ProductID,
		From:      change.From,
		To:        change.To,
		Action:    change.Action,
		ActorID:   change.ActorID,
		Feedback:  cloneString(change.Feedback),
		CreatedAt: now,
	})

	product := cloneProduct(&row.product)
	return &product, nil
}

func (r *productRepository) SoftDelete(_ context.Context, id string, scope repository.Scope) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.visible(id, scope)
	if !ok {
		return repository.ErrNotFound
	}
	now := s.now()
	row.product.IsDeleted = true
	row.product.DeletedAt = &now
	row.product.UpdatedAt = now
	return nil
}

// visible applies the soft-delete and ownership predicates. Callers hold the lock.
func (s *Store) visible(id string, scope repository.Scope) (*productRow, bool) {
	row, ok := s.products[id]
	if !ok || row.product.IsDeleted {
		return nil, false
	}
	if !scope.IsAdmin() && row.product.OwnerID != scope.OwnerID {
		return nil, false
	}
	return row, true
}

type historyRepository struct {
	store *Store
}

func (r *historyRepository) ListByProduct(_ context.Context, productID string) ([]domain.ProductStatusChange, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.ProductStatusChange
	for _, change := range s.history {
		if change.ProductID != productID {
			continue
		}
		change.Feedback = cloneString(change.Feedback)
		result = append(result, change)
	}
	return result, nil
}

func cloneProduct(p *domain.Product) domain.Product {
	out := *p
	out.RejectionReason = cloneString(p.RejectionReason)
	out.DeletedAt = cloneTime(p.DeletedAt)
	return out
}

func containsState(states []domain.WorkflowState, state domain.WorkflowState) bool {
	for _, candidate := range states {
		if candidate == state {
			return true
		}
	}
	return false
}
