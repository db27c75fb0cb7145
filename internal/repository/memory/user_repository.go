package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/repository"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.TrimSpace(user.Email)
	for _, row := range s.users {
		if !row.user.IsDeleted && strings.EqualFold(row.user.Email, email) {
			return repository.ErrDuplicateEmail
		}
	}

	now := s.now()
	user.ID = uuid.NewString()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now

	row := &userRow{user: *user, roles: make(map[domain.Role]struct{}, len(user.GrantedRoles)), seq: s.nextSeq()}
	for _, role := range user.GrantedRoles {
		row.roles[role] = struct{}{}
	}
	s.users[user.ID] = row
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.users[id]
	if !ok || row.user.IsDeleted {
		return nil, repository.ErrNotFound
	}
	return row.snapshot(), nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.TrimSpace(email)
	for _, row := range s.users {
		if !row.user.IsDeleted && strings.EqualFold(row.user.Email, email) {
			return row.snapshot(), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var search string
	if filter.Search != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.Search))
	}

	rows := make([]*userRow, 0, len(s.users))
	for _, row := range s.users {
		if row.user.IsDeleted {
			continue
		}
		if filter.Role != nil {
			if _, ok := row.roles[*filter.Role]; !ok {
				continue
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(row.user.Email), search) &&
			!strings.Contains(strings.ToLower(row.user.DisplayName), search) {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	result := make([]domain.User, 0, len(rows))
	for _, row := range page(rows, filter.Limit, filter.Offset) {
		result = append(result, *row.snapshot())
	}
	return result, nil
}

func (r *userRepository) SetActiveRole(_ context.Context, id string, role domain.Role) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.users[id]
	if !ok || row.user.IsDeleted {
		return repository.ErrNotFound
	}
	if _, granted := row.roles[role]; !granted {
		return repository.ErrNotFound
	}
	row.user.ActiveRole = role
	row.user.UpdatedAt = s.now()
	return nil
}

func (r *userRepository) ReplaceRoles(_ context.Context, id string, roles []domain.Role) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.users[id]
	if !ok || row.user.IsDeleted {
		return nil, repository.ErrNotFound
	}
	row.roles = make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		row.roles[role] = struct{}{}
	}
	if _, still := row.roles[row.user.ActiveRole]; !still {
		row.user.ActiveRole = domain.PrimaryRole(roles)
	}
	row.user.UpdatedAt = s.now()
	return row.snapshot(), nil
}

func (r *userRepository) SoftDelete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.users[id]
	if !ok || row.user.IsDeleted {
		return repository.ErrNotFound
	}
	now := s.now()
	row.user.IsDeleted = true
	row.user.DeletedAt = &now
	row.user.UpdatedAt = now
	return nil
}

func (row *userRow) snapshot() *domain.User {
	user := row.user
	user.DeletedAt = cloneTime(row.user.DeletedAt)
	roles := make([]domain.Role, 0, len(row.roles))
	for role := range row.roles {
		roles = append(roles, role)
	}
	user.GrantedRoles, _ = domain.NormalizeRoles(roles)
	return &user
}
