package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/tour-marketplace/internal/auth"
	"github.com/spec-kit/tour-marketplace/internal/config"
	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/repository"
	apperrors "github.com/spec-kit/tour-marketplace/pkg/util"
)

// UserService manages marketplace accounts on behalf of admins.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
	logger     *zap.Logger
}

// UserCreateInput describes an account created by an admin.
type UserCreateInput struct {
	Email       string
	Password    string
	DisplayName string
	Roles       []domain.Role
}

// UserListFilters define listing parameters.
type UserListFilters struct {
	Role   *domain.Role
	Search *string
	Limit  int
	Offset int
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, users repository.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, bcryptCost: cfg.Auth.BcryptCost, logger: logger}
}

// CreateUser registers an account. Only super admins may grant super_admin.
func (s *UserService) CreateUser(ctx context.Context, actor domain.Actor, input UserCreateInput) (*domain.User, error) {
	email, ok := bareAddress(input.Email)
	if !ok {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": input.Email})
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	roles, err := s.checkGrant(actor, input.Roles)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		GrantedRoles: roles,
		ActiveRole:   domain.PrimaryRole(roles),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("created_by", actor.UserID),
		zap.Strings("roles", rolesToStrings(roles)))
	return user, nil
}

// ListUsers lists accounts that are not soft-deleted.
func (s *UserService) ListUsers(ctx context.Context, filters UserListFilters) ([]domain.User, error) {
	users, err := s.users.List(ctx, repository.UserFilter{
		Role:   filters.Role,
		Search: filters.Search,
		Limit:  filters.Limit,
		Offset: filters.Offset,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// UpdateRoles replaces the granted roles of a user. A user whose active role
// is revoked falls back to its primary role.
func (s *UserService) UpdateRoles(ctx context.Context, actor domain.Actor, userID string, requested []domain.Role) (*domain.User, error) {
	roles, err := s.checkGrant(actor, requested)
	if err != nil {
		return nil, err
	}

	if err := checkID(userID, "user"); err != nil {
		return nil, err
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	if target.HasRole(domain.RoleSuperAdmin) && actor.Role != domain.RoleSuperAdmin {
		return nil, apperrors.NewAccessDenied("only super admins can change a super admin's roles")
	}

	user, err := s.users.ReplaceRoles(ctx, userID, roles)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

// DeleteUser soft-deletes an account.
func (s *UserService) DeleteUser(ctx context.Context, actor domain.Actor, userID string) error {
	if actor.Role != domain.RoleSuperAdmin {
		return apperrors.NewAccessDenied("super admin role required")
	}
	if actor.UserID == userID {
		return apperrors.NewValidationError("cannot delete your own account", nil)
	}
	if err := checkID(userID, "user"); err != nil {
		return err
	}
	if err := s.users.SoftDelete(ctx, userID); err != nil {
		return notFoundOr(err, "user")
	}
	return nil
}

func (s *UserService) checkGrant(actor domain.Actor, requested []domain.Role) ([]domain.Role, error) {
	if len(requested) == 0 {
		return nil, apperrors.NewValidationError("at least one role is required", nil)
	}
	roles, err := domain.NormalizeRoles(requested)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	for _, role := range roles {
		if role == domain.RoleSuperAdmin && actor.Role != domain.RoleSuperAdmin {
			return nil, apperrors.NewAccessDenied("only super admins can grant super_admin")
		}
	}
	return roles, nil
}

// bareAddress accepts a plain addr-spec only. Display names, comments and
// angle brackets are rejected so the stored email is exactly what users log
// in with.
func bareAddress(raw string) (string, bool) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return "", false
	}
	return addr.Address, true
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, role := range roles {
		out[i] = string(role)
	}
	return out
}
