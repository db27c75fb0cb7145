package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/tour-marketplace/internal/auth"
	"github.com/spec-kit/tour-marketplace/internal/config"
	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/repository"
	apperrors "github.com/spec-kit/tour-marketplace/pkg/util"
)

// Session is the result of a successful login or role switch.
type Session struct {
	User                  *domain.User
	Token                 string
	ExpiresAt             time.Time
	RequiresRoleSelection bool
}

// AuthService coordinates login and identity lookups.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   deps.TokenManager,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// Login authenticates by email and password. Unknown emails, deleted
// accounts and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	if !user.HasRole(user.ActiveRole) {
		user.ActiveRole = user.PrimaryRole()
	}
	token, exp, err := s.tokenMgr.Issue(auth.Identity{UserID: user.ID, Email: user.Email, ActiveRole: user.ActiveRole})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{
		User:                  user,
		Token:                 token,
		ExpiresAt:             exp,
		RequiresRoleSelection: user.RequiresRoleSelection(),
	}, nil
}

// Me returns the stored account behind a principal.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	if err := checkID(userID, "user"); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return user, nil
}

// Logout is a no-op: tokens stay valid until they expire.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// EnsureBootstrapAdmin creates the first super admin when no account with
// email exists yet.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	address, ok := bareAddress(email)
	if !ok {
		return fmt.Errorf("bootstrap admin email %q is not a bare address", email)
	}
	if _, err := s.users.GetByEmail(ctx, address); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	user := &domain.User{
		Email:        address,
		PasswordHash: hash,
		DisplayName:  "Super Admin",
		GrantedRoles: []domain.Role{domain.RoleSuperAdmin},
		ActiveRole:   domain.RoleSuperAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil
		}
		return err
	}
	s.logger.Info("bootstrap super admin created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return nil
}
