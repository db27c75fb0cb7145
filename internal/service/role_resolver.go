package service

import (
	"context"
	"errors"

	"github.com/spec-kit/tour-marketplace/internal/auth"
	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/events"
	"github.com/spec-kit/tour-marketplace/internal/repository"
	apperrors "github.com/spec-kit/tour-marketplace/pkg/util"
)

// RoleResolver switches the active role of a session.
type RoleResolver struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
}

// NewRoleResolver constructs the resolver.
func NewRoleResolver(users repository.UserRepository, tokenMgr *auth.TokenManager, dispatcher events.Dispatcher) *RoleResolver {
	return &RoleResolver{users: users, tokenMgr: tokenMgr, dispatcher: dispatcher}
}

// SelectActiveRole persists requested as the active role when it is granted
// and issues a fresh token for it. Previously issued tokens stay valid.
func (r *RoleResolver) SelectActiveRole(ctx context.Context, userID, requested string) (*Session, error) {
	role, err := domain.ParseRole(requested)
	if err != nil {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": requested})
	}

	if err := checkID(userID, "user"); err != nil {
		return nil, err
	}
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	if !user.HasRole(role) {
		return nil, apperrors.NewRoleNotGranted(string(role))
	}

	// The granted set may change between the read above and this write; the
	// conditional update re-checks it.
	if err := r.users.SetActiveRole(ctx, user.ID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewRoleNotGranted(string(role))
		}
		return nil, apperrors.NewInternalError(err)
	}

	previous := user.ActiveRole
	user.ActiveRole = role
	token, exp, err := r.tokenMgr.Issue(auth.Identity{UserID: user.ID, Email: user.Email, ActiveRole: role})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if previous != role {
		publishEvent(ctx, r.dispatcher, events.Event{
			Type:      events.EventUserRoleSwitched,
			SubjectID: user.ID,
			Actor:     events.Actor{UserID: user.ID, Role: role},
			Payload:   events.UserRoleSwitchedPayload{OldRole: previous, NewRole: role},
		})
	}
	return &Session{
		User:                  user,
		Token:                 token,
		ExpiresAt:             exp,
		RequiresRoleSelection: false,
	}, nil
}
