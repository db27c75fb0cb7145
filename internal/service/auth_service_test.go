package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/tour-marketplace/internal/auth"
	"github.com/spec-kit/tour-marketplace/internal/config"
	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/events"
	"github.com/spec-kit/tour-marketplace/internal/service"
	apperrors "github.com/spec-kit/tour-marketplace/pkg/util"
)

func TestAuthService_LoginSingleRole(t *testing.T) {
	h := newHarness(t)
	user := h.createUser(t, "supplier@example.com", domain.RoleSupplier)

	session, err := h.auth.Login(context.Background(), "Supplier@Example.com", testPassword)
	require.NoError(t, err)
	assert.False(t, session.RequiresRoleSelection)
	assert.Equal(t, user.ID, session.User.ID)

	claims, err := h.tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleSupplier, claims.ActiveRole)
}

func TestAuthService_LoginMultiRoleRequiresSelection(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "both@example.com", domain.RoleAgency, domain.RoleSupplier)

	session, err := h.auth.Login(context.Background(), "both@example.com", testPassword)
	require.NoError(t, err)
	assert.True(t, session.RequiresRoleSelection)
	assert.Equal(t, domain.RoleSupplier, session.User.ActiveRole)
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	user := h.createUser(t, "agency@example.com", domain.RoleAgency)

	_, wrongPassword := h.auth.Login(ctx, "agency@example.com", "not-the-password")
	_, unknownEmail := h.auth.Login(ctx, "nobody@example.com", testPassword)
	for _, err := range []error{wrongPassword, unknownEmail} {
		de := apperrors.ToDomainError(err)
		assert.Equal(t, apperrors.CodeUnauthorized, de.Code)
		assert.Equal(t, "invalid credentials", de.Message)
	}

	require.NoError(t, h.users.DeleteUser(ctx, superAdmin, user.ID))
	_, err := h.auth.Login(ctx, "agency@example.com", testPassword)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = h.auth.Login(ctx, "", "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestAuthService_EnsureBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	assert.ErrorIs(t, h.auth.EnsureBootstrapAdmin(ctx, "root@example.com", strings.Repeat("p", 80)), auth.ErrPasswordTooLong)
	assert.Error(t, h.auth.EnsureBootstrapAdmin(ctx, "Root <root@example.com>", "bootstrap-pass"))

	require.NoError(t, h.auth.EnsureBootstrapAdmin(ctx, "root@example.com", "bootstrap-pass"))
	require.NoError(t, h.auth.EnsureBootstrapAdmin(ctx, "root@example.com", "bootstrap-pass"))

	users, err := h.users.ListUsers(ctx, service.UserListFilters{})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleSuperAdmin, users[0].ActiveRole)

	session, err := h.auth.Login(ctx, "root@example.com", "bootstrap-pass")
	require.NoError(t, err)
	me, err := h.auth.Me(ctx, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", me.Email)
}

func TestRoleResolver_SelectActiveRole(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	user := h.createUser(t, "both@example.com", domain.RoleSupplier, domain.RoleAgency)

	t.Run("granted role issues a token for it", func(t *testing.T) {
		session, err := h.roles.SelectActiveRole(ctx, user.ID, "agency")
		require.NoError(t, err)
		assert.False(t, session.RequiresRoleSelection)
		claims, err := h.tokens.Verify(session.Token)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAgency, claims.ActiveRole)

		stored, err := h.auth.Me(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAgency, stored.ActiveRole)
		assert.Contains(t, h.recorder.types(), events.EventUserRoleSwitched)
	})

	t.Run("role not granted leaves the active role unchanged", func(t *testing.T) {
		_, err := h.roles.SelectActiveRole(ctx, user.ID, "admin")
		require.Error(t, err)
		de := apperrors.ToDomainError(err)
		assert.Equal(t, apperrors.CodeRoleNotGranted, de.Code)
		assert.Equal(t, 403, de.HTTPStatus)

		stored, err := h.auth.Me(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAgency, stored.ActiveRole)
	})

	t.Run("unknown role is a validation error", func(t *testing.T) {
		_, err := h.roles.SelectActiveRole(ctx, user.ID, "root")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := h.roles.SelectActiveRole(ctx, "missing", "agency")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin := actorOf(h.createUser(t, "admin@example.com", domain.RoleAdmin), domain.RoleAdmin)

	_, err := h.users.CreateUser(ctx, admin, service.UserCreateInput{
		Email: "ADMIN@example.com", Password: testPassword, Roles: []domain.Role{domain.RoleAgency},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = h.users.CreateUser(ctx, admin, service.UserCreateInput{
		Email: "boss@example.com", Password: testPassword, Roles: []domain.Role{domain.RoleSuperAdmin},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAccessDenied))

	_, err = h.users.CreateUser(ctx, admin, service.UserCreateInput{
		Email: "not-an-email", Password: testPassword, Roles: []domain.Role{domain.RoleAgency},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = h.users.CreateUser(ctx, admin, service.UserCreateInput{
		Email: "noroles@example.com", Password: testPassword,
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = h.users.CreateUser(ctx, admin, service.UserCreateInput{
		Email: "long@example.com", Password: strings.Repeat("p", 80), Roles: []domain.Role{domain.RoleAgency},
	})
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, de.Code)
	assert.Equal(t, 400, de.HTTPStatus)

	for _, email := range []string{"Bob <bob@example.com>", "<bob@example.com>", "bob@example.com (Bob)"} {
		_, err = h.users.CreateUser(ctx, admin, service.UserCreateInput{
			Email: email, Password: testPassword, Roles: []domain.Role{domain.RoleAgency},
		})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), email)
	}

	created, err := h.users.CreateUser(ctx, admin, service.UserCreateInput{
		Email: "  new@example.com ", Password: testPassword, Roles: []domain.Role{domain.RoleAgency, domain.RoleSupplier},
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", created.Email)
	assert.ElementsMatch(t, []domain.Role{domain.RoleAgency, domain.RoleSupplier}, created.GrantedRoles)
	assert.Equal(t, domain.RoleSupplier, created.ActiveRole)

	_, err = h.auth.Login(ctx, "new@example.com", testPassword)
	require.NoError(t, err)
}

func TestUserService_UpdateRolesResetsRevokedActiveRole(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	admin := actorOf(h.createUser(t, "admin@example.com", domain.RoleAdmin), domain.RoleAdmin)
	user := h.createUser(t, "both@example.com", domain.RoleSupplier, domain.RoleAgency)
	_, err := h.roles.SelectActiveRole(ctx, user.ID, "agency")
	require.NoError(t, err)

	updated, err := h.users.UpdateRoles(ctx, admin, user.ID, []domain.Role{domain.RoleSupplier})
	require.NoError(t, err)
	assert.Equal(t, []domain.Role{domain.RoleSupplier}, updated.GrantedRoles)
	assert.Equal(t, domain.RoleSupplier, updated.ActiveRole)

	root := h.createUser(t, "root@example.com", domain.RoleSuperAdmin)
	_, err = h.users.UpdateRoles(ctx, admin, root.ID, []domain.Role{domain.RoleAdmin})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAccessDenied))

	_, err = h.users.UpdateRoles(ctx, admin, "missing", []domain.Role{domain.RoleAgency})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	adminUser := h.createUser(t, "admin@example.com", domain.RoleAdmin)
	target := h.createUser(t, "agency@example.com", domain.RoleAgency)

	err := h.users.DeleteUser(ctx, actorOf(adminUser, domain.RoleAdmin), target.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAccessDenied))

	root := actorOf(h.createUser(t, "root@example.com", domain.RoleSuperAdmin), domain.RoleSuperAdmin)
	assert.True(t, apperrors.HasCode(h.users.DeleteUser(ctx, root, root.UserID), apperrors.CodeValidation))

	require.NoError(t, h.users.DeleteUser(ctx, root, target.ID))
	assert.True(t, apperrors.HasCode(h.users.DeleteUser(ctx, root, target.ID), apperrors.CodeNotFound))

	listed, err := h.users.ListUsers(ctx, service.UserListFilters{})
	require.NoError(t, err)
	for _, u := range listed {
		assert.NotEqual(t, target.ID, u.ID)
	}

	// the email is free again once the holder is deleted
	_, err = h.users.CreateUser(ctx, root, service.UserCreateInput{
		Email: "agency@example.com", Password: testPassword, Roles: []domain.Role{domain.RoleAgency},
	})
	require.NoError(t, err)
}

func TestNewProductService_DefaultsConcurrency(t *testing.T) {
	h := newHarness(t)
	svc := service.NewProductService(config.Config{}, service.ProductDependencies{
		ProductRepo: h.store.Products(),
		HistoryRepo: h.store.History(),
	})
	_, err := svc.BatchApprove(context.Background(), superAdmin, []string{"missing"})
	require.NoError(t, err)
}
