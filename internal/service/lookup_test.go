package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/tour-marketplace/internal/config"
	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/repository"
	"github.com/spec-kit/tour-marketplace/internal/service"
	apperrors "github.com/spec-kit/tour-marketplace/pkg/util"
)

// errUUIDSyntax is what Postgres reports when a uuid column is compared
// with text that is not a uuid.
var errUUIDSyntax = errors.New(`invalid input syntax for type uuid: "abc"`)

func uuidColumn(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errUUIDSyntax
	}
	return nil
}

// uuidProducts fails the way the pgx repository does on malformed ids.
type uuidProducts struct {
	repository.ProductRepository
}

func (r uuidProducts) Get(ctx context.Context, id string, scope repository.Scope) (*domain.Product, error) {
	if err := uuidColumn(id); err != nil {
		return nil, err
	}
	return r.ProductRepository.Get(ctx, id, scope)
}

func (r uuidProducts) GetIncludingDeleted(ctx context.Context, id string) (*domain.Product, error) {
	if err := uuidColumn(id); err != nil {
		return nil, err
	}
	return r.ProductRepository.GetIncludingDeleted(ctx, id)
}

func (r uuidProducts) SoftDelete(ctx context.Context, id string, scope repository.Scope) error {
	if err := uuidColumn(id); err != nil {
		return err
	}
	return r.ProductRepository.SoftDelete(ctx, id, scope)
}

type uuidUsers struct {
	repository.UserRepository
}

func (r uuidUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := uuidColumn(id); err != nil {
		return nil, err
	}
	return r.UserRepository.GetByID(ctx, id)
}

func (r uuidUsers) SoftDelete(ctx context.Context, id string) error {
	if err := uuidColumn(id); err != nil {
		return err
	}
	return r.UserRepository.SoftDelete(ctx, id)
}

func TestProductService_MalformedIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	products := uuidProducts{ProductRepository: h.store.Products()}
	svc := service.NewProductService(config.Config{}, service.ProductDependencies{
		ProductRepo: products,
		HistoryRepo: h.store.History(),
	})
	catalog := service.NewCatalogService(products, nil)
	supplier := actorOf(h.createUser(t, "supplier@example.com", domain.RoleSupplier), domain.RoleSupplier)
	admin := actorOf(h.createUser(t, "admin@example.com", domain.RoleAdmin), domain.RoleAdmin)

	const id = "abc"
	checks := map[string]func() error{
		"get": func() error { _, err := svc.GetProduct(ctx, admin, id); return err },
		"update content": func() error {
			_, err := svc.UpdateContent(ctx, supplier, id, service.ProductInput{Title: "x", DurationDays: 1, Currency: "EUR"})
			return err
		},
		"update status": func() error { _, err := svc.UpdateStatus(ctx, admin, id, domain.StatePublished, nil); return err },
		"delete":        func() error { return svc.SoftDelete(ctx, supplier, id) },
		"history":       func() error { _, err := svc.History(ctx, admin, id); return err },
		"audit":         func() error { _, err := svc.AuditLookup(ctx, superAdmin, id); return err },
		"catalog":       func() error { _, err := catalog.Get(ctx, id); return err },
	}
	for name, call := range checks {
		t.Run(name, func(t *testing.T) {
			de := apperrors.ToDomainError(call())
			assert.Equal(t, apperrors.CodeNotFound, de.Code)
			assert.Equal(t, 404, de.HTTPStatus)
		})
	}

	outcomes, err := svc.BatchApprove(ctx, admin, []string{id})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].OK)
	assert.Equal(t, apperrors.CodeNotFound, outcomes[0].Code)
}

func TestUserService_MalformedIDIsNotFound(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	users := uuidUsers{UserRepository: h.store.Users()}
	userSvc := service.NewUserService(config.Config{}, users, nil)
	roles := service.NewRoleResolver(users, h.tokens, nil)
	authSvc := service.NewAuthService(config.Config{}, service.AuthDependencies{UserRepo: users, TokenManager: h.tokens})

	_, err := userSvc.UpdateRoles(ctx, superAdmin, "abc", []domain.Role{domain.RoleAgency})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	assert.True(t, apperrors.HasCode(userSvc.DeleteUser(ctx, superAdmin, "abc"), apperrors.CodeNotFound))

	_, err = roles.SelectActiveRole(ctx, "abc", "agency")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = authSvc.Me(ctx, "abc")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
