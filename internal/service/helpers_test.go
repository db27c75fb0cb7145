package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/tour-marketplace/internal/auth"
	"github.com/spec-kit/tour-marketplace/internal/cache"
	"github.com/spec-kit/tour-marketplace/internal/config"
	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/events"
	"github.com/spec-kit/tour-marketplace/internal/repository/memory"
	"github.com/spec-kit/tour-marketplace/internal/service"
)

const testPassword = "correct-horse"

type harness struct {
	store    *memory.Store
	tokens   *auth.TokenManager
	recorder *eventRecorder
	cache    *countingCache

	auth     *service.AuthService
	roles    *service.RoleResolver
	users    *service.UserService
	products *service.ProductService
	catalog  *service.CatalogService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.Config{
		Auth:     config.AuthConfig{JWTSecret: "service-test-secret", BcryptCost: 4},
		Workflow: config.WorkflowConfig{BatchConcurrency: 3, BatchMaxItems: 50},
	}
	store := memory.NewStore()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)
	dispatcher := events.NewInMemoryDispatcher(nil)
	recorder := &eventRecorder{}
	for _, et := range []events.EventType{
		events.EventProductCreated,
		events.EventProductStatusChanged,
		events.EventProductDeleted,
		events.EventUserRoleSwitched,
	} {
		dispatcher.Subscribe(et, recorder.handle)
	}
	catalogCache := &countingCache{}

	return &harness{
		store:    store,
		tokens:   tokens,
		recorder: recorder,
		cache:    catalogCache,
		auth: service.NewAuthService(cfg, service.AuthDependencies{
			UserRepo:     store.Users(),
			TokenManager: tokens,
		}),
		roles: service.NewRoleResolver(store.Users(), tokens, dispatcher),
		users: service.NewUserService(cfg, store.Users(), nil),
		products: service.NewProductService(cfg, service.ProductDependencies{
			ProductRepo: store.Products(),
			HistoryRepo: store.History(),
			Catalog:     catalogCache,
			Dispatcher:  dispatcher,
		}),
		catalog: service.NewCatalogService(store.Products(), catalogCache),
	}
}

var superAdmin = domain.Actor{UserID: "root", Role: domain.RoleSuperAdmin}

func (h *harness) createUser(t *testing.T, email string, roles ...domain.Role) *domain.User {
	t.Helper()
	user, err := h.users.CreateUser(context.Background(), superAdmin, service.UserCreateInput{
		Email:       email,
		Password:    testPassword,
		DisplayName: email,
		Roles:       roles,
	})
	require.NoError(t, err)
	return user
}

func (h *harness) createDraft(t *testing.T, owner domain.Actor) *domain.Product {
	t.Helper()
	product, err := h.products.CreateProduct(context.Background(), owner, service.ProductInput{
		Title:        "Sahara camel trek",
		Description:  "Three nights under the stars",
		Destination:  "merzouga",
		DurationDays: 3,
		Price:        decimal.RequireFromString("349.999"),
		Currency:     "eur",
	})
	require.NoError(t, err)
	return product
}

func (h *harness) submitted(t *testing.T, owner domain.Actor) *domain.Product {
	t.Helper()
	product := h.createDraft(t, owner)
	updated, err := h.products.UpdateStatus(context.Background(), owner, product.ID, domain.StatePendingReview, nil)
	require.NoError(t, err)
	return updated
}

func actorOf(u *domain.User, role domain.Role) domain.Actor {
	return domain.Actor{UserID: u.ID, Role: role}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// countingCache is a map-backed cache that counts invalidations. Like the
// redis cache, slots carry the generation they were read under.
type countingCache struct {
	mu            sync.Mutex
	generation    int
	lists         map[cache.Slot][]domain.Product
	items         map[cache.Slot]domain.Product
	invalidations int
}

func (c *countingCache) slot(kind, key string) cache.Slot {
	return cache.Slot(fmt.Sprintf("v%d:%s:%s", c.generation, kind, key))
}

func (c *countingCache) GetList(_ context.Context, key string) ([]domain.Product, cache.Slot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot := c.slot("list", key)
	v, ok := c.lists[slot]
	return v, slot, ok
}

func (c *countingCache) SetList(_ context.Context, slot cache.Slot, products []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lists == nil {
		c.lists = map[cache.Slot][]domain.Product{}
	}
	c.lists[slot] = products
}

func (c *countingCache) GetProduct(_ context.Context, id string) (*domain.Product, cache.Slot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot := c.slot("item", id)
	v, ok := c.items[slot]
	if !ok {
		return nil, slot, false
	}
	return &v, slot, true
}

func (c *countingCache) SetProduct(_ context.Context, slot cache.Slot, product *domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = map[cache.Slot]domain.Product{}
	}
	c.items[slot] = *product
}

func (c *countingCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.invalidations++
}
