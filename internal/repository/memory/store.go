package memory

import (
	"sync"
	"time"

	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/repository"
)

// Store is an in-memory adapter implementing the repository interfaces.
// It is intended for tests and local development when no database is
// configured. Every mutation applies its predicates under one lock, which
// gives the same compare-and-swap behavior as the conditional SQL writes.
type Store struct {
	mu sync.RWMutex

	users    map[string]*userRow
	products map[string]*productRow
	history  []domain.ProductStatusChange
	seq      int64
	now      func() time.Time
}

type userRow struct {
	user  domain.User
	roles map[domain.Role]struct{}
	seq   int64
}

type productRow struct {
	product domain.Product
	seq     int64
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]*userRow),
		products: make(map[string]*productRow),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository {
	return &userRepository{store: s}
}

// Products returns the product repository view of the store.
func (s *Store) Products() repository.ProductRepository {
	return &productRepository{store: s}
}

// History returns the audit history view of the store.
func (s *Store) History() repository.ProductHistoryRepository {
	return &historyRepository{store: s}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
