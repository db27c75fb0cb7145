package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when no visible row matches, including rows
	// filtered out by ownership or soft-delete predicates.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("repository: duplicate email")
)

const uniqueViolation = "23505"

func mapNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Scope restricts product reads and writes. An empty OwnerID is the admin
// scope, which only drops the ownership predicate.
type Scope struct {
	OwnerID string
}

// OwnerScope returns the scope of a supplier acting on its own products.
func OwnerScope(ownerID string) Scope {
	return Scope{OwnerID: ownerID}
}

// AdminScope returns the unrestricted scope.
func AdminScope() Scope {
	return Scope{}
}

// IsAdmin reports whether the ownership predicate is dropped.
func (s Scope) IsAdmin() bool {
	return s.OwnerID == ""
}
