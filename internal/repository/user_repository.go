package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tour-marketplace/internal/domain"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Role   *domain.Role
	Search *string
	Limit  int
	Offset int
}

// UserRepository defines persistence access for marketplace accounts.
// Soft-deleted users are invisible to every method.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	// SetActiveRole persists role only if it is granted; ErrNotFound otherwise.
	SetActiveRole(ctx context.Context, id string, role domain.Role) error
	// ReplaceRoles swaps the granted set and resets the active role when it
	// is no longer granted.
	ReplaceRoles(ctx context.Context, id string, roles []domain.Role) (*domain.User, error)
	SoftDelete(ctx context.Context, id string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `
        u.id, u.email, u.password_hash, u.display_name, u.active_role,
        ARRAY(SELECT ur.role FROM user_roles ur WHERE ur.user_id = u.id) AS granted_roles,
        u.is_deleted, u.deleted_at, u.created_at, u.updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const insertUser = `
        INSERT INTO users (email, password_hash, display_name, active_role)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	const insertRoles = `
        INSERT INTO user_roles (user_id, role)
        SELECT $1, UNNEST($2::text[])`

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, insertUser,
			strings.TrimSpace(user.Email),
			user.PasswordHash,
			user.DisplayName,
			string(user.ActiveRole),
		).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insertRoles, user.ID, rolesToStrings(user.GrantedRoles))
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT` + userColumns + ` FROM users u WHERE u.id=$1 AND NOT u.is_deleted`
	return r.fetchSingle(ctx, r.pool, query, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT` + userColumns + ` FROM users u WHERE LOWER(u.email)=LOWER($1) AND NOT u.is_deleted`
	return r.fetchSingle(ctx, r.pool, query, strings.TrimSpace(email))
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *userRepository) fetchSingle(ctx context.Context, q queryRower, query string, arg any) (*domain.User, error) {
	user, err := scanUser(q.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	clauses := []string{"NOT u.is_deleted"}
	args := []any{}

	if filter.Role != nil {
		args = append(args, string(*filter.Role))
		clauses = append(clauses, fmt.Sprintf("EXISTS (SELECT 1 FROM user_roles f WHERE f.user_id = u.id AND f.role = $%d)", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Search))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(u.email) LIKE %s OR LOWER(u.display_name) LIKE %s)", placeholder, placeholder))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users u WHERE %s ORDER BY u.created_at ASC LIMIT %d OFFSET %d`,
		userColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) SetActiveRole(ctx context.Context, id string, role domain.Role) error {
	const query = `
        UPDATE users SET active_role=$2, updated_at=NOW()
        WHERE id=$1 AND NOT is_deleted
          AND EXISTS (SELECT 1 FROM user_roles WHERE user_id=$1 AND role=$2)`

	cmd, err := r.pool.Exec(ctx, query, id, string(role))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) ReplaceRoles(ctx context.Context, id string, roles []domain.Role) (*domain.User, error) {
	const lockUser = `SELECT active_role FROM users WHERE id=$1 AND NOT is_deleted FOR UPDATE`
	const deleteRoles = `DELETE FROM user_roles WHERE user_id=$1`
	const insertRoles = `INSERT INTO user_roles (user_id, role) SELECT $1, UNNEST($2::text[])`
	const updateActive = `UPDATE users SET active_role=$2, updated_at=NOW() WHERE id=$1`

	var user *domain.User
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var active string
		if err := tx.QueryRow(ctx, lockUser, id).Scan(&active); err != nil {
			return mapNoRows(err)
		}
		if _, err := tx.Exec(ctx, deleteRoles, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, insertRoles, id, rolesToStrings(roles)); err != nil {
			return err
		}
		next := domain.Role(active)
		if !containsRole(roles, next) {
			next = domain.PrimaryRole(roles)
		}
		if _, err := tx.Exec(ctx, updateActive, id, string(next)); err != nil {
			return err
		}
		var err error
		user, err = r.fetchSingle(ctx, tx, `SELECT`+userColumns+` FROM users u WHERE u.id=$1`, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `
        UPDATE users SET is_deleted=TRUE, deleted_at=NOW(), updated_at=NOW()
        WHERE id=$1 AND NOT is_deleted`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user    domain.User
		active  string
		granted []string
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.DisplayName,
		&active,
		&granted,
		&user.IsDeleted,
		&user.DeletedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.ActiveRole = domain.Role(active)
	roles := make([]domain.Role, 0, len(granted))
	for _, g := range granted {
		roles = append(roles, domain.Role(g))
	}
	normalized, err := domain.NormalizeRoles(roles)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", user.ID, err)
	}
	user.GrantedRoles = normalized
	return &user, nil
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, role := range roles {
		out[i] = string(role)
	}
	return out
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
