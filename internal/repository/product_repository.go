package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tour-marketplace/internal/domain"
)

// ProductFilter captures listing parameters. Soft-deleted products are
// always excluded.
type ProductFilter struct {
	OwnerID     *string
	Statuses    []domain.WorkflowState
	Destination *string
	SearchTerm  *string
	Limit       int
	Offset      int
}

// StatusChange is a conditional workflow write. It applies only while the
// product is visible in Scope and still in From.
type StatusChange struct {
	ProductID       string
	Scope           Scope
	From            domain.WorkflowState
	To              domain.WorkflowState
	Action          domain.Action
	ActorID         string
	Feedback        *string
	RejectionReason *string
}

// ProductRepository encapsulates product persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Get(ctx context.Context, id string, scope Scope) (*domain.Product, error)
	// GetIncludingDeleted bypasses every visibility predicate.
	GetIncludingDeleted(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	// UpdateContent writes listing fields while the product is editable.
	UpdateContent(ctx context.Context, product *domain.Product, scope Scope) error
	// TransitionStatus applies change and appends the audit entry in one
	// statement. ErrNotFound when no row matched.
	TransitionStatus(ctx context.Context, change StatusChange) (*domain.Product, error)
	SoftDelete(ctx context.Context, id string, scope Scope) error
}

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository instantiates repository.
func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &productRepository{pool: pool}
}

const productColumns = `id, owner_id, title, description, destination, duration_days, price, currency,
               status, rejection_reason, is_deleted, deleted_at, created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	const query = `
        INSERT INTO products (owner_id, title, description, destination, duration_days, price, currency, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		product.OwnerID,
		product.Title,
		product.Description,
		product.Destination,
		product.DurationDays,
		product.Price,
		product.Currency,
		product.Status,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) Get(ctx context.Context, id string, scope Scope) (*domain.Product, error) {
	args := []any{id}
	clauses := []string{"id=$1", "NOT is_deleted"}
	clauses, args = appendScope(clauses, args, scope)

	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s`, productColumns, strings.Join(clauses, " AND "))
	product, err := scanProduct(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return product, nil
}

func (r *productRepository) GetIncludingDeleted(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id=$1`, productColumns)
	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return product, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	clauses := []string{"NOT is_deleted"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Destination != nil && strings.TrimSpace(*filter.Destination) != "" {
		args = append(args, strings.ToLower(strings.TrimSpace(*filter.Destination)))
		clauses = append(clauses, fmt.Sprintf("LOWER(destination)=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		productColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (r *productRepository) UpdateContent(ctx context.Context, product *domain.Product, scope Scope) error {
	args := []any{
		product.Title,
		product.Description,
		product.Destination,
		product.DurationDays,
		product.Price,
		product.Currency,
		product.ID,
		domain.StateDraft,
		domain.StateNeedsRevision,
	}
	clauses := []string{"id=$7", "NOT is_deleted", "status IN ($8,$9)"}
	clauses, args = appendScope(clauses, args, scope)

	query := fmt.Sprintf(`
        UPDATE products SET title=$1, description=$2, destination=$3, duration_days=$4, price=$5, currency=$6,
            updated_at=NOW()
        WHERE %s
        RETURNING updated_at`, strings.Join(clauses, " AND "))

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&product.UpdatedAt); err != nil {
		return mapNoRows(err)
	}
	return nil
}

func (r *productRepository) TransitionStatus(ctx context.Context, change StatusChange) (*domain.Product, error) {
	args := []any{
		change.ProductID,
		change.From,
		change.To,
		change.RejectionReason,
		string(change.Action),
		change.ActorID,
		change.Feedback,
	}
	clauses := []string{"id=$1", "status=$2", "NOT is_deleted"}
	clauses, args = appendScope(clauses, args, change.Scope)

	query := fmt.Sprintf(`
        WITH updated AS (
            UPDATE products SET status=$3, rejection_reason=$4, updated_at=NOW()
            WHERE %s
            RETURNING %s
        ), audit AS (
            INSERT INTO product_status_history (product_id, from_status, to_status, action, actor_id, feedback)
            SELECT id, $2, $3, $5, $6, $7 FROM updated
        )
        SELECT %s FROM updated`, strings.Join(clauses, " AND "), productColumns, productColumns)

	product, err := scanProduct(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapNoRows(err)
	}
	return product, nil
}

func (r *productRepository) SoftDelete(ctx context.Context, id string, scope Scope) error {
	args := []any{id}
	clauses := []string{"id=$1", "NOT is_deleted"}
	clauses, args = appendScope(clauses, args, scope)

	query := fmt.Sprintf(`UPDATE products SET is_deleted=TRUE, deleted_at=NOW(), updated_at=NOW() WHERE %s`,
		strings.Join(clauses, " AND "))
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func appendScope(clauses []string, args []any, scope Scope) ([]string, []any) {
	if scope.IsAdmin() {
		return clauses, args
	}
	args = append(args, scope.OwnerID)
	return append(clauses, fmt.Sprintf("owner_id=$%d", len(args))), args
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	if err := row.Scan(
		&product.ID,
		&product.OwnerID,
		&product.Title,
		&product.Description,
		&product.Destination,
		&product.DurationDays,
		&product.Price,
		&product.Currency,
		&product.Status,
		&product.RejectionReason,
		&product.IsDeleted,
		&product.DeletedAt,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &product, nil
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var result []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *product)
	}
	return result, rows.Err()
}
