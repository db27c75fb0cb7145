package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tour-marketplace/internal/domain"
)

// ProductHistoryRepository reads workflow audit entries. Entries are written
// by ProductRepository.TransitionStatus in the same statement as the change.
type ProductHistoryRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]domain.ProductStatusChange, error)
}

type productHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewProductHistoryRepository builds repository.
func NewProductHistoryRepository(pool *pgxpool.Pool) ProductHistoryRepository {
	return &productHistoryRepository{pool: pool}
}

func (r *productHistoryRepository) ListByProduct(ctx context.Context, productID string) ([]domain.ProductStatusChange, error) {
	const query = `
        SELECT id, product_id, from_status, to_status, action, actor_id, feedback, created_at
        FROM product_status_history WHERE product_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ProductStatusChange
	for rows.Next() {
		var (
			change domain.ProductStatusChange
			action string
		)
		if err := rows.Scan(
			&change.ID,
			&change.ProductID,
			&change.From,
			&change.To,
			&action,
			&change.ActorID,
			&change.Feedback,
			&change.CreatedAt,
		); err != nil {
			return nil, err
		}
		change.Action = domain.Action(action)
		result = append(result, change)
	}
	return result, rows.Err()
}
