package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dayumstir/bnpl-ledger/internal/model"
)

type RatingRepository struct {
	pool *pgxpool.Pool
}

func NewRatingRepository(pool *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{pool: pool}
}

// Upsert stores a freshly fetched rating. Only called on gateway success, so
// a failed refresh never clobbers an existing rating.
func (r *RatingRepository) Upsert(ctx context.Context, customerID string, rating decimal.Decimal) (*model.CreditRating, error) {
	cr := &model.CreditRating{CustomerID: customerID, CreditRating: rating}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO credit_ratings (customer_id, credit_rating, refreshed_at)
		VALUES ($1, $2, now())
		ON CONFLICT (customer_id)
		DO UPDATE SET credit_rating = EXCLUDED.credit_rating, refreshed_at = EXCLUDED.refreshed_at
		RETURNING refreshed_at`,
		customerID, rating).Scan(&cr.RefreshedAt)
	if err != nil {
		return nil, err
	}
	return cr, nil
}

func (r *RatingRepository) Get(ctx context.Context, customerID string) (*model.CreditRating, error) {
	cr := &model.CreditRating{}
	err := r.pool.QueryRow(ctx,
		`SELECT customer_id, credit_rating, refreshed_at FROM credit_ratings WHERE customer_id = $1`,
		customerID).Scan(&cr.CustomerID, &cr.CreditRating, &cr.RefreshedAt)
	if err != nil {
		return nil, err
	}
	return cr, nil
}

func (r *RatingRepository) Exists(ctx context.Context, customerID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM credit_ratings WHERE customer_id = $1)`, customerID).Scan(&exists)
	return exists, err
}
