package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dayumstir/bnpl-ledger/internal/model"
)

// HistoryRepository is append-only: there is no update or delete here, and
// the schema enforces the same with a trigger.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

func (r *HistoryRepository) Insert(ctx context.Context, q Querier, e *model.PaymentHistory) error {
	return q.QueryRow(ctx,
		`INSERT INTO payment_histories (id, customer_id, amount, direction, payment_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING payment_date`,
		e.ID, e.CustomerID, e.Amount, e.Direction, e.PaymentType,
	).Scan(&e.PaymentDate)
}

// Balance folds the signed ledger up to asOf. TOP_UP and REFUND credit,
// INSTALMENT_PAYMENT debits, OTHER carries its own direction. This fold is
// the only source of wallet balance; no mutable balance column exists.
func (r *HistoryRepository) Balance(ctx context.Context, customerID string, asOf time.Time) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(
			CASE payment_type
				WHEN 'TOP_UP' THEN amount
				WHEN 'REFUND' THEN amount
				WHEN 'INSTALMENT_PAYMENT' THEN -amount
				ELSE amount * direction
			END), 0)
		FROM payment_histories
		WHERE customer_id = $1 AND payment_date <= $2`,
		customerID, asOf).Scan(&balance)
	return balance, err
}

func (r *HistoryRepository) ListByCustomer(ctx context.Context, customerID string) ([]model.PaymentHistory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, customer_id, amount, direction, payment_type, payment_date
		FROM payment_histories
		WHERE customer_id = $1
		ORDER BY payment_date, id`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.PaymentHistory
	for rows.Next() {
		var e model.PaymentHistory
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Amount, &e.Direction, &e.PaymentType, &e.PaymentDate); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
