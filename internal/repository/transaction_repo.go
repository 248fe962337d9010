package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dayumstir/bnpl-ledger/internal/model"
)

type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) Insert(ctx context.Context, q Querier, txn *model.Transaction) error {
	return q.QueryRow(ctx,
		`INSERT INTO transactions (id, reference_no, amount, date, status, customer_id, merchant_id, merchant_payment_id, cashback_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)
		RETURNING created_at`,
		txn.ID, txn.ReferenceNo, txn.Amount, txn.Date, txn.Status,
		txn.CustomerID, txn.MerchantID, txn.MerchantPaymentID, txn.CashbackPercent,
	).Scan(&txn.CreatedAt)
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	txn := &model.Transaction{}
	err := r.pool.QueryRow(ctx,
		`SELECT t.id, t.reference_no, t.amount, t.date, t.status, t.customer_id, t.merchant_id,
			COALESCE(t.merchant_payment_id, ''), COALESCE(p.id, ''), t.cashback_percentage, t.created_at
		FROM transactions t
		LEFT JOIN instalment_plans p ON p.transaction_id = t.id
		WHERE t.id = $1`, id).
		Scan(&txn.ID, &txn.ReferenceNo, &txn.Amount, &txn.Date, &txn.Status, &txn.CustomerID,
			&txn.MerchantID, &txn.MerchantPaymentID, &txn.InstalmentPlanID, &txn.CashbackPercent, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// Find loads the fields the completion cascade needs, inside the caller's
// transaction.
func (r *TransactionRepository) Find(ctx context.Context, q Querier, id string) (*model.Transaction, error) {
	txn := &model.Transaction{}
	err := q.QueryRow(ctx,
		`SELECT id, amount, customer_id, merchant_id, cashback_percentage
		FROM transactions WHERE id = $1`, id).
		Scan(&txn.ID, &txn.Amount, &txn.CustomerID, &txn.MerchantID, &txn.CashbackPercent)
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// TransitionStatus moves a transaction from one status to another. The WHERE
// clause names the only legal prior status, so a lost race or an illegal
// transition shows up as moved=false instead of a backward write.
func (r *TransactionRepository) TransitionStatus(ctx context.Context, q Querier, id, from, to string) (bool, error) {
	tag, err := q.Exec(ctx,
		`UPDATE transactions SET status = $3 WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TransactionRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// IsNoRows reports whether err is the pgx no-rows sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
