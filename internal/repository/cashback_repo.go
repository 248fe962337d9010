package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dayumstir/bnpl-ledger/internal/model"
)

type CashbackRepository struct {
	pool *pgxpool.Pool
}

func NewCashbackRepository(pool *pgxpool.Pool) *CashbackRepository {
	return &CashbackRepository{pool: pool}
}

// Credit tops up the customer's wallet with the merchant, creating it on
// first award. The unique pair constraint makes the upsert race-safe.
func (r *CashbackRepository) Credit(ctx context.Context, q Querier, customerID, merchantID string, amount decimal.Decimal) (*model.CashbackWallet, error) {
	w := &model.CashbackWallet{CustomerID: customerID, MerchantID: merchantID}
	err := q.QueryRow(ctx,
		`INSERT INTO cashback_wallets (id, customer_id, merchant_id, balance)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (customer_id, merchant_id) DO UPDATE
			SET balance = cashback_wallets.balance + EXCLUDED.balance,
			    updated_at = now()
		RETURNING id, balance, created_at, updated_at`,
		uuid.NewString(), customerID, merchantID, amount).
		Scan(&w.ID, &w.Balance, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (r *CashbackRepository) ListByCustomer(ctx context.Context, customerID string) ([]model.CashbackWallet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, customer_id, merchant_id, balance, created_at, updated_at
		FROM cashback_wallets WHERE customer_id = $1
		ORDER BY merchant_id`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []model.CashbackWallet
	for rows.Next() {
		var w model.CashbackWallet
		if err := rows.Scan(&w.ID, &w.CustomerID, &w.MerchantID, &w.Balance, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}
