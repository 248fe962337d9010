package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dayumstir/bnpl-ledger/internal/model"
)

type MerchantRepository struct {
	pool *pgxpool.Pool
}

func NewMerchantRepository(pool *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{pool: pool}
}

func (r *MerchantRepository) Find(ctx context.Context, id string) (*model.Merchant, error) {
	m := &model.Merchant{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, merchant_size_id, wallet_balance, monthly_revenue
		FROM merchants WHERE id = $1`, id).
		Scan(&m.ID, &m.Name, &m.MerchantSizeID, &m.WalletBalance, &m.MonthlyRevenue)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateSnapshot replaces the externally supplied wallet balance and monthly
// revenue figures.
func (r *MerchantRepository) UpdateSnapshot(ctx context.Context, id string, walletBalance, monthlyRevenue decimal.Decimal) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE merchants SET wallet_balance = $2, monthly_revenue = $3 WHERE id = $1`,
		id, walletBalance, monthlyRevenue)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *MerchantRepository) InsertWithdrawal(ctx context.Context, w *model.MerchantWithdrawal) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO merchant_withdrawals (id, merchant_id, amount, withdrawal_fee, transaction_fee, fee_rate_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		w.ID, w.MerchantID, w.Amount, w.WithdrawalFee, w.TransactionFee, w.FeeRateID, w.Status,
	).Scan(&w.CreatedAt)
}
