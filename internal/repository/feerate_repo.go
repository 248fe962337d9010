package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dayumstir/bnpl-ledger/internal/model"
)

type FeeRateRepository struct {
	pool *pgxpool.Pool
}

func NewFeeRateRepository(pool *pgxpool.Pool) *FeeRateRepository {
	return &FeeRateRepository{pool: pool}
}

func (r *FeeRateRepository) Insert(ctx context.Context, t *model.WithdrawalFeeRate) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO withdrawal_fee_rates
			(id, name, merchant_size_id, wallet_balance_min, wallet_balance_max,
			monthly_revenue_min, monthly_revenue_max, percentage_withdrawal_fee, percentage_transaction_fee)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Name, t.MerchantSizeID, t.WalletBalanceMin, t.WalletBalanceMax,
		t.MonthlyRevenueMin, t.MonthlyRevenueMax, t.PercentageWithdrawalFee, t.PercentageTransactionFee)
	return err
}

func (r *FeeRateRepository) LoadAll(ctx context.Context) ([]model.WithdrawalFeeRate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, merchant_size_id, wallet_balance_min, wallet_balance_max,
			monthly_revenue_min, monthly_revenue_max, percentage_withdrawal_fee, percentage_transaction_fee
		FROM withdrawal_fee_rates`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []model.WithdrawalFeeRate
	for rows.Next() {
		var t model.WithdrawalFeeRate
		if err := rows.Scan(&t.ID, &t.Name, &t.MerchantSizeID,
			&t.WalletBalanceMin, &t.WalletBalanceMax,
			&t.MonthlyRevenueMin, &t.MonthlyRevenueMax,
			&t.PercentageWithdrawalFee, &t.PercentageTransactionFee); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}
