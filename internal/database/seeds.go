package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type feeTierSeed struct {
	Name              string
	MerchantSizeID    string
	WalletBalanceMin  string
	WalletBalanceMax  *string
	MonthlyRevenueMin string
	MonthlyRevenueMax *string
	WithdrawalFeePct  string
	TransactionFeePct string
}

var merchantSizes = []struct {
	ID   string
	Name string
}{
	{"size-small", "Small"},
	{"size-medium", "Medium"},
	{"size-large", "Large"},
}

func strPtr(s string) *string { return &s }

// Each size class gets tiers that tile the balance axis with half-open
// ranges, so resolution is total and unambiguous.
var feeTiers = []feeTierSeed{
	{"Small Starter", "size-small", "0", strPtr("5000"), "0", nil, "3.000", "2.000"},
	{"Small Established", "size-small", "5000", nil, "0", nil, "2.000", "1.500"},

	{"Medium Low Balance", "size-medium", "0", strPtr("20000"), "0", strPtr("50000"), "1.750", "1.250"},
	{"Medium Low Balance High Revenue", "size-medium", "0", strPtr("20000"), "50000", nil, "1.500", "1.000"},
	{"Medium High Balance", "size-medium", "20000", nil, "0", nil, "1.250", "1.000"},

	{"Large Flat", "size-large", "0", nil, "0", nil, "0.750", "0.500"},
}

var merchants = []struct {
	ID             string
	Name           string
	MerchantSizeID string
	WalletBalance  string
	MonthlyRevenue string
}{
	{"merchant-kopi-corner", "Kopi Corner", "size-small", "4999", "12000"},
	{"merchant-gadget-hub", "Gadget Hub", "size-medium", "18000", "64000"},
	{"merchant-mega-mart", "Mega Mart", "size-large", "250000", "900000"},
}

var vouchers = []struct {
	ID                 string
	Title              string
	Description        string
	PercentageDiscount string
	AmountDiscount     string
	ExpiryDays         int
	UsageLimit         int
}{
	{"voucher-welcome10", "Welcome 10%", "10% off one instalment payment", "10", "0", 90, 1},
	{"voucher-flat5", "Flat $5", "Fixed discount on an instalment payment", "0", "5", 60, 3},
	{"voucher-loyal15", "Loyalty 15%", "15% off for returning customers", "15", "0", 30, 1},
}

// SeedData loads reference data in one transaction. Idempotent: skips when
// merchant sizes already exist.
func SeedData(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM merchant_sizes").Scan(&count); err != nil {
		return fmt.Errorf("check existing data: %w", err)
	}
	if count > 0 {
		log.Info().Msg("seed data already exists, skipping")
		return nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ms := range merchantSizes {
		if _, err := tx.Exec(ctx,
			"INSERT INTO merchant_sizes (id, name) VALUES ($1, $2)",
			ms.ID, ms.Name); err != nil {
			return fmt.Errorf("insert merchant size %s: %w", ms.ID, err)
		}
	}
	log.Info().Int("count", len(merchantSizes)).Msg("inserted merchant sizes")

	for i, t := range feeTiers {
		id := fmt.Sprintf("fee-rate-%03d", i+1)
		if _, err := tx.Exec(ctx,
			`INSERT INTO withdrawal_fee_rates
				(id, name, merchant_size_id, wallet_balance_min, wallet_balance_max,
				monthly_revenue_min, monthly_revenue_max, percentage_withdrawal_fee, percentage_transaction_fee)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			id, t.Name, t.MerchantSizeID, t.WalletBalanceMin, t.WalletBalanceMax,
			t.MonthlyRevenueMin, t.MonthlyRevenueMax, t.WithdrawalFeePct, t.TransactionFeePct); err != nil {
			return fmt.Errorf("insert fee tier %s: %w", t.Name, err)
		}
	}
	log.Info().Int("count", len(feeTiers)).Msg("inserted withdrawal fee rates")

	for _, m := range merchants {
		if _, err := tx.Exec(ctx,
			`INSERT INTO merchants (id, name, merchant_size_id, wallet_balance, monthly_revenue)
			VALUES ($1, $2, $3, $4, $5)`,
			m.ID, m.Name, m.MerchantSizeID, m.WalletBalance, m.MonthlyRevenue); err != nil {
			return fmt.Errorf("insert merchant %s: %w", m.ID, err)
		}
	}
	log.Info().Int("count", len(merchants)).Msg("inserted merchants")

	now := time.Now()
	for _, v := range vouchers {
		if _, err := tx.Exec(ctx,
			`INSERT INTO vouchers (id, title, description, percentage_discount, amount_discount, expiry_date, usage_limit, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, true)`,
			v.ID, v.Title, v.Description, v.PercentageDiscount, v.AmountDiscount,
			now.AddDate(0, 0, v.ExpiryDays), v.UsageLimit); err != nil {
			return fmt.Errorf("insert voucher %s: %w", v.ID, err)
		}
	}
	log.Info().Int("count", len(vouchers)).Msg("inserted vouchers")

	return tx.Commit(ctx)
}
