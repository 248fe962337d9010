package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/dayumstir/bnpl-ledger/internal/domain"
	"github.com/dayumstir/bnpl-ledger/internal/model"
	"github.com/dayumstir/bnpl-ledger/internal/rates"
	"github.com/dayumstir/bnpl-ledger/internal/repository"
)

type FeeService struct {
	merchantRepo *repository.MerchantRepository
	feeRateRepo  *repository.FeeRateRepository
	table        *rates.Table
}

func NewFeeService(merchantRepo *repository.MerchantRepository, feeRateRepo *repository.FeeRateRepository, table *rates.Table) *FeeService {
	return &FeeService{merchantRepo: merchantRepo, feeRateRepo: feeRateRepo, table: table}
}

type FeeQuote struct {
	Merchant       *model.Merchant          `json:"-"`
	FeeRate        *model.WithdrawalFeeRate `json:"fee_rate"`
	Amount         decimal.Decimal          `json:"amount"`
	WithdrawalFee  decimal.Decimal          `json:"withdrawal_fee"`
	TransactionFee decimal.Decimal          `json:"transaction_fee"`
}

// feeOf applies a percentage to an amount, rounded half-up to the minor unit.
func feeOf(amount, percentage decimal.Decimal) decimal.Decimal {
	return amount.Mul(percentage).Div(decimal.NewFromInt(100)).Round(2)
}

// ComputeFees resolves the merchant's fee tier from its snapshot balance and
// revenue and prices a withdrawal. An uncovered merchant blocks settlement
// rather than falling back to a fee-free rate.
func (s *FeeService) ComputeFees(ctx context.Context, merchantID string, amount decimal.Decimal) (*FeeQuote, error) {
	if !amount.IsPositive() {
		return nil, domain.Validation("withdrawal amount must be positive")
	}

	m, err := s.merchantRepo.Find(ctx, merchantID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, domain.NotFound("merchant not found")
		}
		return nil, fmt.Errorf("find merchant: %w", err)
	}

	tier, err := s.table.Snapshot().Resolve(m.MerchantSizeID, m.WalletBalance, m.MonthlyRevenue)
	if err != nil {
		if errors.Is(err, domain.ErrRateNotFound) {
			return nil, domain.ErrRateUnavailable
		}
		return nil, err
	}

	return &FeeQuote{
		Merchant:       m,
		FeeRate:        tier,
		Amount:         amount,
		WithdrawalFee:  feeOf(amount, tier.PercentageWithdrawalFee),
		TransactionFee: feeOf(amount, tier.PercentageTransactionFee),
	}, nil
}

// Withdraw settles a merchant withdrawal: fees computed from the resolved
// tier and recorded as a ledger-ready fee record.
func (s *FeeService) Withdraw(ctx context.Context, merchantID string, amount decimal.Decimal) (*model.MerchantWithdrawal, error) {
	quote, err := s.ComputeFees(ctx, merchantID, amount)
	if err != nil {
		return nil, err
	}

	w := &model.MerchantWithdrawal{
		ID:             uuid.NewString(),
		MerchantID:     merchantID,
		Amount:         amount,
		WithdrawalFee:  quote.WithdrawalFee,
		TransactionFee: quote.TransactionFee,
		FeeRateID:      quote.FeeRate.ID,
		Status:         "settled",
	}
	if err := s.merchantRepo.InsertWithdrawal(ctx, w); err != nil {
		return nil, fmt.Errorf("insert withdrawal: %w", err)
	}

	log.Info().
		Str("merchant_id", merchantID).
		Str("withdrawal_id", w.ID).
		Str("withdrawal_fee", w.WithdrawalFee.String()).
		Str("transaction_fee", w.TransactionFee.String()).
		Msg("withdrawal settled")

	return w, nil
}

// CreateTier persists a new fee tier and refreshes the live snapshot. The
// database exclusion constraint rejects overlapping tiers before the reload
// can observe them.
func (s *FeeService) CreateTier(ctx context.Context, tier *model.WithdrawalFeeRate) (*model.WithdrawalFeeRate, error) {
	if tier.Name == "" || tier.MerchantSizeID == "" {
		return nil, domain.Validation("tier name and merchant_size_id are required")
	}
	tier.ID = uuid.NewString()
	if err := s.feeRateRepo.Insert(ctx, tier); err != nil {
		return nil, fmt.Errorf("insert fee tier: %w", err)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return tier, nil
}

// Reload rebuilds the tier snapshot from storage and swaps it atomically.
func (s *FeeService) Reload(ctx context.Context) error {
	tiers, err := s.feeRateRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load fee tiers: %w", err)
	}
	snap, err := rates.NewSnapshot(tiers)
	if err != nil {
		return err
	}
	s.table.Swap(snap)
	log.Info().Int("tiers", len(tiers)).Msg("fee tier snapshot reloaded")
	return nil
}

// UpdateMerchantSnapshot stores the externally supplied wallet balance and
// monthly revenue figures for a merchant.
func (s *FeeService) UpdateMerchantSnapshot(ctx context.Context, merchantID string, walletBalance, monthlyRevenue decimal.Decimal) error {
	if walletBalance.IsNegative() || monthlyRevenue.IsNegative() {
		return domain.Validation("wallet balance and monthly revenue must be non-negative")
	}
	ok, err := s.merchantRepo.UpdateSnapshot(ctx, merchantID, walletBalance, monthlyRevenue)
	if err != nil {
		return fmt.Errorf("update merchant snapshot: %w", err)
	}
	if !ok {
		return domain.NotFound("merchant not found")
	}
	return nil
}
