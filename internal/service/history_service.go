package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dayumstir/bnpl-ledger/internal/domain"
	"github.com/dayumstir/bnpl-ledger/internal/model"
	"github.com/dayumstir/bnpl-ledger/internal/repository"
)

// HistoryService fronts the append-only payment ledger. The derived fold in
// Balance is the only wallet balance the system trusts.
type HistoryService struct {
	repo *repository.HistoryRepository
	pool repository.Querier
}

func NewHistoryService(repo *repository.HistoryRepository, pool repository.Querier) *HistoryService {
	return &HistoryService{repo: repo, pool: pool}
}

// Record appends one ledger entry. Direction is only meaningful for OTHER
// entries; the fixed-sign types carry +1 for consistency.
func (s *HistoryService) Record(ctx context.Context, customerID string, amount decimal.Decimal, paymentType string, direction int) (*model.PaymentHistory, error) {
	if customerID == "" {
		return nil, domain.Validation("customer_id is required")
	}
	if !amount.IsPositive() {
		return nil, domain.Validation("amount must be positive")
	}

	switch paymentType {
	case model.PaymentTypeTopUp, model.PaymentTypeInstalment, model.PaymentTypeRefund:
		direction = 1
	case model.PaymentTypeOther:
		if direction != 1 && direction != -1 {
			return nil, domain.Validation("OTHER entries require an explicit direction of 1 or -1")
		}
	default:
		return nil, domain.Validationf("unknown payment type %q", paymentType)
	}

	e := &model.PaymentHistory{
		ID:          uuid.NewString(),
		CustomerID:  customerID,
		Amount:      amount,
		Direction:   direction,
		PaymentType: paymentType,
	}
	if err := s.repo.Insert(ctx, s.pool, e); err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}
	return e, nil
}

func (s *HistoryService) TopUp(ctx context.Context, customerID string, amount decimal.Decimal) (*model.PaymentHistory, error) {
	return s.Record(ctx, customerID, amount, model.PaymentTypeTopUp, 1)
}

func (s *HistoryService) Balance(ctx context.Context, customerID string, asOf time.Time) (decimal.Decimal, error) {
	if asOf.IsZero() {
		asOf = time.Now()
	}
	return s.repo.Balance(ctx, customerID, asOf)
}

func (s *HistoryService) List(ctx context.Context, customerID string) ([]model.PaymentHistory, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}
