package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/dayumstir/bnpl-ledger/internal/domain"
	"github.com/dayumstir/bnpl-ledger/internal/model"
	"github.com/dayumstir/bnpl-ledger/internal/repository"
)

type TransactionService struct {
	pool         *pgxpool.Pool
	txnRepo      *repository.TransactionRepository
	planRepo     *repository.PlanRepository
	merchantRepo *repository.MerchantRepository
	historyRepo  *repository.HistoryRepository
	ratingRepo   *repository.RatingRepository
	planSvc      *PlanService
	ratingSvc    *RatingService
}

func NewTransactionService(
	pool *pgxpool.Pool,
	txnRepo *repository.TransactionRepository,
	planRepo *repository.PlanRepository,
	merchantRepo *repository.MerchantRepository,
	historyRepo *repository.HistoryRepository,
	ratingRepo *repository.RatingRepository,
	planSvc *PlanService,
	ratingSvc *RatingService,
) *TransactionService {
	return &TransactionService{
		pool:         pool,
		txnRepo:      txnRepo,
		planRepo:     planRepo,
		merchantRepo: merchantRepo,
		historyRepo:  historyRepo,
		ratingRepo:   ratingRepo,
		planSvc:      planSvc,
		ratingSvc:    ratingSvc,
	}
}

type CreateTransactionInput struct {
	Amount            decimal.Decimal
	CustomerID        string
	MerchantID        string
	MerchantPaymentID string
	InstalmentCount   int
	Frequency         string
	CashbackPercent   decimal.Decimal
}

func newReferenceNo() string {
	return "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// Create records a purchase and, when an instalment count is given, derives
// its plan in the same database transaction.
func (s *TransactionService) Create(ctx context.Context, in *CreateTransactionInput) (*model.Transaction, []model.InstalmentPayment, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, domain.Validation("transaction amount must be positive")
	}
	if in.CustomerID == "" {
		return nil, nil, domain.Validation("customer_id is required")
	}
	if in.InstalmentCount < 0 {
		return nil, nil, domain.Validation("installment_count cannot be negative")
	}
	if in.CashbackPercent.IsNegative() || in.CashbackPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, nil, domain.Validation("cashback_percentage must be between 0 and 100")
	}

	if _, err := s.merchantRepo.Find(ctx, in.MerchantID); err != nil {
		if repository.IsNoRows(err) {
			return nil, nil, domain.Validation("merchant not found")
		}
		return nil, nil, fmt.Errorf("find merchant: %w", err)
	}

	txn := &model.Transaction{
		ID:                uuid.NewString(),
		ReferenceNo:       newReferenceNo(),
		Amount:            in.Amount,
		Date:              time.Now(),
		Status:            model.TransactionPending,
		CustomerID:        in.CustomerID,
		MerchantID:        in.MerchantID,
		MerchantPaymentID: in.MerchantPaymentID,
		CashbackPercent:   in.CashbackPercent,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.txnRepo.Insert(ctx, tx, txn); err != nil {
		return nil, nil, fmt.Errorf("insert transaction: %w", err)
	}

	var payments []model.InstalmentPayment
	if in.InstalmentCount >= 1 {
		frequency := in.Frequency
		if frequency == "" {
			frequency = model.FrequencyMonthly
		}
		if _, payments, err = s.planSvc.CreatePlan(ctx, tx, txn, in.InstalmentCount, frequency); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit transaction: %w", err)
	}

	log.Info().
		Str("transaction_id", txn.ID).
		Str("reference_no", txn.ReferenceNo).
		Int("instalments", len(payments)).
		Msg("transaction created")

	return txn, payments, nil
}

// Get returns a transaction with its plan, payments and the customer's
// current credit rating. The rating is looked up at read time rather than
// stored on the row, so it is never stale relative to the gateway's output.
type TransactionDetail struct {
	Transaction *model.Transaction        `json:"transaction"`
	Plan        *model.InstalmentPlan     `json:"plan,omitempty"`
	Payments    []model.InstalmentPayment `json:"payments,omitempty"`
	Rating      *model.CreditRating       `json:"rating,omitempty"`
}

func (s *TransactionService) Get(ctx context.Context, id string) (*TransactionDetail, error) {
	txn, err := s.txnRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, domain.NotFound("transaction not found")
		}
		return nil, err
	}

	detail := &TransactionDetail{Transaction: txn}

	if txn.InstalmentPlanID != "" {
		plan, payments, err := s.planRepo.FindPlanByTransaction(ctx, txn.ID)
		if err != nil {
			return nil, fmt.Errorf("load plan: %w", err)
		}
		detail.Plan = plan
		detail.Payments = payments
	}

	if rating, err := s.ratingRepo.Get(ctx, txn.CustomerID); err == nil {
		detail.Rating = rating
	} else if !repository.IsNoRows(err) {
		return nil, fmt.Errorf("load rating: %w", err)
	}

	return detail, nil
}

// Refund moves a completed transaction to refunded, voids the unpaid portion
// of its plan, and credits what was actually paid back to the customer's
// ledger, as one atomic unit.
func (s *TransactionService) Refund(ctx context.Context, id string) (*model.Transaction, error) {
	txn, err := s.txnRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, domain.NotFound("transaction not found")
		}
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin refund: %w", err)
	}
	defer tx.Rollback(ctx)

	moved, err := s.txnRepo.TransitionStatus(ctx, tx, id, model.TransactionCompleted, model.TransactionRefunded)
	if err != nil {
		return nil, fmt.Errorf("transition status: %w", err)
	}
	if !moved {
		return nil, domain.Conflictf("cannot refund a %s transaction", txn.Status)
	}

	if txn.InstalmentPlanID != "" {
		if _, err := s.planRepo.VoidOpen(ctx, tx, txn.InstalmentPlanID); err != nil {
			return nil, fmt.Errorf("void open payments: %w", err)
		}
		paid, err := s.planRepo.PaidTotal(ctx, tx, txn.InstalmentPlanID)
		if err != nil {
			return nil, fmt.Errorf("sum paid amount: %w", err)
		}
		if paid.IsPositive() {
			if err := s.historyRepo.Insert(ctx, tx, &model.PaymentHistory{
				ID:          uuid.NewString(),
				CustomerID:  txn.CustomerID,
				Amount:      paid,
				Direction:   1,
				PaymentType: model.PaymentTypeRefund,
			}); err != nil {
				return nil, fmt.Errorf("append refund history: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit refund: %w", err)
	}

	txn.Status = model.TransactionRefunded
	log.Info().Str("transaction_id", id).Msg("transaction refunded")
	s.ratingSvc.RefreshAsync(txn.CustomerID)

	return txn, nil
}
