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

type PlanService struct {
	pool         *pgxpool.Pool
	planRepo     *repository.PlanRepository
	txnRepo      *repository.TransactionRepository
	historyRepo  *repository.HistoryRepository
	cashbackRepo *repository.CashbackRepository
	voucherSvc   *VoucherService
	ratingSvc    *RatingService
}

func NewPlanService(
	pool *pgxpool.Pool,
	planRepo *repository.PlanRepository,
	txnRepo *repository.TransactionRepository,
	historyRepo *repository.HistoryRepository,
	cashbackRepo *repository.CashbackRepository,
	voucherSvc *VoucherService,
	ratingSvc *RatingService,
) *PlanService {
	return &PlanService{
		pool:         pool,
		planRepo:     planRepo,
		txnRepo:      txnRepo,
		historyRepo:  historyRepo,
		cashbackRepo: cashbackRepo,
		voucherSvc:   voucherSvc,
		ratingSvc:    ratingSvc,
	}
}

// cashbackOf floors the award to the minor unit, matching the discount
// rounding direction.
func cashbackOf(amount, percentage decimal.Decimal) decimal.Decimal {
	return amount.Mul(percentage).Div(decimal.NewFromInt(100)).RoundFloor(2)
}

// periodAfter is case-insensitive on the frequency so the API's
// uppercase enum values and the stored lowercase ones both resolve.
func periodAfter(t time.Time, frequency string, n int) (time.Time, error) {
	switch strings.ToLower(frequency) {
	case model.FrequencyWeekly:
		return t.AddDate(0, 0, 7*n), nil
	case model.FrequencyBiweekly:
		return t.AddDate(0, 0, 14*n), nil
	case model.FrequencyMonthly:
		return t.AddDate(0, n, 0), nil
	default:
		return time.Time{}, domain.Validationf("unknown frequency %q", frequency)
	}
}

// buildSchedule splits an amount into count instalments due one period apart,
// starting one period after start. The amount is divided evenly, floored to
// the minor unit, and the whole rounding remainder lands on the final
// instalment so the due amounts sum to the transaction amount exactly.
func buildSchedule(planID string, amount decimal.Decimal, count int, frequency string, start time.Time) ([]model.InstalmentPayment, error) {
	if count < 1 {
		return nil, domain.Validation("instalment count must be at least 1")
	}
	if !amount.IsPositive() {
		return nil, domain.Validation("amount must be positive")
	}

	base := amount.Div(decimal.NewFromInt(int64(count))).RoundFloor(2)
	last := amount.Sub(base.Mul(decimal.NewFromInt(int64(count - 1))))

	payments := make([]model.InstalmentPayment, count)
	for i := 0; i < count; i++ {
		due := base
		if i == count-1 {
			due = last
		}
		dueDate, err := periodAfter(start, frequency, i+1)
		if err != nil {
			return nil, err
		}
		payments[i] = model.InstalmentPayment{
			ID:               uuid.NewString(),
			PlanID:           planID,
			InstalmentNumber: i + 1,
			DueAmount:        due,
			DueDate:          dueDate,
			Status:           model.PaymentScheduled,
		}
	}
	return payments, nil
}

// CreatePlan derives the instalment schedule for a transaction and persists
// it inside the caller's transaction, so a transaction and its plan commit as
// one unit.
func (s *PlanService) CreatePlan(ctx context.Context, q repository.Querier, txn *model.Transaction, count int, frequency string) (*model.InstalmentPlan, []model.InstalmentPayment, error) {
	frequency = strings.ToLower(frequency)
	plan := &model.InstalmentPlan{
		ID:              uuid.NewString(),
		TransactionID:   txn.ID,
		InstalmentCount: count,
		Frequency:       frequency,
		Status:          model.PlanActive,
	}

	payments, err := buildSchedule(plan.ID, txn.Amount, count, frequency, txn.Date)
	if err != nil {
		return nil, nil, err
	}

	if err := s.planRepo.InsertPlan(ctx, q, plan); err != nil {
		return nil, nil, fmt.Errorf("insert plan: %w", err)
	}
	if err := s.planRepo.InsertPayments(ctx, q, payments); err != nil {
		return nil, nil, fmt.Errorf("insert payments: %w", err)
	}

	txn.InstalmentPlanID = plan.ID
	return plan, payments, nil
}

// ApplyPayment applies money (and optionally one voucher use) to an
// instalment payment. The payment row is locked for the duration, the voucher
// consumption is a compare-and-swap, and the instalment update, ledger append
// and any completion cascade commit atomically. A failure at any step leaves
// no partial state.
func (s *PlanService) ApplyPayment(ctx context.Context, paymentID string, amount decimal.Decimal, voucherAssignedID string) (*model.InstalmentPayment, error) {
	// A zero amount is legal only when a voucher is carrying the payment.
	if amount.IsNegative() || (amount.IsZero() && voucherAssignedID == "") {
		return nil, domain.Validation("payment amount must be positive")
	}
	if !amount.Equal(amount.RoundFloor(2)) {
		return nil, domain.Validation("payment amount has sub-cent precision")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin payment transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := s.planRepo.GetPaymentForUpdate(ctx, tx, paymentID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, domain.NotFound("instalment payment not found")
		}
		return nil, fmt.Errorf("lock payment: %w", err)
	}
	if p.Status == model.PaymentPaid || p.Status == model.PaymentVoided {
		return nil, domain.Conflictf("instalment payment is %s", p.Status)
	}

	transactionID, customerID, err := s.planRepo.PlanOwner(ctx, tx, p.PlanID)
	if err != nil {
		return nil, fmt.Errorf("resolve plan owner: %w", err)
	}

	if voucherAssignedID != "" {
		if p.VoucherAssignedID != "" {
			return nil, domain.Conflict("instalment payment already carries a voucher discount")
		}
		discount, err := s.voucherSvc.Redeem(ctx, tx, voucherAssignedID, p.ID, customerID, p.DueAmount, p.Outstanding())
		if err != nil {
			return nil, err
		}
		p.DiscountAmount = discount
		p.VoucherAssignedID = voucherAssignedID
	}

	if amount.GreaterThan(p.Outstanding()) {
		return nil, domain.ErrOverpayment
	}

	p.PaidAmount = p.PaidAmount.Add(amount)
	if p.Outstanding().IsZero() {
		now := time.Now()
		p.Status = model.PaymentPaid
		p.PaidDate = &now
	}

	if err := s.planRepo.UpdatePaymentApplied(ctx, tx, p); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}

	if amount.IsPositive() {
		if err := s.historyRepo.Insert(ctx, tx, &model.PaymentHistory{
			ID:          uuid.NewString(),
			CustomerID:  customerID,
			Amount:      amount,
			Direction:   1,
			PaymentType: model.PaymentTypeInstalment,
		}); err != nil {
			return nil, fmt.Errorf("append payment history: %w", err)
		}
	}

	completed := false
	if p.Status == model.PaymentPaid {
		open, err := s.planRepo.CountOpen(ctx, tx, p.PlanID)
		if err != nil {
			return nil, fmt.Errorf("count open payments: %w", err)
		}
		if open == 0 {
			if err := s.planRepo.MarkPlanComplete(ctx, tx, p.PlanID); err != nil {
				return nil, fmt.Errorf("mark plan complete: %w", err)
			}
			moved, err := s.txnRepo.TransitionStatus(ctx, tx, transactionID, model.TransactionPending, model.TransactionCompleted)
			if err != nil {
				return nil, fmt.Errorf("complete transaction: %w", err)
			}
			if moved {
				if err := s.awardCashback(ctx, tx, transactionID); err != nil {
					return nil, err
				}
			}
			completed = moved
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	if completed {
		log.Info().Str("transaction_id", transactionID).Msg("transaction fully paid")
		s.ratingSvc.RefreshAsync(customerID)
	}

	return p, nil
}

// awardCashback credits the transaction's cashback percentage to the
// customer's wallet with the merchant, in the same database transaction as
// the completion. Transactions without a percentage award nothing.
func (s *PlanService) awardCashback(ctx context.Context, q repository.Querier, transactionID string) error {
	txn, err := s.txnRepo.Find(ctx, q, transactionID)
	if err != nil {
		return fmt.Errorf("load transaction for cashback: %w", err)
	}

	award := cashbackOf(txn.Amount, txn.CashbackPercent)
	if !award.IsPositive() {
		return nil
	}

	if _, err := s.cashbackRepo.Credit(ctx, q, txn.CustomerID, txn.MerchantID, award); err != nil {
		return fmt.Errorf("credit cashback wallet: %w", err)
	}
	log.Info().
		Str("transaction_id", transactionID).
		Str("customer_id", txn.CustomerID).
		Str("merchant_id", txn.MerchantID).
		Str("amount", award.String()).
		Msg("cashback awarded")
	return nil
}

// MarkOverdue sweeps scheduled payments past their due date into overdue.
func (s *PlanService) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.planRepo.MarkOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("mark overdue: %w", err)
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("instalment payments marked overdue")
	}
	return n, nil
}

func (s *PlanService) GetPayment(ctx context.Context, id string) (*model.InstalmentPayment, error) {
	p, err := s.planRepo.GetPayment(ctx, id)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, domain.NotFound("instalment payment not found")
		}
		return nil, err
	}
	return p, nil
}
