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

type VoucherService struct {
	repo *repository.VoucherRepository
}

func NewVoucherService(repo *repository.VoucherRepository) *VoucherService {
	return &VoucherService{repo: repo}
}

// Discount computes the discount a voucher grants against an instalment. The
// fixed amount wins when non-zero, otherwise the percentage of the due amount
// applies. The result is floored to the minor currency unit and capped at the
// outstanding residual, so a partially paid instalment can never go negative.
func Discount(v *model.Voucher, due, outstanding decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	if v.AmountDiscount.IsPositive() {
		d = v.AmountDiscount
	} else {
		d = due.Mul(v.PercentageDiscount).Div(decimal.NewFromInt(100))
	}
	d = d.RoundFloor(2)
	if d.GreaterThan(outstanding) {
		d = outstanding
	}
	return d
}

func (s *VoucherService) Create(ctx context.Context, v *model.Voucher) (*model.Voucher, error) {
	if v.Title == "" {
		return nil, domain.Validation("voucher title is required")
	}
	if v.PercentageDiscount.IsPositive() && v.AmountDiscount.IsPositive() {
		return nil, domain.Validation("voucher may carry a percentage or a fixed amount discount, not both")
	}
	if !v.PercentageDiscount.IsPositive() && !v.AmountDiscount.IsPositive() {
		return nil, domain.Validation("voucher must carry a discount")
	}
	if v.PercentageDiscount.GreaterThan(decimal.NewFromInt(100)) {
		return nil, domain.Validation("percentage discount cannot exceed 100")
	}
	if v.UsageLimit < 1 {
		return nil, domain.Validation("usage limit must be at least 1")
	}
	if !v.ExpiryDate.After(time.Now()) {
		return nil, domain.Validation("expiry date must be in the future")
	}

	v.ID = uuid.NewString()
	v.IsActive = true
	if err := s.repo.InsertVoucher(ctx, v); err != nil {
		return nil, fmt.Errorf("insert voucher: %w", err)
	}
	return v, nil
}

func (s *VoucherService) Deactivate(ctx context.Context, voucherID string) error {
	ok, err := s.repo.Deactivate(ctx, voucherID)
	if err != nil {
		return fmt.Errorf("deactivate voucher: %w", err)
	}
	if !ok {
		return domain.NotFound("voucher not found")
	}
	return nil
}

func (s *VoucherService) Get(ctx context.Context, voucherID string) (*model.Voucher, error) {
	v, err := s.repo.FindVoucher(ctx, voucherID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, domain.NotFound("voucher not found")
		}
		return nil, err
	}
	return v, nil
}

// Assign issues a voucher to a customer, seeding the assignment's remaining
// uses from the voucher's usage limit.
func (s *VoucherService) Assign(ctx context.Context, voucherID, customerID string) (*model.VoucherAssigned, error) {
	if customerID == "" {
		return nil, domain.Validation("customer_id is required")
	}

	v, err := s.repo.FindVoucher(ctx, voucherID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, domain.NotFound("voucher not found")
		}
		return nil, fmt.Errorf("find voucher: %w", err)
	}
	if !v.IsActive {
		return nil, domain.ErrVoucherInactive
	}
	if !v.ExpiryDate.After(time.Now()) {
		return nil, domain.ErrVoucherExpired
	}

	exists, err := s.repo.LiveAssignmentExists(ctx, voucherID, customerID)
	if err != nil {
		return nil, fmt.Errorf("check existing assignment: %w", err)
	}
	if exists {
		return nil, domain.ErrAlreadyAssigned
	}

	a := &model.VoucherAssigned{
		ID:            uuid.NewString(),
		VoucherID:     voucherID,
		CustomerID:    customerID,
		Status:        model.VoucherAvailable,
		RemainingUses: v.UsageLimit,
	}
	// The partial unique index backstops the existence check under
	// concurrent assignment of the same pair.
	if err := s.repo.InsertAssignment(ctx, a); err != nil {
		return nil, fmt.Errorf("insert assignment: %w", err)
	}
	return a, nil
}

// Redeem consumes one voucher use against an instalment payment, inside the
// caller's transaction, and returns the discount to apply. The ownership
// check runs first; the consumption itself is a single compare-and-swap.
func (s *VoucherService) Redeem(ctx context.Context, q repository.Querier, assignmentID, paymentID, customerID string, due, outstanding decimal.Decimal) (decimal.Decimal, error) {
	a, err := s.repo.FindAssignment(ctx, q, assignmentID)
	if err != nil {
		if repository.IsNoRows(err) {
			return decimal.Zero, domain.NotFound("voucher assignment not found")
		}
		return decimal.Zero, fmt.Errorf("find assignment: %w", err)
	}
	if a.CustomerID != customerID {
		return decimal.Zero, domain.Conflict("voucher assignment belongs to another customer")
	}

	v, err := s.repo.AssignmentVoucher(ctx, q, assignmentID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load voucher for assignment: %w", err)
	}

	if _, err := s.repo.Redeem(ctx, q, assignmentID, paymentID); err != nil {
		if repository.IsNoRows(err) {
			return decimal.Zero, domain.ErrVoucherNotAvailable
		}
		return decimal.Zero, fmt.Errorf("redeem assignment: %w", err)
	}

	return Discount(v, due, outstanding), nil
}

// ExpireSweep moves AVAILABLE assignments of expired vouchers to EXPIRED.
// Safe to run repeatedly.
func (s *VoucherService) ExpireSweep(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.ExpireSweep(ctx, now)
}
