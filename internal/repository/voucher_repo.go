package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dayumstir/bnpl-ledger/internal/model"
)

type VoucherRepository struct {
	pool *pgxpool.Pool
}

func NewVoucherRepository(pool *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{pool: pool}
}

func (r *VoucherRepository) InsertVoucher(ctx context.Context, v *model.Voucher) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO vouchers (id, title, description, percentage_discount, amount_discount, expiry_date, usage_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		v.ID, v.Title, v.Description, v.PercentageDiscount, v.AmountDiscount,
		v.ExpiryDate, v.UsageLimit, v.IsActive,
	).Scan(&v.CreatedAt)
}

func (r *VoucherRepository) FindVoucher(ctx context.Context, id string) (*model.Voucher, error) {
	v := &model.Voucher{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, description, percentage_discount, amount_discount, expiry_date, usage_limit, is_active, created_at
		FROM vouchers WHERE id = $1`, id).
		Scan(&v.ID, &v.Title, &v.Description, &v.PercentageDiscount, &v.AmountDiscount,
			&v.ExpiryDate, &v.UsageLimit, &v.IsActive, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *VoucherRepository) Deactivate(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE vouchers SET is_active = false WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// LiveAssignmentExists reports whether the customer already holds an
// AVAILABLE or USED assignment of this voucher.
func (r *VoucherRepository) LiveAssignmentExists(ctx context.Context, voucherID, customerID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM voucher_assignments
		WHERE voucher_id = $1 AND customer_id = $2 AND status IN ('AVAILABLE', 'USED'))`,
		voucherID, customerID).Scan(&exists)
	return exists, err
}

func (r *VoucherRepository) InsertAssignment(ctx context.Context, a *model.VoucherAssigned) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO voucher_assignments (id, voucher_id, customer_id, status, remaining_uses)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING date_time_issued`,
		a.ID, a.VoucherID, a.CustomerID, a.Status, a.RemainingUses,
	).Scan(&a.DateTimeIssued)
}

func (r *VoucherRepository) FindAssignment(ctx context.Context, q Querier, id string) (*model.VoucherAssigned, error) {
	a := &model.VoucherAssigned{}
	err := q.QueryRow(ctx,
		`SELECT id, voucher_id, customer_id, status, remaining_uses, date_time_issued, COALESCE(used_instalment_payment_id, '')
		FROM voucher_assignments WHERE id = $1`, id).
		Scan(&a.ID, &a.VoucherID, &a.CustomerID, &a.Status, &a.RemainingUses,
			&a.DateTimeIssued, &a.UsedInstalmentPaymentID)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// AssignmentVoucher fetches the voucher behind an assignment, inside the
// caller's transaction, so the discount is computed from current terms.
func (r *VoucherRepository) AssignmentVoucher(ctx context.Context, q Querier, assignmentID string) (*model.Voucher, error) {
	v := &model.Voucher{}
	err := q.QueryRow(ctx,
		`SELECT v.id, v.title, v.description, v.percentage_discount, v.amount_discount, v.expiry_date, v.usage_limit, v.is_active, v.created_at
		FROM voucher_assignments a
		JOIN vouchers v ON v.id = a.voucher_id
		WHERE a.id = $1`, assignmentID).
		Scan(&v.ID, &v.Title, &v.Description, &v.PercentageDiscount, &v.AmountDiscount,
			&v.ExpiryDate, &v.UsageLimit, &v.IsActive, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Redeem consumes one use in a single conditional update. The guard on status
// and remaining_uses makes concurrent redemptions exactly-once: losers match
// zero rows and get pgx.ErrNoRows. When the final use is consumed the row
// flips to USED and records the payment that spent it.
func (r *VoucherRepository) Redeem(ctx context.Context, q Querier, assignmentID, instalmentPaymentID string) (remaining int, err error) {
	err = q.QueryRow(ctx,
		`UPDATE voucher_assignments
		SET remaining_uses = remaining_uses - 1,
			status = CASE WHEN remaining_uses - 1 = 0 THEN 'USED' ELSE status END,
			used_instalment_payment_id = CASE WHEN remaining_uses - 1 = 0 THEN $2 ELSE used_instalment_payment_id END
		WHERE id = $1 AND status = 'AVAILABLE' AND remaining_uses > 0
		RETURNING remaining_uses`,
		assignmentID, instalmentPaymentID).Scan(&remaining)
	return remaining, err
}

// ExpireSweep transitions AVAILABLE assignments whose voucher has expired.
// Idempotent: already-expired rows no longer match.
func (r *VoucherRepository) ExpireSweep(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE voucher_assignments a SET status = 'EXPIRED'
		FROM vouchers v
		WHERE v.id = a.voucher_id AND a.status = 'AVAILABLE' AND v.expiry_date < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
