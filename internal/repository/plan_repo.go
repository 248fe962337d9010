package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dayumstir/bnpl-ledger/internal/model"
)

type PlanRepository struct {
	pool *pgxpool.Pool
}

func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

func (r *PlanRepository) InsertPlan(ctx context.Context, q Querier, plan *model.InstalmentPlan) error {
	return q.QueryRow(ctx,
		`INSERT INTO instalment_plans (id, transaction_id, instalment_count, frequency, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		plan.ID, plan.TransactionID, plan.InstalmentCount, plan.Frequency, plan.Status,
	).Scan(&plan.CreatedAt)
}

func (r *PlanRepository) InsertPayments(ctx context.Context, q Querier, payments []model.InstalmentPayment) error {
	batch := &pgx.Batch{}
	for _, p := range payments {
		batch.Queue(
			`INSERT INTO instalment_payments (id, plan_id, instalment_number, due_amount, due_date, status)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.PlanID, p.InstalmentNumber, p.DueAmount, p.DueDate, p.Status,
		)
	}
	br := q.SendBatch(ctx, batch)
	for i := range payments {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert instalment payment %d: %w", i+1, err)
		}
	}
	return br.Close()
}

const paymentColumns = `id, plan_id, instalment_number, due_amount, discount_amount, paid_amount,
	due_date, paid_date, status, COALESCE(voucher_assigned_id, '')`

func scanPayment(row pgx.Row) (*model.InstalmentPayment, error) {
	p := &model.InstalmentPayment{}
	err := row.Scan(&p.ID, &p.PlanID, &p.InstalmentNumber, &p.DueAmount, &p.DiscountAmount,
		&p.PaidAmount, &p.DueDate, &p.PaidDate, &p.Status, &p.VoucherAssignedID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PlanRepository) GetPayment(ctx context.Context, id string) (*model.InstalmentPayment, error) {
	return scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM instalment_payments WHERE id = $1`, id))
}

// GetPaymentForUpdate locks the payment row for the duration of the caller's
// transaction, serializing concurrent applications against the same payment.
func (r *PlanRepository) GetPaymentForUpdate(ctx context.Context, q Querier, id string) (*model.InstalmentPayment, error) {
	return scanPayment(q.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM instalment_payments WHERE id = $1 FOR UPDATE`, id))
}

func (r *PlanRepository) UpdatePaymentApplied(ctx context.Context, q Querier, p *model.InstalmentPayment) error {
	_, err := q.Exec(ctx,
		`UPDATE instalment_payments
		SET discount_amount = $2, paid_amount = $3, status = $4, paid_date = $5,
			voucher_assigned_id = NULLIF($6, '')
		WHERE id = $1`,
		p.ID, p.DiscountAmount, p.PaidAmount, p.Status, p.PaidDate, p.VoucherAssignedID)
	return err
}

// CountOpen returns the number of payments in the plan that are neither paid
// nor voided.
func (r *PlanRepository) CountOpen(ctx context.Context, q Querier, planID string) (int, error) {
	var n int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM instalment_payments
		WHERE plan_id = $1 AND status NOT IN ('paid', 'voided')`, planID).Scan(&n)
	return n, err
}

func (r *PlanRepository) MarkPlanComplete(ctx context.Context, q Querier, planID string) error {
	_, err := q.Exec(ctx,
		`UPDATE instalment_plans SET status = 'complete' WHERE id = $1`, planID)
	return err
}

// PlanOwner resolves the transaction and customer a plan belongs to.
func (r *PlanRepository) PlanOwner(ctx context.Context, q Querier, planID string) (transactionID, customerID string, err error) {
	err = q.QueryRow(ctx,
		`SELECT t.id, t.customer_id
		FROM instalment_plans p
		JOIN transactions t ON t.id = p.transaction_id
		WHERE p.id = $1`, planID).Scan(&transactionID, &customerID)
	return transactionID, customerID, err
}

func (r *PlanRepository) FindPlanByTransaction(ctx context.Context, transactionID string) (*model.InstalmentPlan, []model.InstalmentPayment, error) {
	plan := &model.InstalmentPlan{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, transaction_id, instalment_count, frequency, status, created_at
		FROM instalment_plans WHERE transaction_id = $1`, transactionID).
		Scan(&plan.ID, &plan.TransactionID, &plan.InstalmentCount, &plan.Frequency, &plan.Status, &plan.CreatedAt)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM instalment_payments
		WHERE plan_id = $1 ORDER BY instalment_number`, plan.ID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var payments []model.InstalmentPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, nil, err
		}
		payments = append(payments, *p)
	}
	return plan, payments, rows.Err()
}

func (r *PlanRepository) ListOutstandingByCustomer(ctx context.Context, customerID string) ([]model.InstalmentPayment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+paymentColumns+` FROM instalment_payments
		WHERE status IN ('scheduled', 'overdue')
		AND plan_id IN (
			SELECT p.id FROM instalment_plans p
			JOIN transactions t ON t.id = p.transaction_id
			WHERE t.customer_id = $1)
		ORDER BY due_date`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []model.InstalmentPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

// MarkOverdue sweeps scheduled payments past their due date. Observational
// only: amounts owed do not change.
func (r *PlanRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE instalment_payments SET status = 'overdue'
		WHERE status = 'scheduled' AND due_date < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// VoidOpen voids every not-yet-paid payment in a plan (used on refund).
func (r *PlanRepository) VoidOpen(ctx context.Context, q Querier, planID string) (int64, error) {
	tag, err := q.Exec(ctx,
		`UPDATE instalment_payments SET status = 'voided'
		WHERE plan_id = $1 AND status IN ('scheduled', 'overdue')`, planID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// PaidTotal sums what has actually been paid into a plan.
func (r *PlanRepository) PaidTotal(ctx context.Context, q Querier, planID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(paid_amount), 0) FROM instalment_payments WHERE plan_id = $1`,
		planID).Scan(&total)
	return total, err
}
