package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses. Transitions are monotonic: pending may move to
// completed or failed, completed may move to refunded. Nothing moves back.
const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
	TransactionRefunded  = "refunded"
)

const (
	PlanActive   = "active"
	PlanComplete = "complete"
)

const (
	PaymentScheduled = "scheduled"
	PaymentPaid      = "paid"
	PaymentOverdue   = "overdue"
	PaymentVoided    = "voided"
)

const (
	VoucherAvailable   = "AVAILABLE"
	VoucherExpired     = "EXPIRED"
	VoucherUsed        = "USED"
	VoucherUnavailable = "UNAVAILABLE"
)

const (
	PaymentTypeTopUp      = "TOP_UP"
	PaymentTypeInstalment = "INSTALMENT_PAYMENT"
	PaymentTypeRefund     = "REFUND"
	PaymentTypeOther      = "OTHER"
)

// Instalment schedule frequencies.
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

type Transaction struct {
	ID                string          `json:"id"`
	ReferenceNo       string          `json:"reference_no"`
	Amount            decimal.Decimal `json:"amount"`
	Date              time.Time       `json:"date"`
	Status            string          `json:"status"`
	CustomerID        string          `json:"customer_id"`
	MerchantID        string          `json:"merchant_id"`
	MerchantPaymentID string          `json:"merchant_payment_id,omitempty"`
	InstalmentPlanID  string          `json:"instalment_plan_id,omitempty"`
	CashbackPercent   decimal.Decimal `json:"cashback_percentage"`
	CreatedAt         time.Time       `json:"created_at"`
}

// CashbackWallet accumulates the cashback a customer has earned with one
// merchant. Awards land when a transaction is fully paid.
type CashbackWallet struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	MerchantID string          `json:"merchant_id"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type InstalmentPlan struct {
	ID              string    `json:"id"`
	TransactionID   string    `json:"transaction_id"`
	InstalmentCount int       `json:"instalment_count"`
	Frequency       string    `json:"frequency"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type InstalmentPayment struct {
	ID                string          `json:"id"`
	PlanID            string          `json:"plan_id"`
	InstalmentNumber  int             `json:"instalment_number"`
	DueAmount         decimal.Decimal `json:"due_amount"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	PaidAmount        decimal.Decimal `json:"paid_amount"`
	DueDate           time.Time       `json:"due_date"`
	PaidDate          *time.Time      `json:"paid_date,omitempty"`
	Status            string          `json:"status"`
	VoucherAssignedID string          `json:"voucher_assigned_id,omitempty"`
}

// Outstanding is what remains to be paid after any voucher discount.
func (p *InstalmentPayment) Outstanding() decimal.Decimal {
	return p.DueAmount.Sub(p.DiscountAmount).Sub(p.PaidAmount)
}

type Voucher struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description,omitempty"`
	PercentageDiscount decimal.Decimal `json:"percentage_discount"`
	AmountDiscount     decimal.Decimal `json:"amount_discount"`
	ExpiryDate         time.Time       `json:"expiry_date"`
	UsageLimit         int             `json:"usage_limit"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
}

type VoucherAssigned struct {
	ID                      string    `json:"id"`
	VoucherID               string    `json:"voucher_id"`
	CustomerID              string    `json:"customer_id"`
	Status                  string    `json:"status"`
	RemainingUses           int       `json:"remaining_uses"`
	DateTimeIssued          time.Time `json:"date_time_issued"`
	UsedInstalmentPaymentID string    `json:"used_instalment_payment_id,omitempty"`
}

// WithdrawalFeeRate is one tier of a merchant size class. A nil max means the
// range is unbounded above; boundaries are half-open, min inclusive.
type WithdrawalFeeRate struct {
	ID                       string           `json:"id"`
	Name                     string           `json:"name"`
	MerchantSizeID           string           `json:"merchant_size_id"`
	WalletBalanceMin         decimal.Decimal  `json:"wallet_balance_min"`
	WalletBalanceMax         *decimal.Decimal `json:"wallet_balance_max,omitempty"`
	MonthlyRevenueMin        decimal.Decimal  `json:"monthly_revenue_min"`
	MonthlyRevenueMax        *decimal.Decimal `json:"monthly_revenue_max,omitempty"`
	PercentageWithdrawalFee  decimal.Decimal  `json:"percentage_withdrawal_fee"`
	PercentageTransactionFee decimal.Decimal  `json:"percentage_transaction_fee"`
}

// Merchant wallet balance and monthly revenue are snapshots supplied by the
// settlement provider, not recomputed here.
type Merchant struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	MerchantSizeID string          `json:"merchant_size_id"`
	WalletBalance  decimal.Decimal `json:"wallet_balance"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`
}

// PaymentHistory is an append-only ledger entry. Amount is always positive;
// Direction carries the sign for OTHER entries, the other types have a fixed
// sign (TOP_UP and REFUND credit, INSTALMENT_PAYMENT debit).
type PaymentHistory struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Direction   int             `json:"direction"`
	PaymentType string          `json:"payment_type"`
	PaymentDate time.Time       `json:"payment_date"`
}

type CreditRating struct {
	CustomerID   string          `json:"customer_id"`
	CreditRating decimal.Decimal `json:"credit_rating"`
	RefreshedAt  time.Time       `json:"refreshed_at"`
}

// MerchantWithdrawal is the ledger-ready fee record produced by settlement.
type MerchantWithdrawal struct {
	ID             string          `json:"id"`
	MerchantID     string          `json:"merchant_id"`
	Amount         decimal.Decimal `json:"amount"`
	WithdrawalFee  decimal.Decimal `json:"withdrawal_fee"`
	TransactionFee decimal.Decimal `json:"transaction_fee"`
	FeeRateID      string          `json:"fee_rate_id"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}
