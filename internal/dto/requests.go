package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateTransactionRequest struct {
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	CustomerID        string          `json:"customer_id" binding:"required"`
	MerchantID        string          `json:"merchant_id" binding:"required"`
	MerchantPaymentID string          `json:"merchant_payment_id"`
	InstalmentCount   int             `json:"instalment_count" binding:"omitempty,min=1,max=36"`
	Frequency         string          `json:"frequency" binding:"omitempty,oneof=WEEKLY BIWEEKLY MONTHLY"`
	CashbackPercent   decimal.Decimal `json:"cashback_percentage"`
}

// Amount has no required tag: a zero amount is a legal voucher-only payment
// and the service rejects the bare-zero case itself.
type PayInstalmentRequest struct {
	Amount            decimal.Decimal `json:"amount"`
	VoucherAssignedID string          `json:"voucher_assigned_id"`
}

type CreateVoucherRequest struct {
	Title              string          `json:"title" binding:"required"`
	Description        string          `json:"description"`
	PercentageDiscount decimal.Decimal `json:"percentage_discount"`
	AmountDiscount     decimal.Decimal `json:"amount_discount"`
	ExpiryDate         time.Time       `json:"expiry_date" binding:"required"`
	UsageLimit         int             `json:"usage_limit" binding:"required,min=1"`
}

type AssignVoucherRequest struct {
	CustomerID string `json:"customer_id" binding:"required"`
}

type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type WithdrawRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type MerchantSnapshotRequest struct {
	WalletBalance  decimal.Decimal `json:"wallet_balance" binding:"required"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue" binding:"required"`
}

type CreateFeeRateRequest struct {
	Name                  string           `json:"name" binding:"required"`
	MerchantSizeID        string           `json:"merchant_size_id" binding:"required"`
	WalletBalanceMin      decimal.Decimal  `json:"wallet_balance_min"`
	WalletBalanceMax      *decimal.Decimal `json:"wallet_balance_max"`
	MonthlyRevenueMin     decimal.Decimal  `json:"monthly_revenue_min"`
	MonthlyRevenueMax     *decimal.Decimal `json:"monthly_revenue_max"`
	WithdrawalFeePercent  decimal.Decimal  `json:"withdrawal_fee_percentage" binding:"required"`
	TransactionFeePercent decimal.Decimal  `json:"transaction_fee_percentage" binding:"required"`
}
