package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dayumstir/bnpl-ledger/internal/model"
)

type TransactionCreatedResponse struct {
	Transaction *model.Transaction        `json:"transaction"`
	Payments    []model.InstalmentPayment `json:"payments,omitempty"`
}

type BalanceResponse struct {
	CustomerID string                 `json:"customer_id"`
	Balance    decimal.Decimal        `json:"balance"`
	AsOf       time.Time              `json:"as_of"`
	Entries    []model.PaymentHistory `json:"entries"`
}

type WithdrawalResponse struct {
	Withdrawal *model.MerchantWithdrawal `json:"withdrawal"`
	NetAmount  decimal.Decimal           `json:"net_amount"`
}
