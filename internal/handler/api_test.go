package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayumstir/bnpl-ledger/internal/dto"
	"github.com/dayumstir/bnpl-ledger/internal/model"
)

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestTransactionEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	router, pool := setupRouter(t)
	defer pool.Close()

	t.Run("create with instalment plan", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/transactions", dto.CreateTransactionRequest{
			Amount:          decimal.RequireFromString("300"),
			CustomerID:      "customer-http",
			MerchantID:      "merchant-gadget-hub",
			InstalmentCount: 3,
			Frequency:       "MONTHLY",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp dto.TransactionCreatedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Transaction.ID)
		assert.NotEmpty(t, resp.Transaction.ReferenceNo)
		assert.Equal(t, model.TransactionPending, resp.Transaction.Status)
		require.Len(t, resp.Payments, 3)
		assert.True(t, resp.Payments[0].DueAmount.Equal(decimal.RequireFromString("100")))
	})

	t.Run("missing fields fail binding", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/transactions", map[string]any{"amount": "50"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown merchant maps to bad request", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/transactions", dto.CreateTransactionRequest{
			Amount:     decimal.RequireFromString("50"),
			CustomerID: "customer-http",
			MerchantID: "merchant-nowhere",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get unknown transaction is 404", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/v1/transactions/no-such-id", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPaymentAndVoucherEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	router, pool := setupRouter(t)
	defer pool.Close()

	const customerID = "customer-pay-http"

	w := doJSON(t, router, "POST", "/api/v1/transactions", dto.CreateTransactionRequest{
		Amount:          decimal.RequireFromString("300"),
		CustomerID:      customerID,
		MerchantID:      "merchant-mega-mart",
		InstalmentCount: 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created dto.TransactionCreatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, "POST", "/api/v1/vouchers/voucher-welcome10/assign", dto.AssignVoucherRequest{CustomerID: customerID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var assignment model.VoucherAssigned
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assignment))

	t.Run("duplicate assignment conflicts", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/vouchers/voucher-welcome10/assign", dto.AssignVoucherRequest{CustomerID: customerID})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	payURL := fmt.Sprintf("/api/v1/instalment-payments/%s/pay", created.Payments[0].ID)

	t.Run("voucher discount applies on payment", func(t *testing.T) {
		w := doJSON(t, router, "POST", payURL, dto.PayInstalmentRequest{
			Amount:            decimal.RequireFromString("90"),
			VoucherAssignedID: assignment.ID,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var p model.InstalmentPayment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.Equal(t, model.PaymentPaid, p.Status)
		assert.True(t, p.DiscountAmount.Equal(decimal.RequireFromString("10")))
	})

	t.Run("overpayment conflicts", func(t *testing.T) {
		w := doJSON(t, router, "POST",
			fmt.Sprintf("/api/v1/instalment-payments/%s/pay", created.Payments[1].ID),
			dto.PayInstalmentRequest{Amount: decimal.RequireFromString("250")})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("refund before completion conflicts", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/transactions/"+created.Transaction.ID+"/refund", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("deactivated voucher cannot be assigned", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/vouchers/voucher-flat5/deactivate", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "POST", "/api/v1/vouchers/voucher-flat5/assign", dto.AssignVoucherRequest{CustomerID: customerID})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestCustomerEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	router, pool := setupRouter(t)
	defer pool.Close()

	const customerID = "customer-wallet-http"

	w := doJSON(t, router, "POST", "/api/v1/customers/"+customerID+"/top-up", dto.TopUpRequest{
		Amount: decimal.RequireFromString("150.50"),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("balance reflects the top-up", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/v1/customers/"+customerID+"/balance", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.BalanceResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Balance.Equal(decimal.RequireFromString("150.50")))
		assert.Len(t, resp.Entries, 1)
	})

	t.Run("overview aggregates wallet and instalments", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/v1/customers/"+customerID+"/overview", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			CustomerID string          `json:"customer_id"`
			Balance    decimal.Decimal `json:"balance"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, customerID, resp.CustomerID)
		assert.True(t, resp.Balance.Equal(decimal.RequireFromString("150.50")))
	})

	t.Run("never-scored customer has no rating", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/v1/customers/"+customerID+"/rating", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("cashback wallets start empty", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/v1/customers/"+customerID+"/cashback-wallets", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Wallets []model.CashbackWallet `json:"cashback_wallets"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Wallets)
	})

	t.Run("invalid as_of is rejected", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/v1/customers/"+customerID+"/balance?as_of=yesterday", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMerchantAndFeeRateEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	router, pool := setupRouter(t)
	defer pool.Close()

	t.Run("fee quote uses the merchant's tier", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/v1/merchants/merchant-kopi-corner/fees/quote?amount=1000", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var quote struct {
			WithdrawalFee  decimal.Decimal `json:"withdrawal_fee"`
			TransactionFee decimal.Decimal `json:"transaction_fee"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
		assert.True(t, quote.WithdrawalFee.Equal(decimal.RequireFromString("30")))
		assert.True(t, quote.TransactionFee.Equal(decimal.RequireFromString("20")))
	})

	t.Run("quote without a numeric amount is rejected", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/v1/merchants/merchant-kopi-corner/fees/quote?amount=lots", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("withdrawal settles with fees", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/merchants/merchant-mega-mart/withdrawals", dto.WithdrawRequest{
			Amount: decimal.RequireFromString("1000"),
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp dto.WithdrawalResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.NetAmount.Equal(decimal.RequireFromString("987.50")))
	})

	t.Run("snapshot update moves the merchant across tiers", func(t *testing.T) {
		w := doJSON(t, router, "PUT", "/api/v1/merchants/merchant-kopi-corner/snapshot", dto.MerchantSnapshotRequest{
			WalletBalance:  decimal.RequireFromString("5000"),
			MonthlyRevenue: decimal.RequireFromString("12000"),
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/api/v1/merchants/merchant-kopi-corner/fees/quote?amount=1000", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var quote struct {
			WithdrawalFee decimal.Decimal `json:"withdrawal_fee"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
		assert.True(t, quote.WithdrawalFee.Equal(decimal.RequireFromString("20")))
	})

	t.Run("overlapping tier is rejected by the exclusion constraint", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/admin/fee-rates", dto.CreateFeeRateRequest{
			Name:                  "Small Duplicate",
			MerchantSizeID:        "size-small",
			WalletBalanceMin:      decimal.RequireFromString("1000"),
			MonthlyRevenueMin:     decimal.Zero,
			WithdrawalFeePercent:  decimal.RequireFromString("9"),
			TransactionFeePercent: decimal.RequireFromString("9"),
		})
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})

	t.Run("reload rebuilds the snapshot", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/v1/admin/fee-rates/reload", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
