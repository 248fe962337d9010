package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayumstir/bnpl-ledger/internal/domain"
	"github.com/dayumstir/bnpl-ledger/internal/model"
)

// A single-use voucher fired at several instalments at once must discount
// exactly one of them, no matter how the attempts interleave.
func TestVoucherRedemptionExactlyOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool := setupTestDB(t)
	defer pool.Close()
	svcs := newTestServices(t, pool)
	ctx := context.Background()

	const customerID = "customer-racer"

	_, payments, err := svcs.txn.Create(ctx, &CreateTransactionInput{
		Amount:          decimal.RequireFromString("500"),
		CustomerID:      customerID,
		MerchantID:      "merchant-mega-mart",
		InstalmentCount: 5,
		Frequency:       model.FrequencyWeekly,
	})
	require.NoError(t, err)
	require.Len(t, payments, 5)

	assignment, err := svcs.voucher.Assign(ctx, "voucher-loyal15", customerID)
	require.NoError(t, err)
	require.Equal(t, 1, assignment.RemainingUses)

	var wg sync.WaitGroup
	errs := make([]error, len(payments))
	for i := range payments {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// 85 settles a 100 instalment with the 15% discount applied.
			_, errs[i] = svcs.plan.ApplyPayment(ctx, payments[i].ID, decimal.RequireFromString("85"), assignment.ID)
		}(i)
	}
	wg.Wait()

	var succeeded, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrVoucherNotAvailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, len(payments)-1, unavailable)

	discounted := 0
	for _, p := range payments {
		got, err := svcs.plan.GetPayment(ctx, p.ID)
		require.NoError(t, err)
		if !got.DiscountAmount.IsZero() {
			discounted++
			assert.True(t, got.DiscountAmount.Equal(decimal.RequireFromString("15")))
			assert.Equal(t, model.PaymentPaid, got.Status)
		}
	}
	assert.Equal(t, 1, discounted)
}
