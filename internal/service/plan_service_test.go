package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayumstir/bnpl-ledger/internal/domain"
	"github.com/dayumstir/bnpl-ledger/internal/model"
)

func TestBuildSchedule(t *testing.T) {
	start := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("even split", func(t *testing.T) {
		payments, err := buildSchedule("plan-1", decimal.RequireFromString("300"), 3, model.FrequencyMonthly, start)
		require.NoError(t, err)
		require.Len(t, payments, 3)

		for i, p := range payments {
			assert.True(t, p.DueAmount.Equal(decimal.RequireFromString("100")), "instalment %d", i+1)
			assert.Equal(t, i+1, p.InstalmentNumber)
			assert.Equal(t, model.PaymentScheduled, p.Status)
			assert.Equal(t, "plan-1", p.PlanID)
		}
	})

	t.Run("remainder lands on final instalment", func(t *testing.T) {
		payments, err := buildSchedule("plan-1", decimal.RequireFromString("100"), 3, model.FrequencyMonthly, start)
		require.NoError(t, err)
		require.Len(t, payments, 3)

		assert.True(t, payments[0].DueAmount.Equal(decimal.RequireFromString("33.33")))
		assert.True(t, payments[1].DueAmount.Equal(decimal.RequireFromString("33.33")))
		assert.True(t, payments[2].DueAmount.Equal(decimal.RequireFromString("33.34")))
	})

	t.Run("due amounts always sum to the transaction amount", func(t *testing.T) {
		amounts := []string{"0.01", "0.05", "99.99", "1000", "12345.67"}
		for _, raw := range amounts {
			amount := decimal.RequireFromString(raw)
			for count := 1; count <= 12; count++ {
				payments, err := buildSchedule("plan-1", amount, count, model.FrequencyWeekly, start)
				require.NoError(t, err)

				sum := decimal.Zero
				for _, p := range payments {
					sum = sum.Add(p.DueAmount)
					assert.False(t, p.DueAmount.IsNegative(), "amount %s count %d", raw, count)
				}
				assert.True(t, sum.Equal(amount), "amount %s count %d: schedule sums to %s", raw, count, sum)
			}
		}
	})

	t.Run("monthly due dates advance by calendar month", func(t *testing.T) {
		payments, err := buildSchedule("plan-1", decimal.RequireFromString("90"), 3, model.FrequencyMonthly, start)
		require.NoError(t, err)

		assert.Equal(t, start.AddDate(0, 1, 0), payments[0].DueDate)
		assert.Equal(t, start.AddDate(0, 2, 0), payments[1].DueDate)
		assert.Equal(t, start.AddDate(0, 3, 0), payments[2].DueDate)
	})

	t.Run("weekly and biweekly cadence", func(t *testing.T) {
		weekly, err := buildSchedule("plan-1", decimal.RequireFromString("60"), 2, model.FrequencyWeekly, start)
		require.NoError(t, err)
		assert.Equal(t, start.AddDate(0, 0, 7), weekly[0].DueDate)
		assert.Equal(t, start.AddDate(0, 0, 14), weekly[1].DueDate)

		biweekly, err := buildSchedule("plan-1", decimal.RequireFromString("60"), 2, model.FrequencyBiweekly, start)
		require.NoError(t, err)
		assert.Equal(t, start.AddDate(0, 0, 14), biweekly[0].DueDate)
		assert.Equal(t, start.AddDate(0, 0, 28), biweekly[1].DueDate)
	})

	t.Run("accepts the API's uppercase frequency values", func(t *testing.T) {
		for _, f := range []string{"WEEKLY", "BIWEEKLY", "MONTHLY"} {
			payments, err := buildSchedule("plan-1", decimal.RequireFromString("300"), 3, f, start)
			require.NoError(t, err, "frequency %s", f)
			require.Len(t, payments, 3)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := buildSchedule("plan-1", decimal.RequireFromString("100"), 0, model.FrequencyMonthly, start)
		kind, ok := domain.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, domain.KindValidation, kind)

		_, err = buildSchedule("plan-1", decimal.Zero, 3, model.FrequencyMonthly, start)
		kind, ok = domain.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, domain.KindValidation, kind)

		_, err = buildSchedule("plan-1", decimal.RequireFromString("100"), 3, "quarterly", start)
		kind, ok = domain.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, domain.KindValidation, kind)
	})
}

func TestCashbackOf(t *testing.T) {
	cases := []struct {
		amount, percentage, want string
	}{
		{"200", "2", "4.00"},
		{"100", "0", "0"},
		{"33.33", "2", "0.66"}, // 0.6666 floors to the minor unit
		{"250.50", "1.5", "3.75"},
	}
	for _, tc := range cases {
		got := cashbackOf(decimal.RequireFromString(tc.amount), decimal.RequireFromString(tc.percentage))
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"%s at %s%%: got %s, want %s", tc.amount, tc.percentage, got, tc.want)
	}
}

func TestOutstanding(t *testing.T) {
	p := model.InstalmentPayment{
		DueAmount:      decimal.RequireFromString("100"),
		DiscountAmount: decimal.RequireFromString("10"),
		PaidAmount:     decimal.RequireFromString("50"),
	}
	assert.True(t, p.Outstanding().Equal(decimal.RequireFromString("40")))
}
