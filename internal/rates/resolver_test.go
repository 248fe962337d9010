package rates

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dayumstir/bnpl-ledger/internal/domain"
	"github.com/dayumstir/bnpl-ledger/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func smallMerchantTiers() []model.WithdrawalFeeRate {
	return []model.WithdrawalFeeRate{
		{
			ID: "tier-1", Name: "starter", MerchantSizeID: "small",
			WalletBalanceMin: dec("0"), WalletBalanceMax: decPtr("5000"),
			MonthlyRevenueMin: dec("0"), MonthlyRevenueMax: nil,
			PercentageWithdrawalFee:  dec("3"),
			PercentageTransactionFee: dec("2"),
		},
		{
			ID: "tier-2", Name: "established", MerchantSizeID: "small",
			WalletBalanceMin: dec("5000"), WalletBalanceMax: nil,
			MonthlyRevenueMin: dec("0"), MonthlyRevenueMax: nil,
			PercentageWithdrawalFee:  dec("2"),
			PercentageTransactionFee: dec("1.5"),
		},
	}
}

func TestSnapshotResolve_Boundaries(t *testing.T) {
	snap, err := NewSnapshot(smallMerchantTiers())
	require.NoError(t, err)

	t.Run("inside lower tier", func(t *testing.T) {
		tier, err := snap.Resolve("small", dec("4999"), dec("100"))
		require.NoError(t, err)
		assert.Equal(t, "tier-1", tier.ID)
		assert.True(t, tier.PercentageTransactionFee.Equal(dec("2")))
	})

	t.Run("upper boundary is exclusive", func(t *testing.T) {
		tier, err := snap.Resolve("small", dec("5000"), dec("100"))
		require.NoError(t, err)
		assert.Equal(t, "tier-2", tier.ID)
	})

	t.Run("lower boundary is inclusive", func(t *testing.T) {
		tier, err := snap.Resolve("small", dec("0"), dec("0"))
		require.NoError(t, err)
		assert.Equal(t, "tier-1", tier.ID)
	})

	t.Run("unknown merchant size", func(t *testing.T) {
		_, err := snap.Resolve("mega", dec("100"), dec("100"))
		assert.ErrorIs(t, err, domain.ErrRateNotFound)
	})

	t.Run("negative inputs rejected", func(t *testing.T) {
		_, err := snap.Resolve("small", dec("-1"), dec("100"))
		kind, ok := domain.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, domain.KindValidation, kind)
	})
}

func TestSnapshotResolve_ExactlyOneTierMatches(t *testing.T) {
	snap, err := NewSnapshot(smallMerchantTiers())
	require.NoError(t, err)

	// Every balance within the configured ranges resolves to exactly one
	// tier; sweeping across the boundary must never produce ambiguity.
	for _, bal := range []string{"0", "1", "2500", "4999", "4999.99", "5000", "5000.01", "100000"} {
		matches := 0
		for _, tier := range snap.Tiers("small") {
			if inRange(dec(bal), tier.WalletBalanceMin, tier.WalletBalanceMax) {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "balance %s", bal)
	}
}

func TestNewSnapshot_OverlapIsFatal(t *testing.T) {
	tiers := smallMerchantTiers()
	tiers[1].WalletBalanceMin = dec("4000") // overlaps [0,5000)

	_, err := NewSnapshot(tiers)
	require.Error(t, err)
	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindConfiguration, kind)
}

func TestNewSnapshot_SameRangeDifferentSizeClassOK(t *testing.T) {
	tiers := smallMerchantTiers()
	dup := tiers[0]
	dup.ID, dup.MerchantSizeID = "tier-3", "large"
	tiers = append(tiers, dup)

	_, err := NewSnapshot(tiers)
	assert.NoError(t, err)
}

func TestNewSnapshot_EmptyRangeRejected(t *testing.T) {
	tiers := smallMerchantTiers()
	tiers[0].WalletBalanceMax = decPtr("0")

	_, err := NewSnapshot(tiers)
	require.Error(t, err)
	var de *domain.Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.KindConfiguration, de.Kind)
}

func TestTableSwap(t *testing.T) {
	snapA, err := NewSnapshot(smallMerchantTiers())
	require.NoError(t, err)

	table := NewTable(snapA)
	assert.Same(t, snapA, table.Snapshot())

	tiers := smallMerchantTiers()
	tiers[0].PercentageTransactionFee = dec("2.5")
	snapB, err := NewSnapshot(tiers)
	require.NoError(t, err)

	table.Swap(snapB)
	assert.Same(t, snapB, table.Snapshot())
}
