// Package rates holds the withdrawal fee tier table as an immutable snapshot.
// Tiers are loaded and validated once at startup; reloads build a fresh
// snapshot and swap it atomically so readers never see a half-updated table.
package rates

import (
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/dayumstir/bnpl-ledger/internal/domain"
	"github.com/dayumstir/bnpl-ledger/internal/model"
)

// Snapshot is an immutable view of the fee tiers, grouped by merchant size.
type Snapshot struct {
	bySize map[string][]model.WithdrawalFeeRate
}

// NewSnapshot validates the tier set and freezes it. Overlapping tiers within
// one merchant size class are a configuration error: the caller must refuse to
// serve rather than resolve ambiguously.
func NewSnapshot(tiers []model.WithdrawalFeeRate) (*Snapshot, error) {
	bySize := make(map[string][]model.WithdrawalFeeRate)
	for _, t := range tiers {
		if t.WalletBalanceMax != nil && !t.WalletBalanceMin.LessThan(*t.WalletBalanceMax) {
			return nil, domain.Configuration(
				fmt.Sprintf("fee tier %s: wallet balance range is empty", t.Name))
		}
		if t.MonthlyRevenueMax != nil && !t.MonthlyRevenueMin.LessThan(*t.MonthlyRevenueMax) {
			return nil, domain.Configuration(
				fmt.Sprintf("fee tier %s: monthly revenue range is empty", t.Name))
		}
		bySize[t.MerchantSizeID] = append(bySize[t.MerchantSizeID], t)
	}

	for sizeID, ts := range bySize {
		for i := 0; i < len(ts); i++ {
			for j := i + 1; j < len(ts); j++ {
				if rangesOverlap(ts[i].WalletBalanceMin, ts[i].WalletBalanceMax, ts[j].WalletBalanceMin, ts[j].WalletBalanceMax) &&
					rangesOverlap(ts[i].MonthlyRevenueMin, ts[i].MonthlyRevenueMax, ts[j].MonthlyRevenueMin, ts[j].MonthlyRevenueMax) {
					return nil, domain.Configuration(
						fmt.Sprintf("fee tiers %q and %q overlap for merchant size %s", ts[i].Name, ts[j].Name, sizeID))
				}
			}
		}
	}

	return &Snapshot{bySize: bySize}, nil
}

// Resolve returns the tier covering the given balance and revenue for the
// merchant size. Boundaries are half-open: min <= x < max, a nil max is
// unbounded above.
func (s *Snapshot) Resolve(merchantSizeID string, walletBalance, monthlyRevenue decimal.Decimal) (*model.WithdrawalFeeRate, error) {
	if walletBalance.IsNegative() || monthlyRevenue.IsNegative() {
		return nil, domain.Validation("wallet balance and monthly revenue must be non-negative")
	}
	for _, t := range s.bySize[merchantSizeID] {
		if inRange(walletBalance, t.WalletBalanceMin, t.WalletBalanceMax) &&
			inRange(monthlyRevenue, t.MonthlyRevenueMin, t.MonthlyRevenueMax) {
			tier := t
			return &tier, nil
		}
	}
	return nil, domain.ErrRateNotFound
}

// Tiers returns the tiers for one merchant size class.
func (s *Snapshot) Tiers(merchantSizeID string) []model.WithdrawalFeeRate {
	return s.bySize[merchantSizeID]
}

func inRange(x, min decimal.Decimal, max *decimal.Decimal) bool {
	if x.LessThan(min) {
		return false
	}
	if max != nil && !x.LessThan(*max) {
		return false
	}
	return true
}

func rangesOverlap(aMin decimal.Decimal, aMax *decimal.Decimal, bMin decimal.Decimal, bMax *decimal.Decimal) bool {
	// Half-open intervals [min, max) overlap unless one ends before the
	// other begins.
	if aMax != nil && !bMin.LessThan(*aMax) {
		return false
	}
	if bMax != nil && !aMin.LessThan(*bMax) {
		return false
	}
	return true
}

// Table is the live tier table. Reload swaps the snapshot atomically.
type Table struct {
	current atomic.Pointer[Snapshot]
}

func NewTable(snap *Snapshot) *Table {
	t := &Table{}
	t.current.Store(snap)
	return t
}

func (t *Table) Snapshot() *Snapshot { return t.current.Load() }

func (t *Table) Swap(snap *Snapshot) { t.current.Store(snap) }
